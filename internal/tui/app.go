package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/simchat/internal/chat"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
	"github.com/diogo/simchat/internal/render"
)

const sidebarWidth = 28

type focusArea int

const (
	focusChat focusArea = iota
	focusSidebar
)

// AppOptions configures the shell
type AppOptions struct {
	Widget   *chat.Widget
	Registry WorkflowRegistry
	Render   render.Options
	Theme    render.TUITheme
	Settings Settings
	Logger   *observability.Logger
	// InitialRoute defaults to the chatbot page
	InitialRoute string
}

// AppModel composes the sidebar and the page for the active route
type AppModel struct {
	sidebar  SidebarModel
	chat     ChatModel
	registry WorkflowRegistry
	settings Settings
	logger   *observability.Logger

	route  string
	focus  focusArea
	width  int
	height int
}

// NewAppModel builds the shell
func NewAppModel(opts AppOptions) AppModel {
	if opts.Theme.Name != "" {
		ApplyTheme(opts.Theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	route := opts.InitialRoute
	if route == "" {
		route = models.RouteChat
	}

	m := AppModel{
		sidebar:  NewSidebarModel(opts.Registry, logger.Named("sidebar")),
		chat:     NewChatModel(opts.Widget, opts.Render),
		registry: opts.Registry,
		settings: opts.Settings,
		logger:   logger,
	}
	m.navigate(route)
	return m
}

// Route returns the active route
func (m AppModel) Route() string {
	return m.route
}

// Chat returns the chat pane
func (m AppModel) Chat() ChatModel {
	return m.chat
}

// Sidebar returns the navigation rail
func (m AppModel) Sidebar() SidebarModel {
	return m.sidebar
}

func (m *AppModel) navigate(route string) {
	m.route = route
	m.sidebar.SetActiveRoute(route)
	if route == models.RouteChat {
		m.setFocus(focusChat)
	} else {
		m.setFocus(focusSidebar)
	}
}

func (m *AppModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusChat {
		m.chat.Focus()
		m.sidebar.Blur()
		return
	}
	m.chat.Blur()
	m.sidebar.Focus()
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return m.chat.Init()
}

// Update handles messages and updates the model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sidebar.SetSize(sidebarWidth, msg.Height)
		m.chat.SetSize(msg.Width-sidebarWidth, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.sidebar.ModalOpen() {
			m.sidebar, cmd = m.sidebar.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "tab":
			if m.focus == focusChat {
				m.setFocus(focusSidebar)
			} else if m.route == models.RouteChat {
				m.setFocus(focusChat)
			}
			return m, nil
		}
		if m.focus == focusSidebar {
			m.sidebar, cmd = m.sidebar.Update(msg)
			return m, cmd
		}
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case NavigateMsg:
		m.navigate(msg.Route)
		m.logger.Debug("navigate", "route", msg.Route)
		return m, nil

	case workflowCreatedMsg, workflowCreateFailedMsg:
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	// Everything else (exchange results, ticks) belongs to the chat pane even
	// while another page is shown
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the shell
func (m AppModel) View() string {
	if m.width == 0 {
		return loadingStyle.Render("  Initializing...")
	}

	if m.sidebar.ShowHelp() {
		return placeModal(m.width, m.height, renderHelpModal(m.width))
	}
	if m.sidebar.ShowSettings() {
		return placeModal(m.width, m.height, renderSettingsModal(m.settings, m.width))
	}

	var page string
	if m.route == models.RouteChat {
		page = m.chat.View()
	} else {
		page = m.renderPage(m.width - sidebarWidth - 4)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), page)
}

// renderPage renders the non-chat routes
func (m AppModel) renderPage(width int) string {
	if width < 20 {
		width = 20
	}

	var title, body string
	switch m.route {
	case models.RouteHome:
		title = "Home"
		body = fmt.Sprintf("%d workflows", len(m.sortedWorkflows()))
	case models.RouteAgents:
		title = "Agents"
		body = "The backend agent answers on /api/agent and can send email."
	case models.RouteLogs:
		title = "Logs"
		body = m.settings.LogFile
	default:
		if wf, ok := m.workflowForRoute(); ok {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(wf.DisplayColor())).Render("■ ")
			title = dot + wf.Name
			body = strings.Join([]string{
				"id: " + wf.ID,
				"last modified: " + wf.LastModified.Local().Format("2006-01-02 15:04:05"),
			}, "\n")
		} else {
			title = "Not found"
			body = m.route
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		subtitleStyle.Render(body),
		"",
		hintStyle.Render("Tab to the sidebar • Enter on Chatbot to chat"),
	)
	return headerStyle.Width(width).Render(content)
}

func (m AppModel) sortedWorkflows() []models.Workflow {
	if m.registry == nil {
		return nil
	}
	return m.registry.Sorted()
}

func (m AppModel) workflowForRoute() (models.Workflow, bool) {
	for _, wf := range m.sortedWorkflows() {
		if wf.Route() == m.route {
			return wf, true
		}
	}
	return models.Workflow{}, false
}

// RunApp starts the shell in the alternate screen
func RunApp(opts AppOptions) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
