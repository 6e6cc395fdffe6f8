package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
)

// SyncingNotice is logged when Add Workflow is pressed during a registry sync
const SyncingNotice = "Please wait, syncing in progress..."

// WorkflowRegistry is the part of workflows.Registry the sidebar reads
type WorkflowRegistry interface {
	IsSyncing() bool
	Create(ctx context.Context, name string) (string, error)
	Sorted() []models.Workflow
}

// NavigateMsg asks the shell to show route
type NavigateMsg struct {
	Route string
}

type (
	workflowCreatedMsg struct {
		id string
	}
	workflowCreateFailedMsg struct {
		err error
	}
)

type itemKind int

const (
	itemLink itemKind = iota
	itemAction
	itemWorkflow
)

// Sidebar actions
const (
	actionAddWorkflow = "add-workflow"
	actionHelp        = "help"
	actionSettings    = "settings"
)

type sidebarItem struct {
	kind   itemKind
	label  string
	href   string
	action string
	color  string
}

var sidebarLinks = []sidebarItem{
	{kind: itemLink, label: "Home", href: models.RouteHome},
	{kind: itemLink, label: "Agents", href: models.RouteAgents},
	{kind: itemLink, label: "Logs", href: models.RouteLogs},
	{kind: itemLink, label: "Chatbot", href: models.RouteChat},
}

var sidebarActions = []sidebarItem{
	{kind: itemAction, label: "+ Add Workflow", action: actionAddWorkflow},
	{kind: itemAction, label: "Help & Support", action: actionHelp},
	{kind: itemAction, label: "Settings", action: actionSettings},
}

// SidebarModel is the navigation rail
type SidebarModel struct {
	registry WorkflowRegistry
	logger   *observability.Logger

	activeRoute  string
	cursor       int
	focused      bool
	showHelp     bool
	showSettings bool

	width  int
	height int
}

// NewSidebarModel creates the rail. registry may be nil, in which case the
// workflow list is empty and Add Workflow only logs.
func NewSidebarModel(registry WorkflowRegistry, logger *observability.Logger) SidebarModel {
	if logger == nil {
		logger = observability.Discard()
	}
	return SidebarModel{
		registry:    registry,
		logger:      logger,
		activeRoute: models.RouteChat,
	}
}

// ActiveRoute returns the highlighted route
func (m SidebarModel) ActiveRoute() string {
	return m.activeRoute
}

// SetActiveRoute highlights route
func (m *SidebarModel) SetActiveRoute(route string) {
	m.activeRoute = route
}

// ShowHelp reports whether the help modal is open
func (m SidebarModel) ShowHelp() bool {
	return m.showHelp
}

// ShowSettings reports whether the settings modal is open
func (m SidebarModel) ShowSettings() bool {
	return m.showSettings
}

// ModalOpen reports whether either modal is open
func (m SidebarModel) ModalOpen() bool {
	return m.showHelp || m.showSettings
}

// Focus and Blur toggle the cursor
func (m *SidebarModel) Focus() { m.focused = true }
func (m *SidebarModel) Blur()  { m.focused = false }

// SetSize resizes the rail
func (m *SidebarModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m SidebarModel) workflows() []models.Workflow {
	if m.registry == nil {
		return nil
	}
	return m.registry.Sorted()
}

func (m SidebarModel) items() []sidebarItem {
	items := make([]sidebarItem, 0, len(sidebarLinks)+len(sidebarActions)+8)
	items = append(items, sidebarLinks...)
	items = append(items, sidebarActions...)
	for _, wf := range m.workflows() {
		items = append(items, sidebarItem{
			kind:  itemWorkflow,
			label: wf.Name,
			href:  wf.Route(),
			color: wf.DisplayColor(),
		})
	}
	return items
}

// Update handles messages and updates the model
func (m SidebarModel) Update(msg tea.Msg) (SidebarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ModalOpen() {
			if msg.String() == "esc" {
				m.showHelp = false
				m.showSettings = false
			}
			return m, nil
		}
		if !m.focused {
			return m, nil
		}

		items := m.items()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(items)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(items) {
				return m.activate(items[m.cursor])
			}
		}

	case workflowCreatedMsg:
		route := models.WorkflowRoute(msg.id)
		m.activeRoute = route
		m.logger.WithWorkflow(msg.id).Info("workflow created")
		return m, navigate(route)

	case workflowCreateFailedMsg:
		if errors.Is(msg.err, apierrors.ErrSyncInProgress) {
			m.logger.Warn(SyncingNotice)
		} else {
			m.logger.Error("failed to create workflow", "error", msg.err)
		}
	}

	return m, nil
}

func (m SidebarModel) activate(item sidebarItem) (SidebarModel, tea.Cmd) {
	switch item.kind {
	case itemLink, itemWorkflow:
		m.activeRoute = item.href
		return m, navigate(item.href)
	}

	switch item.action {
	case actionAddWorkflow:
		return m, m.AddWorkflow()
	case actionHelp:
		m.showHelp = true
	case actionSettings:
		m.showSettings = true
	}
	return m, nil
}

// AddWorkflow returns the command that creates a workflow, or nil when the
// registry is syncing. Failures are only logged.
func (m SidebarModel) AddWorkflow() tea.Cmd {
	if m.registry == nil {
		m.logger.Warn("no workflow registry configured")
		return nil
	}
	if m.registry.IsSyncing() {
		m.logger.Warn(SyncingNotice)
		return nil
	}

	registry := m.registry
	return func() tea.Msg {
		id, err := registry.Create(context.Background(), "")
		if err != nil {
			return workflowCreateFailedMsg{err: err}
		}
		return workflowCreatedMsg{id: id}
	}
}

func navigate(route string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route}
	}
}

// View renders the rail
func (m SidebarModel) View() string {
	innerWidth := m.width - 3
	if innerWidth < 12 {
		innerWidth = 12
	}

	var b strings.Builder
	b.WriteString(sidebarBrandStyle.Render("● simchat"))
	b.WriteString("\n")

	items := m.items()
	for i, item := range items {
		switch i {
		case len(sidebarLinks):
			b.WriteString(sidebarSectionStyle.Render("Actions") + "\n")
		case len(sidebarLinks) + len(sidebarActions):
			b.WriteString(sidebarSectionStyle.Render("Workflows") + "\n")
		}

		cursor := "  "
		if m.focused && i == m.cursor {
			cursor = sidebarCursorStyle.Render("▸ ")
		}

		style := sidebarItemStyle
		if item.href != "" && item.href == m.activeRoute {
			style = sidebarActiveStyle
		}

		label := truncate(item.label, innerWidth-4)
		if item.kind == itemWorkflow {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(item.color)).Render("■ ")
			b.WriteString(cursor + dot + style.Render(label) + "\n")
			continue
		}
		b.WriteString(cursor + style.Render(label) + "\n")
	}

	if len(items) == len(sidebarLinks)+len(sidebarActions) {
		b.WriteString(sidebarSectionStyle.Render("Workflows") + "\n")
		b.WriteString(hintStyle.Render("  none yet") + "\n")
	}
	if m.registry != nil && m.registry.IsSyncing() {
		b.WriteString("\n" + noticeStyle.Render("syncing..."))
	}

	style := sidebarStyle.Width(m.width - 1)
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(b.String())
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
