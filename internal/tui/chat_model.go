package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/simchat/internal/chat"
	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/render"
)

// writeClipboard is swapped in tests
var writeClipboard = clipboard.WriteAll

type (
	// exchangeDoneMsg carries the outcome of one in-flight exchange
	exchangeDoneMsg struct {
		token chat.Token
		reply string
		err   error
	}
	animationTickMsg time.Time
)

// ChatModel is the chat pane: a transcript viewport and an input box bound to
// a single chat.Widget
type ChatModel struct {
	widget    *chat.Widget
	renderOpt render.Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready          bool
	collapsed      bool
	focused        bool
	notice         string
	animationFrame int

	width  int
	height int
}

// NewChatModel creates a chat pane for widget
func NewChatModel(widget *chat.Widget, opts render.Options) ChatModel {
	profile := widget.Profile()

	ta := textarea.New()
	ta.Placeholder = profile.Placeholder
	if ta.Placeholder == "" {
		ta.Placeholder = "Type your message..."
	}
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return ChatModel{
		widget:    widget,
		renderOpt: opts,
		textarea:  ta,
		spinner:   s,
		focused:   true,
	}
}

// Widget returns the underlying chat widget
func (m ChatModel) Widget() *chat.Widget {
	return m.widget
}

// Collapsed reports whether the panel is folded to its header
func (m ChatModel) Collapsed() bool {
	return m.collapsed
}

// Init initializes the model
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func animationTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Focus routes key input to the textarea
func (m *ChatModel) Focus() {
	m.focused = true
	m.textarea.Focus()
}

// Blur stops routing key input to the textarea
func (m *ChatModel) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// SetSize resizes the pane
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 1

	vpHeight := height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < 3 {
		vpHeight = 3
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.renderOpt = m.renderOpt.WithWidth(contentWidth - 10)
	m.updateViewport()
}

// Update handles messages and updates the model
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if !m.focused {
			break
		}
		switch msg.String() {
		case "enter":
			return m.submit()

		case "ctrl+y":
			m.notice = m.copyLastReply()
			return m, nil

		case "ctrl+l":
			if err := m.widget.Reset(); err != nil {
				m.notice = "Cannot clear while a request is in flight"
			} else {
				m.notice = ""
				m.updateViewport()
			}
			return m, nil

		case "ctrl+t":
			if m.widget.Profile().Collapsible {
				m.collapsed = !m.collapsed
			}
			return m, nil
		}

	case exchangeDoneMsg:
		if err := m.widget.Resolve(msg.token, msg.reply, msg.err); err != nil {
			// a reply for a request that was already resolved
			return m, nil
		}
		m.notice = ""
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.widget.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.widget.Busy() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only key input reaches the textarea so escape sequences don't leak in
	if _, ok := msg.(tea.KeyMsg); ok && m.focused && !m.widget.Busy() && !m.collapsed {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit hands the textarea content to the widget and starts the exchange
// in a command goroutine
func (m ChatModel) submit() (ChatModel, tea.Cmd) {
	if m.collapsed {
		return m, nil
	}

	m.widget.SetInput(m.textarea.Value())
	token, text, err := m.widget.Submit()
	switch {
	case errors.Is(err, apierrors.ErrEmptyInput):
		return m, nil
	case errors.Is(err, apierrors.ErrBusy):
		m.notice = "Please wait for the current reply"
		return m, nil
	case err != nil:
		m.notice = err.Error()
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		exchangeCmd(m.widget, token, text),
		m.spinner.Tick,
		animationTick(),
	)
}

func exchangeCmd(widget *chat.Widget, token chat.Token, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := widget.Exchange(context.Background(), text)
		return exchangeDoneMsg{token: token, reply: reply, err: err}
	}
}

func (m ChatModel) copyLastReply() string {
	reply := m.widget.LastBotReply()
	if reply == "" {
		return "Nothing to copy yet"
	}
	if err := writeClipboard(reply); err != nil {
		return fmt.Sprintf("Copy failed: %v", err)
	}
	return "Copied last reply to clipboard"
}

// View renders the pane
func (m ChatModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	profile := m.widget.Profile()
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	title := profile.Title
	if title == "" {
		title = "Chatbot"
	}
	headerParts := []string{titleStyle.Render("● " + title)}
	if profile.Model != "" {
		headerParts = append(headerParts, hintStyle.Render("  •  "), subtitleStyle.Render(profile.Model))
	}
	if profile.Collapsible {
		marker := "▾"
		if m.collapsed {
			marker = "▸"
		}
		headerParts = append(headerParts, hintStyle.Render("  "+marker))
	}
	header := headerStyle.Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))

	if m.collapsed {
		return header
	}

	var messagesContent string
	if len(m.widget.Messages()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)

	var inputContent string
	if m.widget.Busy() {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)

	sections := []string{header, messagesPanel, inputPanel, m.renderStatusBar(contentWidth)}

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if err := m.widget.LastError(); err != nil {
		sections = append(sections, hintStyle.Render("  last failure: "+apierrors.Kind(err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ChatModel) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(lipgloss.Center,
		welcomeIconStyle.Width(width).Render("●"),
		welcomeTitleStyle.Width(width).Render("How can I help you today?"),
		welcomeStyle.Width(width).Render("Type a message below and press Enter"),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m ChatModel) renderLoadingAnimation() string {
	frames := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := m.animationFrame

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[frame%len(gradientColors)]).
		Bold(true).
		Render(frames[frame%len(frames)])

	var bar strings.Builder
	for i := 0; i < 16; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+frame)%len(gradientColors)])
		bar.WriteString(style.Render("▮"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for reply ")
	return fmt.Sprintf("%s %s %s%s", spin, bar.String(), text, m.spinner.View())
}

func (m ChatModel) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy"},
		{"Ctrl+L", "Clear"},
	}
	if m.widget.Profile().Collapsible {
		shortcuts = append(shortcuts, struct {
			key  string
			desc string
		}{"Ctrl+T", "Collapse"})
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport re-renders the transcript
func (m *ChatModel) updateViewport() {
	if !m.ready {
		return
	}

	markdown := m.widget.Profile().Markdown
	bubbleWidth := m.viewport.Width - 6

	var content strings.Builder
	for i, msg := range m.widget.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			content.WriteString(botLabelStyle.Render("Bot") + "\n")
			rendered := render.Reply(msg.Content, markdown, m.renderOpt)
			content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}
