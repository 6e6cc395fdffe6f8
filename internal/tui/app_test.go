package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/simchat/internal/api"
	"github.com/diogo/simchat/internal/chat"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/render"
)

func newTestApp(t *testing.T, mock *api.MockExchanger, reg WorkflowRegistry) AppModel {
	t.Helper()
	var logs bytes.Buffer
	m := NewAppModel(AppOptions{
		Widget:   chat.NewWidget(testProfile(false), mock),
		Registry: reg,
		Render:   render.DefaultOptions(),
		Theme:    render.TokyoNightTheme,
		Settings: Settings{Profile: "panel", Endpoint: models.DefaultChatEndpoint, Backend: "memory"},
		Logger:   bufferLogger(&logs),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(AppModel)
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(AppModel), cmd
}

func TestAppStartsOnChat(t *testing.T) {
	m := newTestApp(t, &api.MockExchanger{}, nil)
	if m.Route() != models.RouteChat {
		t.Errorf("Route() = %s", m.Route())
	}
	if m.Sidebar().ActiveRoute() != models.RouteChat {
		t.Errorf("sidebar active = %s", m.Sidebar().ActiveRoute())
	}
	if !strings.Contains(m.View(), "AI Assistant") {
		t.Error("chat pane not rendered")
	}
}

func TestAppNavigate(t *testing.T) {
	reg := &fakeRegistry{}
	m := newTestApp(t, &api.MockExchanger{}, reg)

	m, _ = update(t, m, NavigateMsg{Route: models.RouteAgents})
	if m.Route() != models.RouteAgents {
		t.Fatalf("Route() = %s", m.Route())
	}
	if !strings.Contains(m.View(), "Agents") {
		t.Error("agents page not rendered")
	}

	id, _ := reg.Create(context.Background(), "Billing")
	m, _ = update(t, m, NavigateMsg{Route: models.WorkflowRoute(id)})
	view := m.View()
	if !strings.Contains(view, "Billing") || !strings.Contains(view, id) {
		t.Errorf("workflow page missing details:\n%s", view)
	}

	m, _ = update(t, m, NavigateMsg{Route: "/w/missing"})
	if !strings.Contains(m.View(), "Not found") {
		t.Error("unknown workflow should render not found")
	}
}

func TestAppTabSwitchesFocus(t *testing.T) {
	m := newTestApp(t, &api.MockExchanger{}, nil)
	if m.focus != focusChat {
		t.Fatal("chat should start focused")
	}

	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusSidebar {
		t.Error("tab should focus the sidebar")
	}
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusChat {
		t.Error("tab should return to the chat")
	}
}

func TestAppEscClosesModalBeforeQuitting(t *testing.T) {
	m := newTestApp(t, &api.MockExchanger{}, nil)
	m, _ = update(t, m, key(tea.KeyTab))

	for i := 0; i < len(sidebarLinks)+1; i++ {
		m, _ = update(t, m, runes("j"))
	}
	m, _ = update(t, m, key(tea.KeyEnter))
	if !m.Sidebar().ShowHelp() {
		t.Fatal("help modal did not open")
	}
	if !strings.Contains(m.View(), "Help & Support") {
		t.Error("help modal not rendered")
	}

	m, cmd := update(t, m, key(tea.KeyEsc))
	if cmd != nil {
		t.Error("Esc with a modal open must not quit")
	}
	if m.Sidebar().ModalOpen() {
		t.Error("modal still open")
	}

	_, cmd = update(t, m, key(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Esc without a modal should quit")
	}
}

func TestAppSettingsModal(t *testing.T) {
	m := newTestApp(t, &api.MockExchanger{}, nil)
	m, _ = update(t, m, key(tea.KeyTab))
	for i := 0; i < len(sidebarLinks)+2; i++ {
		m, _ = update(t, m, runes("j"))
	}
	m, _ = update(t, m, key(tea.KeyEnter))

	view := m.View()
	if !strings.Contains(view, "Settings") || !strings.Contains(view, models.DefaultChatEndpoint) {
		t.Errorf("settings modal missing content:\n%s", view)
	}
}

func TestAppDeliversReplyOffPage(t *testing.T) {
	mock := &api.MockExchanger{Reply: "done"}
	m := newTestApp(t, mock, nil)

	chatPane := m.Chat()
	chatPane.textarea.SetValue("Hello")
	m.chat = chatPane
	m, cmd := update(t, m, key(tea.KeyEnter))
	done := findExchange(t, cmd)

	m, _ = update(t, m, NavigateMsg{Route: models.RouteLogs})
	m, _ = update(t, m, done)

	msgs := m.Chat().Widget().Messages()
	if len(msgs) != 2 || msgs[1].Content != "done" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	m := newTestApp(t, &api.MockExchanger{}, nil)
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}
