package tui

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/simchat/internal/api"
	"github.com/diogo/simchat/internal/chat"
	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
	"github.com/diogo/simchat/internal/render"
)

func testProfile(collapsible bool) models.Profile {
	return models.Profile{
		Name:        "panel",
		Title:       "AI Assistant",
		Endpoint:    models.DefaultChatEndpoint,
		Model:       models.DefaultModel,
		Markdown:    false,
		Collapsible: collapsible,
	}
}

func newChatPane(t *testing.T, mock *api.MockExchanger, collapsible bool) ChatModel {
	t.Helper()
	w := chat.NewWidget(testProfile(collapsible), mock)
	m := NewChatModel(w, render.DefaultOptions())
	m.SetSize(100, 40)
	return m
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// findExchange runs the commands of a batch in order until one yields the
// exchange result
func findExchange(t *testing.T, cmd tea.Cmd) exchangeDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case exchangeDoneMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(exchangeDoneMsg); ok {
				return done
			}
		}
	}
	t.Fatal("no exchange command in batch")
	return exchangeDoneMsg{}
}

func bufferLogger(buf *bytes.Buffer) *observability.Logger {
	return observability.NewLogger("tui-test", slog.LevelDebug, "text", buf)
}

// fakeRegistry is an in-memory WorkflowRegistry
type fakeRegistry struct {
	mu        sync.Mutex
	syncing   bool
	createErr error
	workflows []models.Workflow
	created   int
}

func (r *fakeRegistry) IsSyncing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncing
}

func (r *fakeRegistry) Create(_ context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.syncing {
		return "", apierrors.ErrSyncInProgress
	}
	if r.createErr != nil {
		return "", r.createErr
	}
	r.created++
	id := "wf-" + strconv.Itoa(r.created)
	if name == "" {
		name = "Workflow " + strconv.Itoa(len(r.workflows)+1)
	}
	r.workflows = append(r.workflows, models.Workflow{
		ID:           id,
		Name:         name,
		LastModified: time.Date(2030, 1, 1, 0, 0, r.created, 0, time.UTC),
	})
	return id, nil
}

func (r *fakeRegistry) Sorted() []models.Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Workflow, len(r.workflows))
	copy(out, r.workflows)
	models.SortByLastModified(out)
	return out
}
