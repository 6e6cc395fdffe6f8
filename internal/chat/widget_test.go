package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diogo/simchat/internal/api"
	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

func assistantProfile() models.Profile {
	return models.Profile{
		Name:     "assistant",
		Title:    "AI Assistant",
		Endpoint: models.DefaultChatEndpoint,
		Model:    models.DefaultModel,
		Markdown: true,
	}
}

func assertMessages(t *testing.T, got []models.Message, want []models.Message) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d messages %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSendSuccess(t *testing.T) {
	mock := &api.MockExchanger{Reply: "Hi there"}
	w := NewWidget(assistantProfile(), mock)

	w.SetInput("Hello")
	if err := w.Send(context.Background()); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}

	assertMessages(t, w.Messages(), []models.Message{
		{Role: models.RoleUser, Content: "Hello"},
		{Role: models.RoleBot, Content: "Hi there"},
	})
	if w.Input() != "" {
		t.Errorf("Input() = %q, want cleared", w.Input())
	}
	if w.Busy() {
		t.Error("widget should not be busy after resolution")
	}
	if mock.Calls() != 1 {
		t.Errorf("calls = %d, want 1", mock.Calls())
	}
	if req := mock.LastRequest(); req.Message != "Hello" || req.Model != models.DefaultModel {
		t.Errorf("request = %+v", req)
	}
	if w.LastError() != nil {
		t.Errorf("LastError() = %v", w.LastError())
	}
}

func TestSendBlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		mock := &api.MockExchanger{Reply: "never"}
		w := NewWidget(assistantProfile(), mock)
		w.SetInput(input)

		err := w.Send(context.Background())
		if !errors.Is(err, apierrors.ErrEmptyInput) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyInput", input, err)
		}
		if mock.Calls() != 0 {
			t.Errorf("Send(%q) made %d calls", input, mock.Calls())
		}
		if len(w.Messages()) != 0 || w.Busy() {
			t.Errorf("Send(%q) changed state", input)
		}
		if w.Input() != input {
			t.Errorf("input changed to %q", w.Input())
		}
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"non-2xx", apierrors.NewAPIError(500, models.DefaultChatEndpoint, "chat exchange failed")},
		{"transport", apierrors.NewNetworkErrorWithEndpoint("chat exchange", models.DefaultChatEndpoint, errors.New("refused"))},
		{"malformed", apierrors.NewParseError("reply is missing", "reply")},
		{"timeout", apierrors.NewTimeoutError("slow")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &api.MockExchanger{Err: tt.err}
			w := NewWidget(assistantProfile(), mock)
			w.SetInput("Hello")

			err := w.Send(context.Background())
			if !errors.Is(err, tt.err) {
				t.Errorf("Send() error = %v, want %v", err, tt.err)
			}

			assertMessages(t, w.Messages(), []models.Message{
				{Role: models.RoleUser, Content: "Hello"},
				{Role: models.RoleBot, Content: models.FallbackReply},
			})
			if !errors.Is(w.LastError(), tt.err) {
				t.Errorf("LastError() = %v", w.LastError())
			}
			if w.Busy() {
				t.Error("busy should be released after failure")
			}
		})
	}
}

func TestSendKeepsRawText(t *testing.T) {
	mock := &api.MockExchanger{Reply: "ok"}
	profile := assistantProfile()
	profile.Model = ""
	w := NewWidget(profile, mock)

	w.SetInput("  padded text \n")
	if err := w.Send(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := mock.LastRequest(); got.Message != "  padded text \n" || got.Model != "" {
		t.Errorf("request = %+v", got)
	}
	if w.Messages()[0].Content != "  padded text \n" {
		t.Errorf("user message = %q", w.Messages()[0].Content)
	}
}

func TestBusyBetweenSubmitAndResolve(t *testing.T) {
	w := NewWidget(assistantProfile(), &api.MockExchanger{})

	if w.Busy() {
		t.Fatal("new widget should be idle")
	}

	w.SetInput("first")
	token, text, err := w.Submit()
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	if text != "first" || token == 0 {
		t.Errorf("Submit() = %d, %q", token, text)
	}
	if !w.Busy() {
		t.Error("widget should be busy after Submit")
	}

	w.SetInput("second")
	if _, _, err := w.Submit(); !errors.Is(err, apierrors.ErrBusy) {
		t.Errorf("second Submit() error = %v, want ErrBusy", err)
	}
	if len(w.Messages()) != 1 || w.Input() != "second" {
		t.Error("rejected submit must not change state")
	}
	if err := w.Reset(); !errors.Is(err, apierrors.ErrBusy) {
		t.Errorf("Reset() while busy = %v", err)
	}

	if err := w.Resolve(token+1, "wrong", nil); !errors.Is(err, apierrors.ErrStaleToken) {
		t.Errorf("Resolve(stale) = %v, want ErrStaleToken", err)
	}
	if !w.Busy() {
		t.Error("stale resolve must not release busy")
	}

	if err := w.Resolve(token, "reply", nil); err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if w.Busy() {
		t.Error("widget should be idle after Resolve")
	}
	if err := w.Resolve(token, "again", nil); !errors.Is(err, apierrors.ErrStaleToken) {
		t.Errorf("double Resolve() = %v, want ErrStaleToken", err)
	}

	next, _, err := w.Submit()
	if err != nil {
		t.Fatalf("Submit() after resolve returned error: %v", err)
	}
	if next == token {
		t.Error("tokens must not be reused")
	}
}

func TestConcurrentSubmitSingleRequest(t *testing.T) {
	gate := make(chan struct{})
	mock := &api.MockExchanger{Reply: "done", Gate: gate}
	w := NewWidget(assistantProfile(), mock)
	w.SetInput("race")

	const senders = 16
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- w.Send(context.Background())
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for mock.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(gate)
	wg.Wait()
	close(errs)

	var ok, busy, empty int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apierrors.ErrBusy):
			busy++
		case errors.Is(err, apierrors.ErrEmptyInput):
			empty++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if ok != 1 {
		t.Errorf("successful sends = %d, want 1", ok)
	}
	if ok+busy+empty != senders {
		t.Errorf("accounted for %d of %d senders", ok+busy+empty, senders)
	}
	if mock.Calls() != 1 {
		t.Errorf("exchanges = %d, want exactly 1", mock.Calls())
	}
	assertMessages(t, w.Messages(), []models.Message{
		{Role: models.RoleUser, Content: "race"},
		{Role: models.RoleBot, Content: "done"},
	})
}

func TestResetAndLastBotReply(t *testing.T) {
	w := NewWidget(assistantProfile(), &api.MockExchanger{Reply: "first reply"})
	if w.LastBotReply() != "" {
		t.Error("empty widget has no reply")
	}

	w.SetInput("one")
	if err := w.Send(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w.LastBotReply() != "first reply" {
		t.Errorf("LastBotReply() = %q", w.LastBotReply())
	}

	w.SetInput("draft")
	if err := w.Reset(); err != nil {
		t.Fatalf("Reset() returned error: %v", err)
	}
	if len(w.Messages()) != 0 || w.Input() != "" || w.LastError() != nil {
		t.Error("Reset() should clear the widget")
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	w := NewWidget(assistantProfile(), &api.MockExchanger{Reply: "x"})
	w.SetInput("hi")
	_ = w.Send(context.Background())

	msgs := w.Messages()
	msgs[0].Content = "mutated"
	if w.Messages()[0].Content != "hi" {
		t.Error("Messages() must return a copy")
	}
}
