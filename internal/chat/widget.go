// Package chat implements the chat widget state machine: an input buffer, an
// append-only transcript and a single in-flight exchange with a backend.
package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
)

// Exchanger performs one request/reply round trip with a backend
type Exchanger interface {
	Exchange(ctx context.Context, req models.ChatRequest) (string, error)
}

// Profile configures a widget variant
type Profile = models.Profile

// Token identifies one in-flight request. The zero token is never issued.
type Token uint64

// Widget is one chat surface configured by a profile. It allows at most one
// request in flight; Submit claims the slot and Resolve releases it.
type Widget struct {
	profile   Profile
	exchanger Exchanger
	logger    *observability.Logger

	busy      atomic.Bool
	lastToken atomic.Uint64

	mu       sync.Mutex
	input    string
	messages []models.Message
	inflight Token
	lastErr  error
}

// WidgetOption configures a widget
type WidgetOption func(*Widget)

// WithLogger sets the logger used for exchange failures
func WithLogger(logger *observability.Logger) WidgetOption {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWidget creates a widget for profile that sends through exchanger
func NewWidget(profile Profile, exchanger Exchanger, opts ...WidgetOption) *Widget {
	w := &Widget{
		profile:   profile,
		exchanger: exchanger,
		logger:    observability.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithProfile(profile.Name, profile.Endpoint)
	return w
}

// Profile returns the widget configuration
func (w *Widget) Profile() Profile {
	return w.profile
}

// SetInput replaces the pending input text
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	w.mu.Unlock()
}

// Input returns the pending input text
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Busy reports whether a request is in flight
func (w *Widget) Busy() bool {
	return w.busy.Load()
}

// Messages returns a copy of the transcript in send order
func (w *Widget) Messages() []models.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// LastError returns the error behind the most recent fallback reply, or nil
// when the most recent exchange succeeded.
func (w *Widget) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Submit claims the in-flight slot for the pending input. On success the user
// message is appended, the input is cleared and the text to send is returned
// verbatim. Blank input yields ErrEmptyInput and a busy widget yields ErrBusy;
// neither changes any state.
func (w *Widget) Submit() (Token, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	text := w.input
	if strings.TrimSpace(text) == "" {
		return 0, "", apierrors.ErrEmptyInput
	}

	if !w.busy.CompareAndSwap(false, true) {
		return 0, "", apierrors.ErrBusy
	}

	token := Token(w.lastToken.Add(1))
	w.inflight = token
	w.messages = append(w.messages, models.UserMessage(text))
	w.input = ""

	return token, text, nil
}

// Resolve completes the request identified by token. A nil err appends reply
// as the bot message; any error appends the fixed fallback instead. Tokens that
// are not the current in-flight request return ErrStaleToken.
func (w *Widget) Resolve(token Token, reply string, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if token == 0 || token != w.inflight || !w.busy.Load() {
		return apierrors.ErrStaleToken
	}

	if err != nil {
		w.lastErr = err
		w.messages = append(w.messages, models.BotMessage(models.FallbackReply))
		w.logger.LogExchangeFailure(apierrors.Kind(err), apierrors.GetHTTPStatus(err), err)
	} else {
		w.lastErr = nil
		w.messages = append(w.messages, models.BotMessage(reply))
	}

	w.inflight = 0
	w.busy.Store(false)
	return nil
}

// Request builds the outbound body for text under the widget profile
func (w *Widget) Request(text string) models.ChatRequest {
	return w.profile.Request(text)
}

// Exchange runs the transport for one submitted text without touching widget
// state. The TUI calls it from a command goroutine between Submit and Resolve.
func (w *Widget) Exchange(ctx context.Context, text string) (string, error) {
	return w.exchanger.Exchange(ctx, w.Request(text))
}

// Send submits the pending input, performs the exchange and resolves it. The
// transcript always ends with either the reply or the fallback; the exchange
// error, if any, is also returned.
func (w *Widget) Send(ctx context.Context) error {
	token, text, err := w.Submit()
	if err != nil {
		return err
	}

	reply, xerr := w.Exchange(ctx, text)
	if err := w.Resolve(token, reply, xerr); err != nil {
		return err
	}
	return xerr
}

// Reset clears the transcript, input and last error. It refuses while busy.
func (w *Widget) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy.Load() {
		return apierrors.ErrBusy
	}

	w.messages = nil
	w.input = ""
	w.lastErr = nil
	return nil
}

// LastBotReply returns the content of the last bot message, or ""
func (w *Widget) LastBotReply() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.messages) - 1; i >= 0; i-- {
		if w.messages[i].Role == models.RoleBot {
			return w.messages[i].Content
		}
	}
	return ""
}
