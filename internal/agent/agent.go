// Package agent implements the email-capable chat agent behind /api/agent.
package agent

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/llm"
	"github.com/diogo/simchat/internal/observability"
)

// SystemPrompt primes the model for email requests
const SystemPrompt = "You are a helpful AI assistant that can also send emails when asked. " +
	"If the user provides an email request, extract the recipient (to), subject, " +
	"and body. You do not need to explain how to send the email manually."

var errNoMailer = errors.New("no mailer configured")

// Agent answers a prompt and, when it asks for one, sends an email
type Agent struct {
	completer llm.Completer
	mailer    Mailer
	logger    *observability.Logger
}

// New creates an agent. mailer may be nil, in which case email requests fail
// with a tool result instead of an error.
func New(completer llm.Completer, mailer Mailer, logger *observability.Logger) *Agent {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Agent{completer: completer, mailer: mailer, logger: logger}
}

// Result is the outcome of one agent run
type Result struct {
	Reply  string
	Intent bool
	Email  *Email
}

// Run always consults the model. When the input carries an email intent the
// reply is the mail tool result instead of the model text.
func (a *Agent) Run(ctx context.Context, model, input string) (Result, error) {
	intent := DetectIntent(input)

	messages := []llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: input},
	}

	reply, err := a.completer.Complete(ctx, model, messages)
	if err != nil {
		return Result{Intent: intent}, err
	}

	if !intent {
		return Result{Reply: reply}, nil
	}

	email := ExtractEmail(input)
	a.logger.Info("email intent detected", "to", email.To, "subject", email.Subject)

	return Result{
		Reply:  a.sendEmail(ctx, email),
		Intent: true,
		Email:  &email,
	}, nil
}

func (a *Agent) sendEmail(ctx context.Context, email Email) string {
	if a.mailer == nil {
		observability.RecordEmail("unconfigured")
		return fmt.Sprintf("Failed to send email: %v", errNoMailer)
	}

	id, err := a.mailer.Send(ctx, email)
	if err != nil {
		observability.RecordEmail(apierrors.Kind(err))
		a.logger.Warn("failed to send email", "to", email.To, "error", err)
		return fmt.Sprintf("Failed to send email: %v", err)
	}

	observability.RecordEmail("sent")
	return fmt.Sprintf("Email sent to %s (ID: %s)", email.To, id)
}
