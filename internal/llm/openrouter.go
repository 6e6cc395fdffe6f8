// Package llm talks to the upstream completion API used by the backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

const completionsEndpoint = "chat/completions"

// Message is one turn sent upstream
type Message struct {
	Role    string
	Content string
}

// Completer produces one completion for a list of messages
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// CompleterFunc adapts a function to Completer
type CompleterFunc func(ctx context.Context, model string, messages []Message) (string, error)

// Complete calls f
func (f CompleterFunc) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	return f(ctx, model, messages)
}

// OpenRouter is a Completer backed by the OpenAI-compatible OpenRouter API
type OpenRouter struct {
	client       openai.Client
	baseURL      string
	defaultModel string
	systemPrompt string
}

// Option configures the OpenRouter completer
type Option func(*openRouterOptions)

type openRouterOptions struct {
	timeout      time.Duration
	defaultModel string
	systemPrompt string
	requestOpts  []option.RequestOption
}

// WithTimeout bounds every upstream call
func WithTimeout(d time.Duration) Option {
	return func(o *openRouterOptions) { o.timeout = d }
}

// WithDefaultModel sets the model used when a request names none
func WithDefaultModel(model string) Option {
	return func(o *openRouterOptions) { o.defaultModel = model }
}

// WithSystemPrompt replaces the system prompt
func WithSystemPrompt(prompt string) Option {
	return func(o *openRouterOptions) { o.systemPrompt = prompt }
}

// WithRequestOptions passes extra options to the SDK client
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *openRouterOptions) { o.requestOpts = append(o.requestOpts, opts...) }
}

// NewOpenRouter creates a completer. The key is required.
func NewOpenRouter(baseURL, apiKey string, opts ...Option) (*OpenRouter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = models.OpenRouterBaseURL
	}

	o := openRouterOptions{
		timeout:      120 * time.Second,
		defaultModel: models.DefaultModel,
		systemPrompt: models.SystemPrompt,
	}
	for _, opt := range opts {
		opt(&o)
	}

	requestOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(o.timeout),
	}
	requestOpts = append(requestOpts, o.requestOpts...)

	return &OpenRouter{
		client:       openai.NewClient(requestOpts...),
		baseURL:      baseURL,
		defaultModel: o.defaultModel,
		systemPrompt: o.systemPrompt,
	}, nil
}

// Complete sends the system prompt followed by messages and returns the first
// choice. Upstream HTTP failures come back as *errors.APIError.
func (p *OpenRouter) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Messages: p.convert(messages),
		Model:    openai.ChatModel(model),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apierrors.NewParseError("completion has no choices", "choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenRouter) convert(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	// Callers that bring their own system message replace the default one
	if p.systemPrompt != "" && (len(messages) == 0 || messages[0].Role != "system") {
		out = append(out, openai.SystemMessage(p.systemPrompt))
	}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			out = append(out, openai.SystemMessage(msg.Content))
		case "assistant", string(models.RoleBot):
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func (p *OpenRouter) mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		return apierrors.NewAPIErrorWithBody(apiErr.StatusCode, completionsEndpoint, "upstream completion failed", body)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.NewTimeoutError("upstream completion")
	}
	return apierrors.NewNetworkErrorWithEndpoint("upstream completion", p.baseURL, err)
}

// UserPrompt wraps text as a single user message
func UserPrompt(text string) []Message {
	return []Message{{Role: "user", Content: text}}
}

// DescribeError renders an upstream failure the way the backend reports it
func DescribeError(err error) string {
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		return fmt.Sprintf("OpenRouter error: %d - %s", status, apierrors.GetResponseBody(err))
	}
	return fmt.Sprintf("OpenRouter error: %v", err)
}
