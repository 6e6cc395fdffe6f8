// Package api implements the chat exchange transport used by the widget.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

// maxReplySize bounds how much of a backend reply is read into memory
const maxReplySize = 1 << 20

// Doer is the part of tls_client.HttpClient the chat client needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatClient performs one POST/reply exchange against a backend chat endpoint
type ChatClient struct {
	endpoint   string
	httpClient Doer
	timeout    time.Duration
}

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithTimeout bounds a single exchange
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the transport, mostly for tests
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = doer
	}
}

// NewChatClient creates a client bound to endpoint
func NewChatClient(endpoint string, opts ...ClientOption) (*ChatClient, error) {
	if endpoint == "" {
		endpoint = models.DefaultChatEndpoint
	}

	client := &ChatClient{
		endpoint: endpoint,
		timeout:  120 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the URL the client posts to
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// Exchange posts req and returns the reply text. Every failure is returned as
// one of the typed errors in internal/errors; the caller decides what to show.
func (c *ChatClient) Exchange(ctx context.Context, req models.ChatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apierrors.NewTimeoutError(fmt.Sprintf("chat exchange with %s exceeded %s", c.endpoint, c.timeout))
		}
		return "", apierrors.NewNetworkErrorWithEndpoint("chat exchange", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("read reply", c.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, "chat exchange failed", string(body))
	}

	return parseReply(body)
}

func parseReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("reply body is not valid JSON", "")
	}

	reply := gjson.GetBytes(body, "reply")
	if !reply.Exists() {
		return "", apierrors.NewParseError("reply is missing", "reply")
	}
	if reply.Type != gjson.String {
		return "", apierrors.NewParseError(fmt.Sprintf("reply is %s, not a string", reply.Type), "reply")
	}

	return reply.String(), nil
}
