package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/tidwall/gjson"

	"github.com/diogo/simchat/internal/api"
	apierrors "github.com/diogo/simchat/internal/errors"
)

// Mailer delivers an email and returns the provider message id
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// HTTPMailer posts emails to a relay such as a Gmail MCP bridge
type HTTPMailer struct {
	url        string
	httpClient api.Doer
}

// NewHTTPMailer creates a mailer for the relay at url. A nil doer gets a
// default tls-client transport.
func NewHTTPMailer(url string, doer api.Doer, timeout time.Duration) (*HTTPMailer, error) {
	if url == "" {
		return nil, fmt.Errorf("mailer url is required")
	}
	if doer == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(),
			tls_client.WithTimeoutSeconds(int(timeout/time.Second)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		doer = client
	}
	return &HTTPMailer{url: url, httpClient: doer}, nil
}

// Send posts {to, subject, body} and reads {id}. A 403 means the relay has no
// credentials for the user.
func (m *HTTPMailer) Send(ctx context.Context, email Email) (string, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("send email", m.url, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("read mailer reply", m.url, err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return "", apierrors.ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = "mailer relay failed"
		}
		return "", apierrors.NewAPIErrorWithBody(resp.StatusCode, m.url, msg, string(body))
	}

	id := gjson.GetBytes(body, "id")
	if !id.Exists() {
		return "", apierrors.NewParseError("mailer reply has no id", "id")
	}
	return id.String(), nil
}
