package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/llm"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Please send email to bob@example.com", true},
		{"SEND AN EMAIL now", true},
		{"what is my email address?", true},
		{"Emailing is fun", true},
		{"hello there", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := DetectIntent(tt.input); got != tt.want {
			t.Errorf("DetectIntent(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Email
	}{
		{
			name:  "all parts straight quotes",
			input: `send email to jane.doe@example.com subject "Lunch" body "See you at noon"`,
			want:  Email{To: "jane.doe@example.com", Subject: "Lunch", Body: "See you at noon"},
		},
		{
			name:  "curly quotes and case",
			input: "Email bob@corp.io SUBJECT “Q3 plan” Body “Draft attached”",
			want:  Email{To: "bob@corp.io", Subject: "Q3 plan", Body: "Draft attached"},
		},
		{
			name:  "defaults",
			input: "send an email please",
			want:  Email{To: DefaultRecipient, Subject: DefaultSubject, Body: "send an email please"},
		},
		{
			name:  "first address wins",
			input: `email a@x.com and b@y.com body "hi"`,
			want:  Email{To: "a@x.com", Subject: DefaultSubject, Body: "hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEmail(tt.input); got != tt.want {
				t.Errorf("ExtractEmail() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type fakeMailer struct {
	id   string
	err  error
	sent []Email
}

func (f *fakeMailer) Send(_ context.Context, email Email) (string, error) {
	f.sent = append(f.sent, email)
	return f.id, f.err
}

func staticCompleter(reply string, err error, seen *[]llm.Message) llm.Completer {
	return llm.CompleterFunc(func(_ context.Context, _ string, messages []llm.Message) (string, error) {
		if seen != nil {
			*seen = messages
		}
		return reply, err
	})
}

func TestRunWithoutIntent(t *testing.T) {
	var seen []llm.Message
	mailer := &fakeMailer{id: "m1"}
	a := New(staticCompleter("Sure thing", nil, &seen), mailer, nil)

	res, err := a.Run(context.Background(), "", "tell me a joke")
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Reply != "Sure thing" || res.Intent || res.Email != nil {
		t.Errorf("Run() = %+v", res)
	}
	if len(mailer.sent) != 0 {
		t.Error("mailer should not be called without intent")
	}
	if len(seen) != 2 || seen[0].Role != "system" || seen[0].Content != SystemPrompt || seen[1].Content != "tell me a joke" {
		t.Errorf("completer saw %+v", seen)
	}
}

func TestRunSendsEmail(t *testing.T) {
	mailer := &fakeMailer{id: "msg-42"}
	a := New(staticCompleter("ok", nil, nil), mailer, nil)

	res, err := a.Run(context.Background(), "", `send email to amy@example.com subject "Hi" body "Hello Amy"`)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Reply != "Email sent to amy@example.com (ID: msg-42)" {
		t.Errorf("Reply = %q", res.Reply)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Body != "Hello Amy" {
		t.Errorf("sent = %+v", mailer.sent)
	}
}

func TestRunMailerFailure(t *testing.T) {
	a := New(staticCompleter("ok", nil, nil), &fakeMailer{err: apierrors.ErrNotAuthenticated}, nil)

	res, err := a.Run(context.Background(), "", "send email to x@y.z")
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Reply != "Failed to send email: user not authenticated" {
		t.Errorf("Reply = %q", res.Reply)
	}

	noMailer := New(staticCompleter("ok", nil, nil), nil, nil)
	res, _ = noMailer.Run(context.Background(), "", "email me")
	if !strings.HasPrefix(res.Reply, "Failed to send email: ") {
		t.Errorf("Reply = %q", res.Reply)
	}
}

func TestRunCompleterError(t *testing.T) {
	upstream := apierrors.NewAPIError(500, "chat/completions", "boom")
	mailer := &fakeMailer{id: "x"}
	a := New(staticCompleter("", upstream, nil), mailer, nil)

	if _, err := a.Run(context.Background(), "", "send email to a@b.c"); !errors.Is(err, upstream) {
		t.Errorf("Run() error = %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Error("no email should be sent when the model call fails")
	}
}

type fakeDoer struct {
	status int
	body   string
	err    error
	got    string
}

func (f *fakeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	data, _ := io.ReadAll(req.Body)
	f.got = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &fhttp.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(fhttp.Header),
	}, nil
}

func TestHTTPMailer(t *testing.T) {
	email := Email{To: "a@b.c", Subject: "s", Body: "b"}

	tests := []struct {
		name    string
		doer    *fakeDoer
		wantID  string
		wantErr func(error) bool
	}{
		{"success", &fakeDoer{status: 200, body: `{"message":"Email sent!","id":"abc"}`}, "abc", nil},
		{"not authenticated", &fakeDoer{status: 403, body: `{"error":"User not authenticated"}`}, "", func(err error) bool {
			return errors.Is(err, apierrors.ErrNotAuthenticated)
		}},
		{"server error", &fakeDoer{status: 500, body: `{"error":"quota"}`}, "", apierrors.IsAPIError},
		{"missing id", &fakeDoer{status: 200, body: `{}`}, "", apierrors.IsParseError},
		{"transport", &fakeDoer{err: errors.New("refused")}, "", apierrors.IsNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewHTTPMailer("http://relay/mcp/gmail/send", tt.doer, 0)
			if err != nil {
				t.Fatal(err)
			}

			id, err := m.Send(context.Background(), email)
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Errorf("Send() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Send() returned error: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
			if tt.doer.got != `{"to":"a@b.c","subject":"s","body":"b"}` {
				t.Errorf("payload = %s", tt.doer.got)
			}
		})
	}

	if _, err := NewHTTPMailer("", nil, 0); err == nil {
		t.Error("expected error for empty url")
	}
}
