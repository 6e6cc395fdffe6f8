package agent

import (
	"regexp"
	"strings"
)

// Defaults used when a request leaves a field out
const (
	DefaultRecipient = "your-email@example.com"
	DefaultSubject   = "Subject from AI"
)

var (
	intentKeywords = []string{"send email", "send an email", "email"}

	recipientPattern = regexp.MustCompile(`[\w\.-]+@[\w\.-]+`)
	subjectPattern   = regexp.MustCompile(`(?i)subject ["“](.+?)["”]`)
	bodyPattern      = regexp.MustCompile(`(?i)body ["“](.+?)["”]`)
)

// Email is a message the agent can hand to a Mailer
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DetectIntent reports whether text asks for an email to be sent
func DetectIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range intentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractEmail pulls the recipient, subject and body out of free text.
// Missing parts fall back to DefaultRecipient, DefaultSubject and the whole text.
func ExtractEmail(text string) Email {
	email := Email{
		To:      DefaultRecipient,
		Subject: DefaultSubject,
		Body:    text,
	}

	if m := recipientPattern.FindString(text); m != "" {
		email.To = m
	}
	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		email.Subject = m[1]
	}
	if m := bodyPattern.FindStringSubmatch(text); m != nil {
		email.Body = m[1]
	}

	return email
}
