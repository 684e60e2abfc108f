// Package mailer delivers transactional email through an HTTP JSON send API
// (Mailtrap's /api/send shape).
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"partnerdash/internal/platform/config"
)

// ErrNotConfigured is returned by Send when no API key is set.
var ErrNotConfigured = errors.New("mailer not configured")

// Message is one outgoing email with a plain-text and an HTML body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender is implemented by every delivery backend.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// HTTPDoer is the part of *http.Client the sender needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html,omitempty"`
}

// HTTPSender posts messages to the configured send API with a Bearer key.
type HTTPSender struct {
	apiURL string
	apiKey string
	from   address
	client HTTPDoer
}

type Option func(*HTTPSender)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(client HTTPDoer) Option {
	return func(s *HTTPSender) {
		s.client = client
	}
}

func New(cfg config.MailerConfig, opts ...Option) *HTTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &HTTPSender{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   address{Email: cfg.FromEmail, Name: cfg.FromName},
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSender) Configured() bool {
	return s.apiKey != "" && s.apiURL != ""
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []address{{Email: msg.To}},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send email: provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
