package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/reciclaja/reciclaja-backend/pkg/config"
)

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// Sendgrid delivers mail through the Sendgrid v3 HTTP API.
type Sendgrid struct {
	cfg    config.MailConfig
	client *http.Client
}

// NewSendgrid builds a Sendgrid mailer from the mail configuration.
func NewSendgrid(cfg config.MailConfig) (*Sendgrid, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	return &Sendgrid{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// New returns the Sendgrid mailer when configured, otherwise Noop.
func New(cfg config.MailConfig) (Mailer, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	return NewSendgrid(cfg)
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

func (s *Sendgrid) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	payload := sendgridPayload{
		Personalizations: []sendgridPersonalization{
			{To: []sendgridAddress{{Email: msg.ToEmail, Name: msg.ToName}}},
		},
		From:    sendgridAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		Subject: msg.Subject,
		Content: []sendgridContent{{Type: "text/html", Value: msg.HTML}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridSendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SendgridAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}
