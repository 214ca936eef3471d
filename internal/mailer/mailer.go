package mailer

import "context"

// Message is a single outbound transactional email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

// Mailer delivers transactional email. Callers treat delivery as
// best-effort: a failed send never rolls back the workflow that
// triggered it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Noop discards every message. Used when no Sendgrid key is configured
// and in tests.
type Noop struct{}

func (Noop) Send(ctx context.Context, msg Message) error { return nil }
