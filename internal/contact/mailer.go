// Package contact relays contact-form submissions to the site owner by mail.
package contact

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is a plain-text mail.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Mailer delivers a single message. Implementations make one attempt.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer returns a Mailer for local development.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Strs("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("mail not sent, log driver")
	return nil
}
