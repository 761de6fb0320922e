package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/portfolio/service/internal/errs"
	"github.com/portfolio/service/internal/validate"
)

// Subject is used for every relayed submission.
const Subject = "Contact Form Submission"

// Submission is a contact-form post.
type Submission struct {
	Name    string `json:"name" validate:"required,max=100" example:"Jane Doe"`
	Email   string `json:"email" validate:"required,email" example:"jane@example.com"`
	Message string `json:"message" validate:"required,max=1000" example:"Hello!"`
}

// Service validates submissions and hands them to a Mailer.
type Service struct {
	mailer    Mailer
	recipient string
}

// NewService creates a contact Service delivering to recipient.
func NewService(mailer Mailer, recipient string) *Service {
	return &Service{mailer: mailer, recipient: recipient}
}

// Send relays one submission. A mailer failure is reported as
// errs.ErrDeliveryFailed; nothing is retried.
func (s *Service) Send(ctx context.Context, name, email, message string) error {
	sub := Submission{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}
	if v := validate.Struct(sub); v != nil {
		return v
	}

	msg := Message{
		To:      []string{s.recipient},
		ReplyTo: sub.Email,
		Subject: Subject,
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", sub.Name, sub.Email, sub.Message),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrDeliveryFailed, err)
	}
	return nil
}
