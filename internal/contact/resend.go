package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ResendBaseURL is the production Resend API.
const ResendBaseURL = "https://api.resend.com"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
}

// ResendMailer sends mail through the Resend HTTP API.
type ResendMailer struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
	logger  zerolog.Logger
}

// NewResendMailer returns a ResendMailer. An empty baseURL means ResendBaseURL
// and a nil client means http.DefaultClient.
func NewResendMailer(baseURL, apiKey, from string, client *http.Client, logger zerolog.Logger) *ResendMailer {
	if baseURL == "" {
		baseURL = ResendBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendMailer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		client:  client,
		logger:  logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send resend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read resend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr resendError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(body))
	}

	var sent resendResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		m.logger.Warn().Err(err).Msg("could not parse resend response, mail was accepted")
		return nil
	}
	m.logger.Info().Str("email_id", sent.ID).Msg("mail sent via resend")
	return nil
}
