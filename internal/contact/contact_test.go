package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/portfolio/service/internal/errs"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendComposesMessage(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewService(mailer, "owner@example.com")

	if err := svc.Send(context.Background(), " Jane ", "jane@example.com", "Hello there"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(mailer.sent))
	}

	msg := mailer.sent[0]
	if len(msg.To) != 1 || msg.To[0] != "owner@example.com" {
		t.Errorf("unexpected recipients %v", msg.To)
	}
	if msg.Subject != Subject || msg.ReplyTo != "jane@example.com" {
		t.Errorf("unexpected headers %+v", msg)
	}
	want := "Name: Jane\nEmail: jane@example.com\n\nMessage:\nHello there"
	if msg.Text != want {
		t.Errorf("unexpected body:\n%q\nwant\n%q", msg.Text, want)
	}
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		email   string
		message string
		fields  []string
	}{
		{"message of 1000 chars", "Jane", "jane@example.com", strings.Repeat("a", 1000), nil},
		{"multibyte message of 1000 chars", "Jane", "jane@example.com", strings.Repeat("é", 1000), nil},
		{"message of 1001 chars", "Jane", "jane@example.com", strings.Repeat("a", 1001), []string{"message"}},
		{"bad email", "Jane", "not-an-email", "hi", []string{"email"}},
		{"name too long", strings.Repeat("n", 101), "jane@example.com", "hi", []string{"name"}},
		{"all empty", "", "", "   ", []string{"name", "email", "message"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &recordingMailer{}
			err := NewService(mailer, "owner@example.com").Send(context.Background(), tt.sender, tt.email, tt.message)

			if tt.fields == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			v, ok := errs.AsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, f := range tt.fields {
				if v.Fields[f] == "" {
					t.Errorf("expected error for %q, got %v", f, v.Fields)
				}
			}
			if len(mailer.sent) != 0 {
				t.Error("expected nothing sent")
			}
		})
	}
}

func TestSendDeliveryFailure(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	err := NewService(mailer, "owner@example.com").Send(context.Background(), "Jane", "jane@example.com", "hi")
	if !errors.Is(err, errs.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestResendMailer(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			http.Error(w, "unexpected route", http.StatusNotFound)
			return
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "Site <noreply@example.com>", srv.Client(), zerolog.Nop())
	err := m.Send(context.Background(), Message{
		To:      []string{"owner@example.com"},
		ReplyTo: "jane@example.com",
		Subject: Subject,
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if auth != "Bearer re_test" {
		t.Errorf("unexpected Authorization header %q", auth)
	}
	if got.From != "Site <noreply@example.com>" || got.ReplyTo != "jane@example.com" || got.Text != "hello" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestResendMailerAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "bad", srv.Client(), zerolog.Nop())
	err := m.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: Subject, Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestHandler(t *testing.T) {
	mailer := &recordingMailer{}
	r := chi.NewRouter()
	r.Route("/contact", NewHandler(NewService(mailer, "owner@example.com")).Routes)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"name":"Jane","email":"jane@example.com","message":"Hi"}`, http.StatusOK},
		{"invalid", `{"name":"","email":"x","message":""}`, http.StatusUnprocessableEntity},
		{"malformed", `{"name":`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	mailer.err = errors.New("down")
	req := httptest.NewRequest(http.MethodPost, "/contact",
		strings.NewReader(`{"name":"Jane","email":"jane@example.com","message":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("delivery failure: expected 500, got %d", rec.Code)
	}
}
