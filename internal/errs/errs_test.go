package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorIs(t *testing.T) {
	v := NewValidationError()
	v.Add("name", "is required")

	wrapped := fmt.Errorf("create category: %w", v)
	if !errors.Is(wrapped, ErrValidation) {
		t.Fatal("expected wrapped validation error to match ErrValidation")
	}

	got, ok := AsValidation(wrapped)
	if !ok {
		t.Fatal("AsValidation returned false")
	}
	if got.Fields["name"] != "is required" {
		t.Errorf("unexpected field message %q", got.Fields["name"])
	}
}

func TestValidationErrorFirstMessageWins(t *testing.T) {
	v := NewValidationError()
	v.Add("title", "is required")
	v.Add("title", "is too long")

	if v.Fields["title"] != "is required" {
		t.Errorf("expected first message to be kept, got %q", v.Fields["title"])
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	v := NewValidationError()
	if v.OrNil() != nil {
		t.Fatal("empty validation error should be nil")
	}

	other := Invalid("email", "must be a valid email address")
	v.Merge(other)
	if v.OrNil() == nil {
		t.Fatal("expected non-nil error after merge")
	}
	if got := v.Error(); got != "validation failed: email: must be a valid email address" {
		t.Errorf("unexpected message %q", got)
	}
}
