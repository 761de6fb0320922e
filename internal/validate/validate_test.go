package validate

import (
	"strings"
	"testing"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=5"`
	Email  string  `json:"email" validate:"required,email"`
	Kind   string  `json:"kind" validate:"required,oneof=a b"`
	Link   string  `json:"link" validate:"omitempty,url"`
	Tags   []int64 `json:"tags" validate:"required,min=1,dive,gt=0"`
	Hidden string  `json:"-"`
}

func TestStructCollectsEveryField(t *testing.T) {
	got := Struct(sample{Name: strings.Repeat("x", 6), Email: "nope", Kind: "c", Link: "not a url"})
	if got == nil {
		t.Fatal("expected validation failure")
	}

	want := map[string]string{
		"name":  "must be at most 5 characters",
		"email": "must be a valid email address",
		"kind":  "must be one of: a, b",
		"link":  "must be a valid URL",
		"tags":  "is required",
	}
	for field, msg := range want {
		if got.Fields[field] != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got.Fields[field])
		}
	}
	if len(got.Fields) != len(want) {
		t.Errorf("expected %d fields, got %v", len(want), got.Fields)
	}
}

func TestStructValid(t *testing.T) {
	s := sample{Name: "ok", Email: "a@b.co", Kind: "a", Link: "https://example.com", Tags: []int64{1}}
	if got := Struct(s); got != nil {
		t.Fatalf("expected no error, got %v", got)
	}
}
