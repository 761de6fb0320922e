package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/portfolio/service/internal/errs"
)

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "objects")

	s, err := NewLocalStorage(root, "http://localhost:8080/storage/")
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	key := "project/cover.jpg"
	ref, err := s.Put(ctx, key, strings.NewReader("jpeg-bytes"), 10, "image/jpeg")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ref.Key != key {
		t.Errorf("expected key %q, got %q", key, ref.Key)
	}
	if ref.URL != "http://localhost:8080/storage/project/cover.jpg" {
		t.Errorf("unexpected url %q", ref.URL)
	}

	data, err := os.ReadFile(filepath.Join(root, "project", "cover.jpg"))
	if err != nil {
		t.Fatalf("object not written: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected content %q", data)
	}

	ok, err := s.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}

	ok, err = s.Exists(ctx, key)
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestLocalStorageSizeMismatch(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	_, err = s.Put(context.Background(), "project/short.png", strings.NewReader("abc"), 10, "image/png")
	if !errors.Is(err, errs.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if ok, _ := s.Exists(context.Background(), "project/short.png"); ok {
		t.Error("partial object must not be left behind")
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	_, err = s.Put(context.Background(), "../escape.png", strings.NewReader("x"), 1, "image/png")
	if !errors.Is(err, errs.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
