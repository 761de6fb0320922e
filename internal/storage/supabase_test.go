package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/portfolio/service/internal/errs"
)

// fakeSupabase mimics the object endpoints of the Supabase storage API.
type fakeSupabase struct {
	mu      sync.Mutex
	objects map[string]string
	status  int // forced status for every request when non-zero
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer service-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":"forced"}`))
		return
	}

	const prefix = "/storage/v1/object/media/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, prefix)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = string(b)
		_, _ = w.Write([]byte(`{"Key":"media/` + key + `"}`))
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusBadRequest)
		}
	case http.MethodDelete:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"not_found"}`))
			return
		}
		delete(f.objects, key)
		_, _ = w.Write([]byte(`{"message":"Successfully deleted"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newSupabaseFixture(t *testing.T) (*SupabaseStorage, *fakeSupabase) {
	t.Helper()
	fake := &fakeSupabase{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewSupabaseStorage(srv.URL+"/", "service-key", "media", srv.Client()), fake
}

func TestSupabaseStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s, fake := newSupabaseFixture(t)

	ref, err := s.Put(ctx, "project/x.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !strings.HasSuffix(ref.URL, "/storage/v1/object/public/media/project/x.png") {
		t.Errorf("unexpected url %q", ref.URL)
	}
	if fake.objects["project/x.png"] != "png" {
		t.Errorf("object not stored: %v", fake.objects)
	}

	ok, err := s.Exists(ctx, "project/x.png")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	if err := s.Delete(ctx, "project/x.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "project/x.png"); err != nil {
		t.Fatalf("second Delete should succeed, got %v", err)
	}

	ok, err = s.Exists(ctx, "project/x.png")
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestSupabaseStorageErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"too large", http.StatusRequestEntityTooLarge, errs.ErrStorageQuota},
		{"unauthorized", http.StatusUnauthorized, errs.ErrStorageUnavailable},
		{"server error", http.StatusInternalServerError, errs.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fake := newSupabaseFixture(t)
			fake.status = tt.status

			_, err := s.Put(ctx, "project/x.png", strings.NewReader("png"), 3, "image/png")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSupabaseStorageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s := NewSupabaseStorage(srv.URL, "service-key", "media", nil)
	_, err := s.Put(context.Background(), "project/x.png", strings.NewReader("png"), 3, "image/png")
	if !errors.Is(err, errs.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
