package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/portfolio/service/internal/errs"
)

// Object is a stored blob held by MemoryStorage.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStorage keeps objects in a map. It is safe for concurrent use.
type MemoryStorage struct {
	mu         sync.RWMutex
	objects    map[string]Object
	publicBase string
	maxSize    int64
}

// NewMemoryStorage returns an empty MemoryStorage. maxSize <= 0 disables the size limit.
func NewMemoryStorage(publicBase string, maxSize int64) *MemoryStorage {
	return &MemoryStorage{
		objects:    map[string]Object{},
		publicBase: publicBase,
		maxSize:    maxSize,
	}
}

func (s *MemoryStorage) Put(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) (ObjectRef, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	if s.maxSize > 0 && int64(buf.Len()) > s.maxSize {
		return ObjectRef{}, fmt.Errorf("put object %q: %w", key, errs.ErrStorageQuota)
	}

	s.mu.Lock()
	s.objects[key] = Object{Data: buf.Bytes(), ContentType: contentType}
	s.mu.Unlock()

	return ObjectRef{Key: key, URL: s.PublicURL(key)}, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	return ok, nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

// Get returns the object stored under key.
func (s *MemoryStorage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o, ok
}

// Len returns the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ServeHTTP serves the object named by the request path. Mount it behind
// http.StripPrefix so the remaining path is the key.
func (s *MemoryStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o, ok := s.Get(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", o.ContentType)
	_, _ = w.Write(o.Data)
}
