package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/portfolio/service/internal/errs"
)

// DefaultTimeout bounds a single gateway call when none is configured.
const DefaultTimeout = 30 * time.Second

type timeoutStorage struct {
	next    Storage
	timeout time.Duration
}

// WithTimeout bounds every Put, Delete and Exists call on next by d.
// An expired deadline is reported as errs.ErrStorageUnavailable.
func WithTimeout(next Storage, d time.Duration) Storage {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutStorage{next: next, timeout: d}
}

func (s *timeoutStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (ObjectRef, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ref, err := s.next.Put(ctx, key, reader, size, contentType)
	return ref, s.wrap(ctx, err)
}

func (s *timeoutStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.wrap(ctx, s.next.Delete(ctx, key))
}

func (s *timeoutStorage) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.next.Exists(ctx, key)
	return ok, s.wrap(ctx, err)
}

func (s *timeoutStorage) PublicURL(key string) string {
	return s.next.PublicURL(key)
}

func (s *timeoutStorage) wrap(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, errs.ErrStorageUnavailable) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out after %s: %v", errs.ErrStorageUnavailable, s.timeout, err)
	}
	return err
}
