package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/portfolio/service/internal/errs"
)

// LocalStorage keeps objects as files below a root directory.
// The router serves Root so that PublicURL resolves.
type LocalStorage struct {
	root       string
	publicBase string
}

// NewLocalStorage creates root if needed and returns a LocalStorage.
func NewLocalStorage(root, publicBase string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}
	return &LocalStorage{root: root, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Root returns the directory objects are written to.
func (s *LocalStorage) Root() string {
	return s.root
}

// Put writes reader to a temporary file and renames it into place, so a
// reader of key never observes a partial object.
func (s *LocalStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, _ string) (ObjectRef, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}

	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("wrote %d bytes, expected %d", n, size)
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	return ObjectRef{Key: key, URL: s.PublicURL(key)}, nil
}

// Delete removes the file for key.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	return nil
}

// Exists reports whether a regular file is stored for key.
func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	info, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	return info.Mode().IsRegular(), nil
}

// PublicURL returns publicBase + "/" + key.
func (s *LocalStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
