// Package storage defines the object storage gateway used for project images.
// One backend is selected at startup (local disk, S3-compatible via MinIO,
// the Supabase storage API, or in-memory) and injected into the stores.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/portfolio/service/internal/errs"
)

// ObjectRef pairs a storage key with its browser-accessible URL.
// Only the key is persisted; the URL is derived on read.
type ObjectRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Storage is the interface for uploading and removing objects.
type Storage interface {
	// Put streams data to the store under the given key. size must be the
	// exact byte count.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (ObjectRef, error)
	// Delete removes an object identified by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL constructs the browser-accessible URL for a given key. It never performs I/O.
	PublicURL(key string) string
}

// NewKey returns "<namespace>/<uuid><ext>". ext should include the leading dot.
func NewKey(namespace, ext string) string {
	return path.Join(namespace, uuid.NewString()+ext)
}

// ValidateKey rejects keys that could escape the namespace or the local root.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty", errs.ErrInvalidKey)
	case strings.HasPrefix(key, "/"), strings.Contains(key, "\\"):
		return fmt.Errorf("%w: %q", errs.ErrInvalidKey, key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", errs.ErrInvalidKey, key)
		}
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
