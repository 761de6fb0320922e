package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/portfolio/service/internal/errs"
)

// SupabaseStorage talks to the Supabase storage REST API with a service key.
//
//	PUT    {base}/storage/v1/object/{bucket}/{key}
//	HEAD   {base}/storage/v1/object/{bucket}/{key}
//	DELETE {base}/storage/v1/object/{bucket}/{key}
//	public {base}/storage/v1/object/public/{bucket}/{key}
type SupabaseStorage struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
}

// NewSupabaseStorage returns a SupabaseStorage. A nil client means http.DefaultClient.
func NewSupabaseStorage(baseURL, serviceKey, bucket string, client *http.Client) *SupabaseStorage {
	if client == nil {
		client = http.DefaultClient
	}
	return &SupabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		bucket:  bucket,
		client:  client,
	}
}

// Put uploads reader with x-upsert so a retried request with the same key succeeds.
func (s *SupabaseStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (ObjectRef, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectRef{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(key), reader)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w", key, err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.do(req)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ObjectRef{Key: key, URL: s.PublicURL(key)}, nil
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return ObjectRef{}, fmt.Errorf("put object %q: %w: %s", key, errs.ErrStorageQuota, readBody(resp))
	default:
		return ObjectRef{}, fmt.Errorf("put object %q: %w: status %d: %s", key, errs.ErrStorageUnavailable, resp.StatusCode, readBody(resp))
	}
}

// Delete removes key. Supabase answers 400 or 404 for missing objects; both count as success.
func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}

	resp, err := s.do(req)
	if err != nil {
		return fmt.Errorf("remove object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusBadRequest:
		return nil
	default:
		return fmt.Errorf("remove object %q: %w: status %d: %s", key, errs.ErrStorageUnavailable, resp.StatusCode, readBody(resp))
	}
}

// Exists issues a HEAD request for key.
func (s *SupabaseStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.objectURL(key), nil)
	if err != nil {
		return false, fmt.Errorf("stat object %q: %w", key, err)
	}

	resp, err := s.do(req)
	if err != nil {
		return false, fmt.Errorf("stat object %q: %w: %v", key, errs.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return false, nil
	default:
		return false, fmt.Errorf("stat object %q: %w: status %d", key, errs.ErrStorageUnavailable, resp.StatusCode)
	}
}

// PublicURL returns the public bucket URL for key.
func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, escapeKey(key))
}

func (s *SupabaseStorage) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, escapeKey(key))
}

func (s *SupabaseStorage) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return s.client.Do(req)
}

func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return strings.TrimSpace(string(b))
}
