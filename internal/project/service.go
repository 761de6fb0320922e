package project

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/portfolio/service/internal/errs"
	"github.com/portfolio/service/internal/storage"
	"github.com/portfolio/service/internal/validate"
)

// MaxImageSize is the largest accepted cover image (2048 KiB).
const MaxImageSize = 2 << 20

// ImageNamespace prefixes every project image key.
const ImageNamespace = "project"

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
	"image/svg+xml",
}

// Store is the persistence contract the service depends on. *Repository satisfies it.
type Store interface {
	List(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id int64) (*Project, error)
	MissingCategories(ctx context.Context, ids []int64) ([]int64, error)
	Create(ctx context.Context, rec Record) (*Project, error)
	Update(ctx context.Context, id int64, rec Record) (*Project, *string, error)
	Delete(ctx context.Context, id int64) (*string, error)
}

// Input is a create or update request. Image is optional.
type Input struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Content     string  `json:"content" validate:"required"`
	Bidang      string  `json:"bidang" validate:"required,oneof=frontend backend fullstack"`
	GithubLink  string  `json:"github_link" validate:"omitempty,url"`
	DemoLink    string  `json:"demo_link" validate:"omitempty,url"`
	CategoryIDs []int64 `json:"category_id" validate:"required,min=1,dive,gt=0"`
	Image       *Image  `json:"-"`

	// formErrs holds field errors found while decoding the request.
	formErrs *errs.ValidationError
}

// Image is an uploaded cover image. Its content type is sniffed from Data.
type Image struct {
	Data []byte
}

type preparedImage struct {
	data        []byte
	contentType string
	ext         string
}

// Service orchestrates the relational store and the object store. The two
// cannot share a transaction, so writes follow a fixed order:
//
//	create:  upload → insert (delete upload if insert fails)
//	update:  upload new → update row (delete new if update fails) → delete old
//	delete:  delete row → delete object (best effort)
//
// A row never points at a key that was not written, and a failed write
// leaves no object behind under the attempted key.
type Service struct {
	store  Store
	files  storage.Storage
	logger zerolog.Logger
}

// NewService creates a new project Service.
func NewService(store Store, files storage.Storage, logger zerolog.Logger) *Service {
	return &Service{store: store, files: files, logger: logger}
}

// List returns every project with categories and image URLs resolved.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	for i := range projects {
		s.resolveURL(&projects[i])
	}
	return projects, nil
}

// Show returns a single project.
func (s *Service) Show(ctx context.Context, id int64) (*Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveURL(p)
	return p, nil
}

// Create validates in, uploads its image (if any) and inserts the project.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	rec, img, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var uploaded string
	if img != nil {
		key, err := s.upload(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		uploaded = key
		rec.ImageKey = &key
	}

	p, err := s.store.Create(ctx, rec)
	if err != nil {
		s.discard(ctx, uploaded, "discard image of failed create")
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.resolveURL(p)
	return p, nil
}

// Update replaces every field of project id. When in carries an image, the
// new object is written before the row changes and the previous object is
// removed only after the row update committed.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Project, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	rec, img, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var uploaded string
	if img != nil {
		key, err := s.upload(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
		uploaded = key
		rec.ImageKey = &key
		rec.ReplaceImage = true
	}

	p, prevKey, err := s.store.Update(ctx, id, rec)
	if err != nil {
		s.discard(ctx, uploaded, "discard image of failed update")
		return nil, fmt.Errorf("update project: %w", err)
	}

	if uploaded != "" && prevKey != nil && *prevKey != uploaded {
		s.discard(ctx, *prevKey, "remove replaced image")
	}

	s.resolveURL(p)
	return p, nil
}

// Delete removes project id and then its image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	key, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if key != nil {
		s.discard(ctx, *key, "remove image of deleted project")
	}
	return nil
}

// prepare validates in and returns the record to persist. Every offending
// field is reported, including unknown category ids and a bad image.
func (s *Service) prepare(ctx context.Context, in Input) (Record, *preparedImage, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Bidang = strings.ToLower(strings.TrimSpace(in.Bidang))
	in.GithubLink = strings.TrimSpace(in.GithubLink)
	in.DemoLink = strings.TrimSpace(in.DemoLink)
	in.CategoryIDs = dedupe(in.CategoryIDs)

	verr := errs.NewValidationError()
	verr.Merge(in.formErrs)
	verr.Merge(validate.Struct(in))

	if !hasField(verr, "category_id") && len(in.CategoryIDs) > 0 {
		missing, err := s.store.MissingCategories(ctx, in.CategoryIDs)
		if err != nil {
			return Record{}, nil, fmt.Errorf("check categories: %w", err)
		}
		if len(missing) > 0 {
			verr.Add("category_id", fmt.Sprintf("unknown category id(s): %s", joinIDs(missing)))
		}
	}

	var img *preparedImage
	if in.Image != nil {
		var msg string
		img, msg = checkImage(in.Image)
		if msg != "" {
			verr.Add("image", msg)
		}
	}

	if err := verr.OrNil(); err != nil {
		return Record{}, nil, err
	}

	return Record{
		Title:       in.Title,
		Content:     in.Content,
		Bidang:      in.Bidang,
		GithubLink:  optional(in.GithubLink),
		DemoLink:    optional(in.DemoLink),
		CategoryIDs: in.CategoryIDs,
	}, img, nil
}

func checkImage(img *Image) (*preparedImage, string) {
	if len(img.Data) == 0 {
		return nil, "must be a non-empty image file"
	}
	if len(img.Data) > MaxImageSize {
		return nil, fmt.Sprintf("must not be larger than %d kilobytes", MaxImageSize>>10)
	}
	mt := mimetype.Detect(img.Data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, "must be an image (jpeg, png, gif, bmp, webp, svg)"
	}
	return &preparedImage{data: img.Data, contentType: mt.String(), ext: mt.Extension()}, ""
}

// upload writes img under a fresh key. On failure any partial object under
// that key is removed.
func (s *Service) upload(ctx context.Context, img *preparedImage) (string, error) {
	key := storage.NewKey(ImageNamespace, img.ext)
	_, err := s.files.Put(ctx, key, bytes.NewReader(img.data), int64(len(img.data)), img.contentType)
	if err != nil {
		s.discard(ctx, key, "discard partial upload")
		return "", fmt.Errorf("%w: %w", errs.ErrUploadFailed, err)
	}
	return key, nil
}

// discard deletes key without failing the caller. The request context may
// already be cancelled, so the deletion runs detached from it.
func (s *Service) discard(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg(reason)
	}
}

func (s *Service) resolveURL(p *Project) {
	if p.ImageKey == nil || *p.ImageKey == "" {
		p.ImageURL = nil
		return
	}
	u := s.files.PublicURL(*p.ImageKey)
	p.ImageURL = &u
}

// hasField reports whether v has an error for field or one of its elements.
func hasField(v *errs.ValidationError, field string) bool {
	for f := range v.Fields {
		if f == field || strings.HasPrefix(f, field+"[") {
			return true
		}
	}
	return false
}

func dedupe(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
