package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/portfolio/service/internal/validate"
)

// Store is the persistence contract the service depends on. *Repository satisfies it.
type Store interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

// Service contains business logic for category management.
type Service struct {
	store Store
}

// NewService creates a new category Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

type nameInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List returns every category in insertion order.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	cats, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []Category{}
	}
	return cats, nil
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.store.GetByID(ctx, id)
}

// Create validates name and stores a new category.
func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	name, err := checkName(name)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update renames category id.
func (s *Service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	name, err := checkName(name)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Update(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes category id. A category still attached to a project is
// rejected with errs.ErrConflict rather than silently detached.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func checkName(name string) (string, error) {
	in := nameInput{Name: strings.TrimSpace(name)}
	if v := validate.Struct(in); v != nil {
		return "", v
	}
	return in.Name, nil
}
