// Package category manages project categories and their persistence.
package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portfolio/service/internal/db"
	"github.com/portfolio/service/internal/errs"
)

// Category is a label that projects can be filed under.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository handles all category database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns every category in insertion order.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetByID fetches a category by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns the created record.
func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1)
		 RETURNING id, name, created_at, updated_at`,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update renames a category.
func (r *Repository) Update(ctx context.Context, id int64, name string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, updated_at = NOW() WHERE id = $1
		 RETURNING id, name, created_at, updated_at`,
		id, name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category that no project references.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var found bool
	err = tx.QueryRow(ctx,
		`SELECT TRUE FROM categories WHERE id = $1 FOR UPDATE`, id,
	).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("category %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock category: %w", err)
	}

	var refs int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM category_project WHERE category_id = $1`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("category %d is used by %d project(s): %w", id, refs, errs.ErrConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("category %d is still referenced: %w", id, errs.ErrConflict)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	return tx.Commit(ctx)
}
