// Package project manages portfolio projects, their category links and their
// cover image in object storage.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portfolio/service/internal/category"
	"github.com/portfolio/service/internal/db"
	"github.com/portfolio/service/internal/errs"
)

// Bidang values accepted for Project.Bidang.
const (
	BidangFrontend  = "frontend"
	BidangBackend   = "backend"
	BidangFullstack = "fullstack"
)

// Project is a portfolio entry with its categories resolved.
type Project struct {
	ID         int64               `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Bidang     string              `json:"bidang"`
	GithubLink *string             `json:"github_link"`
	DemoLink   *string             `json:"demo_link"`
	ImageKey   *string             `json:"image_key"`
	ImageURL   *string             `json:"image_url"`
	Categories []category.Category `json:"categories"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Record is the full set of columns written on create and update.
type Record struct {
	Title       string
	Content     string
	Bidang      string
	GithubLink  *string
	DemoLink    *string
	ImageKey    *string
	CategoryIDs []int64

	// ReplaceImage makes Update write ImageKey. When false the stored key is kept.
	ReplaceImage bool
}

// Repository handles all project database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const projectColumns = `id, title, content, bidang, github_link, demo_link, image_key, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Bidang, &p.GithubLink, &p.DemoLink,
		&p.ImageKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Categories = []category.Category{}
	return p, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// List returns every project in insertion order with categories attached.
// Categories for all projects are fetched with a single extra query.
func (r *Repository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Project, error) {
		return scanProject(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	if err := attachCategories(ctx, r.db, projects...); err != nil {
		return nil, err
	}

	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = *p
	}
	return out, nil
}

// GetByID fetches a project with its categories.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	return getByID(ctx, r.db, id)
}

func getByID(ctx context.Context, q querier, id int64) (*Project, error) {
	p, err := scanProject(q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	if err := attachCategories(ctx, q, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MissingCategories returns the ids in ids that have no category row.
func (r *Repository) MissingCategories(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup categories: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("lookup categories: %w", err)
	}

	seen := make(map[int64]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Create inserts the project row and its category links in one transaction.
func (r *Repository) Create(ctx context.Context, rec Record) (*Project, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO projects (title, content, bidang, github_link, demo_link, image_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		rec.Title, rec.Content, rec.Bidang, rec.GithubLink, rec.DemoLink, rec.ImageKey,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	if err := linkCategories(ctx, tx, id, rec.CategoryIDs); err != nil {
		return nil, err
	}

	p, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit project: %w", err)
	}
	return p, nil
}

// Update rewrites the project row and replaces its category links in one
// transaction. It returns the image key stored before the update.
func (r *Repository) Update(ctx context.Context, id int64, rec Record) (*Project, *string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var prevKey *string
	err = tx.QueryRow(ctx, `SELECT image_key FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&prevKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lock project: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE projects
		 SET title = $2, content = $3, bidang = $4, github_link = $5, demo_link = $6,
		     image_key = CASE WHEN $8::boolean THEN $7::text ELSE image_key END,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, rec.Title, rec.Content, rec.Bidang, rec.GithubLink, rec.DemoLink, rec.ImageKey, rec.ReplaceImage,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update project: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM category_project WHERE project_id = $1`, id); err != nil {
		return nil, nil, fmt.Errorf("clear project categories: %w", err)
	}
	if err := linkCategories(ctx, tx, id, rec.CategoryIDs); err != nil {
		return nil, nil, err
	}

	p, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit project: %w", err)
	}
	return p, prevKey, nil
}

// Delete removes the project row; category links cascade. It returns the
// image key the row held so the caller can remove the object.
func (r *Repository) Delete(ctx context.Context, id int64) (*string, error) {
	var key *string
	err := r.db.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING image_key`, id).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete project: %w", err)
	}
	return key, nil
}

func linkCategories(ctx context.Context, tx pgx.Tx, projectID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO category_project (category_id, project_id)
		 SELECT DISTINCT unnest($1::bigint[]), $2::bigint
		 ON CONFLICT DO NOTHING`,
		ids, projectID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return errs.Invalid("category_id", "contains a category that does not exist")
		}
		return fmt.Errorf("link project categories: %w", err)
	}
	return nil
}

func attachCategories(ctx context.Context, q querier, projects ...*Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]int64, len(projects))
	byID := make(map[int64]*Project, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := q.Query(ctx,
		`SELECT cp.project_id, c.id, c.name, c.created_at, c.updated_at
		 FROM category_project cp
		 JOIN categories c ON c.id = cp.category_id
		 WHERE cp.project_id = ANY($1)
		 ORDER BY cp.project_id, c.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load project categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64
		var c category.Category
		if err := rows.Scan(&projectID, &c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("scan project category: %w", err)
		}
		if p, ok := byID[projectID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load project categories: %w", err)
	}
	return nil
}
