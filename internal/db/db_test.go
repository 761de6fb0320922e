package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("expected matching up/down migrations, got %d up and %d down", up, down)
	}

	b, err := fs.ReadFile(migrationsFS, "migrations/000001_create_catalog.up.sql")
	if err != nil {
		t.Fatalf("read initial migration: %v", err)
	}
	for _, table := range []string{"categories", "projects", "category_project"} {
		if !strings.Contains(string(b), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("initial migration does not create %s", table)
		}
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := fmt.Errorf("delete category: %w", &pgconn.PgError{Code: "23503"})
	if !IsForeignKeyViolation(fk) {
		t.Error("expected wrapped 23503 to be detected")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation is not a foreign key violation")
	}
	if IsForeignKeyViolation(errors.New("boom")) {
		t.Error("plain error is not a foreign key violation")
	}
}
