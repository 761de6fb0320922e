package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_PUBLIC_BASE", "")
	t.Setenv("STORAGE_TIMEOUT", "")
	t.Setenv("REQUIRE_AUTH", "")

	cfg := Load()

	if cfg.StorageDriver != "local" {
		t.Errorf("expected local driver, got %q", cfg.StorageDriver)
	}
	if cfg.StoragePublicBase != "http://localhost:9090/storage" {
		t.Errorf("unexpected public base %q", cfg.StoragePublicBase)
	}
	if cfg.StorageTimeout != 30*time.Second {
		t.Errorf("unexpected timeout %s", cfg.StorageTimeout)
	}
	if cfg.RequireAuth {
		t.Error("auth should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Supabase")
	t.Setenv("STORAGE_TIMEOUT", "5s")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	if cfg.StorageDriver != "supabase" {
		t.Errorf("expected supabase driver, got %q", cfg.StorageDriver)
	}
	if cfg.StorageTimeout != 5*time.Second {
		t.Errorf("unexpected timeout %s", cfg.StorageTimeout)
	}
	if !cfg.RequireAuth {
		t.Error("expected auth to be required")
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}
