package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vendfleet")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("DB_LOCK_TIMEOUT", "5")
	t.Setenv("VENDFLEET_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/vendfleet" {
		t.Fatalf("unexpected database url: %s", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected token ttl 30m, got %s", cfg.TokenTTL)
	}
	// Bare integers are seconds.
	if cfg.LockTimeout != 5*time.Second {
		t.Fatalf("expected lock timeout 5s, got %s", cfg.LockTimeout)
	}
	if cfg.Currency != "CNY" || cfg.DailyGenerateAt != "00:05" {
		t.Fatalf("unexpected defaults: %s %s", cfg.Currency, cfg.DailyGenerateAt)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("VENDFLEET_CONFIG", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadYAMLFileWithEnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "database_url: postgres://db:5432/vendfleet\nhttp_addr: \":9090\"\ncurrency: USD\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("VENDFLEET_CONFIG", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STATS_DAILY_AT", "01:30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://db:5432/vendfleet" {
		t.Fatalf("unexpected database url: %s", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":9090" || cfg.Currency != "USD" {
		t.Fatalf("yaml values not applied: %s %s", cfg.HTTPAddr, cfg.Currency)
	}
	// Env fills what the file leaves empty.
	if cfg.DailyGenerateAt != "01:30" {
		t.Fatalf("expected generate time 01:30, got %s", cfg.DailyGenerateAt)
	}
}
