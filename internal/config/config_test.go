package config

import (
	"testing"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.DBName != "startupops" {
		t.Errorf("DBName = %q, want startupops", cfg.DBName)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should default to enabled")
	}
	if cfg.Validation.MaxRequestBodySize != 1<<20 {
		t.Errorf("MaxRequestBodySize = %d, want 1MB", cfg.Validation.MaxRequestBodySize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost = %q", cfg.DBHost)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled")
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
	}
}
