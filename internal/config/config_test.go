package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.SessionDuration != 30*24*time.Hour {
		t.Errorf("SessionDuration = %v, want 720h", cfg.SessionDuration)
	}
	if cfg.SessionCookieName != "game-tracker-session" {
		t.Errorf("SessionCookieName = %q", cfg.SessionCookieName)
	}
	if cfg.SessionCleanupInterval != 0 {
		t.Errorf("SessionCleanupInterval = %v, want disabled", cfg.SessionCleanupInterval)
	}
	if cfg.UploadMaxSize != 5*1024*1024 {
		t.Errorf("UploadMaxSize = %d", cfg.UploadMaxSize)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("Storage.Backend = %q, want local", cfg.Storage.Backend)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/games")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "1h")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.DatabaseType != "postgres" || cfg.DatabaseURL != "postgres://localhost/games" {
		t.Errorf("database settings = %q %q", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.SessionCleanupInterval != time.Hour {
		t.Errorf("SessionCleanupInterval = %v, want 1h", cfg.SessionCleanupInterval)
	}
	if cfg.LoginRateLimit != 3 {
		t.Errorf("LoginRateLimit = %d, want 3", cfg.LoginRateLimit)
	}
	if !cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders = false, want true")
	}
}

func TestLoadInvalidBool(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRUST_PROXY_HEADERS", "sometimes")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want invalid TRUST_PROXY_HEADERS")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_DURATION", "forever")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid SESSION_DURATION")
	}
}

func TestLoadFileExpandsEnv(t *testing.T) {
	t.Setenv("TEST_S3_BUCKET", "game-images")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "7000"
database_type: sqlite
database_path: /tmp/games.db
session_duration: 2h
storage:
  backend: s3
  s3_bucket: ${TEST_S3_BUCKET}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "7000" {
		t.Errorf("ServerPort = %q, want 7000", cfg.ServerPort)
	}
	if cfg.SessionDuration != 2*time.Hour {
		t.Errorf("SessionDuration = %v, want 2h", cfg.SessionDuration)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.S3Bucket != "game-images" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	// defaults still fill the gaps
	if cfg.SessionCookieName != "game-tracker-session" {
		t.Errorf("SessionCookieName = %q", cfg.SessionCookieName)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
