package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ALLOW_ORIGINS", "http://localhost:5173, ,https://brigada.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.ProbeTimeout != 4*time.Second || cfg.StartupWatchdog != 6*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CachePath == "" || cfg.PasswordHashing || cfg.Monitoring.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://brigada.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowOrigins)
	}
	if cfg.Analysis.Model == "" || cfg.Storage.Enabled() {
		t.Fatalf("unexpected nested defaults: %+v %+v", cfg.Analysis, cfg.Storage)
	}
}

func TestLoadNestedPrefixes(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_ENDPOINT", "https://r2.example.com")
	t.Setenv("STORAGE_BUCKET", "fotos")
	t.Setenv("MONITOR_ENABLED", "true")
	t.Setenv("MONITOR_INTERVAL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Storage.Enabled() || !cfg.Monitoring.Enabled || cfg.Monitoring.Interval != 30*time.Minute {
		t.Fatalf("unexpected nested config: %+v %+v", cfg.Storage, cfg.Monitoring)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "curto")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected PORT error")
	}
}

func TestLoadStoreSkipsJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REMOTE_DSN", "  postgres://fire@db/frota  ")

	cfg, err := LoadStore()
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if cfg.RemoteDSN != "postgres://fire@db/frota" {
		t.Fatalf("unexpected dsn %q", cfg.RemoteDSN)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected full load to require JWT_SECRET")
	}
}
