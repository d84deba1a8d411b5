package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8470" {
		t.Errorf("addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("backend = %q, want memory", cfg.Store.Backend)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
store:
  backend: sqlite
  path: /tmp/atrium.db
cache:
  enabled: true
  addr: redis:6379
  ttl: 30s
logging:
  level: debug
commerce:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "/tmp/atrium.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 30*time.Second {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	if !cfg.Commerce.Enabled {
		t.Error("commerce should be enabled")
	}
	// Unset keys keep their defaults.
	if cfg.Engine.MaxTemplates != 500 {
		t.Errorf("engine cap = %d, want default 500", cfg.Engine.MaxTemplates)
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("shutdown timeout = %v, want default", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for sqlite without path")
	}
}
