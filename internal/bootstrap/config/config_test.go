package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `app:
  name: evewatch
  env: test
database:
  driver: sqlite
  dsn: /tmp/checks.sqlite
  service_key: local-dev-key
ingest:
  mapping_file: /etc/evewatch/mapping.json
server:
  addr: ":9090"
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Env != "test" {
		t.Fatalf("app.env = %q", cfg.App.Env)
	}
	if cfg.Database.DSN != "/tmp/checks.sqlite" || cfg.Database.ServiceKey != "local-dev-key" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Ingest.MappingFile != "/etc/evewatch/mapping.json" {
		t.Fatalf("ingest.mapping_file = %q", cfg.Ingest.MappingFile)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("server.addr = %q", cfg.Server.Addr)
	}

	// Unset keys keep their defaults.
	if cfg.Ingest.WatchersFile != "watchers.toml" || cfg.Ingest.Workdir != "." {
		t.Fatalf("ingest defaults = %+v", cfg.Ingest)
	}
}

func TestLoadMissingServiceKeyFailsFast(t *testing.T) {
	path := writeConfig(t, `database:
  dsn: /tmp/checks.sqlite
`)

	_, err := Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "database.service_key is required") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadMissingDSNFailsFast(t *testing.T) {
	path := writeConfig(t, `database:
  dsn: ""
  service_key: local-dev-key
`)

	_, err := Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "database.dsn is required") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadServiceKeyFromEnv(t *testing.T) {
	t.Setenv("EW_DATABASE_SERVICE_KEY", "env-key")
	path := writeConfig(t, `database:
  dsn: /tmp/checks.sqlite
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.ServiceKey != "env-key" {
		t.Fatalf("database.service_key = %q", cfg.Database.ServiceKey)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() error = nil for missing explicit config file")
	}
}
