package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"evewatch/internal/infrastructure/persistence/sqlite/model"
)

func TestNewAppInitSchemaClose(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := "database:\n" +
		"  driver: sqlite\n" +
		"  dsn: " + filepath.Join(dir, "state", "checks.sqlite") + "\n" +
		"  service_key: local-dev-key\n"
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, configFile)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := app.Close(ctx); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}()

	if err := app.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	// Schema is queryable after migration.
	var count int64
	if err := app.DB.Model(&model.CheckRun{}).Count(&count).Error; err != nil {
		t.Fatalf("count check runs: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh schema has %d runs", count)
	}

	// The sqlite directory was created on demand.
	if _, err := os.Stat(filepath.Join(dir, "state")); err != nil {
		t.Fatalf("sqlite directory missing: %v", err)
	}
}
