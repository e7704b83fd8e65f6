package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.json")
	manager := NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if settings.Server.Port != 8080 {
		t.Fatalf("unexpected default port %d", settings.Server.Port)
	}
	if !settings.History.Enabled {
		t.Fatalf("history should default to enabled")
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written to disk: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := NewManager(path)

	settings := DefaultSettings()
	settings.Server.Port = 9090
	settings.Metadata.TMDBAPIKey = "abc"
	settings.History.Enabled = false

	if err := manager.Save(settings); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := manager.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Server.Port != 9090 || reloaded.Metadata.TMDBAPIKey != "abc" {
		t.Fatalf("settings not persisted: %+v", reloaded)
	}
	if reloaded.History.Enabled {
		t.Fatalf("history flag not persisted")
	}
}

func TestLoadWithoutPath(t *testing.T) {
	manager := NewManager("")
	if _, err := manager.Load(); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":9999}}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	settings, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Server.Port != 9999 {
		t.Fatalf("explicit value lost: %d", settings.Server.Port)
	}
	if settings.Database.Path == "" || settings.Log.File == "" {
		t.Fatalf("defaults not applied to missing sections: %+v", settings)
	}
}
