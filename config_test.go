package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.AutoDiscover {
		t.Error("auto_discover should default to true")
	}
	if !cfg.SessionManagement {
		t.Error("session_management should default to true")
	}
	if cfg.EventStreaming || cfg.PerformanceProfiling || cfg.NetworkInterception {
		t.Error("optional features should default to false")
	}
}

func TestConfigLoadMissingFileKeepsDefaults(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "absent.toml"))
	if err := store.Load(); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if !store.Current().AutoDiscover {
		t.Error("defaults should survive a missing file")
	}
}

func TestConfigLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tauripilot.toml")
	content := `
auto_discover = false
event_streaming = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewConfigStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cfg := store.Current()
	if cfg.AutoDiscover {
		t.Error("auto_discover should be false")
	}
	if !cfg.EventStreaming {
		t.Error("event_streaming should be true")
	}
	// Unset keys keep their defaults.
	if !cfg.SessionManagement {
		t.Error("session_management should stay true")
	}
}

func TestConfigLoadRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("auto_discover = {{"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewConfigStore(path)
	if err := store.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestConfigHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tauripilot.toml")
	if err := os.WriteFile(path, []byte("auto_discover = true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewConfigStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := store.Watch(); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer store.Close()

	if err := os.WriteFile(path, []byte("auto_discover = false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !store.Current().AutoDiscover {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("config change was not picked up")
}
