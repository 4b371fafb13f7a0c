package main

import (
	"context"
	"os"
	"testing"
)

func TestMonitorResourcesSnapshot(t *testing.T) {
	mgr := NewProcessManager()

	// The test process itself is always visible in the process table.
	id, err := mgr.Attach(context.Background(), os.Getpid())
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	snapshot, err := mgr.MonitorResources(context.Background(), id)
	if err != nil {
		t.Fatalf("monitor failed: %v", err)
	}

	for _, key := range []string{
		"cpu_usage", "memory_usage", "virtual_memory",
		"disk_usage", "status", "start_time", "run_time",
	} {
		if _, present := snapshot[key]; !present {
			t.Errorf("missing key %q in snapshot", key)
		}
	}

	disk, ok := snapshot["disk_usage"].(map[string]any)
	if !ok {
		t.Fatalf("disk_usage has wrong shape: %T", snapshot["disk_usage"])
	}
	for _, key := range []string{"read_bytes", "written_bytes"} {
		if _, present := disk[key]; !present {
			t.Errorf("missing key %q in disk_usage", key)
		}
	}

	if mem, ok := snapshot["memory_usage"].(uint64); !ok || mem == 0 {
		t.Errorf("expected nonzero memory_usage, got %v", snapshot["memory_usage"])
	}
}

func TestMonitorResourcesUnknownProcess(t *testing.T) {
	mgr := NewProcessManager()

	_, err := mgr.MonitorResources(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown process")
	}
}

func TestFindRunningApps(t *testing.T) {
	mgr := NewProcessManager()

	apps, err := mgr.FindRunningApps(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	// The scan can legitimately find nothing; the shape still has to hold.
	for _, app := range apps {
		if _, present := app["pid"]; !present {
			t.Errorf("app entry missing pid: %v", app)
		}
		if _, present := app["name"]; !present {
			t.Errorf("app entry missing name: %v", app)
		}
	}
}

func TestLooksLikeApp(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		exe     string
		want    bool
	}{
		{"my-tauri-app", "", "", true},
		{"helper", "/opt/tauri-dev/bin/helper", "", true},
		{"MyApp", "", "/Applications/MyApp.app/Contents/MacOS/MyApp", true},
		{"game", "", `C:\Games\game.exe`, true},
		{"editor", "", "/home/u/Apps/Editor.AppImage", true},
		{"bash", "-bash", "/usr/bin/bash", false},
		{"kworker", "", "", false},
	}

	for _, tt := range tests {
		if got := looksLikeApp(tt.name, tt.cmdline, tt.exe); got != tt.want {
			t.Errorf("looksLikeApp(%q, %q, %q) = %v, want %v",
				tt.name, tt.cmdline, tt.exe, got, tt.want)
		}
	}
}
