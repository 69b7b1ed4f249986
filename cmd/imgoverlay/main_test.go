package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", "window:\n  transparency: 0.6\n", 0},
		{"out of range", "window:\n  transparency: 3\n", 2},
		{"unknown key", "window:\n  opacity: 0.6\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			if rc := runConfig([]string{"validate", "--path", path}); rc != tt.want {
				t.Fatalf("runConfig validate rc=%d, want %d", rc, tt.want)
			}
		})
	}
}

func TestConfigValidateMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if rc := runConfig([]string{"validate", "--path", path}); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
}

func TestConfigUsage(t *testing.T) {
	if rc := runConfig(nil); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if rc := runConfig([]string{"bogus"}); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	t.Setenv("HOME", t.TempDir())
	if rc := runConfig([]string{"path"}); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
}

func TestRunRejectsInvalidConfigBeforeConnecting(t *testing.T) {
	path := writeConfig(t, "log_level: loud\n")
	if rc := runOverlay([]string{"-config", path}); rc != 2 {
		t.Fatalf("runOverlay rc=%d, want 2", rc)
	}
	if rc := runOverlay([]string{"a.png", "b.png"}); rc != 2 {
		t.Fatalf("runOverlay with two images rc=%d, want 2", rc)
	}
}
