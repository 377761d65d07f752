package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TaskIDStyle != models.TaskIDStyleUUID {
		t.Errorf("TaskIDStyle = %q, want %q", cfg.TaskIDStyle, models.TaskIDStyleUUID)
	}
	if cfg.TaskIDPrefix != "TASK" {
		t.Errorf("TaskIDPrefix = %q, want %q", cfg.TaskIDPrefix, "TASK")
	}
	if cfg.TaskIDPadWidth != 5 {
		t.Errorf("TaskIDPadWidth = %d, want 5", cfg.TaskIDPadWidth)
	}
	if cfg.DefaultTab != models.StatusToday {
		t.Errorf("DefaultTab = %q, want %q", cfg.DefaultTab, models.StatusToday)
	}
	if !cfg.EventsEnabled {
		t.Error("EventsEnabled = false, want true")
	}
	if cfg.EventsFile != ".taskboard_events.jsonl" {
		t.Errorf("EventsFile = %q", cfg.EventsFile)
	}
}

func TestLoadGlobalConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".taskboard.yaml", `
task_id:
  style: sequential
  prefix: "TB"
  pad_width: 0
board:
  default_tab: Pending
events:
  enabled: false
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TaskIDStyle != models.TaskIDStyleSequential {
		t.Errorf("TaskIDStyle = %q, want sequential", cfg.TaskIDStyle)
	}
	if cfg.TaskIDPrefix != "TB" {
		t.Errorf("TaskIDPrefix = %q, want TB", cfg.TaskIDPrefix)
	}
	if cfg.TaskIDPadWidth != 0 {
		t.Errorf("TaskIDPadWidth = %d, want 0", cfg.TaskIDPadWidth)
	}
	if cfg.DefaultTab != models.StatusPending {
		t.Errorf("DefaultTab = %q, want pending", cfg.DefaultTab)
	}
	if cfg.EventsEnabled {
		t.Error("EventsEnabled = true, want false")
	}
	// Unset keys keep their defaults.
	if cfg.EventsFile != ".taskboard_events.jsonl" {
		t.Errorf("EventsFile = %q, want default", cfg.EventsFile)
	}
}

func TestLoadGlobalConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".taskboard.yaml", `
task_id:
  style: random
board:
  default_tab: someday
`)

	cm := NewConfigurationManager(dir)
	_, err := cm.LoadGlobalConfig()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"task_id.style", "board.default_tab"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".taskboard.yaml", "task_id: [unclosed\n")

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	tests := []struct {
		name    string
		mutate  func(cfg *models.GlobalConfig)
		wantErr string
	}{
		{"defaults", func(*models.GlobalConfig) {}, ""},
		{"bad prefix for sequential", func(cfg *models.GlobalConfig) {
			cfg.TaskIDStyle = models.TaskIDStyleSequential
			cfg.TaskIDPrefix = "lower"
		}, "task_id.prefix"},
		{"prefix ignored for uuid", func(cfg *models.GlobalConfig) {
			cfg.TaskIDPrefix = ""
		}, ""},
		{"negative pad width", func(cfg *models.GlobalConfig) {
			cfg.TaskIDPadWidth = -1
		}, "task_id.pad_width"},
		{"bad tab", func(cfg *models.GlobalConfig) {
			cfg.DefaultTab = "done"
		}, "board.default_tab"},
		{"events without file", func(cfg *models.GlobalConfig) {
			cfg.EventsFile = ""
		}, "events.file"},
		{"events disabled without file", func(cfg *models.GlobalConfig) {
			cfg.EventsEnabled = false
			cfg.EventsFile = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGlobalConfig()
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
