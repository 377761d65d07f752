package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

// fileConfig mirrors the on-disk layout of .taskboard.yaml.
type fileConfig struct {
	TaskID struct {
		Style    string `yaml:"style"`
		Prefix   string `yaml:"prefix"`
		PadWidth int    `yaml:"pad_width"`
	} `yaml:"task_id"`
	Board struct {
		DefaultTab string `yaml:"default_tab"`
	} `yaml:"board"`
	Events struct {
		Enabled bool   `yaml:"enabled"`
		File    string `yaml:"file"`
	} `yaml:"events"`
}

func genValidConfig(rt *rapid.T) *models.GlobalConfig {
	return &models.GlobalConfig{
		TaskIDStyle:    rapid.SampledFrom([]models.TaskIDStyle{models.TaskIDStyleUUID, models.TaskIDStyleSequential}).Draw(rt, "style"),
		TaskIDPrefix:   rapid.StringMatching(`[A-Z0-9]{1,10}`).Draw(rt, "prefix"),
		TaskIDPadWidth: rapid.IntRange(0, 10).Draw(rt, "padWidth"),
		DefaultTab:     rapid.SampledFrom(models.AllStatuses()).Draw(rt, "tab"),
		EventsEnabled:  rapid.Bool().Draw(rt, "eventsEnabled"),
		EventsFile:     rapid.StringMatching(`[a-z]{1,8}\.jsonl`).Draw(rt, "eventsFile"),
	}
}

// =============================================================================
// Property 10: Configuration Round-Trip
// =============================================================================

// Feature: taskboard, Property 10: Configuration Round-Trip
// *For any* valid configuration written to .taskboard.yaml, LoadGlobalConfig
// SHALL return the same values.
func TestProperty10_ConfigurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		want := genValidConfig(rt)

		var fc fileConfig
		fc.TaskID.Style = string(want.TaskIDStyle)
		fc.TaskID.Prefix = want.TaskIDPrefix
		fc.TaskID.PadWidth = want.TaskIDPadWidth
		fc.Board.DefaultTab = string(want.DefaultTab)
		fc.Events.Enabled = want.EventsEnabled
		fc.Events.File = want.EventsFile

		data, err := yaml.Marshal(fc)
		if err != nil {
			rt.Fatalf("marshalling config: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".taskboard.yaml"), data, 0o644); err != nil {
			rt.Fatalf("writing config: %v", err)
		}

		got, err := NewConfigurationManager(dir).LoadGlobalConfig()
		if err != nil {
			rt.Fatalf("loading config: %v\n%s", err, data)
		}
		if *got != *want {
			rt.Fatalf("expected %+v, got %+v", *want, *got)
		}
	})
}

// =============================================================================
// Property 11: Configuration Validation
// =============================================================================

// Feature: taskboard, Property 11: Configuration Validation
// *For any* valid configuration with exactly one field broken, ValidateConfig
// SHALL return an error.
func TestProperty11_ConfigurationValidation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cm := NewConfigurationManager(t.TempDir())
		cfg := genValidConfig(rt)

		switch rapid.IntRange(0, 4).Draw(rt, "invalidType") {
		case 0:
			cfg.TaskIDStyle = models.TaskIDStyle(rapid.SampledFrom([]string{"", "ulid", "random", "UUID4"}).Draw(rt, "badStyle"))
		case 1:
			cfg.TaskIDStyle = models.TaskIDStyleSequential
			cfg.TaskIDPrefix = rapid.SampledFrom([]string{"", "task", "TOO-LONG-PREFIX", "a b"}).Draw(rt, "badPrefix")
		case 2:
			cfg.TaskIDPadWidth = rapid.SampledFrom([]int{-5, -1, 11, 64}).Draw(rt, "badPad")
		case 3:
			cfg.DefaultTab = models.TaskStatus(rapid.SampledFrom([]string{"", "done", "Someday"}).Draw(rt, "badTab"))
		case 4:
			cfg.EventsEnabled = true
			cfg.EventsFile = ""
		}

		if err := cm.ValidateConfig(cfg); err == nil {
			rt.Fatalf("expected validation error for %+v", *cfg)
		}
	})
}
