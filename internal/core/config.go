// Package core contains the business logic for taskboard: the edit/move
// session controller, task ID generation, configuration and replay scripts.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = ".taskboard"

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ConfigurationManager defines the interface for loading and validating
// the .taskboard.yaml configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .taskboard.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TaskIDStyle:    models.TaskIDStyleUUID,
		TaskIDPrefix:   "TASK",
		TaskIDPadWidth: 5,
		DefaultTab:     models.StatusToday,
		EventsEnabled:  true,
		EventsFile:     ".taskboard_events.jsonl",
	}
}

// LoadGlobalConfig reads .taskboard.yaml from the base path using Viper.
// If the file does not exist, defaults are returned. The loaded config is
// validated before it is returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("task_id.style", string(cfg.TaskIDStyle))
	v.SetDefault("task_id.prefix", cfg.TaskIDPrefix)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("board.default_tab", string(cfg.DefaultTab))
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("events.file", cfg.EventsFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
	}

	cfg.TaskIDStyle = models.TaskIDStyle(strings.ToLower(v.GetString("task_id.style")))
	cfg.TaskIDPrefix = v.GetString("task_id.prefix")
	cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	cfg.DefaultTab = models.TaskStatus(strings.ToLower(v.GetString("board.default_tab")))
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.EventsFile = v.GetString("events.file")

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	switch cfg.TaskIDStyle {
	case models.TaskIDStyleUUID, models.TaskIDStyleSequential:
	default:
		errs = append(errs, fmt.Sprintf(
			"task_id.style %q is invalid, must be one of: uuid, sequential",
			cfg.TaskIDStyle,
		))
	}

	if cfg.TaskIDStyle == models.TaskIDStyleSequential && !validPrefixPattern.MatchString(cfg.TaskIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"task_id.prefix %q is invalid, must match [A-Z0-9]{1,10}",
			cfg.TaskIDPrefix,
		))
	}

	if cfg.TaskIDPadWidth < 0 || cfg.TaskIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"task_id.pad_width %d is invalid, must be between 0 and 10",
			cfg.TaskIDPadWidth,
		))
	}

	if !cfg.DefaultTab.Valid() {
		errs = append(errs, fmt.Sprintf(
			"board.default_tab %q is invalid, must be one of: today, pending, overdue",
			cfg.DefaultTab,
		))
	}

	if cfg.EventsEnabled && cfg.EventsFile == "" {
		errs = append(errs, "events.file must not be empty when events are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
