// Package internal provides the App struct that wires the taskboard
// components together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/taskboard/internal/cli"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// HomeEnvVar overrides base path discovery.
const HomeEnvVar = "TASKBOARD_HOME"

// App holds the service dependencies of one taskboard process.
type App struct {
	BasePath string

	// RunID tags every event written by this process.
	RunID string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Observability; both nil when the event log is disabled.
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp loads configuration from basePath, opens the event log and wires
// the CLI service hooks.
func NewApp(basePath string) (*App, error) {
	app := &App{
		BasePath: basePath,
		RunID:    uuid.NewString(),
	}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(app.EventLogPath())
		if err != nil {
			// Non-fatal: run without an event log.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Wire CLI ---
	cli.NewSession = app.NewSession
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// EventLogPath resolves the configured event log file against BasePath.
func (a *App) EventLogPath() string {
	if filepath.IsAbs(a.Config.EventsFile) {
		return a.Config.EventsFile
	}
	return filepath.Join(a.BasePath, a.Config.EventsFile)
}

// NewSession returns a session over a fresh, empty store. Sequential ids
// restart at 1 for every session.
func (a *App) NewSession() *core.Session {
	store := storage.NewTaskStore(core.NewTaskIDGeneratorFromConfig(a.Config))
	var events core.EventLogger
	if a.EventLog != nil {
		events = &eventLogAdapter{log: a.EventLog, runID: a.RunID}
	}
	return core.NewSession(store, events, a.Config.DefaultTab)
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory holding .taskboard.yaml and the
// event log. TASKBOARD_HOME wins; otherwise the nearest ancestor of the
// working directory containing .taskboard.yaml; otherwise the working
// directory itself.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log   observability.EventLog
	runID string
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Session: a.runID,
		Message: eventType,
		Data:    data,
	})
}
