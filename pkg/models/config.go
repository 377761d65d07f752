package models

// TaskIDStyle selects how new task IDs are generated.
type TaskIDStyle string

const (
	TaskIDStyleUUID       TaskIDStyle = "uuid"
	TaskIDStyleSequential TaskIDStyle = "sequential"
)

// GlobalConfig holds settings read from .taskboard.yaml via Viper. Each
// field is read from the nested key noted beside it.
type GlobalConfig struct {
	TaskIDStyle    TaskIDStyle // task_id.style
	TaskIDPrefix   string      // task_id.prefix
	TaskIDPadWidth int         // task_id.pad_width
	DefaultTab     TaskStatus  // board.default_tab
	EventsEnabled  bool        // events.enabled
	EventsFile     string      // events.file
}
