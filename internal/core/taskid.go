package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// TaskIDGenerator defines the interface for generating opaque task IDs.
type TaskIDGenerator interface {
	GenerateTaskID() string
}

// uuidTaskIDGenerator returns random v4 UUIDs.
type uuidTaskIDGenerator struct{}

// NewUUIDTaskIDGenerator creates a TaskIDGenerator backed by google/uuid.
func NewUUIDTaskIDGenerator() TaskIDGenerator {
	return uuidTaskIDGenerator{}
}

func (uuidTaskIDGenerator) GenerateTaskID() string {
	return uuid.NewString()
}

// sequentialTaskIDGenerator counts up from 1 for the lifetime of the
// process. Nothing is written to disk.
type sequentialTaskIDGenerator struct {
	mu       sync.Mutex
	prefix   string
	padWidth int
	counter  int
}

// NewSequentialTaskIDGenerator creates a TaskIDGenerator that returns
// {prefix}-{counter}. padWidth controls the zero-padding width of the
// numeric portion. Use 0 for no padding (e.g., TASK-1).
func NewSequentialTaskIDGenerator(prefix string, padWidth int) TaskIDGenerator {
	return &sequentialTaskIDGenerator{prefix: prefix, padWidth: padWidth}
}

func (g *sequentialTaskIDGenerator) GenerateTaskID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	if g.padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, g.counter)
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NewTaskIDGeneratorFromConfig picks the generator named by cfg.TaskIDStyle.
func NewTaskIDGeneratorFromConfig(cfg *models.GlobalConfig) TaskIDGenerator {
	if cfg != nil && cfg.TaskIDStyle == models.TaskIDStyleSequential {
		prefix := cfg.TaskIDPrefix
		if prefix == "" {
			prefix = "TASK"
		}
		return NewSequentialTaskIDGenerator(prefix, cfg.TaskIDPadWidth)
	}
	return NewUUIDTaskIDGenerator()
}
