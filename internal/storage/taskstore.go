package storage

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// maxIDAttempts bounds how often Create asks the generator for a fresh ID
// when it returns one that is already taken.
const maxIDAttempts = 8

// ErrIDExhausted is returned by Create when the generator keeps producing
// IDs that are already in the store.
var ErrIDExhausted = errors.New("could not generate a unique task ID")

// Result reports whether a mutation found its target.
type Result int

const (
	// NotFound means no task carried the requested ID; nothing changed.
	NotFound Result = iota
	// Applied means the matching task was changed or removed.
	Applied
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "not_found"
}

// IDGenerator is the subset of core.TaskIDGenerator the store needs.
type IDGenerator interface {
	GenerateTaskID() string
}

// TaskStore defines the interface for the in-memory ordered task collection.
type TaskStore interface {
	Create(title, description string, priority models.Priority) (models.Task, error)
	Update(taskID, title, description string, priority models.Priority) Result
	Delete(taskID string) Result
	SetStatus(taskID string, status models.TaskStatus) Result
	FilterByStatus(status models.TaskStatus) []models.Task
	Get(taskID string) (models.Task, bool)
	All() []models.Task
	Len() int
}

// memoryTaskStore keeps tasks in insertion order. Every mutation builds a
// new backing slice, so slices returned earlier are never modified.
type memoryTaskStore struct {
	idGen IDGenerator
	tasks []models.Task
}

// NewTaskStore creates an empty TaskStore that draws IDs from idGen.
func NewTaskStore(idGen IDGenerator) TaskStore {
	return &memoryTaskStore{idGen: idGen}
}

func (s *memoryTaskStore) indexOf(taskID string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func (s *memoryTaskStore) Create(title, description string, priority models.Priority) (models.Task, error) {
	id := ""
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := s.idGen.GenerateTaskID()
		if candidate != "" && s.indexOf(candidate) < 0 {
			id = candidate
			break
		}
	}
	if id == "" {
		return models.Task{}, fmt.Errorf("creating task: %w after %d attempts", ErrIDExhausted, maxIDAttempts)
	}

	task := models.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      models.StatusToday,
	}

	next := make([]models.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, task)
	return task, nil
}

// replace swaps the task at taskID for fn(old) in a fresh slice.
func (s *memoryTaskStore) replace(taskID string, fn func(models.Task) models.Task) Result {
	idx := s.indexOf(taskID)
	if idx < 0 {
		return NotFound
	}
	next := make([]models.Task, len(s.tasks))
	copy(next, s.tasks)
	next[idx] = fn(next[idx])
	s.tasks = next
	return Applied
}

func (s *memoryTaskStore) Update(taskID, title, description string, priority models.Priority) Result {
	return s.replace(taskID, func(old models.Task) models.Task {
		return models.Task{
			ID:          old.ID,
			Title:       title,
			Description: description,
			Priority:    priority,
			Status:      old.Status,
		}
	})
}

func (s *memoryTaskStore) SetStatus(taskID string, status models.TaskStatus) Result {
	return s.replace(taskID, func(old models.Task) models.Task {
		old.Status = status
		return old
	})
}

func (s *memoryTaskStore) Delete(taskID string) Result {
	idx := s.indexOf(taskID)
	if idx < 0 {
		return NotFound
	}
	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)
	s.tasks = next
	return Applied
}

func (s *memoryTaskStore) FilterByStatus(status models.TaskStatus) []models.Task {
	result := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result
}

func (s *memoryTaskStore) Get(taskID string) (models.Task, bool) {
	idx := s.indexOf(taskID)
	if idx < 0 {
		return models.Task{}, false
	}
	return s.tasks[idx], true
}

func (s *memoryTaskStore) All() []models.Task {
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *memoryTaskStore) Len() int {
	return len(s.tasks)
}
