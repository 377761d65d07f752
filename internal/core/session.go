package core

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	// ErrNoMoveTarget is returned by Move when BeginMove was not called.
	ErrNoMoveTarget = errors.New("no task selected for move")
	// ErrInvalidMoveTarget is returned by Move for statuses outside MoveTargets.
	ErrInvalidMoveTarget = errors.New("invalid move target")
)

// MoveTargets returns the statuses offered by the move prompt. There is no
// path back to today once a task leaves it.
func MoveTargets() []models.TaskStatus {
	return []models.TaskStatus{models.StatusPending, models.StatusOverdue}
}

// CommitResult describes what Commit did.
type CommitResult struct {
	Task    models.Task
	Created bool
	Result  storage.Result
}

// Session owns the task store plus the ephemeral state of one user: the
// staged form fields, the task under edit, the move target and the active
// tab. It is not safe for concurrent use.
type Session struct {
	store  storage.TaskStore
	events EventLogger

	draft      models.Draft
	editing    *models.Task
	moveTarget *models.Task
	activeTab  models.TaskStatus
}

// NewSession creates a Session over store. events may be nil. An invalid
// defaultTab falls back to today.
func NewSession(store storage.TaskStore, events EventLogger, defaultTab models.TaskStatus) *Session {
	if !defaultTab.Valid() {
		defaultTab = models.StatusToday
	}
	return &Session{
		store:     store,
		events:    events,
		draft:     models.DefaultDraft(),
		activeTab: defaultTab,
	}
}

// Store returns the underlying task store.
func (s *Session) Store() storage.TaskStore {
	return s.store
}

// Draft returns the staged form fields.
func (s *Session) Draft() models.Draft {
	return s.draft
}

func (s *Session) SetTitle(title string) {
	s.draft.Title = title
}

func (s *Session) SetDescription(description string) {
	s.draft.Description = description
}

func (s *Session) SetPriority(p models.Priority) {
	s.draft.Priority = p
}

// SetPriorityText parses raw input before staging it. The draft is left
// untouched on error.
func (s *Session) SetPriorityText(raw string) error {
	p, err := models.ParsePriority(raw)
	if err != nil {
		return fmt.Errorf("staging priority: %w", err)
	}
	s.draft.Priority = p
	return nil
}

// BeginEdit stages the form from task and records it as the task under edit.
func (s *Session) BeginEdit(task models.Task) {
	s.draft = models.Draft{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
	}
	s.editing = &task
}

// CancelEdit leaves edit mode and clears the form.
func (s *Session) CancelEdit() {
	s.editing = nil
	s.draft = models.DefaultDraft()
}

// Editing returns the task under edit, if any.
func (s *Session) Editing() (models.Task, bool) {
	if s.editing == nil {
		return models.Task{}, false
	}
	return *s.editing, true
}

// Commit turns the draft into an update of the task under edit, or into a
// new task when nothing is being edited. The draft is reset either way.
func (s *Session) Commit() (CommitResult, error) {
	draft := s.draft
	defer func() { s.draft = models.DefaultDraft() }()

	if s.editing != nil {
		id := s.editing.ID
		s.editing = nil

		res := s.store.Update(id, draft.Title, draft.Description, draft.Priority)
		out := CommitResult{Result: res}
		if task, ok := s.store.Get(id); ok {
			out.Task = task
		}
		if res == storage.Applied {
			s.logEvent(EventTaskUpdated, map[string]any{
				"task_id":  id,
				"priority": string(draft.Priority),
			})
		}
		return out, nil
	}

	task, err := s.store.Create(draft.Title, draft.Description, draft.Priority)
	if err != nil {
		return CommitResult{}, fmt.Errorf("committing draft: %w", err)
	}
	s.logEvent(EventTaskCreated, map[string]any{
		"task_id":  task.ID,
		"priority": string(task.Priority),
	})
	return CommitResult{Task: task, Created: true, Result: storage.Applied}, nil
}

// BeginMove records task as the target of the next Move.
func (s *Session) BeginMove(task models.Task) {
	s.moveTarget = &task
}

// MoveTarget returns the task awaiting a move, if any.
func (s *Session) MoveTarget() (models.Task, bool) {
	if s.moveTarget == nil {
		return models.Task{}, false
	}
	return *s.moveTarget, true
}

// CancelMove drops the move target without touching the store.
func (s *Session) CancelMove() {
	s.moveTarget = nil
}

// Move sets the status of the move target and clears it.
func (s *Session) Move(status models.TaskStatus) (storage.Result, error) {
	if s.moveTarget == nil {
		return storage.NotFound, ErrNoMoveTarget
	}
	if !isMoveTarget(status) {
		return storage.NotFound, fmt.Errorf("%w %q: must be one of pending, overdue", ErrInvalidMoveTarget, status)
	}

	target := *s.moveTarget
	s.moveTarget = nil

	current, found := s.store.Get(target.ID)
	if !found {
		return storage.NotFound, nil
	}
	res := s.store.SetStatus(target.ID, status)
	if res == storage.Applied {
		s.logEvent(EventTaskStatusChanged, map[string]any{
			"task_id":    target.ID,
			"old_status": string(current.Status),
			"new_status": string(status),
		})
	}
	return res, nil
}

// Delete removes a task. Edit and move targets are left as they are; a
// later commit or move against the removed ID changes nothing.
func (s *Session) Delete(taskID string) storage.Result {
	res := s.store.Delete(taskID)
	if res == storage.Applied {
		s.logEvent(EventTaskDeleted, map[string]any{"task_id": taskID})
	}
	return res
}

// SetActiveTab selects the bucket shown by VisibleTasks.
func (s *Session) SetActiveTab(status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("selecting tab: %w %q", models.ErrInvalidStatus, status)
	}
	s.activeTab = status
	return nil
}

func (s *Session) ActiveTab() models.TaskStatus {
	return s.activeTab
}

// VisibleTasks returns the bucket of the active tab, recomputed on each call.
func (s *Session) VisibleTasks() []models.Task {
	return s.store.FilterByStatus(s.activeTab)
}

// Buckets returns every bucket keyed by status.
func (s *Session) Buckets() map[models.TaskStatus][]models.Task {
	out := make(map[models.TaskStatus][]models.Task, 3)
	for _, status := range models.AllStatuses() {
		out[status] = s.store.FilterByStatus(status)
	}
	return out
}

func (s *Session) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(eventType, data) // Non-fatal.
}

func isMoveTarget(status models.TaskStatus) bool {
	for _, t := range MoveTargets() {
		if t == status {
			return true
		}
	}
	return false
}
