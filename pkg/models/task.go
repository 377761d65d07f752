package models

import (
	"errors"
	"fmt"
	"strings"
)

// TaskStatus is the bucket a task currently sits in.
type TaskStatus string

const (
	StatusToday   TaskStatus = "today"
	StatusPending TaskStatus = "pending"
	StatusOverdue TaskStatus = "overdue"
)

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	// ErrInvalidStatus is wrapped by ParseStatus for unknown values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPriority is wrapped by ParsePriority for unknown values.
	ErrInvalidPriority = errors.New("invalid priority")
)

// AllStatuses returns the statuses in tab order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{StatusToday, StatusPending, StatusOverdue}
}

// AllPriorities returns the priorities from lowest to highest.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToday, StatusPending, StatusOverdue:
		return true
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseStatus converts raw user input into a TaskStatus. Surrounding
// whitespace and case are ignored.
func ParseStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w %q: must be one of today, pending, overdue", ErrInvalidStatus, s)
	}
	return status, nil
}

// ParsePriority converts raw user input into a Priority. Surrounding
// whitespace and case are ignored.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w %q: must be one of low, medium, high", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a single entry on the board.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Priority    Priority   `yaml:"priority" json:"priority"`
	Status      TaskStatus `yaml:"status" json:"status"`
}

// Draft holds the staged form fields that feed the next commit.
type Draft struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Priority    Priority `yaml:"priority"`
}

// DefaultDraft returns the empty form: no text and low priority.
func DefaultDraft() Draft {
	return Draft{Priority: PriorityLow}
}
