package observability

import (
	"fmt"
	"time"
)

// Metrics holds counters derived from the event log.
type Metrics struct {
	TasksCreated int            `json:"tasks_created"`
	TasksUpdated int            `json:"tasks_updated"`
	TasksDeleted int            `json:"tasks_deleted"`
	TasksMoved   int            `json:"tasks_moved"`
	MovesTo      map[string]int `json:"moves_to"`
	Sessions     int            `json:"sessions"`
	EventCount   int            `json:"event_count"`
	OldestEvent  *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent  *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(filter EventFilter) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event matching filter.
func (mc *metricsCalculator) Calculate(filter EventFilter) (*Metrics, error) {
	events, err := mc.eventLog.Read(filter)
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{MovesTo: make(map[string]int)}
	m.EventCount = len(events)

	sessions := make(map[string]struct{})
	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t
		if event.Session != "" {
			sessions[event.Session] = struct{}{}
		}

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.updated":
			m.TasksUpdated++
		case "task.deleted":
			m.TasksDeleted++
		case "task.status_changed":
			m.TasksMoved++
			if status, ok := event.Data["new_status"].(string); ok {
				m.MovesTo[status]++
			}
		}
	}
	m.Sessions = len(sessions)

	return m, nil
}
