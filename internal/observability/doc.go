// Package observability provides the event log and derived metrics for
// taskboard. Events are appended as JSON Lines and metrics are computed
// on demand by scanning the log. The log records what happened; tasks are
// never rebuilt from it.
package observability
