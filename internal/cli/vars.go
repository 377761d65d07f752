package cli

import (
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
)

// Service hooks, set during app initialization in app.go.
var (
	// NewSession returns a fresh board session over an empty store.
	NewSession  func() *core.Session
	MetricsCalc observability.MetricsCalculator
)
