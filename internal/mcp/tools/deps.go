// Package tools contains MCP tool implementations for labelscan.
package tools

import (
	"sync"

	"github.com/usestring/labelscan/internal/app"
	"github.com/usestring/labelscan/internal/workflow"
)

// MIME type constant.
const MimeJSON = "application/json"

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	App     *app.App
	Machine *workflow.Machine

	// extractMu keeps one labelscan_extract call between Select and the
	// terminal state, so a second call cannot swap the document mid-attempt.
	extractMu sync.Mutex
}

// NewDeps builds Deps around a fresh workflow machine.
func NewDeps(a *app.App) *Deps {
	return &Deps{
		App:     a,
		Machine: a.NewMachine(),
	}
}
