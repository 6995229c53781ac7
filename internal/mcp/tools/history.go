package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/labelscan/internal/cache"
)

// HistoryInput is the input for labelscan_history.
type HistoryInput struct {
	AttemptID string `json:"attempt_id,omitempty" jsonschema:"Return only this attempt (default: all recent attempts)"`
}

// HistoryOutput is the output for labelscan_history.
type HistoryOutput struct {
	Attempts []AttemptInfo `json:"attempts,omitzero"`
}

// AttemptInfo is a summary of one finished attempt.
type AttemptInfo struct {
	AttemptID  string `json:"attempt_id"`
	File       string `json:"file"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail,omitempty"`
	FinishedAt string `json:"finished_at"`
	DurationMs int64  `json:"duration_ms"`
}

// ToAttemptInfo converts a stored attempt.
func ToAttemptInfo(a cache.Attempt) AttemptInfo {
	return AttemptInfo{
		AttemptID:  a.ID,
		File:       a.File,
		Outcome:    string(a.Outcome),
		Detail:     a.Detail,
		FinishedAt: a.Finished.Format(time.RFC3339),
		DurationMs: a.Duration().Milliseconds(),
	}
}

// ToolHistory lists recent attempts, newest first, or looks up one attempt.
func ToolHistory(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
		if input.AttemptID != "" {
			a, ok := d.App.History.Get(input.AttemptID)
			if !ok {
				return nil, HistoryOutput{}, ErrNotFound("attempt", input.AttemptID)
			}
			return nil, HistoryOutput{Attempts: []AttemptInfo{ToAttemptInfo(a)}}, nil
		}

		recent := d.App.History.Recent()
		output := HistoryOutput{
			Attempts: make([]AttemptInfo, len(recent)),
		}
		for i, a := range recent {
			output.Attempts[i] = ToAttemptInfo(a)
		}
		return nil, output, nil
	}
}
