// Package query provides jq-based querying of extraction results.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/labelscan/pkg/types"
)

// Engine executes jq queries against extraction results.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// QueryResult contains the results of a jq query.
type QueryResult struct {
	Values   []any    `json:"values"`           // Extracted values
	Errors   []string `json:"errors,omitempty"` // Runtime errors (e.g., type mismatch)
	RawCount int      `json:"raw_count"`        // Count before the limit is applied
}

// Query runs expression against the exported JSON form of ok, so paths look
// like .allergens.Peanuts or .nutrition_per_100g | keys. Null outputs are
// skipped. A maxResults of zero or less means no limit.
func (e *Engine) Query(ok *types.Ok, expression string, maxResults int) (*QueryResult, error) {
	if ok == nil {
		return nil, errors.New("no result to query")
	}

	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	// gojq wants plain maps and slices, not the ordered Mapping type
	input, err := types.ToAny(ok)
	if err != nil {
		return nil, fmt.Errorf("converting result: %w", err)
	}

	result := &QueryResult{
		Values: make([]any, 0),
	}

	iter := code.Run(input)
	for {
		v, more := iter.Next()
		if !more {
			break
		}

		if err, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, formatJQError(err))
			continue
		}

		if v == nil {
			continue
		}

		result.RawCount++
		if maxResults > 0 && len(result.Values) >= maxResults {
			continue
		}
		result.Values = append(result.Values, v)
	}

	return result, nil
}

// ValidateExpression checks if a jq expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// formatJQError adds a hint to common runtime errors. gojq reports these as
// plain errors, so the hints are chosen by message text.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the key may not exist in this result)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (tables are objects, try to_entries or keys)"
	}

	return errStr + hint
}

// Format renders values one per line as compact JSON, the way jq -c does.
func Format(values []any) (string, error) {
	var sb strings.Builder
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
