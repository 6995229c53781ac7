package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/labelscan/internal/export"
)

const defaultMaxQueryResults = 100

// QueryInput is the input for labelscan_query.
type QueryInput struct {
	Expression string `json:"expression" jsonschema:"jq expression over the last successful result, e.g. .allergens | to_entries[] | select(.value != null) | .key"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 100)"`
}

// QueryOutput is the output for labelscan_query.
type QueryOutput struct {
	Values    []any    `json:"values,omitzero"`
	Errors    []string `json:"errors,omitzero"`
	RawCount  int      `json:"raw_count"`
	Truncated bool     `json:"truncated,omitempty"`
}

// ToolQuery runs a jq expression over the last successful result.
func ToolQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
		if input.Expression == "" {
			return nil, QueryOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.App.Query.ValidateExpression(input.Expression); err != nil {
			return nil, QueryOutput{}, ErrInvalidInput(err.Error())
		}

		ok, err := d.Machine.Succeeded()
		if err != nil {
			return nil, QueryOutput{}, WrapWorkflowError(err)
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultMaxQueryResults
		}

		res, err := d.App.Query.Query(ok, input.Expression, maxResults)
		if err != nil {
			return nil, QueryOutput{}, ErrInvalidInput(err.Error())
		}

		return nil, QueryOutput{
			Values:    res.Values,
			Errors:    res.Errors,
			RawCount:  res.RawCount,
			Truncated: res.RawCount > len(res.Values),
		}, nil
	}
}

// ExportInput is the input for labelscan_export.
type ExportInput struct {
	Format string `json:"format,omitempty" jsonschema:"File format: json or xlsx (default: json)"`
	Dir    string `json:"dir,omitempty" jsonschema:"Directory to save into (default: EXPORT_DIR)"`
}

// ExportOutput is the output for labelscan_export.
type ExportOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// ToolExport saves the last successful result to disk.
func ToolExport(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportInput) (*sdkmcp.CallToolResult, ExportOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportInput) (*sdkmcp.CallToolResult, ExportOutput, error) {
		format := export.Format(input.Format)
		if format == "" {
			format = export.FormatJSON
		}
		if _, err := export.For(format); err != nil {
			return nil, ExportOutput{}, ErrInvalidInput(err.Error())
		}

		path, err := d.App.Export(d.Machine, format, input.Dir)
		if err != nil {
			return nil, ExportOutput{}, WrapWorkflowError(err)
		}
		return nil, ExportOutput{Path: path, Format: string(format)}, nil
	}
}
