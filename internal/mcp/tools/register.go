package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "labelscan_extract",
		Description: "Upload a food label PDF to the extraction service and wait for the result. Returns {attempt_id, state, status} plus allergens and nutrition_per_100g (name to value, value may be null) and preview when state is succeeded, or raw (the service's unstructured output) when state is failed. Only one extraction runs at a time; a concurrent call fails with BUSY.",
	}, ToolExtract(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "labelscan_query",
		Description: "Run a jq expression over the last successful extraction, e.g. '.allergens | to_entries[] | select(.value != null) | .key'. Returns {values, errors, raw_count}. Requires a prior successful labelscan_extract.",
	}, ToolQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "labelscan_export",
		Description: "Save the last successful extraction as extracted_data.json (default) or extracted_data.xlsx. Returns the saved path. Requires a prior successful labelscan_extract.",
	}, ToolExport(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "labelscan_history",
		Description: "List recent extraction attempts, newest first, with outcome (succeeded, failed, transport_error) and duration. Pass attempt_id to look up one attempt.",
	}, ToolHistory(d))
}
