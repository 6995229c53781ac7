package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/labelscan/internal/render"
	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/types"
)

// ExtractInput is the input for labelscan_extract.
type ExtractInput struct {
	Path string `json:"path" jsonschema:"Path of the PDF label on the local filesystem"`
}

// ExtractOutput is the output for labelscan_extract.
type ExtractOutput struct {
	AttemptID string `json:"attempt_id"`
	State     string `json:"state"` // succeeded or failed
	Status    string `json:"status"`

	// Set when the service structured the document. Values are strings or
	// null.
	Allergens any    `json:"allergens,omitempty"`
	Nutrition any    `json:"nutrition_per_100g,omitempty"`
	Preview   string `json:"preview,omitempty"`

	// Set when the service answered but could not structure the document.
	Raw    string `json:"raw,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ToolExtract uploads a PDF and waits for the outcome. A transport failure
// is a tool error; a service that could not structure the document is not.
func ToolExtract(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExtractInput) (*sdkmcp.CallToolResult, ExtractOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExtractInput) (*sdkmcp.CallToolResult, ExtractOutput, error) {
		if strings.TrimSpace(input.Path) == "" {
			return nil, ExtractOutput{}, ErrInvalidInput("path is required")
		}

		file, err := types.LoadFile(input.Path)
		if err != nil {
			return nil, ExtractOutput{}, ErrInvalidInput(err.Error())
		}

		if !d.extractMu.TryLock() {
			return nil, ExtractOutput{}, WrapWorkflowError(workflow.ErrBusy)
		}
		defer d.extractMu.Unlock()

		if err := d.Machine.Select(file); err != nil {
			return nil, ExtractOutput{}, WrapWorkflowError(err)
		}
		done, err := d.Machine.Submit(ctx)
		if err != nil {
			return nil, ExtractOutput{}, WrapWorkflowError(err)
		}

		var final workflow.State
		select {
		case final = <-done:
		case <-ctx.Done():
			return nil, ExtractOutput{}, WrapWorkflowError(ctx.Err())
		}

		output, err := buildExtractOutput(final)
		if err != nil {
			return nil, ExtractOutput{}, err
		}

		var sb strings.Builder
		if err := render.WriteText(&sb, render.RenderState(final), render.Options{Width: d.App.Config.RenderWidth}); err != nil {
			return nil, ExtractOutput{}, err
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: sb.String()}},
		}, output, nil
	}
}

func buildExtractOutput(final workflow.State) (ExtractOutput, error) {
	output := ExtractOutput{
		State:  final.Name(),
		Status: render.RenderState(final).Status,
	}

	switch st := final.(type) {
	case workflow.Succeeded:
		output.AttemptID = st.AttemptID
		allergens, err := types.ToAny(st.Result.Allergens)
		if err != nil {
			return ExtractOutput{}, err
		}
		nutrition, err := types.ToAny(st.Result.Nutrition)
		if err != nil {
			return ExtractOutput{}, err
		}
		output.Allergens = allergens
		output.Nutrition = nutrition
		output.Preview = st.Result.Preview
	case workflow.Failed:
		output.AttemptID = st.AttemptID
		output.Raw = st.Result.Raw
		output.Reason = st.Result.Reason
	case workflow.TransportError:
		return ExtractOutput{}, WrapWorkflowError(st.Err)
	}
	return output, nil
}
