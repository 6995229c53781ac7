package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/labelscan/internal/app"
	"github.com/usestring/labelscan/internal/config"
	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/workflow"
)

const okBody = `{"extracted":{"allergens":{"Peanuts":"Yes","Egg":null},"nutrition_per_100g":{"Energy":"250 kcal"}},"preview":"Ingredients: peanuts"}`

func newDeps(t *testing.T, status int, body string) *Deps {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	a, err := app.New(&config.Config{
		APIBaseURL:  srv.URL,
		ExportDir:   t.TempDir(),
		RenderWidth: 80,
	}, nil)
	require.NoError(t, err)
	return NewDeps(a)
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
	return path
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var coded *CodedError
	require.True(t, errors.As(err, &coded), "expected CodedError, got %v", err)
	return coded.Code
}

func TestToolExtract_Succeeded(t *testing.T) {
	d := newDeps(t, http.StatusOK, okBody)

	res, out, err := ToolExtract(d)(context.Background(), nil, ExtractInput{Path: writePDF(t)})
	require.NoError(t, err)

	assert.Equal(t, "succeeded", out.State)
	assert.NotEmpty(t, out.AttemptID)
	assert.Equal(t, map[string]any{"Peanuts": "Yes", "Egg": nil}, out.Allergens)
	assert.Equal(t, map[string]any{"Energy": "250 kcal"}, out.Nutrition)
	assert.Equal(t, "Ingredients: peanuts", out.Preview)
	assert.Empty(t, out.Raw)

	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Egg      —")
}

func TestToolExtract_ServiceErrorIsNotToolError(t *testing.T) {
	d := newDeps(t, http.StatusOK, `{"extracted":{"error":true,"raw":"could not read table"},"preview":""}`)

	_, out, err := ToolExtract(d)(context.Background(), nil, ExtractInput{Path: writePDF(t)})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.State)
	assert.Equal(t, "could not read table", out.Raw)
	assert.Nil(t, out.Allergens)
}

func TestToolExtract_TransportError(t *testing.T) {
	d := newDeps(t, http.StatusBadRequest, `{"detail":"Only PDF files are supported"}`)

	_, _, err := ToolExtract(d)(context.Background(), nil, ExtractInput{Path: writePDF(t)})
	require.Error(t, err)
	assert.Equal(t, ErrCodeServiceError, codeOf(t, err))
	assert.IsType(t, workflow.TransportError{}, d.Machine.State())
}

func TestToolExtract_InvalidInput(t *testing.T) {
	d := newDeps(t, http.StatusOK, okBody)
	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	for _, path := range []string{"", txt, filepath.Join(t.TempDir(), "missing.pdf")} {
		_, _, err := ToolExtract(d)(context.Background(), nil, ExtractInput{Path: path})
		assert.Equal(t, ErrCodeInvalidInput, codeOf(t, err), path)
	}
	assert.IsType(t, workflow.Idle{}, d.Machine.State())
}

func TestToolExtract_Busy(t *testing.T) {
	d := newDeps(t, http.StatusOK, okBody)
	d.extractMu.Lock()
	defer d.extractMu.Unlock()

	_, _, err := ToolExtract(d)(context.Background(), nil, ExtractInput{Path: writePDF(t)})
	assert.Equal(t, ErrCodeBusy, codeOf(t, err))
}

func TestToolQueryAndExport(t *testing.T) {
	d := newDeps(t, http.StatusOK, okBody)
	ctx := context.Background()

	_, _, err := ToolQuery(d)(ctx, nil, QueryInput{Expression: ".allergens"})
	assert.Equal(t, ErrCodeNotFound, codeOf(t, err), "nothing to query before an extraction")

	_, _, err = ToolExport(d)(ctx, nil, ExportInput{})
	assert.Equal(t, ErrCodeNotFound, codeOf(t, err))

	_, _, err = ToolExtract(d)(ctx, nil, ExtractInput{Path: writePDF(t)})
	require.NoError(t, err)

	_, q, err := ToolQuery(d)(ctx, nil, QueryInput{Expression: ".allergens | to_entries[] | .key", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, q.Values, 1)
	assert.Equal(t, 2, q.RawCount)
	assert.True(t, q.Truncated)

	_, _, err = ToolQuery(d)(ctx, nil, QueryInput{Expression: ".allergens["})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(t, err))

	dir := t.TempDir()
	_, e, err := ToolExport(d)(ctx, nil, ExportInput{Format: "xlsx", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, export.XLSXFilename), e.Path)
	assert.Equal(t, "xlsx", e.Format)

	_, _, err = ToolExport(d)(ctx, nil, ExportInput{Format: "csv"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(t, err))
}

func TestToolHistory(t *testing.T) {
	d := newDeps(t, http.StatusOK, okBody)
	ctx := context.Background()

	_, h, err := ToolHistory(d)(ctx, nil, HistoryInput{})
	require.NoError(t, err)
	assert.Empty(t, h.Attempts)

	_, out, err := ToolExtract(d)(ctx, nil, ExtractInput{Path: writePDF(t)})
	require.NoError(t, err)

	_, h, err = ToolHistory(d)(ctx, nil, HistoryInput{})
	require.NoError(t, err)
	require.Len(t, h.Attempts, 1)
	assert.Equal(t, out.AttemptID, h.Attempts[0].AttemptID)
	assert.Equal(t, "succeeded", h.Attempts[0].Outcome)
	assert.Equal(t, "label.pdf", h.Attempts[0].File)

	_, one, err := ToolHistory(d)(ctx, nil, HistoryInput{AttemptID: out.AttemptID})
	require.NoError(t, err)
	require.Len(t, one.Attempts, 1)
	assert.Equal(t, out.AttemptID, one.Attempts[0].AttemptID)

	_, _, err = ToolHistory(d)(ctx, nil, HistoryInput{AttemptID: "unknown"})
	assert.Equal(t, ErrCodeNotFound, codeOf(t, err))
}

func TestWrapWorkflowError(t *testing.T) {
	assert.Nil(t, WrapWorkflowError(nil))
	assert.Equal(t, ErrCodeBusy, codeOf(t, WrapWorkflowError(workflow.ErrBusy)))
	assert.Equal(t, ErrCodeInvalidInput, codeOf(t, WrapWorkflowError(workflow.ErrNoFile)))
	assert.Equal(t, ErrCodeTimeout, codeOf(t, WrapWorkflowError(context.DeadlineExceeded)))
	assert.Equal(t, ErrCodeTransport, codeOf(t, WrapWorkflowError(errors.New("connection refused"))))
}
