package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/labelscan/internal/cache"
	"github.com/usestring/labelscan/internal/config"
	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/types"
)

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, baseURL string) *App {
	t.Helper()
	a, err := New(&config.Config{
		APIBaseURL:      baseURL,
		ExportDir:       t.TempDir(),
		HistoryMaxItems: 4,
	}, nil)
	require.NoError(t, err)
	return a
}

func runOnce(t *testing.T, m *workflow.Machine) workflow.State {
	t.Helper()
	file, err := types.NewFile("label.pdf", []byte("%PDF-1.7\n"))
	require.NoError(t, err)
	require.NoError(t, m.Select(file))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	return <-done
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(&config.Config{}, nil)
	assert.ErrorIs(t, err, config.ErrNoBaseURL)
}

func TestApp_ExtractAndExport(t *testing.T) {
	srv := newServer(t, `{"extracted":{"allergens":{"Peanuts":"Yes","Egg":null},"nutrition_per_100g":{"Energy":"250 kcal"}},"preview":"Ingredients: ..."}`)
	a := newApp(t, srv.URL)
	m := a.NewMachine()

	final := runOnce(t, m)
	require.IsType(t, workflow.Succeeded{}, final)

	path, err := a.Export(m, export.FormatJSON, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.Config.ExportDir, export.JSONFilename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.Ok
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Ingredients: ...", got.Preview)
	assert.Equal(t, []string{"Peanuts", "Egg"}, got.Allergens.Names())

	recent := a.History.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, cache.OutcomeSucceeded, recent[0].Outcome)
	assert.Equal(t, "label.pdf", recent[0].File)
}

func TestApp_ExportRequiresSuccess(t *testing.T) {
	srv := newServer(t, `{"extracted":{"error":true,"raw":"model output was not JSON"},"preview":""}`)
	a := newApp(t, srv.URL)
	m := a.NewMachine()

	final := runOnce(t, m)
	require.IsType(t, workflow.Failed{}, final)

	_, err := a.Export(m, export.FormatJSON, "")
	assert.ErrorIs(t, err, workflow.ErrNotSucceeded)

	entries, err := os.ReadDir(a.Config.ExportDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_MalformedSuccessIsTransportError(t *testing.T) {
	// numbers are not allowed as table values
	srv := newServer(t, `{"extracted":{"allergens":{},"nutrition_per_100g":{"Energy":250}},"preview":""}`)
	a := newApp(t, srv.URL)

	final := runOnce(t, a.NewMachine())
	assert.IsType(t, workflow.TransportError{}, final)
}
