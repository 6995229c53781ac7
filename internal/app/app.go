// Package app wires application dependencies for the CLI.
//
// It builds the service client, result validator, attempt history and query
// engine from a Config and hands out workflow machines that use them.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/usestring/labelscan/internal/cache"
	"github.com/usestring/labelscan/internal/config"
	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/query"
	"github.com/usestring/labelscan/internal/schema"
	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/client"
)

// App bundles the shared dependencies of every command.
type App struct {
	Config    *config.Config
	Client    *client.Client
	Validator *schema.Validator
	History   *cache.History
	Query     *query.Engine
	Logger    *slog.Logger
}

// New validates cfg and constructs the dependency graph.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	validator, err := schema.NewOkValidator()
	if err != nil {
		return nil, fmt.Errorf("building result validator: %w", err)
	}

	history, err := cache.NewHistory(cfg.HistoryMaxItems)
	if err != nil {
		return nil, fmt.Errorf("creating attempt history: %w", err)
	}

	c := client.New(
		client.WithBaseURL(cfg.APIBaseURL),
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}),
		client.WithLogger(logger),
	)

	return &App{
		Config:    cfg,
		Client:    c,
		Validator: validator,
		History:   history,
		Query:     query.NewEngine(),
		Logger:    logger,
	}, nil
}

// NewMachine returns an Idle workflow that submits through the app's client,
// validates through its validator and records into its history.
func (a *App) NewMachine(opts ...workflow.Option) *workflow.Machine {
	base := []workflow.Option{
		workflow.WithValidator(a.Validator),
		workflow.WithHistory(a.History),
		workflow.WithLogger(a.Logger),
	}
	return workflow.New(a.Client, append(base, opts...)...)
}

// Export serializes the successful result held by m and saves it to dir.
// An empty dir means the configured export directory. It fails with
// workflow.ErrNotSucceeded unless m is in the Succeeded state.
func (a *App) Export(m *workflow.Machine, format export.Format, dir string) (string, error) {
	ok, err := m.Succeeded()
	if err != nil {
		return "", err
	}

	serialize, err := export.For(format)
	if err != nil {
		return "", err
	}
	artifact, err := serialize(ok)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = a.Config.ExportDir
	}
	return export.Download(dir, artifact)
}
