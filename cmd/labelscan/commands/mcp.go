package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/labelscan/internal/mcp"
	"github.com/usestring/labelscan/internal/mcp/tools"
)

// mcp: serve the workflow as MCP tools on stdin/stdout.
func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve extraction as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(tools.NewDeps(appCtx), mcp.WithBuiltinTools())
			if err != nil {
				return err
			}

			slog.Info("starting labelscan MCP server on stdio", "api_url", appCtx.Client.BaseURL())
			if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
