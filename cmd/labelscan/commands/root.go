package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/usestring/labelscan/internal/app"
	"github.com/usestring/labelscan/internal/config"
	"github.com/usestring/labelscan/internal/logging"
)

var (
	appCtx     *app.App
	closeLog   func() error
	renderWide int

	apiURL   string
	logLevel string
)

// Execute runs the CLI with ctx as the context of every command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "labelscan",
		Short:        "Extract allergen and nutrition tables from food label PDFs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if apiURL != "" {
				cfg.APIBaseURL = apiURL
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger, cleanup, err := logging.Setup(logging.Config{
				Level:      cfg.LogLevel,
				FilePath:   cfg.LogFile,
				MaxSizeMB:  cfg.LogMaxSizeMB,
				MaxBackups: cfg.LogMaxBackups,
				MaxAgeDays: cfg.LogMaxAgeDays,
				Compress:   cfg.LogCompress,
			})
			if err != nil {
				return err
			}
			closeLog = cleanup

			appCtx, err = app.New(cfg, logger)
			if err != nil {
				return err
			}
			renderWide = cfg.RenderWidth
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "extraction service base URL (default $LABELSCAN_API_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or warn)")

	root.AddCommand(extractCmd(), shellCmd(), schemaCmd(), mcpCmd())
	return root
}
