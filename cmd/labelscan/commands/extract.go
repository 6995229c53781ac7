package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/query"
	"github.com/usestring/labelscan/internal/render"
	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/types"
)

// ErrServiceFailed is returned by extract when the service answered but
// could not structure the document.
var ErrServiceFailed = errors.New("the service could not structure the document")

var (
	exportResult bool
	exportFormat string
	exportDir    string
	queryExpr    string
)

// extract <file>: upload one PDF and print the result.
func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Upload a PDF and print its allergen and nutrition tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if queryExpr != "" {
				if err := appCtx.Query.ValidateExpression(queryExpr); err != nil {
					return err
				}
			}
			if _, err := export.For(export.Format(exportFormat)); err != nil {
				return err
			}

			file, err := types.LoadFile(args[0])
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			m := appCtx.NewMachine(workflow.WithObserver(func(tr workflow.Transition) {
				if workflow.Busy(tr.To) {
					fmt.Fprintln(stderr, render.RenderState(tr.To).Status)
				}
			}))
			if err := m.Select(file); err != nil {
				return err
			}

			done, err := m.Submit(cmd.Context())
			if err != nil {
				return err
			}

			var final workflow.State
			select {
			case final = <-done:
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			out := cmd.OutOrStdout()
			succeeded, isOk := final.(workflow.Succeeded)

			if queryExpr != "" && isOk {
				res, err := appCtx.Query.Query(succeeded.Result, queryExpr, 0)
				if err != nil {
					return err
				}
				for _, e := range res.Errors {
					fmt.Fprintln(stderr, "jq:", e)
				}
				text, err := query.Format(res.Values)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
			} else if err := render.WriteText(out, render.RenderState(final), render.Options{Width: renderWide}); err != nil {
				return err
			}

			if exportResult && isOk {
				path, err := appCtx.Export(m, export.Format(exportFormat), exportDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(stderr, "Saved", path)
			}

			switch st := final.(type) {
			case workflow.Failed:
				return ErrServiceFailed
			case workflow.TransportError:
				return st.Err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exportResult, "export", false, "save the result after a successful extraction")
	cmd.Flags().StringVar(&exportFormat, "format", string(export.FormatJSON), "export format: json or xlsx")
	cmd.Flags().StringVar(&exportDir, "out", "", "directory to save the export in (default $EXPORT_DIR or .)")
	cmd.Flags().StringVar(&queryExpr, "query", "", "jq expression to run over the result instead of printing tables")
	return cmd
}
