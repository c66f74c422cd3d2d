package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/interlinear/internal/analysis"
	"github.com/Mr-Dark-debug/interlinear/internal/database"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <session-id|latest>",
		Short: "Summarize the alignment coverage of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown report format %q (want markdown or json)", format)
			}

			return ctx.withStore(func(store *database.DBService) error {
				sess, err := resolveSession(store, args[0])
				if err != nil {
					return err
				}
				report, err := analysis.NewAnalyzer(store).SessionReport(sess.SessionID)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd, report)
				}
				fmt.Fprint(cmd.OutOrStdout(), analysis.FormatReport(report))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown or json")
	return cmd
}
