package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/interlinear/internal/database"
)

type exportDocument struct {
	Session    *database.Session           `json:"session"`
	Alignments []*database.AlignmentRecord `json:"alignments"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <session-id|latest>",
		Short: "Export the alignments of a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *database.DBService) error {
				sess, err := resolveSession(store, args[0])
				if err != nil {
					return err
				}
				records, err := store.QueryAlignments(sess.SessionID)
				if err != nil {
					return err
				}
				doc := exportDocument{Session: sess, Alignments: records}

				if output == "" {
					return writeJSON(cmd, doc)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := encodeJSON(f, doc); err != nil {
					f.Close()
					return fmt.Errorf("write export: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d alignments from %s to %s\n", len(records), sess.SessionID, output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
