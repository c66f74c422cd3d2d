package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/interlinear/internal/database"
	"github.com/Mr-Dark-debug/interlinear/pkg/timeutil"
)

type sessionRow struct {
	*database.Session
	Alignments int `json:"alignments"`
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		offset int
		since  time.Duration
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List journaled annotation sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := database.SessionFilter{Limit: limit, Offset: offset}
			if since > 0 {
				cutoff := time.Now().Add(-since).UnixNano()
				filter.Since = &cutoff
			}

			return ctx.withStore(func(store *database.DBService) error {
				sessions, err := store.QuerySessions(filter)
				if err != nil {
					return err
				}
				rows := make([]sessionRow, 0, len(sessions))
				for _, s := range sessions {
					stats, err := store.GetSessionStats(s.SessionID)
					if err != nil {
						return err
					}
					rows = append(rows, sessionRow{Session: s, Alignments: stats.Alignments})
				}

				if asJSON {
					return writeJSON(cmd, rows)
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No sessions recorded")
					return nil
				}
				fmt.Fprintln(out, renderSessionTable(rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of sessions to skip")
	cmd.Flags().DurationVar(&since, "since", 0, "Only sessions started within this duration (e.g. 24h)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func renderSessionTable(rows []sessionRow) string {
	headers := []string{"Session", "Started", "Duration", "Policy", "Alignments", "Audio", "Source"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight}

	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		duration := "open"
		if r.EndedAt != nil {
			duration = timeutil.FormatDuration((*r.EndedAt - r.StartedAt) / int64(time.Millisecond))
		}
		body = append(body, []string{
			r.SessionID,
			timeutil.RelativeTime(r.StartedAt),
			duration,
			r.Policy,
			strconv.Itoa(r.Alignments),
			strconv.Itoa(r.AudioTokenCount),
			strconv.Itoa(r.SourceTokenCount),
		})
	}
	return renderTable(headers, body, aligns)
}
