package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/gesturevol/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var sessions bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent calibrations or sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if limit <= 0 {
				limit = cfg.Store.HistorySize
			}

			st, err := store.New(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if sessions {
				list, err := st.Sessions().Recent(limit)
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No sessions recorded")
					return nil
				}
				fmt.Fprintln(out, renderSessions(list))
				return nil
			}

			list, err := st.Calibrations().Recent(limit)
			if err != nil {
				return fmt.Errorf("list calibrations: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No calibrations recorded")
				return nil
			}
			fmt.Fprintln(out, renderCalibrations(list))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows (default from store.history_size)")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "List sessions instead of calibrations")
	return cmd
}

func renderCalibrations(list []*store.Calibration) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			c.CreatedAt.Local().Format(time.DateTime),
			strconv.FormatFloat(c.MaxDistance, 'f', 1, 64),
			fmt.Sprintf("%d,%d", c.ThumbX, c.ThumbY),
			fmt.Sprintf("%d,%d", c.IndexX, c.IndexY),
			shortID(c.SessionID),
		})
	}
	return renderTable(
		[]string{"When", "Span (px)", "Thumb", "Index", "Session"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func renderSessions(list []*store.Session) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		ended := "running"
		if s.EndedAt != nil {
			ended = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(s.ID),
			s.StartedAt.Local().Format(time.DateTime),
			ended,
			strconv.FormatInt(s.Frames, 10),
			s.Backend,
			s.EndReason,
		})
	}
	return renderTable(
		[]string{"Session", "Started", "Duration", "Frames", "Backend", "End"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
