package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"showdown/internal/state"
)

type statusEntry struct {
	Slug       string `json:"slug"`
	Title      string `json:"title,omitempty"`
	Stage      string `json:"stage"`
	Rank       int    `json:"rank"`
	Matches    int    `json:"matches"`
	EnteredAt  int64  `json:"entered_at"`
	StageSince int64  `json:"stage_since"`
}

type statusReport struct {
	RunCounter  int64         `json:"run_counter"`
	CompletedAt string        `json:"completed_at,omitempty"`
	Spotlight   string        `json:"spotlight,omitempty"`
	Entries     []statusEntry `json:"entries"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current rotation window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			meta, ok, err := store.LastRun(cmd.Context())
			if err != nil {
				return err
			}

			report := statusReport{RunCounter: st.RunCounter, Entries: []statusEntry{}}
			if ok && !meta.CompletedAt.IsZero() {
				report.CompletedAt = meta.CompletedAt.UTC().Format(time.RFC3339)
			}
			if spotlight, found := st.Spotlight(); found {
				name := spotlight.Title
				if name == "" {
					name = spotlight.Slug
				}
				report.Spotlight = name
			}
			for _, entry := range st.Entries {
				report.Entries = append(report.Entries, statusEntry{
					Slug:       entry.Slug,
					Title:      entry.Title,
					Stage:      string(entry.Stage),
					Rank:       entry.Rank,
					Matches:    entry.MatchCount,
					EnteredAt:  entry.EnteredAt,
					StageSince: entry.StageSince,
				})
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No rotation runs recorded yet. Start one with `showdown run`.")
				return nil
			}
			fmt.Fprintf(out, "Run %d completed %s\n", report.RunCounter, report.CompletedAt)
			fmt.Fprintf(out, "Spotlight: %s\n", orNone(report.Spotlight))
			if len(report.Entries) == 0 {
				fmt.Fprintln(out, "The rotation window is empty.")
				return nil
			}

			rows := make([][]string, 0, len(report.Entries))
			for _, entry := range report.Entries {
				rows = append(rows, []string{
					entry.Slug,
					entry.Title,
					entry.Stage,
					strconv.Itoa(entry.Rank),
					strconv.Itoa(entry.Matches),
					strconv.FormatInt(entry.EnteredAt, 10),
					strconv.FormatInt(entry.StageSince, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Showdown", "Title", "Stage", "Rank", "Matches", "Entered", "Since"},
				rows,
				4, 5, 6, 7,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the window as JSON")
	return cmd
}
