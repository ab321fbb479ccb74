package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"showdown/internal/catalog"
	"showdown/internal/services/letterboxd"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var force bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Scrape the showdown catalog and refresh the snapshot cache",
		Long: "Probe fetches the Letterboxd showdown index, collects crew lists and film\n" +
			"TMDB ids for completed showdowns, and writes the snapshot the next run\n" +
			"consumes. Cached crew lists are reused unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit > 0 {
				cfg.Letterboxd.Limit = limit
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}

			previous, _, err := catalog.Load(cfg.SnapshotPath())
			if err != nil {
				return err
			}

			svc := letterboxd.NewService(cfg, nil, logger)
			snapshot, err := svc.Refresh(cmd.Context(), previous, force)
			if err != nil {
				return err
			}
			if err := catalog.Save(cfg.SnapshotPath(), snapshot); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, snapshot)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, snapshot.Len())
			for _, dataset := range snapshot.Showdowns {
				resolved := 0
				for _, entry := range dataset.Entries {
					if strings.TrimSpace(entry.TMDBID) != "" {
						resolved++
					}
				}
				status := strings.TrimSpace(dataset.Summary.Status)
				if status == "" {
					status = "Unknown"
				}
				rows = append(rows, []string{
					dataset.Summary.Slug,
					status,
					fmt.Sprintf("%d", dataset.EntryCount()),
					fmt.Sprintf("%d/%d", resolved, dataset.EntryCount()),
					dataset.PublishedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Showdown", "Status", "Films", "TMDB", "Published"},
				rows,
				3, 4,
			))
			fmt.Fprintf(out, "%d showdowns in snapshot; saved to %s\n", snapshot.Len(), cfg.SnapshotPath())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Only scrape the first N showdowns from the index")
	cmd.Flags().BoolVar(&force, "force", false, "Re-scrape crew lists even when the snapshot already has them")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the snapshot as JSON")
	return cmd
}
