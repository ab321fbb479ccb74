package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"showdown/internal/runner"
	"showdown/internal/state"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var refresh bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one rotation run",
		Long: "Run advances the rotation window by one step: it scores the showdown\n" +
			"catalog against the Plex library, transitions window stages, persists the\n" +
			"new state, and rewrites the Kometa manifest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}

			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := runner.New(cfg, store, logger)
			if err != nil {
				return err
			}
			report, err := r.Run(cmd.Context(), runner.Options{Refresh: refresh, DryRun: dryRun})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			printRunReport(cmd.OutOrStdout(), cfg.Kometa.Destination, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the transition without saving state or writing the manifest")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Force a catalog re-scrape before the run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run report as JSON")
	return cmd
}

func printRunReport(out io.Writer, destination string, report runner.Report) {
	suffix := ""
	if report.DryRun {
		suffix = " (dry run)"
	}
	fmt.Fprintf(out, "Run %d complete%s\n", report.RunNumber, suffix)
	fmt.Fprintf(out, "  Spotlight:   %s\n", orNone(report.Spotlight))
	fmt.Fprintf(out, "  Admitted:    %s\n", orNone(strings.Join(report.Admitted, ", ")))
	fmt.Fprintf(out, "  Evicted:     %s\n", orNone(strings.Join(report.Evicted, ", ")))
	fmt.Fprintf(out, "  Expired:     %s\n", orNone(strings.Join(report.Expired, ", ")))
	fmt.Fprintf(out, "  Collections: %d rendered, %d deleted, %d skipped\n",
		report.Collections, len(report.Deleted), len(report.Skipped))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "  Skipped:     %s (no owned films)\n", strings.Join(report.Skipped, ", "))
	}
	if report.DryRun {
		fmt.Fprintln(out, "  Manifest:    not written (dry run)")
		return
	}
	fmt.Fprintf(out, "  Assets:      %d downloaded\n", report.Assets)
	fmt.Fprintf(out, "  Manifest:    %s\n", destination)
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}
