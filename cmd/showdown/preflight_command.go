package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showdown/internal/preflight"
	"showdown/internal/services"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, disk space, and service connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)

			rows := make([][]string, 0, len(results))
			failed := 0
			for _, result := range results {
				status := "OK"
				if !result.Passed {
					status = "FAIL"
					failed++
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows))

			if failed > 0 {
				return services.Wrap(
					services.ErrValidation,
					"cli",
					"preflight",
					fmt.Sprintf("%d of %d checks failed", failed, len(results)),
					nil,
				)
			}
			fmt.Fprintf(out, "All %d checks passed.\n", len(results))
			return nil
		},
	}
}
