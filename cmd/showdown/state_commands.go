package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"showdown/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Rotation state utilities",
	}

	stateCmd.AddCommand(newStateResetCommand(ctx))
	return stateCmd
}

func newStateResetCommand(ctx *commandContext) *cobra.Command {
	var purgeSnapshot bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the rotation window so the next run starts cold",
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

			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Rotation state cleared; the next run starts cold.")

			if purgeSnapshot {
				path := cfg.SnapshotPath()
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove snapshot cache: %w", err)
				}
				fmt.Fprintf(out, "Snapshot cache removed (%s).\n", path)
			}
			fmt.Fprintln(out, "Note: collections created by earlier runs are no longer tracked; remove them in Plex or Kometa if they should not linger.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&purgeSnapshot, "purge-snapshot", false, "Also delete the cached catalog snapshot")
	return cmd
}
