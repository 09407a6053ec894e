package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"memograph/internal/logging"
	"memograph/internal/pipeline"
)

func newStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name> <trip-folder>",
		Short: "Run a single enrichment stage over a trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.openTrip(args[1])
			if err != nil {
				return err
			}
			logger, err := ctx.runLogger(layout, args[0])
			if err != nil {
				return err
			}

			handlers, cleanup, err := pipeline.BuildHandlers(cfg, layout, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := cleanup(); err != nil {
					logger.Warn("failed to release stage resources", logging.Error(err))
				}
			}()

			st, backups := ctx.openStore(layout, logger)
			orch := pipeline.New(layout, st, backups, handlers, logger)
			result, err := orch.RunStage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stage %s: %d updated, %d added, %d skipped\n",
				args[0], result.Updated, result.Added, result.Skipped)
			if result.BackupPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot: %s\n", result.BackupPath)
			}
			return nil
		},
	}
}
