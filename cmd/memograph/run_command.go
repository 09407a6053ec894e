package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"memograph/internal/logging"
	"memograph/internal/pipeline"
	"memograph/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run <trip-folder>",
		Short: "Run the full enrichment pipeline over a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.openTrip(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.runLogger(layout, "run")
			if err != nil {
				return err
			}

			if !skipPreflight {
				var failed []string
				for _, result := range preflight.RunAll(cmd.Context(), cfg, layout.Root) {
					if !result.Passed {
						failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
					}
				}
				if len(failed) > 0 {
					return fmt.Errorf("preflight failed:\n  %s", strings.Join(failed, "\n  "))
				}
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
			if err := orch.Run(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pipeline completed for %s (stages: %s)\n",
				layout.Root, strings.Join(orch.StageNames(), ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip collaborator readiness checks")
	return cmd
}
