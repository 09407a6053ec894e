package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newBackupsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backups <trip-folder>",
		Short: "List store snapshots for a trip, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.openTrip(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.runLogger(layout, "backups")
			if err != nil {
				return err
			}

			_, backups := ctx.openStore(layout, logger)
			paths, err := backups.List(layout.StorePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "No snapshots yet")
				return nil
			}

			rows := make([][]string, 0, len(paths))
			for _, path := range paths {
				size := "?"
				modified := "?"
				if info, err := os.Stat(path); err == nil {
					size = fmt.Sprintf("%d B", info.Size())
					modified = info.ModTime().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{filepath.Base(path), size, modified})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Snapshot", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
