package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"memograph/internal/query"
	"memograph/internal/store"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var filters query.Filters
	var exportPath string

	cmd := &cobra.Command{
		Use:   "query <trip-folder>",
		Short: "Filter trip records by column predicates",
		Long: `Filter trip records by column predicates. All predicates are combined
with AND; the extension list is the one OR'd exception. Date accepts
YYYY-MM-DD or an inclusive YYYY-MM-DD:YYYY-MM-DD range, day accepts an
integer or low:high range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.openTrip(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.runLogger(layout, "query")
			if err != nil {
				return err
			}

			st, _ := ctx.openStore(layout, logger)
			table, err := st.Load()
			if err != nil {
				return err
			}

			engine := query.NewEngine(logger)
			matched := engine.Run(table, filters)

			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, "No records matched")
				return nil
			}

			rows := make([][]string, 0, len(matched))
			for _, rec := range matched {
				rows = append(rows, []string{
					rec.Identity(),
					rec.Get("day_number"),
					rec.Get("location_inferred"),
					rec.Get("species_tags"),
					truncate(firstValue(rec, "caption", "caption_ai"), 60),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Photo", "Day", "Location", "Species", "Caption"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d record(s) matched\n", len(matched), table.Len())

			if exportPath != "" {
				dest := exportPath
				if !filepath.IsAbs(dest) {
					dest = filepath.Join(layout.OutputsDir(), dest)
				}
				if err := engine.Export(table, matched, dest, cfg.Store.ExportFullSchema); err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported to %s\n", dest)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filters.Text, "text", "", "Substring match over captions")
	flags.StringVar(&filters.Species, "species", "", "Substring match over species tags")
	flags.StringVar(&filters.People, "people", "", "Substring match over people tags")
	flags.StringVar(&filters.Location, "location", "", "Substring match over inferred location")
	flags.StringVar(&filters.Device, "device", "", "Substring match over camera model")
	flags.StringVar(&filters.Notes, "notes", "", "Substring match over notes")
	flags.BoolVar(&filters.Faces, "faces", false, "Only records with detected faces")
	flags.StringVar(&filters.Date, "date", "", "Capture date or start:end range (YYYY-MM-DD)")
	flags.StringVar(&filters.Day, "day", "", "Trip day number or low:high range")
	flags.StringVar(&filters.Ext, "ext", "", "Comma-separated file extension list")
	flags.IntVar(&filters.Limit, "limit", 0, "Cap the number of results (0 = unlimited)")
	flags.StringVar(&exportPath, "export", "", "Write matches to a CSV (relative paths land in the outputs dir)")

	return cmd
}

func firstValue(rec *store.Record, columns ...string) string {
	for _, col := range columns {
		if value := rec.Get(col); value != "" {
			return value
		}
	}
	return ""
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
