package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"memograph/internal/dayassign"
)

func newDaysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "days <trip-folder>",
		Short: "Summarize the trip by calendar day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.openTrip(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.runLogger(layout, "days")
			if err != nil {
				return err
			}

			st, _ := ctx.openStore(layout, logger)
			table, err := st.Load()
			if err != nil {
				return err
			}
			if table.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Store is empty; run the scan stage first")
				return nil
			}

			ordered := make([]string, 0, table.Len())
			timestamps := make(map[string]string, table.Len())
			for _, rec := range table.Records {
				identity := rec.Identity()
				ordered = append(ordered, identity)
				timestamps[identity] = rec.Get("datetime_original")
			}

			groups := dayassign.GroupByDay(ordered, timestamps)
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records carry a parseable capture timestamp")
				return nil
			}

			rows := make([][]string, 0, len(groups))
			grouped := 0
			for _, group := range groups {
				day := int(group.Date.Sub(groups[0].Date).Hours()/24) + 1
				grouped += len(group.Identities)
				rows = append(rows, []string{
					strconv.Itoa(day),
					group.Date.Format("2006-01-02"),
					strconv.Itoa(len(group.Identities)),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Day", "Date", "Photos"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			if unknown := table.Len() - grouped; unknown > 0 {
				fmt.Fprintf(out, "%d record(s) without usable timestamps omitted\n", unknown)
			}
			return nil
		},
	}
}
