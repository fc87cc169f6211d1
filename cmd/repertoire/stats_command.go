package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}

			stats, err := store.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Recordings", strconv.FormatInt(stats.TotalRecordings, 10)},
				{"In library", strconv.FormatInt(stats.InLibrary, 10)},
				{"Composers", strconv.FormatInt(stats.UniqueComposers, 10)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Count"}, rows))
			return nil
		},
	}
}
