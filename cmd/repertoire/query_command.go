package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arjenvw/repertoire/internal/catalog"
	"github.com/arjenvw/repertoire/internal/database"
)

func newQueryCommand(cmdCtx *commandContext) *cobra.Command {
	var composerFlag, workFlag, labelFlag string
	var libraryFlag bool
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List recordings matching the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}

			filter := catalog.Filter{
				Composer: composerFlag,
				Work:     workFlag,
				Label:    labelFlag,
				Limit:    limitFlag,
			}
			if cmd.Flags().Changed("library") {
				filter.InLibrary = &libraryFlag
			}

			recordings, err := store.Recordings(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(recordings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recordings found")
				return nil
			}

			rows := make([][]string, 0, len(recordings))
			for _, rec := range recordings {
				rows = append(rows, recordingRow(rec))
			}
			headers := []string{"ID", "Composer", "Work", "Performers", "Label", "Year", "Library"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "%d recording(s)\n", len(recordings))
			return nil
		},
	}

	cmd.Flags().StringVar(&composerFlag, "composer", "", "Filter by composer name (substring)")
	cmd.Flags().StringVar(&workFlag, "work", "", "Filter by work title (substring)")
	cmd.Flags().StringVar(&labelFlag, "label", "", "Filter by record label (substring)")
	cmd.Flags().BoolVar(&libraryFlag, "library", false, "Filter by in-library flag")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of results")

	return cmd
}

func recordingRow(rec database.Recording) []string {
	composer, work := "", rec.Title
	if rec.Work != nil {
		work = displayName(rec.Work.CanonicalTitle, rec.Work.Title)
		composer = displayName(rec.Work.Composer.CanonicalName, rec.Work.Composer.Name)
	}

	year := ""
	if rec.ReleaseYear != nil {
		year = strconv.Itoa(*rec.ReleaseYear)
	}
	library := ""
	if rec.InLibrary {
		library = "yes"
	}

	return []string{
		strconv.FormatUint(uint64(rec.ID), 10),
		composer,
		work,
		strings.Join(rec.Performers, ", "),
		rec.Label,
		year,
		library,
	}
}

func displayName(canonical *string, raw string) string {
	if canonical != nil && *canonical != "" {
		return *canonical
	}
	return raw
}
