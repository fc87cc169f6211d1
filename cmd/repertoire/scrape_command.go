package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arjenvw/repertoire/internal/scraper"
)

func newScrapeCommand(cmdCtx *commandContext) *cobra.Command {
	var rubricFlag, urlFlag string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch a source page and preview the extracted paragraphs",
		Long: `Scrape fetches a page from the configured source site and prints the
article paragraphs that would be handed to an AI assistant for extraction.
With --url a specific page is fetched; otherwise a random composer index
page from the chosen rubric.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scraper.New(cmdCtx.cfg.Scraper)
			if err != nil {
				return err
			}

			var page *scraper.Page
			if urlFlag != "" {
				page, err = s.Fetch(cmd.Context(), urlFlag)
			} else {
				page, err = s.FetchRandom(cmd.Context(), rubricFlag)
			}
			if err != nil {
				return err
			}

			paragraphs := page.Paragraphs()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d paragraph(s)\n\n", page.URL, len(paragraphs))
			for _, p := range paragraphs {
				fmt.Fprintln(cmd.OutOrStdout(), p)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rubricFlag, "rubric", "portretten",
		"Rubric to scrape from: "+strings.Join(scraper.RubricNames(), ", "))
	cmd.Flags().StringVar(&urlFlag, "url", "", "Fetch a specific URL instead of a random page")

	return cmd
}
