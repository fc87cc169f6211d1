package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newIngestCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest AI-assistant output from a file or stdin",
		Long: `Ingest runs raw AI-assistant text through the extract, enrich and
persist stages. Reads from the given file, or from stdin when no file is
given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			pipeline, err := cmdCtx.openPipeline()
			if err != nil {
				return err
			}

			result := pipeline.IngestText(cmd.Context(), string(raw))
			if result.Failed() {
				return fmt.Errorf("%s: %s", result.Summary(), result.Outcome.Reason)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			for _, failure := range result.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s / %s: %s\n",
					failure.Composer, failure.Work, failure.Reason)
			}
			return nil
		},
	}
}
