package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arjenvw/repertoire/internal/config"
	"github.com/arjenvw/repertoire/internal/logger"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "repertoire",
		Short:         "Classical music recording catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Optional; a missing .env file is not an error.
			_ = godotenv.Load()

			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.Logging.Level)
			ctx.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newIngestCommand(ctx))
	rootCmd.AddCommand(newQueryCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newScrapeCommand(ctx))

	return rootCmd
}
