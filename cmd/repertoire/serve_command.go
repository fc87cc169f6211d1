package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arjenvw/repertoire/internal/server"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := cmdCtx.openPipeline()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cmdCtx.cfg.Server, pipeline, cmdCtx.store)
			return srv.Run(ctx)
		},
	}
}
