package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet channels on the unix socket and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			e.log.Info("starting",
				zap.String("version", version),
				zap.String("socket", e.cfg.Socket),
				zap.String("web", e.cfg.Web.Addr))
			return app.Run(ctx)
		},
	}
	cmd.Flags().String("web-addr", "", "websocket listen address, empty to disable")
	return cmd
}
