package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/source/wsbridge"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine to browser pages over WebSocket",
		Long: `Serve listens for WebSocket connections on /ws. Every connection gets its
own engine with the configured keymaps and scripts applied. Pages send
keydown, keyup and blur messages and receive fired and suppress messages.
/healthz reports engine health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cleanup, err := flags.newApplication(os.Stderr)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := application.Config()
			if addr != "" {
				cfg.Server.Address = addr
			}

			srv := wsbridge.New(wsbridge.Options{
				Addr:           cfg.Server.Address,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				MaxMessageSize: cfg.Server.MaxMessageSize,
				PingInterval:   cfg.Server.PingInterval.Std(),
				Engine:         cfg.InputConfig(),
				Setup:          application.SetupEngine,
				Logger:         application.Logger(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop()

			cmd.Printf("listening on %s\n", srv.URL())
			err = application.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.address)")
	return cmd
}
