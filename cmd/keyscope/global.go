package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/source/global"
)

func newGlobalCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Grab hotkeys system-wide",
		Long: `Global registers every binding made of modifiers and a single key with the
operating system and runs the engine on the grabbed presses. Bindings with
several non-modifier keys cannot be grabbed and are skipped.

Requires a build with the globalhotkeys tag (cgo, X11 on Linux).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !global.Available {
				return global.ErrUnavailable
			}

			var runErr error
			global.RunMain(func() {
				runErr = runGlobal(cmd, flags)
			})
			return runErr
		},
	}
}

func runGlobal(cmd *cobra.Command, flags *globalFlags) error {
	application, cleanup, err := flags.newApplication(os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := global.New(application.Loop(), global.WithLogger(application.Logger()))
	defer src.Close()

	for _, b := range application.Bindings() {
		if err := src.Grab(ctx, b.Hotkeys()); err != nil {
			application.Logger().WithError(err).Warn("binding %s not grabbed", b)
		}
	}
	if len(src.Grabbed()) == 0 {
		return errors.New("no hotkey could be grabbed")
	}
	cmd.Printf("grabbed %d hotkeys, press Ctrl+C to exit\n", len(src.Grabbed()))

	err = application.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
