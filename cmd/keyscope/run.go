package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/app"
	"github.com/dshills/keyscope/internal/source/terminal"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Match hotkeys typed in the terminal",
		Long: `Run takes over the terminal and feeds every key press to the engine.
The screen shows the active scopes and the last hotkey fired.

Terminals do not report key releases, so each press is delivered as a
press followed by a release. Press Ctrl+\ to exit, or bind the quit action.
Logs are discarded unless --log-file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cleanup, err := flags.newApplication(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			screen, err := terminal.NewScreen()
			if err != nil {
				return err
			}
			src := terminal.New(screen, application.Loop(),
				terminal.WithLogger(application.Logger()),
				terminal.WithExitKey(tcell.KeyCtrlBackslash),
			)
			application.OnStatus(src.SetLines)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTogether(ctx, application, src.Run)
		},
	}
}

// runTogether runs the application and an input source until either ends.
func runTogether(ctx context.Context, application *app.Application, source func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appErr := make(chan error, 1)
	srcErr := make(chan error, 1)
	go func() { appErr <- application.Run(ctx) }()
	go func() { srcErr <- source(ctx) }()

	var err error
	select {
	case err = <-appErr:
		cancel()
		<-srcErr
	case err = <-srcErr:
		cancel()
		<-appErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
