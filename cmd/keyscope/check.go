package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/app"
	"github.com/dshills/keyscope/internal/logging"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration, keymaps and scripts",
		Long: `Check loads the configuration and every keymap and script it names,
reports lint warnings such as misspelled key names, and applies the
keymaps to a scratch engine to verify that every action resolves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "config: %v\n", err)
				return &exitCodeError{code: 1}
			}

			keymaps, err := cfg.LoadKeymaps()
			if err != nil {
				fmt.Fprintf(out, "keymaps: %v\n", err)
				return &exitCodeError{code: 1}
			}

			failed := false
			warnings := 0
			for _, km := range keymaps {
				if err := km.Validate(); err != nil {
					fmt.Fprintf(out, "%s: %v\n", km.Name, err)
					failed = true
					continue
				}
				issues := km.Lint()
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: warning: %s\n", km.Name, issue)
				}
				warnings += len(issues)
				fmt.Fprintf(out, "%s: %d bindings\n", km.Name, len(km.Mappings))
			}
			if failed {
				return &exitCodeError{code: 1}
			}

			application, err := app.New(app.Options{Config: cfg, Logger: logging.Nop()})
			if err != nil {
				fmt.Fprintf(out, "%v\n", err)
				return &exitCodeError{code: 1}
			}
			application.Shutdown()

			fmt.Fprintf(out, "ok: %d keymaps, %d warnings\n", len(keymaps), warnings)
			return nil
		},
	}
}
