package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input/keymap"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the configured keymaps in another format",
		Example: `  keyscope export --builtin demo --format yaml
  keyscope export -k keys.toml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := keymap.Format(format)
			switch f {
			case keymap.FormatTOML, keymap.FormatYAML, keymap.FormatJSON:
			default:
				return fmt.Errorf("%w: %q", keymap.ErrUnknownFormat, format)
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			keymaps, err := cfg.LoadKeymaps()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, km := range keymaps {
				if i > 0 && f == keymap.FormatYAML {
					fmt.Fprintln(out, "---")
				}
				if err := km.Encode(out, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(keymap.FormatTOML), "Output format (toml, yaml, json)")
	return cmd
}
