package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <spec>...",
		Short: "Parse hotkey specifications and print their canonical form",
		Example: `  keyscope parse "ctrl+k"
  keyscope parse "meta+shift+p,ctrl+shift+p" "g+h"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, spec := range args {
				set, err := key.ParseSet(spec)
				if err != nil {
					fmt.Fprintf(out, "%q: error: %v\n", spec, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%q => %s\n", spec, set)
				for _, hk := range set.Hotkeys() {
					mods := hk.Modifiers().String()
					if mods == "" {
						mods = "none"
					}
					fmt.Fprintf(out, "  %-20s modifiers: %-16s keys: %s\n",
						hk, mods, strings.Join(hk.Keys(), " "))
					for _, k := range hk.Keys() {
						if keymap.IsKnownKey(k) {
							continue
						}
						if s := keymap.Suggest(k); s != "" {
							fmt.Fprintf(out, "    warning: unknown key %q, did you mean %q?\n", k, s)
						} else {
							fmt.Fprintf(out, "    warning: unknown key %q\n", k)
						}
					}
				}
			}
			if failed > 0 {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}
}
