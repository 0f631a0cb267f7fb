package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input/search"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List bindings, optionally filtered by a fuzzy query",
		Long: `List applies the configured keymaps and scripts and prints every
binding with its scopes and description. A query narrows the list to
bindings whose description, hotkeys or scopes fuzzy-match it, best
match first.`,
		Example: `  keyscope list
  keyscope list save
  keyscope list -k examples/demo.toml "tog list"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := flags.newApplication(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			results := search.Bindings(query, application.Bindings(), limit)
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no bindings match %q\n", query)
				return &exitCodeError{code: 1}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HOTKEYS\tSCOPES\tDESCRIPTION")
			for _, r := range results {
				b := r.Binding
				scopes := "global"
				if !b.IsGlobal() {
					scopes = strings.Join(b.Scopes(), ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Hotkeys(), scopes, b.Description())
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many bindings (0 for all)")
	return cmd
}
