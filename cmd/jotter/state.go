package main

import (
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

func newStateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the internal state of the store and its storage as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			report := map[string]any{
				"store": nb.State(),
				"notes": nb.Snapshot(),
			}
			if in, ok := nb.Storage().(introspection.Introspectable); ok {
				report["storage"] = in.State()
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of jotter",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jotter version %s\n", jotter.Version)
		},
	}
}
