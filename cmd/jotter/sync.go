package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Replace remote notes with the first records of the remote source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Loading...")
			if err := nb.Refresh(cmd.Context()); err != nil {
				return err
			}

			var local int
			notes := nb.Notes()
			for _, n := range notes {
				if n.IsLocal {
					local++
				}
			}
			fmt.Fprintf(out, "%d notes (%d local, %d remote)\n", len(notes), local, len(notes)-local)
			return nil
		},
	}
}

func newClearCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every note and the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			nb.ClearAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}
}
