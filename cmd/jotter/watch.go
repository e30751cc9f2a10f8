package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/adapters/lifecycle"
)

func newWatchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Print changes made to stored keys by other processes (fs adapter)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "**"
			if len(args) == 1 {
				pattern = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			events, err := nb.Watch(ctx, pattern)
			if err != nil {
				return err
			}

			src := lifecycle.NewSource(events)
			if err := src.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %q (ctrl-c to stop)\n", pattern)
			for e := range src.Events() {
				fmt.Fprintln(out, e.String())
			}
			return nil
		},
	}
}
