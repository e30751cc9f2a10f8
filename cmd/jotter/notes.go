package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/pkg/core"
)

func newAddCmd(g *globals) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a local note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("title cannot be blank")
			}

			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			note := nb.Add(args[0], body)
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", note.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Note body")
	return cmd
}

func newListCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest local notes first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			notes := nb.Notes()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			for _, note := range notes {
				fmt.Fprintln(cmd.OutOrStdout(), formatRow(note))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newShowCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			note, ok := nb.Get(id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), note)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatRow(note))
			if note.Body != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", note.Body)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newEditCmd(g *globals) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title and/or body of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var update jotter.NoteUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("body") {
				update.Body = &body
			}
			if update.Title == nil && update.Body == nil {
				return fmt.Errorf("nothing to change: pass --title and/or --body")
			}

			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			if _, ok := nb.Get(id); !ok {
				return fmt.Errorf("note %d not found", id)
			}
			nb.Update(id, update)

			note, _ := nb.Get(id)
			fmt.Fprintln(cmd.OutOrStdout(), formatRow(note))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New body")
	return cmd
}

func newRmCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			nb, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer nb.Close(cmd.Context())

			if _, ok := nb.Get(id); !ok {
				return fmt.Errorf("note %d not found", id)
			}
			nb.Remove(id)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", id)
			return nil
		},
	}
}

// formatRow renders a note as "<id> [new] <title>".
func formatRow(note core.Note) string {
	if note.IsLocal {
		return fmt.Sprintf("%d [new] %s", note.ID, note.Title)
	}
	return fmt.Sprintf("%d %s", note.ID, note.Title)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
