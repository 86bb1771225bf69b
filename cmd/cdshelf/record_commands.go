package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := flags.build(cmd, nil)
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				added, err := store.Add(cmd.Context(), rec)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, positioned{Position: store.Len(), Record: added})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q as #%d (id %s)\n", added.Title, store.Len(), added.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags recordFlags
	var keep bool

	cmd := &cobra.Command{
		Use:   "update <id|#position>",
		Short: "Replace a record",
		Long: "Replace a record wholly with the given fields. Fields not given become empty.\n" +
			"With --keep, fields not given keep their current value.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				current, index, err := resolveTarget(store, args[0])
				if err != nil {
					return err
				}
				var base *catalog.Record
				if keep {
					base = &current
				}
				rec, err := flags.build(cmd, base)
				if err != nil {
					return err
				}
				updated, err := store.Update(cmd.Context(), current.ID, rec)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, positioned{Position: index + 1, Record: updated})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %q\n", index+1, updated.Title)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep current values for fields not given")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "delete <id|#position>",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				target, index, err := resolveTarget(store, args[0])
				if err != nil {
					return err
				}
				if !assumeYes {
					ok, err := confirm(cmd, fmt.Sprintf("Tem certeza que deseja excluir %q? [y/N] ", target.Title))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
						return nil
					}
				}
				removed, err := store.Delete(cmd.Context(), target.ID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, positioned{Position: index + 1, Record: removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d %q\n", index+1, removed.Title)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(cmd.OutOrStdout())
			return false, nil
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
		return true, nil
	default:
		return false, nil
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var unsorted bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records sorted by title",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := ctx.formatter()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				var records []catalog.Record
				if unsorted {
					records = store.Search(search)
				} else {
					records = store.DisplayList(search)
				}
				items := make([]positioned, len(records))
				for i, r := range records {
					items[i] = positioned{Position: store.IndexOf(r.ID) + 1, Record: r}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					if strings.TrimSpace(search) != "" {
						fmt.Fprintf(out, "No records match %q\n", search)
					} else {
						fmt.Fprintln(out, "Catalog is empty")
					}
					return nil
				}
				fmt.Fprintln(out, recordTable(items, formatter))
				fmt.Fprintf(out, "Total de CDs: %d\n", len(items))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only records whose title, author or genre contains this text")
	cmd.Flags().BoolVar(&unsorted, "unsorted", false, "Keep insertion order instead of sorting by title")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|#position>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := ctx.formatter()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				rec, index, err := resolveTarget(store, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, positioned{Position: index + 1, Record: rec})
				}
				cells := formatter.Row(rec)
				rows := [][]string{
					{"#", itoa(index + 1)},
					{"ID", rec.ID},
				}
				for i, h := range catalog.Headers {
					rows = append(rows, []string{h, cells[i]})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{title: "Campo"}, {title: "Valor"}}, rows))
				return nil
			})
		},
	}
}
