package main

import (
	"github.com/spf13/cobra"

	"cdshelf/internal/browse"
	"cdshelf/internal/catalog"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse, search and edit the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := ctx.formatter()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				return browse.Run(cmd.Context(), store, formatter)
			})
		},
	}
}
