package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"numis-cli/internal/model"
)

func newWishlistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Track coins you are hunting for",
	}
	cmd.AddCommand(newWishlistListCmd(app))
	cmd.AddCommand(newWishlistAddCmd(app))
	cmd.AddCommand(newWishlistRemoveCmd(app))
	return cmd
}

func newWishlistListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wishlist entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := client.ListWishlist(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": items})
		},
	}
}

func newWishlistAddCmd(app *App) *cobra.Command {
	var item model.WishlistItem
	var year int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a wishlist entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("year") {
				item.Year = &year
			}
			created, err := client.AddWishlist(cmd.Context(), item)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}

	cmd.Flags().StringVar(&item.Title, "title", "", "What you are looking for")
	cmd.Flags().StringVar(&item.Country, "country", "", "Issuing country or authority")
	cmd.Flags().StringVar(&item.Denomination, "denomination", "", "Denomination")
	cmd.Flags().IntVar(&year, "year", 0, "Year of issue")
	cmd.Flags().Float64Var(&item.MaxPrice, "max-price", 0, "Price ceiling")
	cmd.Flags().StringVar(&item.Note, "note", "", "Free-form note")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newWishlistRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a wishlist entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return writeErr(cmd, errBadArg("entry-id", args[0], "must be a positive integer"))
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.RemoveWishlist(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "removed"})
		},
	}
}
