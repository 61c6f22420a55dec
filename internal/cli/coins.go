package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"numis-cli/internal/model"
)

func newCoinsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Coin commands",
	}
	cmd.AddCommand(newCoinsListCmd(app))
	cmd.AddCommand(newCoinsShowCmd(app))
	cmd.AddCommand(newCoinsCreateCmd(app))
	cmd.AddCommand(newCoinsUpdateCmd(app))
	cmd.AddCommand(newCoinsDeleteCmd(app))
	return cmd
}

func parseCoinID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadArg("coin-id", arg, "must be a positive integer")
	}
	return id, nil
}

func newCoinsListCmd(app *App) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coins (paged)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := client.ListCoins(cmd.Context(), page, pageSize)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "Items per page")
	return cmd
}

func newCoinsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <coin-id>",
		Short: "Show one coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCoinID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			coin, err := client.GetCoin(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": coin})
		},
	}
}

func coinFlags(cmd *cobra.Command, coin *model.Coin) {
	cmd.Flags().StringVar(&coin.Title, "title", "", "Coin title")
	cmd.Flags().StringVar(&coin.Country, "country", "", "Issuing country or authority")
	cmd.Flags().StringVar(&coin.Denomination, "denomination", "", "Denomination")
	cmd.Flags().StringVar(&coin.Mint, "mint", "", "Mint")
	cmd.Flags().StringVar(&coin.Ruler, "ruler", "", "Issuing ruler")
	cmd.Flags().StringVar(&coin.Composition, "composition", "", "Metal composition")
	cmd.Flags().Float64Var(&coin.WeightGrams, "weight", 0, "Weight in grams")
	cmd.Flags().Float64Var(&coin.DiameterMM, "diameter", 0, "Diameter in mm")
	cmd.Flags().StringVar(&coin.Grade, "grade", "", "Grade")
	cmd.Flags().StringVar(&coin.CatalogRef, "catalog", "", "Catalog reference (e.g. KM#25)")
	cmd.Flags().StringVar(&coin.Notes, "notes", "", "Free-form markdown notes")
}

func newCoinsCreateCmd(app *App) *cobra.Command {
	var coin model.Coin
	var year int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a coin to the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("year") {
				coin.Year = &year
			}
			created, err := client.CreateCoin(cmd.Context(), coin)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}

	coinFlags(cmd, &coin)
	cmd.Flags().IntVar(&year, "year", 0, "Year of issue")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newCoinsUpdateCmd(app *App) *cobra.Command {
	var coin model.Coin
	var year int

	cmd := &cobra.Command{
		Use:   "update <coin-id>",
		Short: "Update coin fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCoinID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Fetch-merge-put: unchanged flags keep their server values.
			current, err := client.GetCoin(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			applyChangedCoinFlags(cmd, &current, coin)
			if cmd.Flags().Changed("year") {
				current.Year = &year
			}
			updated, err := client.UpdateCoin(cmd.Context(), current)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}

	coinFlags(cmd, &coin)
	cmd.Flags().IntVar(&year, "year", 0, "Year of issue")
	return cmd
}

func applyChangedCoinFlags(cmd *cobra.Command, dst *model.Coin, src model.Coin) {
	if cmd.Flags().Changed("title") {
		dst.Title = src.Title
	}
	if cmd.Flags().Changed("country") {
		dst.Country = src.Country
	}
	if cmd.Flags().Changed("denomination") {
		dst.Denomination = src.Denomination
	}
	if cmd.Flags().Changed("mint") {
		dst.Mint = src.Mint
	}
	if cmd.Flags().Changed("ruler") {
		dst.Ruler = src.Ruler
	}
	if cmd.Flags().Changed("composition") {
		dst.Composition = src.Composition
	}
	if cmd.Flags().Changed("weight") {
		dst.WeightGrams = src.WeightGrams
	}
	if cmd.Flags().Changed("diameter") {
		dst.DiameterMM = src.DiameterMM
	}
	if cmd.Flags().Changed("grade") {
		dst.Grade = src.Grade
	}
	if cmd.Flags().Changed("catalog") {
		dst.CatalogRef = src.CatalogRef
	}
	if cmd.Flags().Changed("notes") {
		dst.Notes = src.Notes
	}
}

func newCoinsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <coin-id>",
		Short: "Remove a coin from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCoinID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteCoin(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "deleted"})
		},
	}
}
