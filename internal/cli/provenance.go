package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"numis-cli/internal/model"
)

func newProvenanceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "provenance",
		Aliases: []string{"prov"},
		Short:   "Manage a coin's ownership chain",
	}
	cmd.AddCommand(newProvenanceListCmd(app))
	cmd.AddCommand(newProvenanceAddCmd(app))
	cmd.AddCommand(newProvenanceUpdateCmd(app))
	cmd.AddCommand(newProvenanceDeleteCmd(app))
	return cmd
}

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadArg("entry-id", arg, "must be a positive integer")
	}
	return id, nil
}

func newProvenanceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <coin-id>",
		Short: "List the ownership chain, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coinID, err := parseCoinID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := client.ListProvenance(cmd.Context(), coinID)
			if err != nil {
				return writeErr(cmd, err)
			}
			model.SortProvenance(entries)
			return writeOut(cmd, app, map[string]any{"data": entries})
		},
	}
}

func provenanceFlags(cmd *cobra.Command, e *model.ProvenanceEntry) {
	cmd.Flags().StringVar(&e.Owner, "owner", "", "Owner name (collection, dealer, person)")
	cmd.Flags().StringVar(&e.AcquiredVia, "via", "", "How acquired (auction|dealer|private|inheritance)")
	cmd.Flags().StringVar(&e.AuctionRef, "auction-ref", "", "Auction reference, e.g. 'CNG 529, lot 101'")
	cmd.Flags().Float64Var(&e.PricePaid, "price", 0, "Price paid")
	cmd.Flags().StringVar(&e.Currency, "currency", "", "Price currency")
	cmd.Flags().StringVar(&e.Note, "note", "", "Free-form note")
	cmd.Flags().IntVar(&e.SortOrder, "order", 0, "Position in the chain (ascending = oldest first)")
}

func newProvenanceAddCmd(app *App) *cobra.Command {
	var entry model.ProvenanceEntry
	var beginYear, endYear int

	cmd := &cobra.Command{
		Use:   "add <coin-id>",
		Short: "Append an entry to the ownership chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coinID, err := parseCoinID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			entry.CoinID = coinID
			if cmd.Flags().Changed("begin-year") {
				entry.BeginYear = &beginYear
			}
			if cmd.Flags().Changed("end-year") {
				entry.EndYear = &endYear
			}
			created, err := client.AddProvenance(cmd.Context(), coinID, entry)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}

	provenanceFlags(cmd, &entry)
	cmd.Flags().IntVar(&beginYear, "begin-year", 0, "Year ownership began")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Year ownership ended")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newProvenanceUpdateCmd(app *App) *cobra.Command {
	var entry model.ProvenanceEntry
	var beginYear, endYear int

	cmd := &cobra.Command{
		Use:   "update <entry-id>",
		Short: "Update an ownership-chain entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Fetch-merge-put: unchanged flags keep their server values.
			current, err := client.GetProvenance(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			applyChangedProvenanceFlags(cmd, &current, entry)
			if cmd.Flags().Changed("begin-year") {
				current.BeginYear = &beginYear
			}
			if cmd.Flags().Changed("end-year") {
				current.EndYear = &endYear
			}
			updated, err := client.UpdateProvenance(cmd.Context(), current)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}

	provenanceFlags(cmd, &entry)
	cmd.Flags().IntVar(&beginYear, "begin-year", 0, "Year ownership began")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Year ownership ended")
	return cmd
}

func applyChangedProvenanceFlags(cmd *cobra.Command, dst *model.ProvenanceEntry, src model.ProvenanceEntry) {
	if cmd.Flags().Changed("owner") {
		dst.Owner = src.Owner
	}
	if cmd.Flags().Changed("via") {
		dst.AcquiredVia = src.AcquiredVia
	}
	if cmd.Flags().Changed("auction-ref") {
		dst.AuctionRef = src.AuctionRef
	}
	if cmd.Flags().Changed("price") {
		dst.PricePaid = src.PricePaid
	}
	if cmd.Flags().Changed("currency") {
		dst.Currency = src.Currency
	}
	if cmd.Flags().Changed("note") {
		dst.Note = src.Note
	}
	if cmd.Flags().Changed("order") {
		dst.SortOrder = src.SortOrder
	}
}

func newProvenanceDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Remove an ownership-chain entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteProvenance(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "deleted"})
		},
	}
}
