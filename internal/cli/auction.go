package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"numis-cli/internal/querycache"
	"numis-cli/internal/scrape"
)

func newAuctionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auction",
		Short: "Scrape auction catalogs and import lots",
	}
	cmd.AddCommand(newAuctionScrapeCmd(app))
	cmd.AddCommand(newAuctionJobsCmd(app))
	cmd.AddCommand(newAuctionLotsCmd(app))
	cmd.AddCommand(newAuctionImportCmd(app))
	return cmd
}

func newImporter(app *App) (*scrape.Importer, error) {
	client, _, err := newClient(app)
	if err != nil {
		return nil, err
	}
	return scrape.NewImporter(client, querycache.New(0)), nil
}

func newAuctionScrapeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <catalog-url>",
		Short: "Start a server-side catalog scrape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := newImporter(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := im.Start(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": job})
		},
	}
}

func newAuctionJobsCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List scrape jobs (or show one with --id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := newImporter(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(jobID) != "" {
				job, err := im.Refresh(cmd.Context(), jobID)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": job})
			}
			jobs, err := im.Jobs(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": jobs})
		},
	}

	cmd.Flags().StringVar(&jobID, "id", "", "Show a single job")
	return cmd
}

func newAuctionLotsCmd(app *App) *cobra.Command {
	var lotNumber string

	cmd := &cobra.Command{
		Use:   "lots <job-id>",
		Short: "List scraped lots for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := newImporter(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(lotNumber) != "" {
				lot, err := im.LotDetail(cmd.Context(), args[0], lotNumber)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": lot})
			}
			lots, err := im.Lots(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lots})
		},
	}

	cmd.Flags().StringVar(&lotNumber, "lot", "", "Show one lot in full")
	return cmd
}

func newAuctionImportCmd(app *App) *cobra.Command {
	var lotList string

	cmd := &cobra.Command{
		Use:   "import <job-id>",
		Short: "Import selected lots as coins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lots []string
			for _, l := range strings.Split(lotList, ",") {
				if l = strings.TrimSpace(l); l != "" {
					lots = append(lots, l)
				}
			}
			if len(lots) == 0 {
				return writeErr(cmd, errBadArg("lots", lotList, "expected a comma-separated lot list"))
			}
			im, err := newImporter(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := im.Import(cmd.Context(), args[0], lots)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&lotList, "lots", "", "Comma-separated lot numbers to import")
	_ = cmd.MarkFlagRequired("lots")
	return cmd
}
