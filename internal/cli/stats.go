package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			stats, err := client.CollectionStats(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stats})
		},
	}
}
