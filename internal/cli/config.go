package cli

import (
	"github.com/spf13/cobra"

	"numis-cli/internal/store"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client configuration",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			// Never echo the token back in full.
			masked := *cfg
			if len(masked.Token) > 4 {
				masked.Token = masked.Token[:4] + "..."
			}
			return writeOut(cmd, app, map[string]any{"data": masked})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	var apiBase, token string
	var pollSeconds int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update stored configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("api") {
				cfg.APIBaseURL = apiBase
			}
			if cmd.Flags().Changed("set-token") {
				cfg.Token = token
			}
			if cmd.Flags().Changed("poll") {
				if pollSeconds < 1 {
					return writeErr(cmd, errBadArg("poll", cmd.Flags().Lookup("poll").Value.String(), "must be at least 1 second"))
				}
				cfg.PollSeconds = pollSeconds
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}

	cmd.Flags().StringVar(&apiBase, "api", "", "Collection server base URL")
	cmd.Flags().StringVar(&token, "set-token", "", "Bearer token to store")
	cmd.Flags().IntVar(&pollSeconds, "poll", 0, "Review-counts poll interval in seconds")
	return cmd
}
