package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"numis-cli/internal/api"
	"numis-cli/internal/format"
	"numis-cli/internal/mutate"
	"numis-cli/internal/querycache"
	"numis-cli/internal/review"
	"numis-cli/internal/store"
	"numis-cli/internal/tui"

	"github.com/bitmark-inc/logger"
	"github.com/spf13/cobra"
)

type App struct {
	API        string
	Token      string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "numis",
		Short:        "Numismatic collection CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  numis

  # Scriptable commands
  numis coins list

  # Work the review queues
  numis review list --tab vocabulary
  numis review approve 42 --tab vocabulary
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.API, "api", envOr("NUMIS_API", ""), "Collection server base URL (default: apiBaseUrl from config)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("NUMIS_TOKEN", ""), "Bearer token (default: token from config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("NUMIS_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newCoinsCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newProvenanceCmd(app))
	cmd.AddCommand(newAuctionCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newWishlistCmd(app))

	return cmd
}

// initLogging routes library logging to a rotating file under the config dir.
// Best effort: a read-only home directory must not break the CLI.
func initLogging() {
	dir, err := store.ConfigDir()
	if err != nil {
		return
	}
	logDir := filepath.Join(dir, "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return
	}
	_ = logger.Initialise(logger.Configuration{
		Directory: logDir,
		File:      "numis.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "info",
		},
	})
}

func runTUI(app *App) error {
	client, cfg, err := newClient(app)
	if err != nil {
		return err
	}
	dir, err := store.ConfigDir()
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Client: client,
		Config: cfg,
		State:  store.StateDB{Dir: dir},
	})
}

// newClient resolves connection settings (flags/env first, then config.json)
// and builds the API client.
func newClient(app *App) (*api.Client, *store.Config, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	base := app.API
	if base == "" {
		base = cfg.APIBaseURL
	}
	if strings.TrimSpace(base) == "" {
		return nil, nil, errors.New("no server configured; run `numis config set --api <url>` (or pass --api)")
	}
	token := app.Token
	if token == "" {
		token = cfg.Token
	}
	return api.New(base, token), cfg, nil
}

// session bundles what a mutating command needs: the client, a process-local
// cache, and review actions wired with a stderr notifier.
type session struct {
	client  *api.Client
	cache   *querycache.Cache
	actions *review.Actions
}

func newSession(cmd *cobra.Command, app *App) (*session, error) {
	client, _, err := newClient(app)
	if err != nil {
		return nil, err
	}
	cache := querycache.New(0)
	notifier := stderrNotifier(cmd)
	undo := mutate.NewUndoStacks(notifier)
	return &session{
		client:  client,
		cache:   cache,
		actions: review.NewActions(client, cache, notifier, undo),
	}, nil
}

// stderrNotifier prints mutation notices so scripted callers see outcome
// lines without polluting the JSON on stdout.
func stderrNotifier(cmd *cobra.Command) mutate.Notifier {
	return mutate.NotifierFunc(func(n mutate.Notice) {
		prefix := ""
		if n.Level == mutate.LevelError {
			prefix = "error: "
		}
		fmt.Fprintln(cmd.ErrOrStderr(), prefix+n.Text)
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
