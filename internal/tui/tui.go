package tui

import (
	"numis-cli/internal/api"
	"numis-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client *api.Client
	Config *store.Config
	State  store.StateDB
}

func Run(opts Options) error {
	if opts.Config != nil && opts.Config.TUI != nil {
		SetGlyphs(opts.Config.TUI.Glyphs)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &store.Config{}
	}
	m := newAppModel(opts.Client, opts.Client, opts.Client, cfg, opts.State)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
