package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const tuiStateKey = "tui_state"

// TUIState stores small, user-facing UI state for restoring the last screen
// on relaunch. It is intentionally "best effort": callers should tolerate
// missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// View is one of: review|coins|coin|jobs|stats
	View string `json:"view,omitempty"`

	// ReviewTab is the last active review tab (vocabulary|ai|images|data).
	ReviewTab string `json:"reviewTab,omitempty"`

	// Sort is the review sort as "field" or "field:desc".
	Sort string `json:"sort,omitempty"`

	OpenCoinID int `json:"openCoinId,omitempty"`

	// RecentCoinIDs stores most-recently-opened coin ids, newest first.
	RecentCoinIDs []int `json:"recentCoinIds,omitempty"`
}

// StateDB is the on-disk store for TUI state, a sqlite database under the
// config directory.
type StateDB struct {
	Dir string
}

func (s StateDB) path() string {
	return filepath.Join(filepath.Clean(s.Dir), "state.sqlite")
}

func (s StateDB) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Clean(s.Dir), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when CLI and TUI overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS app_state (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s StateDB) LoadTUIState(ctx context.Context) (*TUIState, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	var raw string
	err = db.QueryRowContext(ctx, `SELECT v FROM app_state WHERE k = ?`, tuiStateKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return &TUIState{Version: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s StateDB) SaveTUIState(ctx context.Context, st *TUIState) error {
	if st == nil {
		return nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx,
		`INSERT INTO app_state(k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		tuiStateKey, string(b))
	return err
}
