package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPollSeconds is how often the TUI refreshes review counts.
const DefaultPollSeconds = 5

type Config struct {
	// APIBaseURL is the collection server, e.g. "https://numis.example.com".
	APIBaseURL string `json:"apiBaseUrl,omitempty"`

	// Token is the bearer token sent on every request.
	Token string `json:"token,omitempty"`

	// PollSeconds overrides the review-counts poll interval.
	PollSeconds int `json:"pollSeconds,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id (e.g. "default", "bronze").
	Profile string `json:"profile,omitempty"`
	// Glyphs selects the glyph set (e.g. "unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
}

func (c *Config) PollInterval() int {
	if c != nil && c.PollSeconds > 0 {
		return c.PollSeconds
	}
	return DefaultPollSeconds
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.numis).
	if v := strings.TrimSpace(os.Getenv("NUMIS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".numis"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config to make recovery from accidental
	// overwrites easier. Ignore errors to avoid blocking normal usage.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp file name + rename, so concurrent CLI and TUI processes
	// cannot corrupt the file. The token lives here, hence 0600.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
