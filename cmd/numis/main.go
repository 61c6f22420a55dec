package main

import (
	"os"
	"strconv"
	"strings"

	"numis-cli/internal/cli"
)

func isCoinID(s string) bool {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil && id > 0
}

func rewriteDirectCoinLookupArgs(argv []string) []string {
	// Convenience: `numis <coin-id>` works like `numis coins show <coin-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite
	// argv before parsing. Users often pass persistent flags first (e.g.
	// `numis --api ... 42`), so we find the first positional token, not just
	// argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--api":    true,
		"--token":  true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Everything after the terminator is literal args, never a
			// subcommand.
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") {
				continue
			}
			if boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
				continue
			}
			continue
		}

		// First positional token.
		if isCoinID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "coins", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectCoinLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
