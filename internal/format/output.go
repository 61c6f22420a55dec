package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write emits v on w in the named output format. Every CLI command funnels
// its stdout payload through here; human-facing notices go to stderr so that
// stdout stays machine-parseable.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes v as a single JSON document followed by a newline.
// Commands wrap payloads in a {"data": ...} envelope so scripts can pick
// the result with one jq path regardless of subcommand.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
