package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSONCompactAndPretty(t *testing.T) {
	v := map[string]any{"data": []int{1, 2}}

	var compact bytes.Buffer
	if err := Write(&compact, v, "json", false); err != nil {
		t.Fatal(err)
	}
	if got := compact.String(); got != "{\"data\":[1,2]}\n" {
		t.Fatalf("compact = %q", got)
	}

	var pretty bytes.Buffer
	if err := Write(&pretty, v, "", true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), "\n  \"data\"") {
		t.Fatalf("pretty = %q", pretty.String())
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, nil, "edn", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("err = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %q for an unknown format", buf.String())
	}
}
