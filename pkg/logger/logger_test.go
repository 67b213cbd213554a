package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, Config{})
	l.Debug().Msg("hidden")
	l.Info().Str("query", "lego").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "shown" || entry["query"] != "lego" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry["caller"]; !ok {
		t.Fatalf("caller missing: %#v", entry)
	}
}

func TestNewDebugAndPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, Config{Debug: true, PrettyFormat: true})
	l.Debug().Msg("visible in debug")

	if !strings.Contains(buf.String(), "visible in debug") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
	if json.Valid(buf.Bytes()) {
		t.Fatalf("pretty output should not be JSON: %q", buf.String())
	}
}
