package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Info().Str("source", "Airbnb_Open_Data.csv").Msg("✓ Loaded CSV")
	l.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, _ := rec["run_id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run_id %q is not a uuid: %v", id, err)
	}
	if rec["message"] != "✓ Loaded CSV" || rec["source"] != "Airbnb_Open_Data.csv" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestConsoleLoggerIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "console")
	l.Debug().Msg("candidate skipped")
	out := buf.String()
	if !strings.Contains(out, "candidate skipped") || strings.HasPrefix(out, "{") {
		t.Fatalf("unexpected console output: %q", out)
	}
}
