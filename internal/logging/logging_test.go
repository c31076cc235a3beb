package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn", "json", false); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("hidden")
	log.Warn().Str("game_id", "g1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["message"] != "shown" || entry["game_id"] != "g1" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetupVerboseConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "error", "console", true); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Debug().Msg("tick")
	if !strings.Contains(buf.String(), "tick") {
		t.Errorf("verbose should log debug, got %q", buf.String())
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	if err := Setup(&bytes.Buffer{}, "loud", "json", false); err == nil {
		t.Error("expected level error")
	}
	if err := Setup(&bytes.Buffer{}, "info", "xml", false); err == nil {
		t.Error("expected format error")
	}
}
