package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// resetGlobal restores the package-wide zerolog state after a test.
func resetGlobal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"Error", zerolog.ErrorLevel},
		{LevelDisabled, zerolog.Disabled},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		pretty     string
		wantLevel  LogLevel
		wantPretty bool
	}{
		{"unset keeps defaults", "", "", LevelInfo, false},
		{"debug pretty", "debug", "true", LevelDebug, true},
		{"unparseable pretty ignored", "", "sometimes", LevelInfo, false},
		{"level passed through verbatim", "WARNING", "0", "WARNING", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.level)
			t.Setenv(EnvPretty, tt.pretty)

			cfg := ConfigFromEnv()
			if cfg.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", cfg.Level, tt.wantLevel)
			}
			if cfg.Pretty != tt.wantPretty {
				t.Errorf("Pretty = %v, want %v", cfg.Pretty, tt.wantPretty)
			}
		})
	}
}

func TestSetup_ComponentLoggerFromEnv(t *testing.T) {
	resetGlobal(t)
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvPretty, "false")

	buf := &bytes.Buffer{}
	cfg := ConfigFromEnv()
	cfg.Output = buf
	Setup(cfg)

	logger := NewLogger("quota")
	logger.Info().Msg("quota updated")
	logger.Warn().Int("daily_remaining", 5).Msg("quota running low")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want only the warn line: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "quota" {
		t.Errorf("component = %v, want quota", entry["component"])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["daily_remaining"] != float64(5) {
		t.Errorf("daily_remaining = %v, want 5", entry["daily_remaining"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestSetup_Pretty(t *testing.T) {
	resetGlobal(t)

	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelDebug, Pretty: true, Output: buf})
	logger := NewLogger("nfl-proxy")
	logger.Debug().Msg("listening")

	out := buf.String()
	if !strings.Contains(out, "listening") {
		t.Errorf("output %q missing message", out)
	}
	if json.Valid([]byte(strings.TrimSpace(out))) {
		t.Errorf("pretty output should not be JSON: %q", out)
	}
}

func TestSetup_Disabled(t *testing.T) {
	resetGlobal(t)

	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelDisabled, Output: buf})
	logger := NewLogger("apisports-client")
	logger.Error().Msg("dropped")

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestSetup_NilOutput(t *testing.T) {
	resetGlobal(t)

	// Falls back to stderr instead of panicking.
	logger := Setup(Config{Level: LevelDisabled})
	logger.Info().Msg("discarded")
}
