package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormatsOutput(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(output string) bool
	}{
		{
			name:   "json format is one object per line",
			format: "json",
			check: func(output string) bool {
				return strings.HasPrefix(output, "{") && strings.Contains(output, `"message":"hello"`)
			},
		},
		{
			name:   "console format is human readable",
			format: "console",
			check: func(output string) bool {
				return !strings.HasPrefix(output, "{") && strings.Contains(output, "hello")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: "info", Format: tt.format, Output: &buf})
			log.Info().Msg("hello")

			if !tt.check(buf.String()) {
				t.Fatalf("unexpected output %q", buf.String())
			}
		})
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	log.Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn to be written, got %q", buf.String())
	}
}
