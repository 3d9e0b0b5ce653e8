package infra

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("style", "japandi").Msg("rendered")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug output leaked in production: %s", out)
	}
	for _, want := range []string{`"service":"scenerender"`, `"style":"japandi"`, `"message":"rendered"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %q", out, want)
		}
	}
}

func TestNewLoggerDevelopmentIsVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("development", &buf)
	logger.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
