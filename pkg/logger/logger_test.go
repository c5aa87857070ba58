package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestGet_BeforeInitUsesDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	log := Get()
	if log == nil {
		t.Fatal("expected a usable logger before Init")
	}
	// Chained event calls must work on the returned logger.
	log.Debug().Str("stage", "startup").Msg("suppressed at default level")
}

func TestInit_FirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	Get().Info().Msg("routed")
	if second.Len() != 0 {
		t.Fatalf("second Init should be a no-op, got output %q", second.String())
	}
	if !strings.Contains(first.String(), "routed") {
		t.Fatalf("message missing from configured output: %q", first.String())
	}
}

func TestWith_TagsComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf})

	log := With("mailer")
	log.Info().Msg("tagged")
	if !strings.Contains(buf.String(), `"component":"mailer"`) {
		t.Fatalf("component field missing: %q", buf.String())
	}
}
