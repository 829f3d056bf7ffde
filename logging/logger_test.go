package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("transcript_id", "abc").Msg("transcript added")
	Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"transcript_id":"abc"`) || !strings.Contains(out, `"message":"transcript added"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry written at info level: %s", out)
	}
}

func TestSetLoggerAndWith(t *testing.T) {
	var buf bytes.Buffer
	previous := Logger()
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(previous) })

	child := With().Str("component", "intake").Logger()
	child.Warn().Msg("skipping transcript")

	out := buf.String()
	if !strings.Contains(out, `"component":"intake"`) || !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}
