package logger

import (
	"bytes"
	"context"
	"testing"

	kit "orderlens/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"garbage": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Service: "orderlens-test", Writer: &buf})

	ctx := WithJob(WithRequest(context.Background(), "req-1"), "job-9")
	if JobID(ctx) != "job-9" {
		t.Fatalf("JobID = %q", JobID(ctx))
	}
	if WithJob(ctx, "") != ctx || WithRequest(ctx, "") != ctx {
		t.Fatalf("empty ids must not wrap the context")
	}

	// Init is once-only so the writer may belong to an earlier test binary init
	l := C(ctx).Output(&buf)
	l.Info().Msg("chunk done")
	nl := Named("extract").Output(&buf)
	nl.Info().Msg("named")

	out := buf.String()
	kit.MustContain(t, out, `"request_id":"req-1"`)
	kit.MustContain(t, out, `"job_id":"job-9"`)
	kit.MustContain(t, out, `"component":"extract"`)
}
