package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"orderlens/internal/services/extract/domain"
)

// NopSink discards artifacts; the pipeline skips fragment capture when it sees one
type NopSink struct{}

// Record satisfies domain.SinkPort
func (NopSink) Record(context.Context, domain.Artifact) error { return nil }

// FileSink writes one file per artifact under Dir/<job>/
type FileSink struct {
	Dir string
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Record satisfies domain.SinkPort
func (f FileSink) Record(_ context.Context, a domain.Artifact) error {
	job := reUnsafe.ReplaceAllString(a.JobID, "_")
	if job == "" {
		job = "adhoc"
	}
	dir := filepath.Join(f.Dir, job)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s.txt", a.At.UTC().Format("20060102T150405.000"), a.Kind)
	if a.Chunk >= 0 {
		name = fmt.Sprintf("%s_%s_c%02d_p%02d.txt", a.At.UTC().Format("20060102T150405.000"), a.Kind, a.Chunk, a.Part)
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(a.Body), 0o644)
}

// MultiSink fans an artifact out to several sinks and returns the first error
type MultiSink []domain.SinkPort

// Record satisfies domain.SinkPort
func (m MultiSink) Record(ctx context.Context, a domain.Artifact) error {
	var first error
	for _, s := range m {
		if err := s.Record(ctx, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}
