// Package domain defines the core types and interfaces for the extract service
package domain

import "time"

// Request is one analysis: a raw transcript plus an optional date window and shop label
type Request struct {
	Text      string
	StartDate string // YYYY-MM-DD or "YYYY년 M월 D일"; empty = open
	EndDate   string
	ShopName  string
	JobID     string // optional; tags logs and artifacts
}

// ArtifactKind names an intermediate payload kept for diagnostics
type ArtifactKind string

// Artifact kinds
const (
	ArtifactPreprocessed    ArtifactKind = "preprocessed"
	ArtifactPrimaryRaw      ArtifactKind = "primary_raw"
	ArtifactPrimaryFragment ArtifactKind = "primary_fragment"
	ArtifactFallbackRaw     ArtifactKind = "fallback_raw"
	ArtifactCatalog         ArtifactKind = "catalog"
)

// Artifact is one recorded payload. Chunk is -1 for request level artifacts;
// Part numbers the fallback sub-pieces of a chunk (0 when not split)
type Artifact struct {
	JobID string       `json:"job_id"`
	Kind  ArtifactKind `json:"kind"`
	Chunk int          `json:"chunk"`
	Part  int          `json:"part"`
	Body  string       `json:"body"`
	At    time.Time    `json:"at"`
}
