package detail

import (
	"libraryexplorer/internal/catalog"
)

// Phase tracks how much of a detail record has been resolved.
type Phase string

const (
	// PhasePartial holds only the summary data already known at selection time.
	PhasePartial Phase = "partial"
	// PhaseFull means the enrichment fetch merged successfully.
	PhaseFull Phase = "full"
	// PhaseFailed means enrichment errored; partial data is retained.
	PhaseFailed Phase = "failed"
)

// Record is the tagged detail variant handed to the presentation layer.
// Enrichment fields are absent until the full phase is reached.
type Record struct {
	Kind   catalog.Kind         `json:"kind"`
	Book   *catalog.BookDetail  `json:"book,omitempty"`
	Author *catalog.AuthorDetail `json:"author,omitempty"`
}

// Key returns the record's catalog identifier regardless of variant.
func (r Record) Key() string {
	switch r.Kind {
	case catalog.KindBooks:
		if r.Book != nil {
			return r.Book.Key
		}
	case catalog.KindAuthors:
		if r.Author != nil {
			return r.Author.Key
		}
	}
	return ""
}

// Update is one enrichment outcome flowing out of a Resolution. Seq carries
// the resolution's sequence number so consumers can drop stale completions.
type Update struct {
	Seq    uint64
	Phase  Phase
	Record Record
	Err    error
}
