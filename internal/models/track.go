package models

import "time"

// CatalogTrack is the raw track shape consumed from the external media catalog.
//
// Absent metadata fields arrive as nil or empty values; no field other than the
// pair (Title, Artist) is required, and even those may be individually empty
// (badly tagged files). Rows where both are empty are excluded at the
// normalization boundary.
type CatalogTrack struct {
	Title   string
	Artist  string
	Album   string
	Year    *int
	AddedAt *time.Time
}

// IndexedTrack is a row in the reference index: a normalized tuple describing
// a track physically present in the local library.
//
// The triple (ArtistClean, AlbumClean, TitleClean) is unique in the store;
// duplicate inserts are silently ignored so re-indexing is idempotent.
type IndexedTrack struct {
	TitleClean  string
	ArtistClean string
	AlbumClean  string
	Year        *int
	AddedAt     *time.Time
}

// Empty reports whether the row carries no usable identity (title and artist
// both empty after normalization). Such rows are never inserted.
func (t IndexedTrack) Empty() bool {
	return t.TitleClean == "" && t.ArtistClean == ""
}

// MatchMethod identifies which tier of the match engine produced a verdict.
type MatchMethod string

const (
	MatchNone       MatchMethod = "none"
	MatchExact      MatchMethod = "exact"
	MatchFuzzy      MatchMethod = "fuzzy"
	MatchFilesystem MatchMethod = "filesystem"
)

// MatchVerdict is the transient outcome of a single match-engine call.
// It is computed per call and never persisted; only the boolean outcome
// propagates into ledger mutations.
type MatchVerdict struct {
	Exists bool
	Method MatchMethod
}

// Verification aggregates the match engine and the filesystem fallback probe
// into a single verdict with provenance, used by reconciliation workflows.
type Verification struct {
	ExistsExact      bool        `json:"exists_exact"`
	ExistsFuzzy      bool        `json:"exists_fuzzy"`
	ExistsFilesystem bool        `json:"exists_filesystem"`
	Exists           bool        `json:"exists"`
	Method           MatchMethod `json:"method"`
}
