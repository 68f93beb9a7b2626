// Package catalogue is the index & matcher: it persists postings keyed by
// hash, and at query time performs candidate lookup, per-work time-offset
// histogramming, and confidence thresholding.
package catalogue

import (
	"context"
	"errors"
	"time"

	"github.com/soundmark/soundmark/internal/landmark"
)

// Kind distinguishes a movie from a TV episode. "tv" is accepted as a
// legacy synonym for "episode" on read (see CanonicalKind); the canonical
// label written by Ingest is always "movie" or "episode".
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

// CanonicalKind normalizes a stored or caller-supplied kind string,
// treating the legacy "tv" label as a synonym for "episode".
func CanonicalKind(s string) Kind {
	if s == "tv" {
		return KindEpisode
	}
	return Kind(s)
}

// Work is a single indexed reference recording.
type Work struct {
	WorkID       int64
	Title        string
	Kind         Kind
	Season       *int
	Episode      *int
	SourcePath   string
	PostingCount int64
	CreatedAt    time.Time
}

// WorkMeta is the caller-supplied metadata for a work being ingested.
type WorkMeta struct {
	Title      string
	Kind       Kind
	SourcePath string
	Season     *int
	Episode    *int
}

// PostingRecord is a (work, anchor time) pair retrieved from the store for
// a single hash.
type PostingRecord struct {
	WorkID     int64
	AnchorTime int
}

// Stats summarizes the catalogue's current contents.
type Stats struct {
	TotalWorks    int64
	Movies        int64
	Episodes      int64
	TotalPostings int64
}

// Store is the persistence contract the matcher and ingester are built
// against. Any engine offering O(1) or O(log N) lookup keyed by hash
// satisfies it; soundmark ships MySQL and Postgres implementations.
type Store interface {
	FindWorkBySourcePath(ctx context.Context, sourcePath string) (*Work, error)
	GetWork(ctx context.Context, workID int64) (*Work, error)
	InsertWork(ctx context.Context, meta WorkMeta) (int64, error)
	InsertPostings(ctx context.Context, workID int64, postings []landmark.Posting) error
	SetPostingCount(ctx context.Context, workID int64, count int64) error
	LookupHashes(ctx context.Context, hashes []string) (map[string][]PostingRecord, error)
	Statistics(ctx context.Context) (Stats, error)
	DeleteWork(ctx context.Context, workID int64) error
	Close() error
}

// Error kinds, in order of increasing severity (spec §7).
var (
	// ErrIndexCorruption indicates the store itself failed or returned
	// inconsistent data; fatal at the process level, the catalogue must
	// be rebuilt.
	ErrIndexCorruption = errors.New("catalogue: index corruption")

	// ErrDuplicateSource is never returned to callers of Ingest (the
	// contract is to hand back the existing work_id with a nil error);
	// Ingest only wraps it into the message it logs when a source_path is
	// already catalogued. The wrapped error value is not passed to
	// callers.
	ErrDuplicateSource = errors.New("catalogue: source already ingested")
)
