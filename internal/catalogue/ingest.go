package catalogue

import (
	"context"
	"fmt"

	"github.com/soundmark/soundmark/internal/landmark"
	"github.com/soundmark/soundmark/utils/logger"
)

// ingestBatchSize bounds how many postings are streamed to the store per
// InsertPostings call, the way the teacher this package is adapted from
// batched queries to stay under its driver's placeholder limit.
const ingestBatchSize = 5000

// Ingest persists postings for meta. If meta.SourcePath already names a
// work in the catalogue, its existing work_id is returned unchanged and no
// postings are touched — re-ingestion is an explicit rebuild operation,
// not an idempotent insert of more data.
func Ingest(ctx context.Context, store Store, meta WorkMeta, postings []landmark.Posting) (int64, error) {
	existing, err := store.FindWorkBySourcePath(ctx, meta.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("%w: looking up source path: %v", ErrIndexCorruption, err)
	}
	if existing != nil {
		dup := fmt.Errorf("%w: %s already present as work %d, skipping re-ingestion",
			ErrDuplicateSource, meta.SourcePath, existing.WorkID)
		logger.Info(dup.Error())
		return existing.WorkID, nil
	}

	meta.Kind = CanonicalKind(string(meta.Kind))
	workID, err := store.InsertWork(ctx, meta)
	if err != nil {
		return 0, fmt.Errorf("inserting work: %w", err)
	}

	for i := 0; i < len(postings); i += ingestBatchSize {
		end := i + ingestBatchSize
		if end > len(postings) {
			end = len(postings)
		}
		if err := store.InsertPostings(ctx, workID, postings[i:end]); err != nil {
			return workID, fmt.Errorf("inserting postings batch [%d:%d): %w", i, end, err)
		}
	}

	if err := store.SetPostingCount(ctx, workID, int64(len(postings))); err != nil {
		return workID, fmt.Errorf("updating posting count: %w", err)
	}

	logger.Infof("ingest: work %d (%s) indexed with %d postings", workID, meta.SourcePath, len(postings))
	return workID, nil
}
