package catalogue

import (
	"context"
	"fmt"
	"math"

	"github.com/soundmark/soundmark/internal/landmark"
	"github.com/soundmark/soundmark/utils/logger"
)

// MatchOptions carries the configuration that affects scoring and the
// final timestamp conversion; these must match the configuration the
// catalogue was ingested under or results are meaningless.
type MatchOptions struct {
	MinConfidence   int
	AlignmentBucket int
	HopLength       int
	SampleRate      int
}

// MatchResult is the boundary-facing outcome of a successful match.
type MatchResult struct {
	WorkID            int64
	Title             string
	Kind              Kind
	Season            *int
	Episode           *int
	Confidence        int
	TimeOffsetSeconds float64
	TotalRawMatches   int
}

// Match scores every catalogued work against queryPostings by
// histogram-of-time-offset alignment and returns the best match, or nil if
// none clears opt.MinConfidence. A nil result with a nil error is the
// normal "no match" outcome (spec §7); only a failure of the store itself
// is returned as an error.
func Match(ctx context.Context, store Store, queryPostings []landmark.Posting, opt MatchOptions) (*MatchResult, error) {
	if len(queryPostings) == 0 {
		logger.Info("match: query produced no postings")
		return nil, nil
	}

	queryTimes := make(map[string][]int, len(queryPostings))
	hashes := make([]string, 0, len(queryPostings))
	for _, p := range queryPostings {
		if _, seen := queryTimes[p.Hash]; !seen {
			hashes = append(hashes, p.Hash)
		}
		queryTimes[p.Hash] = append(queryTimes[p.Hash], p.AnchorTime)
	}

	records, err := store.LookupHashes(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up hashes: %v", ErrIndexCorruption, err)
	}
	if len(records) == 0 {
		logger.Info("match: no hash intersections with the catalogue")
		return nil, nil
	}

	type bucketKey struct {
		workID int64
		bucket int
	}
	counts := make(map[bucketKey]int)
	totalRaw := 0

	for hash, recs := range records {
		qTimes := queryTimes[hash]
		for _, rec := range recs {
			for _, q := range qTimes {
				delta := rec.AnchorTime - q
				key := bucketKey{rec.WorkID, bucketOf(delta, opt.AlignmentBucket)}
				counts[key]++
				totalRaw++
			}
		}
	}

	type candidate struct {
		workID int64
		bucket int
		score  int
	}
	bestPerWork := make(map[int64]candidate)
	for k, c := range counts {
		cur, ok := bestPerWork[k.workID]
		if !ok || c > cur.score {
			bestPerWork[k.workID] = candidate{k.workID, k.bucket, c}
		}
	}

	var winner candidate
	var haveWinner bool
	for _, c := range bestPerWork {
		if !haveWinner || c.score > winner.score || (c.score == winner.score && c.workID < winner.workID) {
			winner = c
			haveWinner = true
		}
	}

	if !haveWinner || winner.score < opt.MinConfidence {
		logger.Infof("match: best score %d below confidence threshold %d", winner.score, opt.MinConfidence)
		return nil, nil
	}

	work, err := store.GetWork(ctx, winner.workID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching winning work: %v", ErrIndexCorruption, err)
	}

	return &MatchResult{
		WorkID:            work.WorkID,
		Title:             work.Title,
		Kind:              work.Kind,
		Season:            work.Season,
		Episode:           work.Episode,
		Confidence:        winner.score,
		TimeOffsetSeconds: float64(winner.bucket) * float64(opt.HopLength) / float64(opt.SampleRate),
		TotalRawMatches:   totalRaw,
	}, nil
}

// bucketOf buckets a frame delta at the given bucket width via
// round(delta/bucket)*bucket, absorbing sub-frame jitter and small timing
// drift across re-encodings.
func bucketOf(delta, bucket int) int {
	if bucket <= 0 {
		return delta
	}
	return int(math.Round(float64(delta)/float64(bucket))) * bucket
}
