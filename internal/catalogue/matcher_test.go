package catalogue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundmark/soundmark/internal/catalogue"
	"github.com/soundmark/soundmark/internal/landmark"
)

// fakeStore is an in-memory catalogue.Store used to exercise Ingest and
// Match without a real database.
type fakeStore struct {
	works       map[int64]*catalogue.Work
	bySource    map[string]int64
	postings    map[string][]catalogue.PostingRecord
	nextID      int64
	deletedIDs  map[int64]bool
	failLookups bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		works:      make(map[int64]*catalogue.Work),
		bySource:   make(map[string]int64),
		postings:   make(map[string][]catalogue.PostingRecord),
		deletedIDs: make(map[int64]bool),
	}
}

func (s *fakeStore) FindWorkBySourcePath(_ context.Context, sourcePath string) (*catalogue.Work, error) {
	id, ok := s.bySource[sourcePath]
	if !ok {
		return nil, nil
	}
	w := s.works[id]
	return w, nil
}

func (s *fakeStore) GetWork(_ context.Context, workID int64) (*catalogue.Work, error) {
	w, ok := s.works[workID]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (s *fakeStore) InsertWork(_ context.Context, meta catalogue.WorkMeta) (int64, error) {
	s.nextID++
	id := s.nextID
	s.works[id] = &catalogue.Work{
		WorkID:     id,
		Title:      meta.Title,
		Kind:       meta.Kind,
		Season:     meta.Season,
		Episode:    meta.Episode,
		SourcePath: meta.SourcePath,
		CreatedAt:  time.Unix(0, 0),
	}
	s.bySource[meta.SourcePath] = id
	return id, nil
}

func (s *fakeStore) InsertPostings(_ context.Context, workID int64, postings []landmark.Posting) error {
	for _, p := range postings {
		s.postings[p.Hash] = append(s.postings[p.Hash], catalogue.PostingRecord{WorkID: workID, AnchorTime: p.AnchorTime})
	}
	return nil
}

func (s *fakeStore) SetPostingCount(_ context.Context, workID int64, count int64) error {
	s.works[workID].PostingCount = count
	return nil
}

func (s *fakeStore) LookupHashes(_ context.Context, hashes []string) (map[string][]catalogue.PostingRecord, error) {
	if s.failLookups {
		return nil, require.AnError
	}
	out := make(map[string][]catalogue.PostingRecord)
	for _, h := range hashes {
		if recs, ok := s.postings[h]; ok {
			out[h] = recs
		}
	}
	return out, nil
}

func (s *fakeStore) Statistics(_ context.Context) (catalogue.Stats, error) {
	var stats catalogue.Stats
	for _, w := range s.works {
		stats.TotalWorks++
		stats.TotalPostings += w.PostingCount
		if w.Kind == catalogue.KindMovie {
			stats.Movies++
		} else {
			stats.Episodes++
		}
	}
	return stats, nil
}

func (s *fakeStore) DeleteWork(_ context.Context, workID int64) error {
	s.deletedIDs[workID] = true
	delete(s.works, workID)
	return nil
}

func (s *fakeStore) Close() error { return nil }

func opts() catalogue.MatchOptions {
	return catalogue.MatchOptions{MinConfidence: 5, AlignmentBucket: 10, HopLength: 512, SampleRate: 22050}
}

func TestIngestIsIdempotentPerSourcePath(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	meta := catalogue.WorkMeta{Title: "Dune", Kind: catalogue.KindMovie, SourcePath: "/media/dune.mp3"}
	postings := []landmark.Posting{{Hash: "aaaa", AnchorTime: 10}, {Hash: "bbbb", AnchorTime: 20}}

	id1, err := catalogue.Ingest(ctx, store, meta, postings)
	require.NoError(t, err)

	id2, err := catalogue.Ingest(ctx, store, meta, []landmark.Posting{{Hash: "cccc", AnchorTime: 99}})
	require.NoError(t, err)

	require.Equal(t, id1, id2)
	require.Equal(t, int64(2), store.works[id1].PostingCount)
}

func TestMatchSelfIdentification(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	meta := catalogue.WorkMeta{Title: "Dune", Kind: catalogue.KindMovie, SourcePath: "/media/dune.mp3"}
	var postings []landmark.Posting
	for i := 0; i < 50; i++ {
		postings = append(postings, landmark.Posting{Hash: hashFor(i), AnchorTime: i * 100})
	}
	workID, err := catalogue.Ingest(ctx, store, meta, postings)
	require.NoError(t, err)

	result, err := catalogue.Match(ctx, store, postings, opts())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, workID, result.WorkID)
	require.InDelta(t, 0, result.TimeOffsetSeconds, 0.25)
	require.GreaterOrEqual(t, result.Confidence, opts().MinConfidence)
}

func TestMatchSubClipAlignment(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	meta := catalogue.WorkMeta{Title: "Dune", Kind: catalogue.KindMovie, SourcePath: "/media/dune.mp3"}
	var full []landmark.Posting
	for i := 0; i < 200; i++ {
		full = append(full, landmark.Posting{Hash: hashFor(i), AnchorTime: i * 10})
	}
	workID, err := catalogue.Ingest(ctx, store, meta, full)
	require.NoError(t, err)

	// Query is the same hashes but re-anchored as if the clip started 50
	// frames into the reference.
	const clipStart = 50
	var clip []landmark.Posting
	for _, p := range full {
		if p.AnchorTime < clipStart {
			continue
		}
		clip = append(clip, landmark.Posting{Hash: p.Hash, AnchorTime: p.AnchorTime - clipStart})
	}

	result, err := catalogue.Match(ctx, store, clip, opts())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, workID, result.WorkID)

	expectedSeconds := float64(clipStart) * float64(opts().HopLength) / float64(opts().SampleRate)
	bucketSeconds := float64(opts().AlignmentBucket) * float64(opts().HopLength) / float64(opts().SampleRate)
	require.InDelta(t, expectedSeconds, result.TimeOffsetSeconds, bucketSeconds)
}

func TestMatchMonotoneDiscrimination(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	var aPostings, bPostings []landmark.Posting
	for i := 0; i < 50; i++ {
		aPostings = append(aPostings, landmark.Posting{Hash: hashFor(i), AnchorTime: i * 100})
		bPostings = append(bPostings, landmark.Posting{Hash: hashFor(1000 + i), AnchorTime: i * 100})
	}

	workA, err := catalogue.Ingest(ctx, store, catalogue.WorkMeta{Title: "A", Kind: catalogue.KindMovie, SourcePath: "/a.mp3"}, aPostings)
	require.NoError(t, err)
	_, err = catalogue.Ingest(ctx, store, catalogue.WorkMeta{Title: "B", Kind: catalogue.KindMovie, SourcePath: "/b.mp3"}, bPostings)
	require.NoError(t, err)

	result, err := catalogue.Match(ctx, store, aPostings, opts())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, workA, result.WorkID)
}

func TestMatchBelowThresholdReturnsNil(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	meta := catalogue.WorkMeta{Title: "Dune", Kind: catalogue.KindMovie, SourcePath: "/media/dune.mp3"}
	_, err := catalogue.Ingest(ctx, store, meta, []landmark.Posting{{Hash: "only-one", AnchorTime: 0}})
	require.NoError(t, err)

	result, err := catalogue.Match(ctx, store, []landmark.Posting{{Hash: "only-one", AnchorTime: 0}}, opts())
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestMatchWithNoPostingsReturnsNilNoError(t *testing.T) {
	store := newFakeStore()
	result, err := catalogue.Match(context.Background(), store, nil, opts())
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestMatchStoreFailureIsAnError(t *testing.T) {
	store := newFakeStore()
	store.failLookups = true
	_, err := catalogue.Match(context.Background(), store, []landmark.Posting{{Hash: "x", AnchorTime: 0}}, opts())
	require.Error(t, err)
	require.ErrorIs(t, err, catalogue.ErrIndexCorruption)
}

func hashFor(i int) string {
	return fmt.Sprintf("hash-%d", i)
}
