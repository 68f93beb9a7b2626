// Package soundmark wires the signal front-end, peak extractor and hasher
// into the catalogue, exposing the boundary API external collaborators
// (the upload endpoint, bulk-ingestion CLI, presentation layer) consume:
// Ingest, Match and Statistics.
package soundmark

import (
	"context"
	"fmt"

	"github.com/soundmark/soundmark/configs"
	"github.com/soundmark/soundmark/internal/audio"
	"github.com/soundmark/soundmark/internal/catalogue"
	"github.com/soundmark/soundmark/internal/landmark"
	"github.com/soundmark/soundmark/internal/peaks"
	"github.com/soundmark/soundmark/utils/logger"
)

// Soundmark is the core service: an explicit handle over a catalogue.Store
// and the fingerprint configuration it was built with. There is
// deliberately no package-level singleton connection — callers construct
// one Soundmark per process (or per test) and pass it down explicitly.
type Soundmark struct {
	store catalogue.Store
	fpCfg configs.FingerprintConfig
}

// New wires a Soundmark instance around an already-open store.
func New(store catalogue.Store, fpCfg configs.FingerprintConfig) *Soundmark {
	return &Soundmark{store: store, fpCfg: fpCfg}
}

// Close releases the underlying store's resources.
func (s *Soundmark) Close() error {
	return s.store.Close()
}

// Fingerprint runs the signal front-end, peak extractor and hasher over
// audioPath, returning the postings the catalogue ingests or matches
// against.
func (s *Soundmark) Fingerprint(audioPath string) ([]landmark.Posting, error) {
	samples, err := audio.Load(audioPath, s.fpCfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("loading audio: %w", err)
	}

	spectrogram, err := audio.Spectrogram(samples, s.fpCfg.NFFT, s.fpCfg.HopLength)
	if err != nil {
		return nil, fmt.Errorf("computing spectrogram: %w", err)
	}

	points := peaks.Find(spectrogram, s.fpCfg.PeakNeighborhoodRadius, s.fpCfg.MinAmplitude)
	logger.Infof("fingerprint: %s produced %d peaks", audioPath, len(points))

	postings := landmark.Hash(points, s.fpCfg.FanValue, s.fpCfg.TimeWindow)
	logger.Infof("fingerprint: %s produced %d postings", audioPath, len(postings))

	return postings, nil
}

// Ingest fingerprints audioPath and adds it to the catalogue under meta,
// returning its work_id. Ingesting an already-present source_path is a
// no-op that returns the existing work_id.
func (s *Soundmark) Ingest(ctx context.Context, meta catalogue.WorkMeta, audioPath string) (int64, error) {
	postings, err := s.Fingerprint(audioPath)
	if err != nil {
		return 0, err
	}
	return catalogue.Ingest(ctx, s.store, meta, postings)
}

// Match identifies audioPath against the catalogue. A nil result with a
// nil error means no confident match was found; it is not an error.
func (s *Soundmark) Match(ctx context.Context, audioPath string, minConfidence int) (*catalogue.MatchResult, error) {
	postings, err := s.Fingerprint(audioPath)
	if err != nil {
		return nil, err
	}

	if minConfidence <= 0 {
		minConfidence = s.fpCfg.MinConfidence
	}

	opt := catalogue.MatchOptions{
		MinConfidence:   minConfidence,
		AlignmentBucket: s.fpCfg.AlignmentBucket,
		HopLength:       s.fpCfg.HopLength,
		SampleRate:      s.fpCfg.SampleRate,
	}

	return catalogue.Match(ctx, s.store, postings, opt)
}

// Statistics reports the catalogue's current contents.
func (s *Soundmark) Statistics(ctx context.Context) (catalogue.Stats, error) {
	return s.store.Statistics(ctx)
}

// Delete removes a work and its postings from the catalogue. This is a
// catalogue-rebuild-style operation, not part of the query/ingest
// boundary API, but is exposed for the CLI driver.
func (s *Soundmark) Delete(ctx context.Context, workID int64) error {
	return s.store.DeleteWork(ctx, workID)
}
