// Package landmark turns a time-sorted constellation of peaks into the
// compact anchor-pair hashes that get posted to, and looked up against,
// the catalogue index.
package landmark

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/soundmark/soundmark/internal/peaks"
)

// Posting is a single (hash, anchor time) emission. AnchorTime is in
// spectrogram frame units, never seconds.
type Posting struct {
	Hash       string
	AnchorTime int
}

// Hash pairs each peak (the anchor) with up to the next fanValue peaks in
// time order (the targets) and emits one posting per pair whose time delta
// falls within [0, timeWindow] frames. peaks must already be sorted
// ascending by FrameIndex, which is what peaks.Find guarantees.
func Hash(points []peaks.Peak, fanValue, timeWindow int) []Posting {
	if len(points) < 2 {
		return nil
	}

	var postings []Posting
	for i, anchor := range points {
		limit := i + fanValue
		if limit >= len(points) {
			limit = len(points) - 1
		}
		for j := i + 1; j <= limit; j++ {
			target := points[j]

			dt := target.FrameIndex - anchor.FrameIndex
			if dt > timeWindow {
				// Peaks are time-sorted, so later targets are only
				// further away: stop scanning this anchor.
				break
			}

			postings = append(postings, Posting{
				Hash:       fingerprintHash(anchor.FreqBin, target.FreqBin, dt),
				AnchorTime: anchor.FrameIndex,
			})
		}
	}

	return postings
}

// fingerprintHash is the SHA-1 hex digest of "f1|f2|dt", used as an opaque
// identifier — only equality of the digest matters to the catalogue.
func fingerprintHash(f1, f2, dt int) string {
	h := sha1.New()
	fmt.Fprintf(h, "%d|%d|%d", f1, f2, dt)
	return hex.EncodeToString(h.Sum(nil))
}
