// Package peaks extracts a sparse set of perceptually salient
// time-frequency local maxima from a magnitude spectrogram — the
// constellation map landmark hashing builds its pairs from.
package peaks

// Peak is a single constellation point: a frequency bin at a frame index.
// Magnitude is used only during extraction and is not retained.
type Peak struct {
	FreqBin    int
	FrameIndex int
}

// neighborhood returns the (deltaFreq, deltaFrame) offsets of a diamond
// footprint of Manhattan radius k, produced by iterating 4-connected
// dilation k times starting from the unit cross. This is the same shape
// scipy's iterate_structure(generate_binary_structure(2,1), k) produces,
// which the reference implementation this package is adapted from relies
// on for its peak neighborhood.
func neighborhood(k int) [][2]int {
	offsets := make([][2]int, 0, 2*k*k+2*k+1)
	for df := -k; df <= k; df++ {
		rem := k - abs(df)
		for dt := -rem; dt <= rem; dt++ {
			if df == 0 && dt == 0 {
				continue
			}
			offsets = append(offsets, [2]int{df, dt})
		}
	}
	return offsets
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Find returns every spectrogram cell that is a strict local maximum over
// a diamond neighborhood of the given radius and exceeds minAmplitude, in
// ascending FrameIndex order (the hasher depends on this ordering).
//
// A cell that is part of a flat region (including silence, where every
// cell is exactly zero) has a neighbor equal to itself, so it is not
// strictly greater than every neighbor and is never reported — this is what
// excludes zero-magnitude plateaus from being falsely detected as peaks
// of their own neighborhood.
func Find(spectrogram [][]float64, neighborhoodRadius int, minAmplitude float64) []Peak {
	if len(spectrogram) == 0 || len(spectrogram[0]) == 0 {
		return nil
	}

	offsets := neighborhood(neighborhoodRadius)
	numFrames := len(spectrogram)
	numBins := len(spectrogram[0])

	var out []Peak
	for t := 0; t < numFrames; t++ {
		row := spectrogram[t]
		for f := 0; f < numBins; f++ {
			v := row[f]
			if v <= minAmplitude {
				continue
			}
			if isStrictLocalMax(spectrogram, t, f, v, offsets, numFrames, numBins) {
				out = append(out, Peak{FreqBin: f, FrameIndex: t})
			}
		}
	}

	return out
}

func isStrictLocalMax(spectrogram [][]float64, t, f int, v float64, offsets [][2]int, numFrames, numBins int) bool {
	for _, off := range offsets {
		ff := f + off[0]
		tt := t + off[1]
		if ff < 0 || ff >= numBins || tt < 0 || tt >= numFrames {
			continue
		}
		if spectrogram[tt][ff] >= v {
			return false
		}
	}
	return true
}
