// Package audio is the signal front-end: it decodes a reference or query
// audio file down to mono PCM at the catalogue's fixed sample rate, then
// turns that PCM into a magnitude spectrogram for the peak extractor.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// resampleQuality is beep's linear-interpolation quality knob for
// Resample; 4 matches the library's own recommended default for offline
// (non-realtime) resampling.
const resampleQuality = 4

// Load decodes path to mono float64 PCM resampled to sampleRate. The
// decoder is chosen from the file extension; mp3, wav and flac are
// supported. Any other extension, m4a included, fails with ErrDecode.
func Load(path string, sampleRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrDecode, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer streamer.Close()

	resampled := beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(sampleRate), streamer)

	samples := make([]float64, 0, streamer.Len())
	buf := make([][2]float64, 1024)
	for {
		n, ok := resampled.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return samples, nil
}
