package audio

import (
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/maddyblue/go-dsp/window"
)

// Spectrogram computes the magnitude STFT of samples: a Hann-windowed FFT
// of size nFFT advanced by hopLength samples per frame, returning one row
// per frame of nFFT/2+1 linear-magnitude bins. Magnitudes are left linear
// (not log-scaled): the peak extractor's amplitude floor is calibrated
// against linear magnitude.
func Spectrogram(samples []float64, nFFT, hopLength int) ([][]float64, error) {
	if len(samples) < nFFT {
		return nil, ErrEmptyAudio
	}

	win := window.Hann(nFFT)
	bins := nFFT/2 + 1
	numFrames := (len(samples)-nFFT)/hopLength + 1

	frames := make([][]float64, numFrames)
	windowed := make([]float64, nFFT)

	for t := 0; t < numFrames; t++ {
		start := t * hopLength
		for i := 0; i < nFFT; i++ {
			windowed[i] = samples[start+i] * win[i]
		}

		spectrum := fft.FFTReal(windowed)

		row := make([]float64, bins)
		for f := 0; f < bins; f++ {
			row[f] = cmplx.Abs(spectrum[f])
		}
		frames[t] = row
	}

	return frames, nil
}
