package audio

import "errors"

// ErrDecode is returned when the input file cannot be decoded by any of the
// supported codecs.
var ErrDecode = errors.New("audio: could not decode input")

// ErrEmptyAudio is returned when the decoded sample count is shorter than a
// single FFT window, so no spectrogram frame can be produced.
var ErrEmptyAudio = errors.New("audio: decoded audio too short to analyze")
