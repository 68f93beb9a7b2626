package audio_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundmark/soundmark/internal/audio"
)

// writeMonoWAV writes a minimal 16-bit PCM mono WAV file for test fixtures.
func writeMonoWAV(t *testing.T, path string, sampleRate int, samples []float64) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	numSamples := len(samples)
	dataSize := numSamples * 2
	byteRate := sampleRate * 2

	write := func(v any) {
		require.NoError(t, binary.Write(f, binary.LittleEndian, v))
	}

	f.WriteString("RIFF")
	write(uint32(36 + dataSize))
	f.WriteString("WAVE")
	f.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(1)) // mono
	write(uint32(sampleRate))
	write(uint32(byteRate))
	write(uint16(2)) // block align
	write(uint16(16))
	f.WriteString("data")
	write(uint32(dataSize))

	for _, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		write(int16(s * 32767))
	}
}

func sineWave(sampleRate int, freqHz float64, seconds float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freqHz * float64(i) / float64(sampleRate))
	}
	return out
}

func TestLoadDecodesWAVAndResamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	const srcRate = 44100
	writeMonoWAV(t, path, srcRate, sineWave(srcRate, 440, 1.0))

	samples, err := audio.Load(path, 22050)
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	// Resampled length should be roughly proportional to the rate ratio.
	expected := float64(22050)
	got := float64(len(samples))
	require.InDelta(t, expected, got, expected*0.1)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, err := audio.Load(path, 22050)
	require.Error(t, err)
}

func TestSpectrogramShapeAndDeterminism(t *testing.T) {
	samples := sineWave(22050, 440, 1.0)

	frames1, err := audio.Spectrogram(samples, 2048, 512)
	require.NoError(t, err)
	frames2, err := audio.Spectrogram(samples, 2048, 512)
	require.NoError(t, err)

	require.Equal(t, frames1, frames2)
	require.Equal(t, 2048/2+1, len(frames1[0]))

	expectedFrames := (len(samples)-2048)/512 + 1
	require.Equal(t, expectedFrames, len(frames1))
}

func TestSpectrogramRejectsTooShortAudio(t *testing.T) {
	_, err := audio.Spectrogram(make([]float64, 100), 2048, 512)
	require.ErrorIs(t, err, audio.ErrEmptyAudio)
}
