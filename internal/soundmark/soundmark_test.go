package soundmark_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundmark/soundmark/configs"
	"github.com/soundmark/soundmark/internal/soundmark"
)

func writeSilentWAV(t *testing.T, path string, sampleRate, seconds int) {
	t.Helper()
	n := sampleRate * seconds
	data := make([]byte, 44+n*2)
	copy(data[0:], "RIFF")
	copy(data[8:], "WAVEfmt ")
	data[16] = 16
	data[20] = 1
	data[22] = 1
	copy(data[24:], u32(uint32(sampleRate)))
	copy(data[28:], u32(uint32(sampleRate*2)))
	data[32] = 2
	data[34] = 16
	copy(data[36:], "data")
	copy(data[40:], u32(uint32(n*2)))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func u32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestFingerprintOfSilenceProducesNoPostings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silence.wav")
	writeSilentWAV(t, path, 22050, 10)

	cfg := configs.Default().Fingerprint
	sm := soundmark.New(nil, cfg)

	postings, err := sm.Fingerprint(path)
	require.NoError(t, err)
	require.Empty(t, postings)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	sampleRate := 22050
	n := sampleRate * 2
	data := make([]byte, 44+n*2)
	copy(data[0:], "RIFF")
	copy(data[8:], "WAVEfmt ")
	data[16] = 16
	data[20] = 1
	data[22] = 1
	copy(data[24:], u32(uint32(sampleRate)))
	copy(data[28:], u32(uint32(sampleRate*2)))
	data[32] = 2
	data[34] = 16
	copy(data[36:], "data")
	copy(data[40:], u32(uint32(n*2)))
	for i := 0; i < n; i++ {
		s := int16(3000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		data[44+i*2] = byte(s)
		data[44+i*2+1] = byte(s >> 8)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := configs.Default().Fingerprint
	sm := soundmark.New(nil, cfg)

	a, err := sm.Fingerprint(path)
	require.NoError(t, err)
	b, err := sm.Fingerprint(path)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

