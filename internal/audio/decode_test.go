package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/eureka/internal/ferrors"
)

// writeMonoWAV writes a minimal canonical 16-bit PCM mono WAV file.
func writeMonoWAV(t *testing.T, path string, samples []int16, sampleRate int) {
	t.Helper()

	dataSize := len(samples) * 2
	buf := make([]byte, 0, 44+dataSize)

	write := func(b []byte) { buf = append(buf, b...) }
	u32 := func(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))

	write([]byte("fmt "))
	write(u32(16))
	write(u16(1)) // PCM
	write(u16(1)) // mono
	write(u32(uint32(sampleRate)))
	byteRate := sampleRate * 1 * 2
	write(u32(uint32(byteRate)))
	write(u16(2)) // block align
	write(u16(16))

	write([]byte("data"))
	write(u32(uint32(dataSize)))
	for _, s := range samples {
		write(u16(uint16(s)))
	}

	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestDecodeWAVRoundTripsSamplesAndSHA1(t *testing.T) {
	fs := 44100
	n := fs / 10
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(math.Sin(2*math.Pi*440*float64(i)/float64(fs)) * 16000)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	writeMonoWAV(t, path, samples, fs)

	decoded, err := Decode(path, 0)
	require.NoError(t, err)

	assert.Equal(t, fs, decoded.SampleRate)
	require.Len(t, decoded.Channels, 1)
	assert.Len(t, decoded.Channels[0], n)
	assert.Len(t, decoded.FileSHA1, 40)
}

func TestDecodeRespectsLimitSeconds(t *testing.T) {
	fs := 44100
	samples := make([]int16, fs)
	path := filepath.Join(t.TempDir(), "one_second.wav")
	writeMonoWAV(t, path, samples, fs)

	decoded, err := Decode(path, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, fs/2, len(decoded.Channels[0]), float64(fs)*0.01)
}

func TestDecodeUnreadableFileReturnsDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.wav")
	_, err := Decode(path, 0)
	var decodeErr *ferrors.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
