package ingest

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/eureka/internal/catalog/catalogtest"
)

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
	write(u16(1))
	write(u16(1))
	write(u32(uint32(sampleRate)))
	write(u32(uint32(sampleRate * 2)))
	write(u16(2))
	write(u16(16))
	write([]byte("data"))
	write(u32(uint32(dataSize)))
	for _, s := range samples {
		write(u16(uint16(s)))
	}

	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func toneWAV(t *testing.T, dir, name string, freq float64) string {
	t.Helper()
	fs := 44100
	n := fs * 2
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(math.Sin(2*math.Pi*freq*float64(i)/float64(fs)) * 16000)
	}
	path := filepath.Join(dir, name)
	writeMonoWAV(t, path, samples, fs)
	return path
}

func TestDirectoryIngestsDiscoveredFiles(t *testing.T) {
	dir := t.TempDir()
	toneWAV(t, dir, "one.wav", 440)
	toneWAV(t, dir, "two.wav", 880)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not audio"), 0o644))

	cat := catalogtest.New()
	stats, err := Directory(context.Background(), cat, dir, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Discovered)
	assert.Equal(t, 2, stats.Ingested)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 0, stats.Skipped)

	records, err := cat.ListFingerprintedRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDirectorySkipsAlreadyFingerprintedDigest(t *testing.T) {
	dir := t.TempDir()
	toneWAV(t, dir, "one.wav", 440)

	cat := catalogtest.New()

	stats, err := Directory(context.Background(), cat, dir, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Ingested)

	// re-ingest the same directory: the digest is already known
	stats, err = Directory(context.Background(), cat, dir, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Ingested)
}

func TestDirectoryReportsFailuresWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	toneWAV(t, dir, "good.wav", 440)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.wav"), []byte("not a real wav file"), 0o644))

	cat := catalogtest.New()
	stats, err := Directory(context.Background(), cat, dir, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Discovered)
	assert.Equal(t, 1, stats.Ingested)
	assert.Equal(t, 1, stats.Failed)
}

func TestDirectoryEmptyDirectoryIsANoop(t *testing.T) {
	dir := t.TempDir()
	cat := catalogtest.New()

	stats, err := Directory(context.Background(), cat, dir, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
