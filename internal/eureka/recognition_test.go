package eureka

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/eureka/internal/audio"
	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/catalog/catalogtest"
	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/dsp"
	"github.com/media-luna/eureka/internal/ferrors"
	"github.com/media-luna/eureka/internal/fingerprint"
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

func toneWAV(t *testing.T, dir, name string, freq float64, fs, n int) string {
	t.Helper()
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(math.Sin(2*math.Pi*freq*float64(i)/float64(fs)) * 16000)
	}
	path := filepath.Join(dir, name)
	writeMonoWAV(t, path, samples, fs)
	return path
}

func newTestEureka() *Eureka {
	cfg := config.Default()
	return &Eureka{
		catalog: catalogtest.New(),
		cfg:     cfg,
		dspParams: dsp.Params{
			NFFT:             cfg.NFFT,
			OverlapRatio:     cfg.OverlapRatio,
			AmpMin:           cfg.AmpMin,
			PeakNeighborhood: cfg.PeakNeighborhood,
		},
		fpParams: fingerprint.Params{
			FanValue:      cfg.FanValue,
			MinDelta:      cfg.MinDelta,
			MaxDelta:      cfg.MaxDelta,
			HashHexPrefix: cfg.HashHexPrefix,
		},
	}
}

// ingestForTest mirrors internal/ingest.fingerprintFile closely enough
// to seed the fake catalog for these white-box Identify tests, without
// pulling in the worker-pool machinery this package doesn't need.
func ingestForTest(t *testing.T, e *Eureka, path, name string) {
	t.Helper()

	decoded, err := audio.Decode(path, 0)
	require.NoError(t, err)

	var hashes []fingerprint.Hash
	for _, channel := range decoded.Channels {
		spectrogram := dsp.Spectrogram(channel, decoded.SampleRate, e.dspParams)
		peaks := dsp.ExtractPeaks(spectrogram, e.dspParams)
		hashes = append(hashes, fingerprint.Generate(peaks, e.fpParams)...)
	}

	recordID, err := e.catalog.InsertRecord(context.Background(), name, decoded.FileSHA1)
	require.NoError(t, err)

	catHashes := make([]catalog.Hash, len(hashes))
	for i, h := range hashes {
		catHashes[i] = catalog.Hash{Hash: h.Hash, Offset: h.AnchorTime}
	}
	require.NoError(t, e.catalog.InsertHashes(context.Background(), recordID, catHashes))
	require.NoError(t, e.catalog.MarkFingerprinted(context.Background(), recordID))
}

func TestIdentifyFindsIngestedTrack(t *testing.T) {
	e := newTestEureka()
	dir := t.TempDir()
	fs := 44100

	path := toneWAV(t, dir, "track.wav", 440, fs, fs*3)
	ingestForTest(t, e, path, "track")

	rec, err := e.Identify(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, "track", rec.RecordName)
	assert.Equal(t, 0, rec.Offset)
}

func TestIdentifyWithNoIngestedTracksReturnsNoMatch(t *testing.T) {
	e := newTestEureka()
	dir := t.TempDir()
	path := toneWAV(t, dir, "unknown.wav", 220, 44100, 44100*2)

	_, err := e.Identify(context.Background(), path, 0)
	assert.ErrorIs(t, err, ferrors.NoMatch)
}
