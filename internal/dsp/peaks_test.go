package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPeaksFlatZeroSpectrogramHasNoPeaks(t *testing.T) {
	s := make([][]float64, 50)
	for i := range s {
		s[i] = make([]float64, 50)
	}

	peaks := ExtractPeaks(s, Params{PeakNeighborhood: 20, AmpMin: 10})
	assert.Empty(t, peaks, "a flat-zero spectrogram must suppress all peaks via the XOR-eroded-background step")
}

func TestExtractPeaksFindsIsolatedSpike(t *testing.T) {
	size := 50
	s := make([][]float64, size)
	for i := range s {
		s[i] = make([]float64, size)
	}
	s[25][25] = 40

	peaks := ExtractPeaks(s, Params{PeakNeighborhood: 5, AmpMin: 10})

	require.Len(t, peaks, 1)
	assert.Equal(t, 25, peaks[0].FreqBin)
	assert.Equal(t, 25, peaks[0].TimeFrame)
	assert.Equal(t, 40.0, peaks[0].AmpDB)
}

func TestExtractPeaksRespectsAmplitudeFloor(t *testing.T) {
	size := 50
	s := make([][]float64, size)
	for i := range s {
		s[i] = make([]float64, size)
	}
	s[25][25] = 5 // below amp_min

	peaks := ExtractPeaks(s, Params{PeakNeighborhood: 5, AmpMin: 10})
	assert.Empty(t, peaks)
}

func TestDiamondOffsetsAreBoundedByManhattanDistance(t *testing.T) {
	offsets := diamondOffsets(3)
	for _, o := range offsets {
		assert.LessOrEqual(t, abs(o[0])+abs(o[1]), 3)
	}
	// radius 3 diamond has 1 + 4*(1+2+3) = 25 cells
	assert.Len(t, offsets, 25)
}

func TestExtractPeaksEmptySpectrogram(t *testing.T) {
	assert.Empty(t, ExtractPeaks(nil, DefaultParams()))
	assert.Empty(t, ExtractPeaks([][]float64{}, DefaultParams()))
}
