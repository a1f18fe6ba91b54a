// Package dsp implements the spectrogram and peak-picking stages of
// spec.md §4.2-4.3. The FFT primitive is delegated to
// github.com/maddyblue/go-dsp/fft (the teacher's own DSP dependency);
// the Hann window and the matplotlib-mlab-compatible PSD/dB scaling
// are implemented locally, since go-dsp's FFT does not include PSD
// scaling and the exact scaling is part of the hash-compatibility
// contract (spec.md §4.2).
package dsp

import (
	"math"

	"github.com/maddyblue/go-dsp/fft"
)

// Params are the subset of spec.md §6 knobs that affect the
// spectrogram and peak picker. Changing any of these invalidates
// existing catalog data (enforced by internal/catalog.EnsureFormatParams).
type Params struct {
	NFFT             int
	OverlapRatio     float64
	AmpMin           float64
	PeakNeighborhood int
}

// DefaultParams mirrors config.Default()'s fingerprint knobs.
func DefaultParams() Params {
	return Params{
		NFFT:             4096,
		OverlapRatio:     0.5,
		AmpMin:           10,
		PeakNeighborhood: 20,
	}
}

// Hop returns NFFT * (1 - overlap), the number of samples advanced
// between successive frames.
func (p Params) Hop() int {
	return int(float64(p.NFFT) * (1 - p.OverlapRatio))
}

// hannWindow returns the length-n Hann window as defined in spec.md
// §4.2: w_n = 0.5*(1 - cos(2*pi*n/(N-1))).
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Spectrogram computes the log-magnitude (dB) spectrogram of one
// channel of int16 PCM samples, indexed [freq_bin][time_frame], per
// spec.md §4.2. fs is the sample rate in Hz.
func Spectrogram(samples []int16, fs int, p Params) [][]float64 {
	window := hannWindow(p.NFFT)

	var windowSumSquares float64
	for _, w := range window {
		windowSumSquares += w * w
	}
	psdScale := 1.0 / (float64(fs) * windowSumSquares)

	hop := p.Hop()
	numBins := p.NFFT/2 + 1

	var frames [][]float64
	for start := 0; start+p.NFFT <= len(samples); start += hop {
		frame := make([]float64, p.NFFT)
		for i := 0; i < p.NFFT; i++ {
			frame[i] = float64(samples[start+i]) * window[i]
		}

		spectrum := fft.FFTReal(frame)

		col := make([]float64, numBins)
		for k := 0; k < numBins; k++ {
			mag := cmplxAbs(spectrum[k])
			psd := mag * mag * psdScale
			if k != 0 && k != p.NFFT/2 {
				psd *= 2
			}

			db := 10 * math.Log10(psd)
			if math.IsInf(db, -1) {
				db = 0
			}
			col[k] = db
		}
		frames = append(frames, col)
	}

	// transpose into [freq_bin][time_frame]
	out := make([][]float64, numBins)
	for k := 0; k < numBins; k++ {
		out[k] = make([]float64, len(frames))
		for t, col := range frames {
			out[k][t] = col[k]
		}
	}
	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
