package dsp

// Peak is a detected spectral landmark, per spec.md §3.
type Peak struct {
	FreqBin   int
	TimeFrame int
	AmpDB     float64
}

// diamondOffsets returns the set of (di, dj) offsets within Manhattan
// distance radius of the origin — the shape produced by iterating a
// 3x3 cross-shaped structuring element `radius` times via binary
// dilation (spec.md §4.3), i.e. scipy's
// iterate_structure(generate_binary_structure(2, 1), radius).
func diamondOffsets(radius int) [][2]int {
	var offsets [][2]int
	for di := -radius; di <= radius; di++ {
		rem := radius - abs(di)
		for dj := -rem; dj <= rem; dj++ {
			offsets = append(offsets, [2]int{di, dj})
		}
	}
	return offsets
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// reflectIndex maps an out-of-range index back into [0, n) using
// scipy's default 'reflect' boundary convention (mirror about the
// array edge, so the edge sample is repeated: -1 maps to 0), used for
// the local-maximum filter.
func reflectIndex(idx, n int) int {
	if n == 1 {
		return 0
	}
	for idx < 0 || idx >= n {
		if idx < 0 {
			idx = -idx - 1
		}
		if idx >= n {
			idx = 2*n - idx - 1
		}
	}
	return idx
}

// ExtractPeaks finds spectral peaks in S (indexed [freq_bin][time_frame])
// per spec.md §4.3: a cell is a peak iff it is a local maximum within
// a diamond-shaped neighborhood of the given radius XOR the cell lies
// in the eroded zero (silence) background (every in-range cell of its
// neighborhood is zero), and its amplitude strictly exceeds ampMin.
func ExtractPeaks(s [][]float64, p Params) []Peak {
	if len(s) == 0 || len(s[0]) == 0 {
		return nil
	}
	numFreq := len(s)
	numTime := len(s[0])
	offsets := diamondOffsets(p.PeakNeighborhood)

	localMax := make([][]bool, numFreq)
	erodedBackground := make([][]bool, numFreq)
	for i := range localMax {
		localMax[i] = make([]bool, numTime)
		erodedBackground[i] = make([]bool, numTime)
	}

	for i := 0; i < numFreq; i++ {
		for j := 0; j < numTime; j++ {
			// local maximum filter: reflect boundary (scipy default mode).
			max := s[i][j]
			for _, off := range offsets {
				ri := reflectIndex(i+off[0], numFreq)
				rj := reflectIndex(j+off[1], numTime)
				if v := s[ri][rj]; v > max {
					max = v
				}
			}
			localMax[i][j] = max == s[i][j]

			// binary erosion of the zero-background mask, border_value=1:
			// out-of-range neighbors are treated as background (true) and
			// never block erosion.
			eroded := true
			for _, off := range offsets {
				ni, nj := i+off[0], j+off[1]
				if ni < 0 || ni >= numFreq || nj < 0 || nj >= numTime {
					continue
				}
				if s[ni][nj] != 0 {
					eroded = false
					break
				}
			}
			erodedBackground[i][j] = eroded
		}
	}

	var peaks []Peak
	for i := 0; i < numFreq; i++ {
		for j := 0; j < numTime; j++ {
			isPeak := localMax[i][j] != erodedBackground[i][j] // XOR
			if isPeak && s[i][j] > p.AmpMin {
				peaks = append(peaks, Peak{FreqBin: i, TimeFrame: j, AmpDB: s[i][j]})
			}
		}
	}
	return peaks
}
