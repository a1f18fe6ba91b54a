// Package fingerprint turns spectrogram peaks into landmark hashes,
// replacing the teacher's internal/fingerprint.GenerateFingerprints
// (which hashed raw frequency values with a `%d|%d|%d` token and kept
// the full 40-char SHA-1 hex) with the exact wire format of spec.md
// §4.4: a `"{freq1}, {freq2}, {delta}"` ASCII token truncated to the
// first 20 hex characters of its SHA-1 digest.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/media-luna/eureka/internal/dsp"
)

// Params are the fan-out and delta-bound knobs from spec.md §6.
type Params struct {
	FanValue      int
	MinDelta      int
	MaxDelta      int
	HashHexPrefix int
}

// DefaultParams mirrors config.Default()'s fingerprint knobs.
func DefaultParams() Params {
	return Params{FanValue: 15, MinDelta: 0, MaxDelta: 200, HashHexPrefix: 20}
}

// Hash is an emitted (hash, anchor_time) pair, per spec.md §4.4.
type Hash struct {
	Hash       string // uppercase hex ASCII, HashHexPrefix characters long
	AnchorTime int
}

// Generate sorts peaks by ascending time frame and fans each anchor
// out to the next FanValue-1 peaks, emitting one hash per pair whose
// time delta falls within [MinDelta, MaxDelta]. Output order is the
// anchor sort order; duplicate hashes within the same call are not
// deduplicated here (spec.md invariant 3's per-file dedup is the
// caller's responsibility, since "per file" spans every channel).
func Generate(peaks []dsp.Peak, p Params) []Hash {
	sorted := make([]dsp.Peak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TimeFrame != sorted[j].TimeFrame {
			return sorted[i].TimeFrame < sorted[j].TimeFrame
		}
		return sorted[i].FreqBin < sorted[j].FreqBin
	})

	var out []Hash
	for i, anchor := range sorted {
		for j := 1; j < p.FanValue; j++ {
			k := i + j
			if k >= len(sorted) {
				break
			}
			target := sorted[k]

			delta := target.TimeFrame - anchor.TimeFrame
			if delta < p.MinDelta || delta > p.MaxDelta {
				continue
			}

			out = append(out, Hash{
				Hash:       hashToken(anchor.FreqBin, target.FreqBin, delta, p.HashHexPrefix),
				AnchorTime: anchor.TimeFrame,
			})
		}
	}
	return out
}

// hashToken renders the spec.md §4.4 token, SHA-1 hashes it, and
// returns the first prefixLen hex characters, uppercased.
func hashToken(freq1, freq2, delta, prefixLen int) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(freq1))
	sb.WriteString(", ")
	sb.WriteString(strconv.Itoa(freq2))
	sb.WriteString(", ")
	sb.WriteString(strconv.Itoa(delta))

	sum := sha1.Sum([]byte(sb.String()))
	full := hex.EncodeToString(sum[:])
	return strings.ToUpper(full[:prefixLen])
}

// Dedup collapses a slice of Hash into a set keyed by (hash, offset),
// matching spec.md invariant 3 ("deduplicated per file before
// insertion"); it preserves first-seen order.
func Dedup(hashes []Hash) []Hash {
	seen := make(map[Hash]struct{}, len(hashes))
	out := make([]Hash, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
