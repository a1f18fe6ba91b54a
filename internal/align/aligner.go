// Package align recovers a track identity and temporal offset from a
// noisy bag of hash matches, per spec.md §4.5. It replaces the
// teacher's weighted calculateTemporalScore/findMostCommonTimeDiff
// pair with the spec's simpler single-pass offset-histogram argmax,
// grounded directly on the Python original's align_matches (dejavu3.py):
// a running (delta, record_id) -> count map with first-seen tie-break.
package align

import (
	"context"

	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/ferrors"
)

// Recognition is the result of alignment, per spec.md §3/§4.5.
type Recognition struct {
	RecordID      int64
	RecordName    string
	Confidence    int
	Offset        int
	OffsetSeconds float64
	FileSHA1      string
}

// key identifies one histogram bucket.
type key struct {
	delta    int
	recordID int64
}

// Align takes a stream of (record_id, delta) matches, in the order
// produced by the catalog, and returns the winning (record, offset):
// the first (delta, record_id) pair to reach the running maximum
// vote count wins ties, matching spec.md's fixed tie-break rule.
// Returns ferrors.NoMatch if matches is empty or the winning record
// no longer exists in the catalog, and a *ferrors.CatalogError if the
// record lookup fails.
func Align(ctx context.Context, cat catalog.Catalog, matches []catalog.MatchResult, fs int, overlapRatio float64, nfft int) (Recognition, error) {
	if len(matches) == 0 {
		return Recognition{}, ferrors.NoMatch
	}

	counts := make(map[key]int)
	var winner key
	var winnerCount int
	haveWinner := false

	for _, m := range matches {
		k := key{delta: m.Delta, recordID: m.RecordID}
		counts[k]++
		if counts[k] > winnerCount {
			winnerCount = counts[k]
			winner = k
			haveWinner = true
		}
	}

	if !haveWinner {
		return Recognition{}, ferrors.NoMatch
	}

	record, ok, err := cat.GetRecord(ctx, winner.recordID)
	if err != nil {
		return Recognition{}, &ferrors.CatalogError{Op: "get winning record", Err: err}
	}
	if !ok {
		return Recognition{}, ferrors.NoMatch
	}

	return Recognition{
		RecordID:      winner.recordID,
		RecordName:    record.Name,
		Confidence:    winnerCount,
		Offset:        winner.delta,
		OffsetSeconds: OffsetSeconds(winner.delta, fs, nfft, overlapRatio),
		FileSHA1:      record.FileSHA1,
	}, nil
}

// OffsetSeconds converts a delta in hops back to seconds using the
// same fs/nfft/overlap constants used during ingestion, per spec.md
// §4.5: round((delta/fs) * NFFT * OVERLAP, 5).
func OffsetSeconds(delta, fs, nfft int, overlapRatio float64) float64 {
	seconds := (float64(delta) / float64(fs)) * float64(nfft) * overlapRatio
	return roundTo(seconds, 5)
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return -float64(int64(-v*scale+0.5)) / scale
}
