// Identify implements spec.md's *identify* verb: decode, fingerprint,
// look up matches, and align to a (record, offset) per §4.5. This
// replaces the teacher's Recognize/findMatches pair (which scored
// matches with an ad hoc temporal-alignment heuristic tuned for
// microphone input) with the spec's catalog-driven offset histogram.
package eureka

import (
	"context"

	"github.com/media-luna/eureka/internal/align"
	"github.com/media-luna/eureka/internal/audio"
	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/dsp"
	"github.com/media-luna/eureka/internal/fingerprint"
	"github.com/media-luna/eureka/internal/logx"
)

// Identify decodes path, fingerprints it, and returns the best
// Recognition. A nil error with a zero-value Recognition never
// occurs: "no match" is reported via ferrors.NoMatch, matching
// spec.md §7 (NoMatch is not a failure to the CLI, which must still
// print an explicit "no match" line and exit 0).
func (e *Eureka) Identify(ctx context.Context, path string, limitSecs float64) (align.Recognition, error) {
	decoded, err := audio.Decode(path, limitSecs)
	if err != nil {
		return align.Recognition{}, err
	}

	var queries []catalog.MatchQuery
	for _, channel := range decoded.Channels {
		if len(channel) < e.dspParams.NFFT {
			continue
		}
		spectrogram := dsp.Spectrogram(channel, decoded.SampleRate, e.dspParams)
		peaks := dsp.ExtractPeaks(spectrogram, e.dspParams)
		hashes := fingerprint.Generate(peaks, e.fpParams)
		for _, h := range hashes {
			queries = append(queries, catalog.MatchQuery{Hash: h.Hash, QueryOffset: h.AnchorTime})
		}
	}

	logx.Info("identify: generated probe hashes", "path", path, "count", len(queries))

	matches, err := e.catalog.LookupMatches(ctx, queries)
	if err != nil {
		return align.Recognition{}, err
	}

	return align.Align(ctx, e.catalog, matches, decoded.SampleRate, e.cfg.OverlapRatio, e.cfg.NFFT)
}
