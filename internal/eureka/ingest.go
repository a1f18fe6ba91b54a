package eureka

import (
	"context"

	"github.com/media-luna/eureka/internal/ingest"
	"github.com/media-luna/eureka/internal/logx"
)

// IngestDirectory fingerprints every matching, not-yet-fingerprinted
// file under root, per spec.md §4.7.
func (e *Eureka) IngestDirectory(ctx context.Context, root string, extensions []string, workerCount int, limitSecs float64) (ingest.Stats, error) {
	if len(extensions) == 0 {
		extensions = []string{"wav"}
	}

	params := ingest.Params{
		Extensions:  extensions,
		WorkerCount: workerCount,
		LimitSecs:   limitSecs,
		DSP:         e.dspParams,
		Fingerprint: e.fpParams,
	}

	stats, err := ingest.Directory(ctx, e.catalog, root, params)
	if err != nil {
		return stats, err
	}

	logx.Info("ingest complete",
		"discovered", stats.Discovered,
		"ingested", stats.Ingested,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}
