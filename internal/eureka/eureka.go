// Package eureka is the top-level facade: it wires config, catalog,
// and the dsp/fingerprint/align/ingest packages together behind the
// same Eureka type the teacher's cmd/main.go already expected
// (NewEureka, then verb methods). The teacher's own internal/database
// dispatcher (databse_base.go's NewDatabase, mysql-only) is
// generalized here into OpenCatalog, dispatching to
// internal/catalog/postgres or internal/catalog/mysql per config.
package eureka

import (
	"context"

	"github.com/pkg/errors"

	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/catalog/mysql"
	"github.com/media-luna/eureka/internal/catalog/postgres"
	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/dsp"
	"github.com/media-luna/eureka/internal/fingerprint"
)

// Eureka bundles a catalog handle with the fingerprint parameters
// every ingest/identify call must agree on.
type Eureka struct {
	catalog   catalog.Catalog
	cfg       config.Config
	dspParams dsp.Params
	fpParams  fingerprint.Params
}

// New opens the catalog backend named by cfg.Database.Type and
// guards spec.md §7's ConfigMismatch rule before returning.
func New(ctx context.Context, cfg config.Config) (*Eureka, error) {
	cat, err := OpenCatalog(cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}

	if err := catalog.EnsureFormatParams(ctx, cat, cfg.FingerprintParams); err != nil {
		cat.Close()
		return nil, err
	}

	return &Eureka{
		catalog: cat,
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
	}, nil
}

// OpenCatalog dispatches to a concrete catalog.Catalog backend based
// on db.Type, generalizing the teacher's mysql-only NewDatabase.
func OpenCatalog(db config.Database) (catalog.Catalog, error) {
	switch db.Type {
	case "mysql":
		return mysql.Open(db.DSN)
	case "postgres", "":
		return postgres.Open(db.DSN)
	default:
		return nil, errors.Errorf("unsupported database type: %s", db.Type)
	}
}

// Close releases the underlying catalog connection.
func (e *Eureka) Close() error {
	return e.catalog.Close()
}

// Catalog exposes the underlying repository, e.g. for a `records list`
// CLI verb.
func (e *Eureka) Catalog() catalog.Catalog {
	return e.catalog
}
