// Package catalog defines the abstract repository contract of
// spec.md §4.6. It replaces the teacher's internal/database.Database
// interface (mysql-only) with a backend-agnostic one backed by either
// Postgres or MySQL, matching the reference schema of spec.md §6.
package catalog

import (
	"context"

	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/ferrors"
)

// Record is a catalog row as described in spec.md §3.
type Record struct {
	ID            int64
	Name          string
	FileSHA1      string // 40-char uppercase hex
	Fingerprinted bool
}

// Hash is a (hash, offset) pair ready for bulk insertion, keyed to a
// record by the InsertHashes call that carries it.
type Hash struct {
	Hash   string // 20-char uppercase hex ASCII
	Offset int
}

// MatchQuery is one probe hash produced against an unknown excerpt.
type MatchQuery struct {
	Hash        string
	QueryOffset int
}

// MatchResult is a (record_id, delta) pair as described in spec.md §3,
// where Delta = stored_offset - query_offset.
type MatchResult struct {
	RecordID int64
	Delta    int
}

// Catalog is the storage contract every backend (postgres, mysql, or a
// test fake) must satisfy. All operations are safe for concurrent use
// except where noted.
type Catalog interface {
	// ListFingerprintedRecords enumerates only records with
	// fingerprinted = true.
	ListFingerprintedRecords(ctx context.Context) ([]Record, error)

	// InsertRecord creates a record with fingerprinted = false and
	// returns its catalog-assigned id.
	InsertRecord(ctx context.Context, name, fileSHA1 string) (int64, error)

	// InsertHashes bulk-inserts hashes for recordID, chunking into
	// batches internally. If any batch fails the record is left
	// not-fingerprinted and the error is returned.
	InsertHashes(ctx context.Context, recordID int64, hashes []Hash) error

	// MarkFingerprinted is idempotent.
	MarkFingerprinted(ctx context.Context, recordID int64) error

	// GetRecord returns (record, true, nil) if found, or
	// (Record{}, false, nil) if absent.
	GetRecord(ctx context.Context, recordID int64) (Record, bool, error)

	// LookupMatches resolves probe hashes against stored fingerprints,
	// uppercasing hashes before comparison and chunking IN-queries
	// internally. stored_offset - query_offset is computed server-side
	// or in the adapter, per backend.
	LookupMatches(ctx context.Context, queries []MatchQuery) ([]MatchResult, error)

	// GetMeta/SetMeta persist small key/value catalog metadata, used
	// to detect ConfigMismatch across ingest runs.
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}

// EnsureFormatParams guards spec.md §7's ConfigMismatch rule: on an
// empty (never-configured) catalog it persists the supplied
// fingerprint parameters; on a populated one it compares them and
// fails fast on the first knob that changed.
func EnsureFormatParams(ctx context.Context, cat Catalog, params config.FingerprintParams) error {
	wanted := params.AsMetadata()

	configured, ok, err := cat.GetMeta(ctx, "nfft")
	if err != nil {
		return &ferrors.CatalogError{Op: "get meta", Err: err}
	}
	if !ok || configured == "" {
		for key, value := range wanted {
			if err := cat.SetMeta(ctx, key, value); err != nil {
				return &ferrors.CatalogError{Op: "set meta", Err: err}
			}
		}
		return nil
	}

	// Stable order so the first mismatching key reported is deterministic.
	order := []string{
		"sample_rate_default", "nfft", "overlap_ratio", "amp_min",
		"peak_neighborhood", "fan_value", "min_delta", "max_delta",
		"hash_hex_prefix",
	}
	for _, key := range order {
		stored, ok, err := cat.GetMeta(ctx, key)
		if err != nil {
			return &ferrors.CatalogError{Op: "get meta", Err: err}
		}
		if !ok {
			continue
		}
		if stored != wanted[key] {
			return &ferrors.ConfigMismatch{Param: key, Stored: stored, Supplied: wanted[key]}
		}
	}
	return nil
}
