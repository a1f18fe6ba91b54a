// Package catalogtest provides an in-memory catalog.Catalog used by
// other packages' tests so they can exercise alignment and ingest
// logic without a real Postgres or MySQL instance.
package catalogtest

import (
	"context"
	"strings"
	"sync"

	"github.com/media-luna/eureka/internal/catalog"
)

// Fake is a minimal, mutex-guarded in-memory implementation of
// catalog.Catalog.
type Fake struct {
	mu sync.Mutex

	nextID  int64
	records map[int64]catalog.Record
	// hash -> list of (recordID, offset)
	hashes map[string][]hashEntry
	meta   map[string]string
}

type hashEntry struct {
	recordID int64
	offset   int
}

// New returns an empty Fake catalog.
func New() *Fake {
	return &Fake{
		records: make(map[int64]catalog.Record),
		hashes:  make(map[string][]hashEntry),
		meta:    make(map[string]string),
	}
}

func (f *Fake) ListFingerprintedRecords(ctx context.Context) ([]catalog.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []catalog.Record
	for _, r := range f.records {
		if r.Fingerprinted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) InsertRecord(ctx context.Context, name, fileSHA1 string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.records[id] = catalog.Record{ID: id, Name: name, FileSHA1: fileSHA1}
	return id, nil
}

func (f *Fake) InsertHashes(ctx context.Context, recordID int64, hashes []catalog.Hash) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range hashes {
		key := strings.ToUpper(h.Hash)
		f.hashes[key] = append(f.hashes[key], hashEntry{recordID: recordID, offset: h.Offset})
	}
	return nil
}

func (f *Fake) MarkFingerprinted(ctx context.Context, recordID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.records[recordID]
	if !ok {
		return nil
	}
	r.Fingerprinted = true
	f.records[recordID] = r
	return nil
}

func (f *Fake) GetRecord(ctx context.Context, recordID int64) (catalog.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.records[recordID]
	return r, ok, nil
}

func (f *Fake) LookupMatches(ctx context.Context, queries []catalog.MatchQuery) ([]catalog.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []catalog.MatchResult
	for _, q := range queries {
		key := strings.ToUpper(q.Hash)
		for _, e := range f.hashes[key] {
			out = append(out, catalog.MatchResult{
				RecordID: e.recordID,
				Delta:    e.offset - q.QueryOffset,
			})
		}
	}
	return out, nil
}

func (f *Fake) GetMeta(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.meta[key]
	return v, ok, nil
}

func (f *Fake) SetMeta(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.meta[key] = value
	return nil
}

func (f *Fake) Close() error { return nil }

var _ catalog.Catalog = (*Fake)(nil)
