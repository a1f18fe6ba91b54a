// Package postgres implements catalog.Catalog on top of PostgreSQL,
// using database/sql and github.com/lib/pq per spec.md §6's reference
// schema (records, fingerprints; BYTEA-equivalent hash storage kept as
// uppercase hex text here per the spec's "implementations may keep
// the 20-char ASCII form end-to-end" allowance).
package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/ferrors"
)

const batchSize = 1000

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id BIGSERIAL PRIMARY KEY,
	record_name TEXT NOT NULL,
	fingerprinted BOOLEAN NOT NULL DEFAULT false,
	file_sha1 CHAR(40) NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS records_file_sha1_fingerprinted_idx
	ON records (file_sha1) WHERE fingerprinted;

CREATE TABLE IF NOT EXISTS fingerprints (
	id BIGSERIAL PRIMARY KEY,
	hash CHAR(20) NOT NULL,
	"offset" INTEGER NOT NULL,
	record_id BIGINT NOT NULL REFERENCES records(id)
);
CREATE INDEX IF NOT EXISTS fingerprints_hash_idx ON fingerprints (hash);

CREATE TABLE IF NOT EXISTS catalog_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Catalog is a PostgreSQL-backed catalog.Catalog.
type Catalog struct {
	db *sql.DB
}

// Open connects to dsn, creates the schema if absent, and returns a
// ready Catalog.
func Open(dsn string) (*Catalog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) ListFingerprintedRecords(ctx context.Context) ([]catalog.Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, record_name, file_sha1 FROM records WHERE fingerprinted`)
	if err != nil {
		return nil, &ferrors.CatalogError{Op: "list records", Err: err}
	}
	defer rows.Close()

	var out []catalog.Record
	for rows.Next() {
		var r catalog.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.FileSHA1); err != nil {
			return nil, &ferrors.CatalogError{Op: "scan record", Err: err}
		}
		r.Fingerprinted = true
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *Catalog) InsertRecord(ctx context.Context, name, fileSHA1 string) (int64, error) {
	var id int64
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO records (record_name, fingerprinted, file_sha1) VALUES ($1, false, $2) RETURNING id`,
		name, strings.ToUpper(fileSHA1),
	).Scan(&id)
	if err != nil {
		return 0, &ferrors.CatalogError{Op: "insert record", Err: err}
	}
	return id, nil
}

func (c *Catalog) InsertHashes(ctx context.Context, recordID int64, hashes []catalog.Hash) error {
	if len(hashes) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &ferrors.CatalogError{Op: "begin insert hashes", Err: err}
	}
	defer tx.Rollback()

	for start := 0; start < len(hashes); start += batchSize {
		end := start + batchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO fingerprints (hash, "offset", record_id) VALUES `)
		args := make([]interface{}, 0, len(batch)*3)
		for i, h := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := len(args)
			sb.WriteString("($")
			sb.WriteString(strconv.Itoa(n + 1))
			sb.WriteString(", $")
			sb.WriteString(strconv.Itoa(n + 2))
			sb.WriteString(", $")
			sb.WriteString(strconv.Itoa(n + 3))
			sb.WriteString(")")
			args = append(args, strings.ToUpper(h.Hash), h.Offset, recordID)
		}

		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return &ferrors.CatalogError{Op: "insert hash batch", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ferrors.CatalogError{Op: "commit insert hashes", Err: err}
	}
	return nil
}

func (c *Catalog) MarkFingerprinted(ctx context.Context, recordID int64) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE records SET fingerprinted = true WHERE id = $1`, recordID)
	if err != nil {
		return &ferrors.CatalogError{Op: "mark fingerprinted", Err: err}
	}
	return nil
}

func (c *Catalog) GetRecord(ctx context.Context, recordID int64) (catalog.Record, bool, error) {
	var r catalog.Record
	err := c.db.QueryRowContext(ctx,
		`SELECT id, record_name, file_sha1, fingerprinted FROM records WHERE id = $1`, recordID,
	).Scan(&r.ID, &r.Name, &r.FileSHA1, &r.Fingerprinted)
	if err == sql.ErrNoRows {
		return catalog.Record{}, false, nil
	}
	if err != nil {
		return catalog.Record{}, false, &ferrors.CatalogError{Op: "get record", Err: err}
	}
	return r, true, nil
}

func (c *Catalog) LookupMatches(ctx context.Context, queries []catalog.MatchQuery) ([]catalog.MatchResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	offsetByHash := make(map[string]int, len(queries))
	hashes := make([]string, 0, len(queries))
	for _, q := range queries {
		up := strings.ToUpper(q.Hash)
		if _, seen := offsetByHash[up]; !seen {
			hashes = append(hashes, up)
		}
		offsetByHash[up] = q.QueryOffset
	}

	var out []catalog.MatchResult
	for start := 0; start < len(hashes); start += batchSize {
		end := start + batchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		rows, err := c.db.QueryContext(ctx,
			`SELECT hash, record_id, "offset" FROM fingerprints WHERE hash = ANY($1)`,
			pq.Array(batch),
		)
		if err != nil {
			return nil, &ferrors.CatalogError{Op: "lookup matches", Err: err}
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var hash string
				var recordID int64
				var storedOffset int
				if err := rows.Scan(&hash, &recordID, &storedOffset); err != nil {
					return &ferrors.CatalogError{Op: "scan match", Err: err}
				}
				queryOffset := offsetByHash[strings.ToUpper(hash)]
				out = append(out, catalog.MatchResult{
					RecordID: recordID,
					Delta:    storedOffset - queryOffset,
				})
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (c *Catalog) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &ferrors.CatalogError{Op: "get meta", Err: err}
	}
	return value, true, nil
}

func (c *Catalog) SetMeta(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO catalog_meta (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return &ferrors.CatalogError{Op: "set meta", Err: err}
	}
	return nil
}
