// Package mysql implements catalog.Catalog on top of MySQL using
// database/sql and github.com/go-sql-driver/mysql. It rebuilds the
// teacher's internal/database/mysql package (referenced by
// databse_base.go's NewDatabase dispatcher but absent from the
// retrieved pack) against the catalog.Catalog contract.
package mysql

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/ferrors"
)

const batchSize = 1000

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	record_name VARCHAR(512) NOT NULL,
	fingerprinted BOOLEAN NOT NULL DEFAULT false,
	file_sha1 CHAR(40) NOT NULL
);
CREATE TABLE IF NOT EXISTS fingerprints (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	hash CHAR(20) NOT NULL,
	offset_frames INTEGER NOT NULL,
	record_id BIGINT NOT NULL,
	KEY fingerprints_hash_idx (hash),
	FOREIGN KEY (record_id) REFERENCES records(id)
);
CREATE TABLE IF NOT EXISTS catalog_meta (
	meta_key VARCHAR(64) PRIMARY KEY,
	meta_value VARCHAR(256) NOT NULL
);
`

// Catalog is a MySQL-backed catalog.Catalog.
type Catalog struct {
	db *sql.DB
}

// Open connects to dsn (go-sql-driver/mysql DSN syntax), creates the
// schema if absent, and returns a ready Catalog.
func Open(dsn string) (*Catalog, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping mysql")
	}
	for _, stmt := range strings.Split(schema, ";\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, errors.Wrap(err, "create schema")
		}
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) ListFingerprintedRecords(ctx context.Context) ([]catalog.Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, record_name, file_sha1 FROM records WHERE fingerprinted = true`)
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
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO records (record_name, fingerprinted, file_sha1) VALUES (?, false, ?)`,
		name, strings.ToUpper(fileSHA1))
	if err != nil {
		return 0, &ferrors.CatalogError{Op: "insert record", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &ferrors.CatalogError{Op: "insert record id", Err: err}
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

		placeholders := strings.TrimSuffix(strings.Repeat("(?, ?, ?), ", len(batch)), ", ")
		args := make([]interface{}, 0, len(batch)*3)
		for _, h := range batch {
			args = append(args, strings.ToUpper(h.Hash), h.Offset, recordID)
		}

		query := "INSERT INTO fingerprints (hash, offset_frames, record_id) VALUES " + placeholders
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
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
		`UPDATE records SET fingerprinted = true WHERE id = ?`, recordID)
	if err != nil {
		return &ferrors.CatalogError{Op: "mark fingerprinted", Err: err}
	}
	return nil
}

func (c *Catalog) GetRecord(ctx context.Context, recordID int64) (catalog.Record, bool, error) {
	var r catalog.Record
	err := c.db.QueryRowContext(ctx,
		`SELECT id, record_name, file_sha1, fingerprinted FROM records WHERE id = ?`, recordID,
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

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(batch)), ", ")
		args := make([]interface{}, len(batch))
		for i, h := range batch {
			args[i] = h
		}

		rows, err := c.db.QueryContext(ctx,
			`SELECT hash, record_id, offset_frames FROM fingerprints WHERE hash IN (`+placeholders+`)`,
			args...,
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
	err := c.db.QueryRowContext(ctx,
		`SELECT meta_value FROM catalog_meta WHERE meta_key = ?`, key).Scan(&value)
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
		`INSERT INTO catalog_meta (meta_key, meta_value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)`, key, value)
	if err != nil {
		return &ferrors.CatalogError{Op: "set meta", Err: err}
	}
	return nil
}
