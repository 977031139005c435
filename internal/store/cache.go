// Package store provides a SQLite-backed cache for parsed ledger records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/ledgercast/internal/model"
)

const dateLayout = "2006-01-02"

// Cache provides SQLite-backed record caching keyed by source file.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached records of one file and updates its tracker row.
func (c *Cache) SaveFile(path string, records []model.TransactionRecord, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions
		(file_path, seq, id, user_id, kind, category, amount, date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		_, err = stmt.Exec(path, i, r.ID, r.UserID, r.Kind.String(), r.Category,
			r.Amount.String(), r.Date.Format(dateLayout), r.Description)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAll reads every cached record, grouped by source file in original order.
func (c *Cache) LoadAll() (map[string][]model.TransactionRecord, error) {
	rows, err := c.db.Query(`SELECT file_path, id, user_id, kind, category, amount, date, description
		FROM transactions ORDER BY file_path, seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]model.TransactionRecord)
	for rows.Next() {
		var (
			path, kind, amount, date string
			userID, category, desc   sql.NullString
			r                        model.TransactionRecord
		)
		if err := rows.Scan(&path, &r.ID, &userID, &kind, &category, &amount, &date, &desc); err != nil {
			return nil, err
		}

		if r.Kind, err = model.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("cached record %s: %w", r.ID, err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("cached record %s: %w", r.ID, err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("cached record %s: %w", r.ID, err)
		}
		r.UserID = userID.String
		r.Category = category.String
		r.Description = desc.String

		result[path] = append(result[path], r)
	}
	return result, rows.Err()
}

// DeleteFile removes a file's records and tracking entry.
func (c *Cache) DeleteFile(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

const parseKey = "parse_fingerprint"

// ParseFingerprint returns the fingerprint of the parse options the cached
// records were produced with, or "" when none has been stored.
func (c *Cache) ParseFingerprint() (string, error) {
	var v string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = ?", parseKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// Reset drops every cached record and tracking entry and records the
// fingerprint the next parses will be stored under.
func (c *Cache) Reset(fingerprint string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM transactions", "DELETE FROM file_tracker"} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO cache_meta (key, value) VALUES (?, ?)", parseKey, fingerprint); err != nil {
		return err
	}
	return tx.Commit()
}
