package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tickerize/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS reference (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  position INTEGER NOT NULL,
  name TEXT NOT NULL UNIQUE,
  ticker TEXT NOT NULL,
  importedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reference_position ON reference(position);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  inputFile TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  elapsedMs INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS resolutions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  rawName TEXT NOT NULL,
  normalized TEXT,
  strategy TEXT NOT NULL,
  matchedName TEXT,
  ticker TEXT,
  score INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceReference swaps the stored reference list for a new one in a single
// transaction. Position preserves the input order; a duplicate name keeps
// its first occurrence.
func (d *DB) ReplaceReference(entries []internal.ReferenceEntry) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM reference`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO reference (position, name, ticker) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(i, e.Name, e.Ticker); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListReference returns the stored reference entries in import order.
func (d *DB) ListReference() ([]internal.ReferenceEntry, error) {
	rows, err := d.conn.Query(`SELECT name, ticker FROM reference ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReferenceEntry
	for rows.Next() {
		var e internal.ReferenceEntry
		if err := rows.Scan(&e.Name, &e.Ticker); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) CountReference() (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM reference`).Scan(&count)
	return count, err
}

func (d *DB) InsertRun(traceID, inputFile string, stats internal.RunStats) (int64, error) {
	countsJSON, _ := json.Marshal(stats.ByStrategy)
	result, err := d.conn.Exec(
		`INSERT INTO runs (traceId, inputFile, countsJson, elapsedMs) VALUES (?, ?, ?, ?)`,
		traceID, inputFile, string(countsJSON), stats.ElapsedMs,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertResolutions(runID int64, rows []internal.ResolutionRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO resolutions (runId, position, rawName, normalized, strategy, matchedName, ticker, score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(runID, r.Position, r.RawName, r.Normalized, r.Strategy, r.MatchedName, r.Ticker, r.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListResolutions returns the persisted per-name diagnostics for one run.
func (d *DB) ListResolutions(runID int64) ([]internal.ResolutionRow, error) {
	rows, err := d.conn.Query(`
SELECT position, rawName, normalized, strategy, matchedName, ticker, score
FROM resolutions WHERE runId = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResolutionRow
	for rows.Next() {
		var r internal.ResolutionRow
		if err := rows.Scan(&r.Position, &r.RawName, &r.Normalized, &r.Strategy, &r.MatchedName, &r.Ticker, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
