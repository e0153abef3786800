package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mos-jef/title-crm/internal/models"
)

const mirrorSchemaSQL = `
CREATE TABLE IF NOT EXISTS parcels (
	id         TEXT PRIMARY KEY,
	apn        TEXT NOT NULL DEFAULT '',
	completed  INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_parcels_apn ON parcels(apn);
`

// Mirror is the local durable tier: a SQLite database refreshed with
// the full record list on every catalog mutation. It is an
// eventually-consistent follower of the in-process cache and is only
// read at session start when no remote store is configured.
type Mirror struct {
	conn *sql.DB
}

// OpenMirror opens (or creates) the mirror database and applies the
// schema.
func OpenMirror(dsn string) (*Mirror, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("mirror: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mirror: ping: %w", err)
	}
	if _, err := conn.Exec(mirrorSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mirror: apply schema: %w", err)
	}
	return &Mirror{conn: conn}, nil
}

// Close closes the underlying database connection.
func (m *Mirror) Close() error {
	return m.conn.Close()
}

// ReplaceAll swaps the stored record list for the given snapshot within
// a single transaction.
func (m *Mirror) ReplaceAll(parcels []models.Parcel) error {
	tx, err := m.conn.Begin()
	if err != nil {
		return fmt.Errorf("mirror: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM parcels`); err != nil {
		return fmt.Errorf("mirror: clear: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO parcels (id, apn, completed, updated_at, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("mirror: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range parcels {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("mirror: encode parcel %s: %w", p.ID, err)
		}
		completed := 0
		if p.Completed {
			completed = 1
		}
		if _, err := stmt.Exec(p.ID, p.APN, completed, p.UpdatedAt, string(data)); err != nil {
			return fmt.Errorf("mirror: insert parcel %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAll reads the full stored record list.
func (m *Mirror) LoadAll() ([]models.Parcel, error) {
	rows, err := m.conn.Query(`SELECT data FROM parcels ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("mirror: load: %w", err)
	}
	defer rows.Close()

	var out []models.Parcel
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p models.Parcel
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("mirror: decode parcel: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
