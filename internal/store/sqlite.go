// Package store persists an audit log of generated reports. Reports are
// always produced fresh per request; this log exists for observability and
// is never read back to serve a report.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// Source tags which synthesis path produced a report.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// HistoryEntry is one recorded report generation.
type HistoryEntry struct {
	ID        string       `json:"id"`
	StationID int          `json:"station_id"`
	Source    string       `json:"source"`
	Report    model.Report `json:"report"`
	CreatedAt time.Time    `json:"created_at"`
}

// History is the sqlite-backed report log.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database and configures WAL mode.
func Open(dsn string) (*History, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &History{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS report_history (
	id         TEXT PRIMARY KEY,
	station_id INTEGER NOT NULL,
	source     TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_report_history_station ON report_history(station_id);
CREATE INDEX IF NOT EXISTS idx_report_history_created ON report_history(created_at);
`

// Migrate creates the schema.
func (h *History) Migrate(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends one generated report to the log.
func (h *History) Record(ctx context.Context, stationID int, source string, report model.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "store: marshal report")
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO report_history (id, station_id, source, report) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), stationID, source, string(payload),
	)
	return eris.Wrap(err, "store: insert report")
}

// Recent returns the latest entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, station_id, source, report, created_at
		 FROM report_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: query history")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var payload string
		if err := rows.Scan(&e.ID, &e.StationID, &e.Source, &payload, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan history row")
		}
		if err := json.Unmarshal([]byte(payload), &e.Report); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal report payload")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate history rows")
	}
	return entries, nil
}
