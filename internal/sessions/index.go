package sessions

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SessionInfo is one agent session as recorded in the index.
type SessionInfo struct {
	ID        string  `json:"id"`
	Project   string  `json:"project"`
	FeatureID string  `json:"feature_id"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// IndexedEntry is a log entry as returned from a search, with its
// FTS5 rank.
type IndexedEntry struct {
	ID        int64   `json:"id"`
	SessionID string  `json:"session_id"`
	Project   string  `json:"project"`
	FeatureID string  `json:"feature_id"`
	Kind      string  `json:"kind"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	Rank      float64 `json:"rank"`
}

// SearchOptions filters index searches.
type SearchOptions struct {
	Project   string `json:"project,omitempty"`
	FeatureID string `json:"feature_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Stats holds aggregate index statistics.
type Stats struct {
	TotalSessions int      `json:"total_sessions"`
	TotalEntries  int      `json:"total_entries"`
	Projects      []string `json:"projects"`
}

// Index is the cross-project session search engine, backed by SQLite
// with FTS5 full-text search in the user-data directory.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the index database at dbPath, enables
// WAL mode, and runs migrations.
func OpenIndex(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("sessions: create index dir: %w", err)
	}

	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sessions: open index: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sessions: pragma %q: %w", p, err)
		}
	}

	ix := &Index{db: db}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessions: migration: %w", err)
	}
	return ix, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			feature_id TEXT NOT NULL,
			started_at TEXT NOT NULL DEFAULT (datetime('now')),
			ended_at   TEXT,
			summary    TEXT
		);

		CREATE TABLE IF NOT EXISTS log_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_entries_session ON log_entries(session_id);
		CREATE INDEX IF NOT EXISTS idx_entries_kind    ON log_entries(kind);
		CREATE INDEX IF NOT EXISTS idx_entries_created ON log_entries(created_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			content,
			kind,
			content='log_entries',
			content_rowid='id'
		);
	`
	if _, err := ix.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// RecordSession registers a session. Re-recording an existing ID is a
// no-op so callers can be lazy about session lifecycle.
func (ix *Index) RecordSession(id, project, featureID string) error {
	_, err := ix.db.Exec(
		`INSERT INTO sessions (id, project, feature_id) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, project, featureID,
	)
	return err
}

// EndSession marks a session finished and stores its summary.
func (ix *Index) EndSession(id, summary string) error {
	res, err := ix.db.Exec(
		`UPDATE sessions SET ended_at = datetime('now'), summary = ? WHERE id = ?`,
		summary, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sessions: session %q not found", id)
	}
	return nil
}

// GetSession returns one session by ID.
func (ix *Index) GetSession(id string) (*SessionInfo, error) {
	row := ix.db.QueryRow(
		`SELECT id, project, feature_id, started_at, ended_at, summary
		 FROM sessions WHERE id = ?`, id,
	)
	var s SessionInfo
	if err := row.Scan(&s.ID, &s.Project, &s.FeatureID, &s.StartedAt, &s.EndedAt, &s.Summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sessions: session %q not found", id)
		}
		return nil, err
	}
	return &s, nil
}

// RecentSessions lists the newest sessions, optionally filtered by
// project.
func (ix *Index) RecentSessions(project string, limit int) ([]SessionInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, project, feature_id, started_at, ended_at, summary
		 FROM sessions`
	var args []any
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := ix.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SessionInfo
	for rows.Next() {
		var s SessionInfo
		if err := rows.Scan(&s.ID, &s.Project, &s.FeatureID, &s.StartedAt, &s.EndedAt, &s.Summary); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// AddEntry mirrors one log entry into the index and its FTS table.
func (ix *Index) AddEntry(sessionID string, entry LogEntry) (int64, error) {
	res, err := ix.db.Exec(
		`INSERT INTO log_entries (session_id, kind, content) VALUES (?, ?, ?)`,
		sessionID, entry.Kind, entry.Content,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = ix.db.Exec(
		`INSERT INTO entries_fts (rowid, content, kind) VALUES (?, ?, ?)`,
		id, entry.Content, entry.Kind,
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Search runs an FTS5 match over indexed log entries, newest-best
// ranked. An empty query falls back to the most recent entries.
func (ix *Index) Search(query string, opts SearchOptions) ([]IndexedEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	var (
		sb   strings.Builder
		args []any
	)
	if strings.TrimSpace(query) == "" {
		sb.WriteString(`SELECT e.id, e.session_id, s.project, s.feature_id,
			e.kind, e.content, e.created_at, 0.0
			FROM log_entries e JOIN sessions s ON s.id = e.session_id
			WHERE 1=1`)
	} else {
		sb.WriteString(`SELECT e.id, e.session_id, s.project, s.feature_id,
			e.kind, e.content, e.created_at, f.rank
			FROM entries_fts f
			JOIN log_entries e ON e.id = f.rowid
			JOIN sessions s ON s.id = e.session_id
			WHERE entries_fts MATCH ?`)
		args = append(args, ftsQuery(query))
	}
	if opts.Project != "" {
		sb.WriteString(` AND s.project = ?`)
		args = append(args, opts.Project)
	}
	if opts.FeatureID != "" {
		sb.WriteString(` AND s.feature_id = ?`)
		args = append(args, opts.FeatureID)
	}
	if opts.Kind != "" {
		sb.WriteString(` AND e.kind = ?`)
		args = append(args, opts.Kind)
	}
	if strings.TrimSpace(query) == "" {
		sb.WriteString(` ORDER BY e.created_at DESC LIMIT ?`)
	} else {
		sb.WriteString(` ORDER BY f.rank LIMIT ?`)
	}
	args = append(args, limit)

	rows, err := ix.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []IndexedEntry
	for rows.Next() {
		var e IndexedEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Project, &e.FeatureID,
			&e.Kind, &e.Content, &e.CreatedAt, &e.Rank); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Stats returns aggregate counts for introspection.
func (ix *Index) Stats() (*Stats, error) {
	stats := &Stats{}
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&stats.TotalSessions); err != nil {
		return nil, err
	}
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM log_entries`).Scan(&stats.TotalEntries); err != nil {
		return nil, err
	}

	rows, err := ix.db.Query(`SELECT DISTINCT project FROM sessions ORDER BY project`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		stats.Projects = append(stats.Projects, p)
	}
	return stats, rows.Err()
}

// ftsQuery quotes each term so punctuation in agent output doesn't
// break FTS5 match syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
