// Package sessions is the agent session log engine. Every line an
// agent emits while working a feature is appended to that feature's
// JSONL log through the fsio facade, and mirrored into a SQLite FTS5
// index in the user-data directory so past sessions are searchable
// across projects.
package sessions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/automaker/store/internal/fsio"
	"github.com/automaker/store/internal/paths"
)

// Entry kinds. Free-form kinds are allowed; these are the ones the
// agent runner emits.
const (
	KindMessage = "message"
	KindToolUse = "tool_use"
	KindError   = "error"
)

// LogEntry is one line of agent output.
type LogEntry struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
}

// LogStore reads and writes per-feature agent logs and summaries.
type LogStore struct{}

// NewLogStore creates a filesystem-backed log store.
func NewLogStore() *LogStore {
	return &LogStore{}
}

// Append adds one entry to a feature's JSONL log, stamping it if the
// caller didn't. The logs directory is created on first write so a
// session can start logging before the feature store has run.
func (ls *LogStore) Append(projectRoot, featureID string, entry LogEntry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("sessions: marshaling log entry: %w", err)
	}
	line = append(line, '\n')

	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(paths.FeatureLogsPath(projectRoot, featureID), 0o755); err != nil {
		return fmt.Errorf("sessions: creating logs directory: %w", err)
	}
	if err := io.AppendFile(paths.AgentLogPath(projectRoot, featureID), line, 0o644); err != nil {
		return fmt.Errorf("sessions: appending log entry: %w", err)
	}
	return nil
}

// Read returns every entry in a feature's log, oldest first. A missing
// log is an empty slice, not an error. Unparseable lines are skipped —
// a torn write from a crashed agent must not make the whole log
// unreadable.
func (ls *LogStore) Read(projectRoot, featureID string) ([]LogEntry, error) {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadFile(paths.AgentLogPath(projectRoot, featureID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("sessions: reading log: %w", err)
	}

	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sessions: scanning log: %w", err)
	}
	return entries, nil
}

// WriteSummary stores the condensed run summary for a feature,
// replacing any previous one.
func (ls *LogStore) WriteSummary(projectRoot, featureID, summary string) error {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(paths.FeatureLogsPath(projectRoot, featureID), 0o755); err != nil {
		return fmt.Errorf("sessions: creating logs directory: %w", err)
	}
	if err := io.WriteFile(paths.SummaryPath(projectRoot, featureID), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("sessions: writing summary: %w", err)
	}
	return nil
}

// ReadSummary returns a feature's summary, or "" when none exists.
func (ls *LogStore) ReadSummary(projectRoot, featureID string) (string, error) {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return "", err
	}
	data, err := io.ReadFile(paths.SummaryPath(projectRoot, featureID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("sessions: reading summary: %w", err)
	}
	return string(data), nil
}
