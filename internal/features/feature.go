// Package features persists feature records, the unit of work agents
// execute, as JSON under .automaker/features/<id>/feature.json. Status
// lives inside the record; directory names are plain feature IDs and
// never encode workflow state.
package features

import (
	"regexp"
	"strings"
	"time"
)

// Status is a feature's workflow state.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusArchived   Status = "archived"
)

// ValidStatus reports whether s is one of the known workflow states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusCompleted, StatusFailed, StatusArchived:
		return true
	}
	return false
}

// FeatureRecord is the persisted form of one feature.
type FeatureRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	// Agent is the agent profile assigned to this feature.
	Agent string `json:"agent,omitempty"`
	// Attempts counts agent runs against this feature.
	Attempts  int    `json:"attempts"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NewFeatureRecord creates a backlog record with a slug derived from
// the title and fresh timestamps.
func NewFeatureRecord(title, description string) *FeatureRecord {
	now := time.Now().UTC().Format(time.RFC3339)
	return &FeatureRecord{
		ID:          Slugify(title),
		Title:       title,
		Description: description,
		Status:      StatusBacklog,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a directory-safe feature ID.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "feature"
	}
	return slug
}
