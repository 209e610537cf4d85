package sessions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/automaker/store/internal/sessions"
)

func newTestIndex(t *testing.T) *sessions.Index {
	t.Helper()
	ix, err := sessions.OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex() error: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func recordEntry(t *testing.T, ix *sessions.Index, sessionID, kind, content string) {
	t.Helper()
	if _, err := ix.AddEntry(sessionID, sessions.LogEntry{Kind: kind, Content: content}); err != nil {
		t.Fatalf("AddEntry(%q) error: %v", content, err)
	}
}

// ─── Open / lifecycle ───────────────────────────────────────────────────────

func TestOpenIndex_CreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "index.db")

	ix, err := sessions.OpenIndex(dbPath)
	if err != nil {
		t.Fatalf("OpenIndex() error: %v", err)
	}
	defer ix.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file at %s: %v", dbPath, err)
	}
}

func TestOpenIndex_IdempotentReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	ix1, err := sessions.OpenIndex(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := ix1.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatalf("record session: %v", err)
	}
	ix1.Close()

	ix2, err := sessions.OpenIndex(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer ix2.Close()

	got, err := ix2.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession() after reopen: %v", err)
	}
	if got.Project != "/proj" {
		t.Errorf("Project = %q, want %q", got.Project, "/proj")
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func TestRecordSession_DuplicateIsNoop(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := ix.RecordSession("sess-1", "/other", "other-feature"); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}

	got, err := ix.GetSession("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Project != "/proj" {
		t.Errorf("Project = %q, want original %q", got.Project, "/proj")
	}
}

func TestEndSession_SetsSummary(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	if err := ix.EndSession("sess-1", "implemented login"); err != nil {
		t.Fatalf("EndSession() error: %v", err)
	}

	got, err := ix.GetSession("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.EndedAt == nil {
		t.Error("EndedAt not set")
	}
	if got.Summary == nil || *got.Summary != "implemented login" {
		t.Errorf("Summary = %v, want %q", got.Summary, "implemented login")
	}
}

func TestEndSession_UnknownID(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.EndSession("no-such-session", "summary"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestRecentSessions_FiltersByProject(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj-a", "f1"); err != nil {
		t.Fatal(err)
	}
	if err := ix.RecordSession("sess-2", "/proj-b", "f2"); err != nil {
		t.Fatal(err)
	}
	if err := ix.RecordSession("sess-3", "/proj-a", "f3"); err != nil {
		t.Fatal(err)
	}

	got, err := ix.RecentSessions("/proj-a", 10)
	if err != nil {
		t.Fatalf("RecentSessions() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	for _, s := range got {
		if s.Project != "/proj-a" {
			t.Errorf("session %s has project %q, want %q", s.ID, s.Project, "/proj-a")
		}
	}
}

// ─── Search ─────────────────────────────────────────────────────────────────

func TestSearch_MatchesContent(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "refactored the login handler")
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "updated the database schema")

	got, err := ix.Search("login", sessions.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Content != "refactored the login handler" {
		t.Errorf("Content = %q", got[0].Content)
	}
	if got[0].Project != "/proj" {
		t.Errorf("Project = %q, want %q", got[0].Project, "/proj")
	}
}

func TestSearch_FiltersByKind(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "login attempt logged")
	recordEntry(t, ix, "sess-1", sessions.KindError, "login attempt failed")

	got, err := ix.Search("login", sessions.SearchOptions{Kind: sessions.KindError})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Kind != sessions.KindError {
		t.Errorf("Kind = %q, want %q", got[0].Kind, sessions.KindError)
	}
}

func TestSearch_SurvivesPunctuation(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindToolUse, `edited internal/auth/handler.go`)

	// Slashes and dots would be FTS5 syntax errors without quoting.
	got, err := ix.Search("internal/auth/handler.go", sessions.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

func TestSearch_EmptyQueryReturnsRecent(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "first")
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "second")

	got, err := ix.Search("", sessions.SearchOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

func TestSearch_FiltersByFeature(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj", "auth-flow"); err != nil {
		t.Fatal(err)
	}
	if err := ix.RecordSession("sess-2", "/proj", "billing"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "shared wording here")
	recordEntry(t, ix, "sess-2", sessions.KindMessage, "shared wording here")

	got, err := ix.Search("shared", sessions.SearchOptions{FeatureID: "billing"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].SessionID != "sess-2" {
		t.Errorf("SessionID = %q, want sess-2", got[0].SessionID)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats_Counts(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.RecordSession("sess-1", "/proj-a", "f1"); err != nil {
		t.Fatal(err)
	}
	if err := ix.RecordSession("sess-2", "/proj-b", "f2"); err != nil {
		t.Fatal(err)
	}
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "one")
	recordEntry(t, ix, "sess-1", sessions.KindMessage, "two")
	recordEntry(t, ix, "sess-2", sessions.KindMessage, "three")

	stats, err := ix.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	if len(stats.Projects) != 2 {
		t.Errorf("Projects = %v, want 2 entries", stats.Projects)
	}
}
