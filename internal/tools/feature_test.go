package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/automaker/store/internal/features"
)

func TestFeatureCreate_WritesRecord(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()
	tool := NewFeatureCreateTool(store)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"title":        "Add Login Flow",
		"description":  "OAuth based login",
		"agent":        "builder",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("create failed: %s", resultText(t, result))
	}

	f, err := store.Load(root, "add-login-flow")
	if err != nil {
		t.Fatalf("Load() after create: %v", err)
	}
	if f.Status != features.StatusBacklog {
		t.Errorf("Status = %q, want backlog", f.Status)
	}
	if f.Agent != "builder" {
		t.Errorf("Agent = %q, want builder", f.Agent)
	}
}

func TestFeatureCreate_MissingTitle(t *testing.T) {
	tool := NewFeatureCreateTool(features.NewFileStore())

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"project_root": t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing title")
	}
}

func TestFeatureList_FiltersByStatus(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()

	for _, title := range []string{"first", "second"} {
		if err := store.Create(root, features.NewFeatureRecord(title, "")); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}
	f, err := store.Load(root, "second")
	if err != nil {
		t.Fatal(err)
	}
	f.Status = features.StatusCompleted
	if err := store.Save(root, f); err != nil {
		t.Fatal(err)
	}

	tool := NewFeatureListTool(store)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"status":       "completed",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "second") {
		t.Errorf("output missing completed feature: %q", text)
	}
	if strings.Contains(text, "first") {
		t.Errorf("output includes filtered-out feature: %q", text)
	}
}

func TestFeatureUpdate_InProgressIncrementsAttempts(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()
	if err := store.Create(root, features.NewFeatureRecord("retry me", "")); err != nil {
		t.Fatal(err)
	}

	tool := NewFeatureUpdateTool(store)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"feature_id":   "retry-me",
		"status":       "in_progress",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("update failed: %s", resultText(t, result))
	}

	f, err := store.Load(root, "retry-me")
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != features.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", f.Status)
	}
	if f.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", f.Attempts)
	}
}

func TestFeatureUpdate_InvalidStatusRejected(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()
	if err := store.Create(root, features.NewFeatureRecord("stable", "")); err != nil {
		t.Fatal(err)
	}

	tool := NewFeatureUpdateTool(store)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"feature_id":   "stable",
		"status":       "doing-stuff",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid status")
	}

	f, err := store.Load(root, "stable")
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != features.StatusBacklog {
		t.Errorf("Status = %q, want backlog untouched", f.Status)
	}
}

func TestFeatureArchive_MovesToHistory(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()
	if err := store.Create(root, features.NewFeatureRecord("done work", "")); err != nil {
		t.Fatal(err)
	}
	f, err := store.Load(root, "done-work")
	if err != nil {
		t.Fatal(err)
	}
	f.Status = features.StatusCompleted
	if err := store.Save(root, f); err != nil {
		t.Fatal(err)
	}

	tool := NewFeatureArchiveTool(store)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"feature_id":   "done-work",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("archive failed: %s", resultText(t, result))
	}

	list, err := store.List(root)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, rec := range list {
		if rec.ID == "done-work" && rec.Status == features.StatusArchived {
			found = true
		}
	}
	if !found {
		t.Error("archived feature missing from list")
	}
}

func TestFeatureArchive_RefusesInProgress(t *testing.T) {
	root := t.TempDir()
	store := features.NewFileStore()
	if err := store.Create(root, features.NewFeatureRecord("busy", "")); err != nil {
		t.Fatal(err)
	}
	f, err := store.Load(root, "busy")
	if err != nil {
		t.Fatal(err)
	}
	f.Status = features.StatusInProgress
	if err := store.Save(root, f); err != nil {
		t.Fatal(err)
	}

	tool := NewFeatureArchiveTool(store)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"feature_id":   "busy",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result archiving an in-progress feature")
	}
}
