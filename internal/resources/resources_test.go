package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/automaker/store/internal/fsio"
	"github.com/automaker/store/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestHandleStorageStatus_ReturnsJSON(t *testing.T) {
	fsio.ResetThrottling()
	t.Cleanup(fsio.ResetThrottling)

	h := NewHandler(settings.NewFileStoreAt(t.TempDir()))

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "automaker://storage/status"

	contents, err := h.HandleStorageStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleStorageStatus() error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}

	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T, want TextResourceContents", contents[0])
	}

	var status struct {
		MaxConcurrency    int `json:"max_concurrency"`
		ActiveOperations  int `json:"active_operations"`
		PendingOperations int `json:"pending_operations"`
	}
	if err := json.Unmarshal([]byte(text.Text), &status); err != nil {
		t.Fatalf("status is not valid JSON: %v", err)
	}
	if status.MaxConcurrency != 100 {
		t.Errorf("max_concurrency = %d, want 100", status.MaxConcurrency)
	}
	if status.ActiveOperations != 0 || status.PendingOperations != 0 {
		t.Errorf("counters = %d/%d, want 0/0", status.ActiveOperations, status.PendingOperations)
	}
}
