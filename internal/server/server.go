// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/automaker/store/internal/features"
	"github.com/automaker/store/internal/paths"
	"github.com/automaker/store/internal/prompts"
	"github.com/automaker/store/internal/resources"
	"github.com/automaker/store/internal/sessions"
	"github.com/automaker/store/internal/settings"
	"github.com/automaker/store/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools and
// resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the session index's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if index init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	settingsStore, err := settings.NewFileStore()
	if err != nil {
		return nil, noop, fmt.Errorf("creating settings store: %w", err)
	}

	// Global settings may carry throttling overrides; push them into
	// the registry before any storage operation runs.
	if global, err := settingsStore.LoadGlobal(); err != nil {
		log.Printf("WARNING: loading global settings: %v", err)
	} else if err := global.ApplyThrottling(); err != nil {
		log.Printf("WARNING: settings throttling rejected: %v", err)
	}

	featureStore := features.NewFileStore()
	logStore := sessions.NewLogStore()

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"automaker-store",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register storage tools ---

	readTool := tools.NewStorageReadTool()
	s.AddTool(readTool.Definition(), readTool.Handle)

	writeTool := tools.NewStorageWriteTool()
	s.AddTool(writeTool.Definition(), writeTool.Handle)

	listTool := tools.NewStorageListTool()
	s.AddTool(listTool.Definition(), listTool.Handle)

	statTool := tools.NewStorageStatTool()
	s.AddTool(statTool.Definition(), statTool.Handle)

	deleteTool := tools.NewStorageDeleteTool()
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	// --- Register feature tools ---

	featureCreate := tools.NewFeatureCreateTool(featureStore)
	s.AddTool(featureCreate.Definition(), featureCreate.Handle)

	featureList := tools.NewFeatureListTool(featureStore)
	s.AddTool(featureList.Definition(), featureList.Handle)

	featureUpdate := tools.NewFeatureUpdateTool(featureStore)
	s.AddTool(featureUpdate.Definition(), featureUpdate.Handle)

	featureArchive := tools.NewFeatureArchiveTool(featureStore)
	s.AddTool(featureArchive.Definition(), featureArchive.Handle)

	// --- Register session log tools ---
	//
	// The session index is an independent subsystem: if it fails to
	// initialize, logs still reach their JSONL files and the server
	// stays fully functional. We log a warning and run without search.

	cleanup := noop
	var index *sessions.Index

	userDataDir, udErr := paths.UserDataDir()
	if udErr == nil {
		index, udErr = sessions.OpenIndex(paths.IndexDBPath(userDataDir))
	}
	if udErr != nil {
		log.Printf("WARNING: session index disabled: %v", udErr)
		index = nil
	} else {
		cleanup = func() {
			if err := index.Close(); err != nil {
				log.Printf("WARNING: session index close: %v", err)
			}
		}

		logSearch := tools.NewLogSearchTool(index)
		s.AddTool(logSearch.Definition(), logSearch.Handle)
	}

	logAppend := tools.NewLogAppendTool(logStore, index)
	s.AddTool(logAppend.Definition(), logAppend.Handle)

	sessionSummary := tools.NewSessionSummaryTool(logStore, index)
	s.AddTool(sessionSummary.Definition(), sessionSummary.Handle)

	// --- Register throttling tools ---

	throttleStatus := tools.NewThrottleStatusTool()
	s.AddTool(throttleStatus.Definition(), throttleStatus.Handle)

	throttleConfigure := tools.NewThrottleConfigureTool()
	s.AddTool(throttleConfigure.Definition(), throttleConfigure.Handle)

	// --- Register prompts ---

	sessionStart := prompts.NewSessionStartPrompt()
	s.AddPrompt(sessionStart.Definition(), sessionStart.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(settingsStore)
	s.AddResource(resourceHandler.StorageStatusResource(), resourceHandler.HandleStorageStatus)
	s.AddResource(resourceHandler.SettingsResource(), resourceHandler.HandleSettings)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the
// session index is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the storage server effectively.
func serverInstructions() string {
	return `You have access to automaker-store, an MCP server for persistent
project state used by AI agent sessions.

## What it stores
Project state lives under <project>/.automaker/: feature records, agent
session logs, session summaries, and project settings. Global settings
and the cross-project session search index live in the user data
directory (~/.automaker).

## Tools

### Storage
- automaker_storage_read/write/list/stat/delete operate on paths
  relative to the project root. Paths that resolve outside the project
  root are rejected.
- Writes create parent directories automatically; pass append=true to
  append instead of overwriting.

### Features
- automaker_feature_create registers a unit of work. The ID is a slug
  of the title; collisions get a numeric suffix.
- automaker_feature_update moves a feature through its lifecycle
  (backlog, in_progress, completed, failed). Moving to in_progress
  increments the attempt counter.
- automaker_feature_archive moves a finished feature into history.
  In-progress features cannot be archived or deleted.
- automaker_feature_list shows all features, including archived ones.

### Session logs
- Call automaker_log_append for every significant step you take while
  working a feature: messages, tool uses, errors. Entries are appended
  to the feature's JSONL log and indexed for search.
- Call automaker_session_summary when a session ends. It writes the
  feature's summary.md and closes the indexed session.
- Use automaker_log_search at the start of a session to recover what
  earlier sessions did. It searches across all projects.

### Throttling
- All storage runs through a shared concurrency gate with retry on
  transient file-handle exhaustion. automaker_throttle_status shows the
  configuration and live counters; automaker_throttle_configure adjusts
  it at runtime. Invalid updates are rejected without changing anything.

## Conventions
- One feature = one unit of agent work. Create the feature before
  logging against it.
- Session IDs are yours to choose; keep one ID per working session and
  reuse it for every log append in that session.
- Log entries should be self-contained: a future session reading the
  log should understand what happened without this conversation.`
}
