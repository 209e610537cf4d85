// Package paths constructs every file and directory location under a
// project's .automaker/ tree and the global user-data directory. It is
// the single place path layout knowledge lives: stores never join path
// segments themselves, and nothing here touches the filesystem — all
// I/O goes through the fsio facade these paths are handed to.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir is the per-project state directory.
	DataDir = ".automaker"
	// FeaturesDir is the subdirectory under .automaker/ where feature
	// records live.
	FeaturesDir = "features"
	// HistoryDir is the subdirectory under .automaker/ where archived
	// features live.
	HistoryDir = "history"
	// LogsDir is the subdirectory of a feature for agent session logs.
	LogsDir = "logs"
	// FeatureConfigFile is the filename for feature records.
	FeatureConfigFile = "feature.json"
	// SettingsFile is the filename for settings, both global and
	// per-project.
	SettingsFile = "settings.json"
	// AgentLogFile is the JSONL stream of one feature's agent output.
	AgentLogFile = "agent.jsonl"
	// SummaryFile is the condensed agent-run summary for a feature.
	SummaryFile = "summary.md"
	// IndexDBFile is the SQLite session index in the user-data dir.
	IndexDBFile = "index.db"
)

// ProjectData returns the absolute path to the .automaker/ directory.
func ProjectData(projectRoot string) string {
	return filepath.Join(projectRoot, DataDir)
}

// FeaturesPath returns the .automaker/features/ directory.
func FeaturesPath(projectRoot string) string {
	return filepath.Join(ProjectData(projectRoot), FeaturesDir)
}

// HistoryPath returns the .automaker/history/ directory.
func HistoryPath(projectRoot string) string {
	return filepath.Join(ProjectData(projectRoot), HistoryDir)
}

// ArchivedFeaturePath returns a feature's directory under history/.
func ArchivedFeaturePath(projectRoot, featureID string) string {
	return filepath.Join(HistoryPath(projectRoot), featureID)
}

// FeaturePath returns a specific feature's directory.
func FeaturePath(projectRoot, featureID string) string {
	return filepath.Join(FeaturesPath(projectRoot), featureID)
}

// FeatureConfigPath returns a feature's feature.json.
func FeatureConfigPath(projectRoot, featureID string) string {
	return filepath.Join(FeaturePath(projectRoot, featureID), FeatureConfigFile)
}

// FeatureLogsPath returns a feature's logs/ directory.
func FeatureLogsPath(projectRoot, featureID string) string {
	return filepath.Join(FeaturePath(projectRoot, featureID), LogsDir)
}

// AgentLogPath returns the JSONL agent log for a feature.
func AgentLogPath(projectRoot, featureID string) string {
	return filepath.Join(FeatureLogsPath(projectRoot, featureID), AgentLogFile)
}

// SummaryPath returns the agent-run summary file for a feature.
func SummaryPath(projectRoot, featureID string) string {
	return filepath.Join(FeatureLogsPath(projectRoot, featureID), SummaryFile)
}

// ProjectSettingsPath returns the per-project settings.json.
func ProjectSettingsPath(projectRoot string) string {
	return filepath.Join(ProjectData(projectRoot), SettingsFile)
}

// UserDataDir returns the global user-data directory (~/.automaker),
// shared by every project on the machine.
func UserDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("paths: resolving home directory: %w", err)
	}
	return filepath.Join(home, DataDir), nil
}

// GlobalSettingsPath returns the global settings.json in the user-data
// directory.
func GlobalSettingsPath(userDataDir string) string {
	return filepath.Join(userDataDir, SettingsFile)
}

// IndexDBPath returns the session index database in the user-data
// directory.
func IndexDBPath(userDataDir string) string {
	return filepath.Join(userDataDir, IndexDBFile)
}
