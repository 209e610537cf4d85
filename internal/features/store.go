package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/automaker/store/internal/fsio"
	"github.com/automaker/store/internal/paths"
)

// Store defines the persistence interface for feature records.
// Abstracted for testability.
type Store interface {
	Create(projectRoot string, feature *FeatureRecord) error
	Load(projectRoot, featureID string) (*FeatureRecord, error)
	Save(projectRoot string, feature *FeatureRecord) error
	Archive(projectRoot, featureID string) error
	Delete(projectRoot, featureID string) error
	List(projectRoot string) ([]FeatureRecord, error)
}

// FileStore implements Store through the fsio facade, so every record
// read and write is sandboxed, throttled, and retried.
type FileStore struct{}

// NewFileStore creates a filesystem-backed feature store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Create persists a new feature record, creating the directory
// structure. If the slug already exists, appends a numeric suffix
// (-2, -3, etc.).
func (fs *FileStore) Create(projectRoot string, feature *FeatureRecord) error {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(paths.FeaturesPath(projectRoot), 0o755); err != nil {
		return fmt.Errorf("creating features directory: %w", err)
	}

	// Handle slug collisions.
	originalID := feature.ID
	suffix := 2
	for {
		exists, err := io.Exists(paths.FeaturePath(projectRoot, feature.ID))
		if err != nil {
			return fmt.Errorf("checking feature directory: %w", err)
		}
		if !exists {
			break
		}
		feature.ID = fmt.Sprintf("%s-%d", originalID, suffix)
		suffix++
	}

	if err := io.MkdirAll(paths.FeatureLogsPath(projectRoot, feature.ID), 0o755); err != nil {
		return fmt.Errorf("creating feature directory: %w", err)
	}

	return fs.writeRecord(io, projectRoot, feature)
}

// Load reads a specific feature record by ID.
func (fs *FileStore) Load(projectRoot, featureID string) (*FeatureRecord, error) {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadFile(paths.FeatureConfigPath(projectRoot, featureID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("feature %q not found", featureID)
		}
		return nil, fmt.Errorf("reading feature config: %w", err)
	}

	var feature FeatureRecord
	if err := json.Unmarshal(data, &feature); err != nil {
		return nil, fmt.Errorf("parsing feature.json for %q: %w", featureID, err)
	}
	return &feature, nil
}

// Save updates an existing feature record.
func (fs *FileStore) Save(projectRoot string, feature *FeatureRecord) error {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	feature.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return fs.writeRecord(io, projectRoot, feature)
}

// Archive moves a finished feature from features/ to history/. Active
// work is protected: a feature still in progress cannot be archived.
func (fs *FileStore) Archive(projectRoot, featureID string) error {
	feature, err := fs.Load(projectRoot, featureID)
	if err != nil {
		return err
	}
	if feature.Status == StatusInProgress {
		return fmt.Errorf("cannot archive feature %q while an agent is working on it", featureID)
	}

	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(paths.HistoryPath(projectRoot), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	dstDir := paths.ArchivedFeaturePath(projectRoot, featureID)
	if exists, err := io.Exists(dstDir); err != nil {
		return fmt.Errorf("checking history directory: %w", err)
	} else if exists {
		return fmt.Errorf("feature %q already exists in history", featureID)
	}

	// Update status before moving.
	feature.Status = StatusArchived
	feature.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := fs.writeRecord(io, projectRoot, feature); err != nil {
		return fmt.Errorf("updating feature status: %w", err)
	}

	if err := io.Rename(paths.FeaturePath(projectRoot, featureID), dstDir); err != nil {
		return fmt.Errorf("moving feature to history: %w", err)
	}
	return nil
}

// Delete removes a feature and everything under it.
func (fs *FileStore) Delete(projectRoot, featureID string) error {
	feature, err := fs.Load(projectRoot, featureID)
	if err != nil {
		return err
	}
	if feature.Status == StatusInProgress {
		return fmt.Errorf("cannot delete feature %q while an agent is working on it", featureID)
	}

	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	return io.RemoveAll(paths.FeaturePath(projectRoot, featureID))
}

// List returns all features from both features/ and history/.
func (fs *FileStore) List(projectRoot string) ([]FeatureRecord, error) {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	var result []FeatureRecord
	for _, dir := range []string{paths.FeaturesPath(projectRoot), paths.HistoryPath(projectRoot)} {
		entries, err := io.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			feature, err := fs.loadFrom(io, dir, entry.Name())
			if err != nil {
				continue // skip unreadable features
			}
			result = append(result, *feature)
		}
	}
	return result, nil
}

func (fs *FileStore) loadFrom(io *fsio.IO, dir, featureID string) (*FeatureRecord, error) {
	data, err := io.ReadFile(filepath.Join(dir, featureID, paths.FeatureConfigFile))
	if err != nil {
		return nil, err
	}
	var feature FeatureRecord
	if err := json.Unmarshal(data, &feature); err != nil {
		return nil, err
	}
	return &feature, nil
}

func (fs *FileStore) writeRecord(io *fsio.IO, projectRoot string, feature *FeatureRecord) error {
	data, err := json.MarshalIndent(feature, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling feature record: %w", err)
	}
	path := paths.FeatureConfigPath(projectRoot, feature.ID)
	if err := io.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing feature.json: %w", err)
	}
	return nil
}
