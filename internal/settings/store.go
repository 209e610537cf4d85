package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/automaker/store/internal/fsio"
	"github.com/automaker/store/internal/paths"
)

// Store defines settings persistence. Abstracted for testability.
type Store interface {
	LoadGlobal() (*Settings, error)
	SaveGlobal(s *Settings) error
	LoadProject(projectRoot string) (*Settings, error)
	SaveProject(projectRoot string, s *Settings) error
	Effective(projectRoot string) (*Settings, error)
}

// FileStore implements Store on top of the fsio facade. Global
// settings live in the user-data directory, project settings inside
// each project's .automaker/ tree.
type FileStore struct {
	userDataDir string
}

// NewFileStore creates a settings store anchored at the user-data
// directory.
func NewFileStore() (*FileStore, error) {
	dir, err := paths.UserDataDir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreAt(dir), nil
}

// NewFileStoreAt creates a settings store with an explicit user-data
// directory, for tests.
func NewFileStoreAt(userDataDir string) *FileStore {
	return &FileStore{userDataDir: userDataDir}
}

// LoadGlobal reads the global settings. A missing file yields the
// defaults, not an error.
func (fs *FileStore) LoadGlobal() (*Settings, error) {
	io, err := fsio.ForRoot(fs.userDataDir)
	if err != nil {
		return nil, err
	}
	return load(io, paths.GlobalSettingsPath(fs.userDataDir), Default())
}

// SaveGlobal writes the global settings, creating the user-data
// directory if needed.
func (fs *FileStore) SaveGlobal(s *Settings) error {
	io, err := fsio.ForRoot(fs.userDataDir)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(".", 0o755); err != nil {
		return fmt.Errorf("settings: creating user-data dir: %w", err)
	}
	return save(io, paths.GlobalSettingsPath(fs.userDataDir), s)
}

// LoadProject reads a project's settings file. A missing file yields
// an empty overlay (everything inherits).
func (fs *FileStore) LoadProject(projectRoot string) (*Settings, error) {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return nil, err
	}
	return load(io, paths.ProjectSettingsPath(projectRoot), &Settings{})
}

// SaveProject writes a project's settings file.
func (fs *FileStore) SaveProject(projectRoot string, s *Settings) error {
	io, err := fsio.ForRoot(projectRoot)
	if err != nil {
		return err
	}
	if err := io.MkdirAll(paths.ProjectData(projectRoot), 0o755); err != nil {
		return fmt.Errorf("settings: creating project data dir: %w", err)
	}
	return save(io, paths.ProjectSettingsPath(projectRoot), s)
}

// Effective returns defaults overlaid with global then project
// settings — what the rest of the system should actually use.
func (fs *FileStore) Effective(projectRoot string) (*Settings, error) {
	global, err := fs.LoadGlobal()
	if err != nil {
		return nil, err
	}
	project, err := fs.LoadProject(projectRoot)
	if err != nil {
		return nil, err
	}
	return Merge(global, project), nil
}

func load(io *fsio.IO, path string, missing *Settings) (*Settings, error) {
	data, err := io.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return missing, nil
		}
		return nil, fmt.Errorf("settings: reading %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: parsing %s: %w", path, err)
	}
	return &s, nil
}

func save(io *fsio.IO, path string, s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshaling: %w", err)
	}
	if err := io.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: writing %s: %w", path, err)
	}
	return nil
}
