package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/automaker/store/internal/paths"
)

// findRoot walks up from cwd looking for a .automaker/ directory.
// Shared utility for resource handlers.
func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if info, err := os.Stat(paths.ProjectData(current)); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
