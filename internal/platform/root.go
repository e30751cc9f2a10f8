package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root indicators, checked in every directory from startDir upwards.
const (
	DataDirName    = ".jotter"
	ConfigFileName = "jotter.yaml"
)

// FindRoot walks upwards from startDir looking for a .jotter directory or
// a jotter.yaml file and returns the absolute path of the first match.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if exists(filepath.Join(dir, DataDirName)) || exists(filepath.Join(dir, ConfigFileName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("root not found")
		}
		dir = parent
	}
}

// DefaultDataPath is <root>/.jotter when a root is found from startDir,
// otherwise .jotter under startDir.
func DefaultDataPath(startDir string) string {
	if root, err := FindRoot(startDir); err == nil {
		return filepath.Join(root, DataDirName)
	}
	return filepath.Join(startDir, DataDirName)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
