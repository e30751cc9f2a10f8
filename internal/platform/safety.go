package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the sandbox directory under os.TempDir used for dev runs.
const DevDirName = "jotter-dev"

// IsDevRun reports whether the process was built by `go run` or `go test`.
// Both place the binary under the system temp directory.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns the path to use for local data. With forceTemp,
// paths outside the temp directory are re-rooted under DevDirName keeping
// only their base name.
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	// Paths already under temp (t.TempDir and friends) are trusted.
	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), DevDirName, name)
}
