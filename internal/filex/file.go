package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, so that SQLite
// can create the database file on first open.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DefaultDataPath returns <user config dir>/<app>/<file>, falling back to the
// working directory when no config dir is known.
func DefaultDataPath(app, file string) string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return filepath.Join(".", app, file)
	}
	return filepath.Join(base, app, file)
}
