// Package state owns the on-disk layout under the database path.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultDBPath = "./.database"

type Paths struct {
	DB    string
	Store string
}

func PathsFor(dbPath string) Paths {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = defaultDBPath
	}
	path = filepath.Clean(path)
	return Paths{
		DB:    path,
		Store: filepath.Join(path, "store"),
	}
}

// EnsureDirs creates the layout for dbPath with restrictive permissions.
// Every directory must be a real, writable directory; symlinks are refused.
func EnsureDirs(dbPath string) (Paths, error) {
	p := PathsFor(dbPath)
	for _, dir := range []string{p.DB, p.Store} {
		if err := ensureDir(dir); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

func ensureDir(p string) error {
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}

	// check writable by creating and deleting a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
