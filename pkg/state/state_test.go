package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsFor(t *testing.T) {
	p := PathsFor("/var/lib/itte/")
	assert.Equal(t, "/var/lib/itte", p.DB)
	assert.Equal(t, "/var/lib/itte/store", p.Store)

	assert.Equal(t, filepath.Clean(defaultDBPath), PathsFor("  ").DB)
}

func TestEnsureDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")
	p, err := EnsureDirs(root)
	require.NoError(t, err)

	fi, err := os.Stat(p.Store)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// idempotent
	_, err = EnsureDirs(root)
	require.NoError(t, err)
}

func TestEnsureDirsRefusesSymlinkAndFiles(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	require.NoError(t, os.Mkdir(target, 0o700))
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(target, link))

	_, err := EnsureDirs(link)
	assert.ErrorContains(t, err, "symlink")

	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = EnsureDirs(file)
	assert.ErrorContains(t, err, "not a directory")
}
