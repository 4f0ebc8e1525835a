package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/abs/data", ExpandPath("/abs/data"))
	assert.Equal(t, "rel/~/data", ExpandPath("rel/~/data"))
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "out.csv")

	require.NoError(t, EnsureParentDir(target))
	assert.True(t, DirExists(filepath.Join(dir, "a", "b")))
	assert.False(t, DirExists(target))
	assert.NoError(t, EnsureParentDir("out.csv"))
}

func TestHasSuffixFold(t *testing.T) {
	suffixes := LowerAll([]string{" Archive ", ".GDB", ""})
	assert.Equal(t, []string{"archive", ".gdb"}, suffixes)

	assert.True(t, HasSuffixFold("/data/ARCHIVE", suffixes))
	assert.True(t, HasSuffixFold("/data/old_archive", suffixes))
	assert.True(t, HasSuffixFold("/data/City.gdb", suffixes))
	assert.False(t, HasSuffixFold("/data/archived", suffixes))
	assert.False(t, HasSuffixFold("/data/archive/sub", suffixes))
	assert.False(t, HasSuffixFold("/data", nil))
}
