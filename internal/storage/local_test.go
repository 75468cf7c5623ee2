package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCreatesDirectoryAndPreservesExtension(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store := NewLocalStore(dir, "/uploads")

	path, err := store.Save("scan.pdf", []byte("pdf-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), data)
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")

	first, err := store.Save("xray.png", []byte("a"))
	require.NoError(t, err)
	second, err := store.Save("xray.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSaveHandlesNameWithoutExtension(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")

	path, err := store.Save("README", []byte("text"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(filepath.Base(path), "."))
}
