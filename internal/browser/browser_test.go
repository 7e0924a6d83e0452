package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSortsDirectoriesFirstThenAlphabetical(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zeta"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "alpha"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Bravo.mp3"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "charlie.flac"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	b := New(8)
	entries, err := b.List(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"..", "alpha", "zeta", "Bravo.mp3", "charlie.flac"}, names)
}

func TestListFiltersUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.wav"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), nil, 0o644))

	b := New(8)
	entries, err := b.List(dir)
	require.NoError(t, err)

	for _, e := range entries {
		if e.Name == ".." {
			continue
		}
		assert.True(t, e.Name == "song.wav")
	}
}

func TestListPrependsParentEntry(t *testing.T) {
	dir := t.TempDir()
	b := New(8)
	entries, err := b.List(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "..", entries[0].Name)
	assert.Equal(t, filepath.Dir(dir), entries[0].Path)
}

func TestListEmptyDirReturnsVirtualRoot(t *testing.T) {
	b := New(8)
	entries, err := b.List("")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestListNonexistentDirErrors(t *testing.T) {
	b := New(8)
	_, err := b.List("/path/does/not/exist/at/all")
	assert.Error(t, err)
}
