package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMedia(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.dmg", "a.pkg", "notes.txt", "c.MPKG"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0644))
	}
	// Nested media is out of scope for a single-level drop directory.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "d.pkg"), []byte("x"), 0644))

	paths, err := NewMediaScanAdapter().FindMedia(root)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.pkg"),
		filepath.Join(root, "b.dmg"),
		filepath.Join(root, "c.MPKG"),
	}, paths)
}

func TestFindMediaMissingRoot(t *testing.T) {
	_, err := NewMediaScanAdapter().FindMedia(filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	var errBuilder *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &errBuilder))
	assert.Equal(t, errbuilder.CodeNotFound, errBuilder.Code)
}

func TestFindMediaEmptyRoot(t *testing.T) {
	_, err := NewMediaScanAdapter().FindMedia("")

	require.Error(t, err)
}
