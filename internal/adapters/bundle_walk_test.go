package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandji-inc/kpkg/internal/policies"
)

func TestListBundles(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		"Example.app/Contents",
		"Utilities/Deep.app/Contents",
		"Vendor/Product/Tool.app/Contents",
		"Vendor/Product/Extras/TooDeep.app/Contents",
		".Trashes/Hidden.app",
		"Library/Excluded.app",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	adapter := NewBundleWalkAdapter(policies.NewEnumerationPolicy())

	bundles, err := adapter.ListBundles(t.Context(), []string{root})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Example.app"),
		filepath.Join(root, "Utilities", "Deep.app"),
		filepath.Join(root, "Vendor", "Product", "Tool.app"),
	}, bundles)
}

func TestListBundlesDeduplicatesOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Example.app"), 0755))
	adapter := NewBundleWalkAdapter(policies.NewEnumerationPolicy())

	bundles, err := adapter.ListBundles(t.Context(), []string{root, root})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "Example.app")}, bundles)
}

func TestListBundlesSkipsMissingRoots(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Example.app"), 0755))
	adapter := NewBundleWalkAdapter(policies.NewEnumerationPolicy())

	bundles, err := adapter.ListBundles(t.Context(), []string{
		filepath.Join(root, "does-not-exist"),
		root,
	})

	require.NoError(t, err)
	require.Len(t, bundles, 1)
}
