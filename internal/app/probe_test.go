package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandji-inc/kpkg/internal/adapters"
	"github.com/kandji-inc/kpkg/internal/types"
)

func TestProbeClassifiesEachItem(t *testing.T) {
	pkg := writeMedia(t, "Firefox.pkg", "archive")
	blob := writeMedia(t, "mystery.dmg", "opaque")
	service := Service{
		Prober: fakeProber{
			kinds: map[string]types.MediaKind{pkg: types.MediaKindPackage},
			names: map[string]string{pkg: "Firefox"},
		},
		MediaScan: adapters.NewMediaScanAdapter(),
	}

	result, err := service.Probe(t.Context(), ProbeRequest{Media: []string{pkg, blob}})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, ProbeItem{Path: pkg, Kind: types.MediaKindPackage, DisplayName: "Firefox"}, result.Items[0])
	assert.Equal(t, types.MediaKindUnknown, result.Items[1].Kind, "probing reports unknown media instead of failing")
}

func TestProbeScansDirectories(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "Zoom.pkg")
	require.NoError(t, os.WriteFile(pkg, []byte("archive"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0644))

	service := Service{
		Prober: fakeProber{
			kinds: map[string]types.MediaKind{pkg: types.MediaKindPackage},
			names: map[string]string{pkg: "Zoom"},
		},
		MediaScan: adapters.NewMediaScanAdapter(),
	}

	result, err := service.Probe(t.Context(), ProbeRequest{Media: []string{dir}})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, pkg, result.Items[0].Path)
}

func TestProbeMissingPathFails(t *testing.T) {
	service := Service{Prober: fakeProber{}, MediaScan: adapters.NewMediaScanAdapter()}

	_, err := service.Probe(t.Context(), ProbeRequest{Media: []string{"/nonexistent/a.pkg"}})

	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
