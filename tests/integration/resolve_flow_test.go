package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandji-inc/kpkg/internal/adapters"
	"github.com/kandji-inc/kpkg/internal/app"
	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/types"
	"github.com/kandji-inc/kpkg/tests/testutil"
)

// fixtureExtractor stands in for the platform archive expander: instead
// of expanding a real flat package it copies a pre-expanded fixture tree
// into the scratch directory.
type fixtureExtractor struct {
	source string
}

func (f fixtureExtractor) ExtractMetadata(_ context.Context, _ string, destDir string) error {
	return testutil.CopyTree(f.source, destDir)
}

// fixtureMounter stands in for hdiutil: attaching populates the mount
// point with the fixture volume layout.
type fixtureMounter struct {
	infoPlist string
	detached  *[]string
}

func (f fixtureMounter) Attach(_ context.Context, _ string, mountPoint string) error {
	if err := os.Symlink("/Applications", filepath.Join(mountPoint, "Applications")); err != nil {
		return err
	}
	contents := filepath.Join(mountPoint, "Firefox.app", "Contents")
	if err := os.MkdirAll(contents, 0755); err != nil {
		return err
	}
	data, err := os.ReadFile(f.infoPlist)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(contents, "Info.plist"), data, 0644)
}

func (f fixtureMounter) Detach(_ context.Context, mountPoint string, _ bool) error {
	*f.detached = append(*f.detached, mountPoint)
	return nil
}

func (f fixtureMounter) StaleMountPoint(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

type fixtureProber struct {
	kind types.MediaKind
	name string
}

func (f fixtureProber) Classify(_ context.Context, _ string) (types.MediaKind, error) {
	return f.kind, nil
}

func (f fixtureProber) DisplayName(_ context.Context, _ string, _ types.MediaKind) (string, error) {
	return f.name, nil
}

func TestResolveArchiveFlow(t *testing.T) {
	root := testutil.RepoRoot(t)
	pkg := filepath.Join(t.TempDir(), "Teams.pkg")
	require.NoError(t, os.WriteFile(pkg, []byte("teams suite archive\n"), 0644))
	artifact := filepath.Join(t.TempDir(), "resolved.yaml")

	service := app.Service{
		Prober:    fixtureProber{kind: types.MediaKindPackage, name: "Microsoft Teams"},
		MediaScan: adapters.NewMediaScanAdapter(),
		Inspector: adapters.NewArchiveInspectAdapter(
			fixtureExtractor{source: filepath.Join(root, "fixtures", "archives", "teams-suite")},
			policies.NewEnumerationPolicy(),
		),
		IdentityMaps: adapters.NewIdentityMapFileAdapter(),
		Artifacts:    adapters.NewArtifactFileAdapter(),
	}

	result, err := service.Resolve(t.Context(), app.ResolveRequest{
		Media:        []string{pkg},
		IdentityMap:  filepath.Join(root, "fixtures", "identity-map.yaml"),
		ArtifactPath: artifact,
	})
	require.NoError(t, err)
	require.Len(t, result.Identities, 1)
	assert.Empty(t, result.Failed)

	digest := sha256.Sum256([]byte("teams suite archive\n"))
	want := types.ResolvedIdentity{
		MediaName:  "Microsoft Teams",
		Identifier: "com.microsoft.teams2",
		Version:    "24004.1307",
		Kind:       "package",
		SHA256:     hex.EncodeToString(digest[:]),
	}
	if diff := cmp.Diff(want, result.Identities[0]); diff != "" {
		t.Errorf("resolved identity mismatch (-want +got):\n%s", diff)
	}

	stored, err := adapters.NewArtifactFileAdapter().Read(artifact)
	require.NoError(t, err)
	if diff := cmp.Diff([]types.ResolvedIdentity{want}, stored); diff != "" {
		t.Errorf("artifact mismatch (-want +got):\n%s", diff)
	}
}

// The distribution manifest declares the product version, so the suite
// resolves to the product component even though the updater component
// carries the larger payload and no identity map is supplied.
func TestResolveArchiveFlowWithoutIdentityMap(t *testing.T) {
	root := testutil.RepoRoot(t)
	pkg := filepath.Join(t.TempDir(), "Teams.pkg")
	require.NoError(t, os.WriteFile(pkg, []byte("teams suite archive\n"), 0644))

	service := app.Service{
		Prober:    fixtureProber{kind: types.MediaKindPackage, name: "Microsoft Teams"},
		MediaScan: adapters.NewMediaScanAdapter(),
		Inspector: adapters.NewArchiveInspectAdapter(
			fixtureExtractor{source: filepath.Join(root, "fixtures", "archives", "teams-suite")},
			policies.NewEnumerationPolicy(),
		),
		IdentityMaps: adapters.NewIdentityMapFileAdapter(),
		Artifacts:    adapters.NewArtifactFileAdapter(),
	}

	result, err := service.Resolve(t.Context(), app.ResolveRequest{Media: []string{pkg}})
	require.NoError(t, err)
	require.Len(t, result.Identities, 1)
	assert.Equal(t, "com.microsoft.teams2", result.Identities[0].Identifier)
	assert.Equal(t, "24004.1307", result.Identities[0].Version)
}

func TestResolveDiskImageFlow(t *testing.T) {
	root := testutil.RepoRoot(t)
	dmg := filepath.Join(t.TempDir(), "Firefox 115.0.2.dmg")
	require.NoError(t, os.WriteFile(dmg, []byte("firefox disk image\n"), 0644))

	var detached []string
	service := app.Service{
		Prober:    fixtureProber{kind: types.MediaKindDiskImage, name: "Firefox"},
		MediaScan: adapters.NewMediaScanAdapter(),
		DiskImages: fixtureMounter{
			infoPlist: filepath.Join(root, "fixtures", "volumes", "firefox", "Firefox-Info.plist"),
			detached:  &detached,
		},
		Volumes:      adapters.NewVolumeSurveyAdapter(adapters.NewBundlePlistAdapter(), policies.NewEnumerationPolicy()),
		IdentityMaps: adapters.NewIdentityMapFileAdapter(),
		Artifacts:    adapters.NewArtifactFileAdapter(),
	}

	result, err := service.Resolve(t.Context(), app.ResolveRequest{Media: []string{dmg}})
	require.NoError(t, err)
	require.Len(t, result.Identities, 1)

	identity := result.Identities[0]
	assert.Equal(t, "org.mozilla.firefox", identity.Identifier)
	assert.Equal(t, "115.0.2", identity.Version)
	assert.Equal(t, "disk-image", identity.Kind)
	assert.NotEmpty(t, identity.SHA256)

	require.Len(t, detached, 1, "the volume must be detached after resolution")
}
