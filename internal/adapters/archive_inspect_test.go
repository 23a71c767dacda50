package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/types"
)

// fixtureExtractor stands in for the pkgutil expansion by writing a
// canned expanded-archive layout into the destination directory.
type fixtureExtractor struct {
	files map[string]string
}

func (f fixtureExtractor) ExtractMetadata(_ context.Context, _ string, destDir string) error {
	for rel, content := range f.files {
		path := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

const appPackageInfo = `<pkg-info identifier="com.example.app" version="2.1.0" install-location="/">
	<payload installKBytes="2048" numberOfFiles="120"/>
</pkg-info>`

const helperPackageInfo = `<pkg-info identifier="com.example.helper" version="1.0">
	<payload numberOfFiles="3"/>
</pkg-info>`

const sampleDistribution = `<installer-gui-script minSpecVersion="2">
	<title>Example</title>
	<product id="com.example.app" version="2.1.0"/>
	<pkg-ref id="com.example.app" version="2.1.0" installKBytes="2048"/>
	<pkg-ref id="com.example.helper" version="1.0"/>
</installer-gui-script>`

func writeArchiveFixture(t *testing.T) string {
	t.Helper()
	pkgPath := filepath.Join(t.TempDir(), "Example.pkg")
	require.NoError(t, os.WriteFile(pkgPath, []byte("xar"), 0644))
	return pkgPath
}

func TestInspectInventoriesComponents(t *testing.T) {
	filler := "payload-bytes-standing-in-for-the-packed-component"
	extractor := fixtureExtractor{files: map[string]string{
		"Distribution":                  sampleDistribution,
		"app.pkg/PackageInfo":           appPackageInfo,
		"helper.pkg/PackageInfo":        helperPackageInfo,
		"helper.pkg/Payload":            filler,
		"bad.pkg/PackageInfo":           "not xml at all",
		"app.pkg/Resources/PackageInfo": appPackageInfo,
	}}
	adapter := NewArchiveInspectAdapter(extractor, policies.NewEnumerationPolicy())

	inventory, err := adapter.Inspect(t.Context(), writeArchiveFixture(t))

	require.NoError(t, err)
	require.Len(t, inventory.Descriptors, 2)
	assert.Equal(t, "com.example.app", inventory.Descriptors[0].Identifier, "descriptors come back largest first")

	byID := map[string]types.MetadataDescriptor{}
	for _, descriptor := range inventory.Descriptors {
		byID[descriptor.Identifier] = descriptor
	}

	app, ok := byID["com.example.app"]
	require.True(t, ok)
	assert.Equal(t, "2.1.0", app.Version)
	assert.Equal(t, "app.pkg", app.ContainingPath)
	assert.Equal(t, int64(2048*1024), app.PayloadSizeBytes)

	helper, ok := byID["com.example.helper"]
	require.True(t, ok)
	assert.Equal(t, "1.0", helper.Version)
	assert.Equal(t, "helper.pkg", helper.ContainingPath)
	assert.Equal(t, int64(len(helperPackageInfo)+len(filler)), helper.PayloadSizeBytes)

	require.NotNil(t, inventory.Manifest)
	assert.Equal(t, "2.1.0", inventory.Manifest.DeclaredVersion)
	assert.Equal(t, map[string]string{
		"2.1.0": "com.example.app",
		"1.0":   "com.example.helper",
	}, inventory.Manifest.IdentifierByVersion)
}

func TestInspectWithoutDistribution(t *testing.T) {
	extractor := fixtureExtractor{files: map[string]string{
		"app.pkg/PackageInfo": appPackageInfo,
	}}
	adapter := NewArchiveInspectAdapter(extractor, policies.NewEnumerationPolicy())

	inventory, err := adapter.Inspect(t.Context(), writeArchiveFixture(t))

	require.NoError(t, err)
	assert.Nil(t, inventory.Manifest)
	require.Len(t, inventory.Descriptors, 1)
}

func TestInspectNoDescriptors(t *testing.T) {
	extractor := fixtureExtractor{files: map[string]string{
		"README": "nothing useful",
	}}
	adapter := NewArchiveInspectAdapter(extractor, policies.NewEnumerationPolicy())

	_, err := adapter.Inspect(t.Context(), writeArchiveFixture(t))

	require.Error(t, err)
	var errBuilder *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &errBuilder))
	assert.Equal(t, errbuilder.CodeNotFound, errBuilder.Code)
}

func TestInspectMissingArchive(t *testing.T) {
	adapter := NewArchiveInspectAdapter(fixtureExtractor{}, policies.NewEnumerationPolicy())

	_, err := adapter.Inspect(t.Context(), filepath.Join(t.TempDir(), "absent.pkg"))

	require.Error(t, err)
	var errBuilder *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &errBuilder))
	assert.Equal(t, errbuilder.CodeNotFound, errBuilder.Code)
}
