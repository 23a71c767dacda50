package adapters

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// VolumeSurveyAdapter inventories a mounted disk image volume:
// application bundles, nested installer packages, and the drag-install
// affordance pointing at the applications folder.
type VolumeSurveyAdapter struct {
	Metadata ports.BundleMetadataPort
	Policy   policies.EnumerationPolicy
}

func NewVolumeSurveyAdapter(metadata ports.BundleMetadataPort, policy policies.EnumerationPolicy) VolumeSurveyAdapter {
	return VolumeSurveyAdapter{Metadata: metadata, Policy: policy}
}

const aliasProbeLimit = 1 << 20

func (a VolumeSurveyAdapter) Survey(ctx context.Context, mountPoint string) (types.VolumeInventory, error) {
	if err := ctx.Err(); err != nil {
		return types.VolumeInventory{}, err
	}
	if strings.TrimSpace(mountPoint) == "" {
		return types.VolumeInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mount point is empty")
	}
	root := filepath.Clean(mountPoint)
	if _, err := os.Stat(root); err != nil {
		return types.VolumeInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("mount point not found").
			WithCause(err)
	}
	inventory := types.VolumeInventory{MountPoint: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Mounted volumes carry unreadable system entries.
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if a.Policy.ExcludedDir(name) {
				return filepath.SkipDir
			}
			if strings.HasSuffix(name, ".app") {
				if descriptor, ok := a.readBundle(path); ok {
					inventory.Bundles = append(inventory.Bundles, descriptor)
				}
				return filepath.SkipDir
			}
			if hasPackageSuffix(name) {
				inventory.Packages = append(inventory.Packages, types.WeightedPath{Path: path, SizeBytes: dirSize(path)})
				return filepath.SkipDir
			}
			return nil
		}
		if name == "Applications" && d.Type()&fs.ModeSymlink != 0 {
			inventory.HasApplicationsLink = true
			return nil
		}
		if hasPackageSuffix(name) {
			var size int64
			if info, infoErr := d.Info(); infoErr == nil {
				size = info.Size()
			}
			inventory.Packages = append(inventory.Packages, types.WeightedPath{Path: path, SizeBytes: size})
			return nil
		}
		if !inventory.HasApplicationsLink && filepath.Dir(path) == root && d.Type().IsRegular() {
			if isApplicationsAlias(path, d) {
				inventory.HasApplicationsLink = true
			}
		}
		return nil
	})
	if err != nil {
		return types.VolumeInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to survey volume").
			WithCause(err)
	}
	return inventory, nil
}

// readBundle reads one application bundle's identity. Bundles without a
// readable Info.plist drop out of the inventory.
func (a VolumeSurveyAdapter) readBundle(appPath string) (types.MetadataDescriptor, bool) {
	metadata, err := a.Metadata.Read(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		return types.MetadataDescriptor{}, false
	}
	return types.MetadataDescriptor{
		Identifier:       metadata.Identifier,
		Version:          metadata.ShortVersion,
		ContainingPath:   appPath,
		PayloadSizeBytes: dirSize(appPath),
	}, true
}

func hasPackageSuffix(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pkg", ".mpkg":
		return true
	default:
		return false
	}
}

// isApplicationsAlias detects Finder aliases pointing at the
// applications folder by their bookmark data magic.
func isApplicationsAlias(path string, d fs.DirEntry) bool {
	info, err := d.Info()
	if err != nil || info.Size() > aliasProbeLimit {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.HasPrefix(data, []byte("book")) &&
		bytes.Contains(data, []byte("mark")) &&
		bytes.Contains(data, []byte("Applications"))
}

var _ ports.VolumeSurveyPort = VolumeSurveyAdapter{}
