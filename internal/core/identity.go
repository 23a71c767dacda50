package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/types"
)

// SortDescriptors orders descriptors by payload weight descending, with
// ties broken by containing path ascending. The ordering is stable for
// any enumeration order of the same descriptor set.
func SortDescriptors(descriptors []types.MetadataDescriptor) {
	sort.Slice(descriptors, func(i, j int) bool {
		if descriptors[i].PayloadSizeBytes != descriptors[j].PayloadSizeBytes {
			return descriptors[i].PayloadSizeBytes > descriptors[j].PayloadSizeBytes
		}
		return descriptors[i].ContainingPath < descriptors[j].ContainingPath
	})
}

// ResolvePackageIdentity selects the canonical descriptor of a package
// archive. Precedence: a mapped identifier with a version, then the
// single descriptor, then the component matching the manifest's declared
// version, then the largest payload. Descriptors without an identifier
// never win.
func ResolvePackageIdentity(inventory types.ArchiveInventory, hints types.IdentityMap) (types.MetadataDescriptor, error) {
	ordered := append([]types.MetadataDescriptor(nil), inventory.Descriptors...)
	SortDescriptors(ordered)

	if len(ordered) > 1 && len(hints.Identifiers) > 0 {
		for _, descriptor := range ordered {
			if descriptor.Identifier == "" || descriptor.Version == "" {
				continue
			}
			if _, ok := hints.Identifiers[descriptor.Identifier]; ok {
				return descriptor, nil
			}
		}
	}

	if len(ordered) > 1 && inventory.Manifest != nil {
		if descriptor, ok := matchManifest(ordered, *inventory.Manifest); ok {
			return descriptor, nil
		}
	}

	for _, descriptor := range ordered {
		if descriptor.Identifier != "" {
			return descriptor, nil
		}
	}
	return types.MetadataDescriptor{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("no usable metadata descriptor in archive")
}

// matchManifest looks for the component whose version equals the
// manifest's declared product version, directly or through the
// manifest's version-to-identifier references.
func matchManifest(ordered []types.MetadataDescriptor, manifest types.DistributionManifest) (types.MetadataDescriptor, bool) {
	declared := manifest.DeclaredVersion
	if declared == "" {
		return types.MetadataDescriptor{}, false
	}
	for _, descriptor := range ordered {
		if descriptor.Identifier != "" && descriptor.Version == declared {
			return descriptor, true
		}
	}
	if identifier, ok := manifest.IdentifierByVersion[declared]; ok {
		for _, descriptor := range ordered {
			if descriptor.Identifier == identifier && descriptor.Identifier != "" {
				return descriptor, true
			}
		}
	}
	return types.MetadataDescriptor{}, false
}

// VolumeResolution is the routing decision for one mounted disk image.
type VolumeResolution struct {
	Route   types.VolumeRoute
	Bundle  types.MetadataDescriptor
	Package types.WeightedPath
}

// ResolveVolume picks the identity route for a mounted volume. A volume
// laid out for drag-install resolves to its largest application bundle;
// otherwise a nested package archive takes precedence, then any bundle.
func ResolveVolume(volume types.VolumeInventory) (VolumeResolution, error) {
	bundles := append([]types.MetadataDescriptor(nil), volume.Bundles...)
	SortDescriptors(bundles)

	if volume.HasApplicationsLink {
		if descriptor, ok := firstIdentified(bundles); ok {
			return VolumeResolution{Route: types.VolumeRouteDragInstall, Bundle: descriptor}, nil
		}
	}
	if len(volume.Packages) > 0 {
		ordered := append([]types.WeightedPath(nil), volume.Packages...)
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].SizeBytes != ordered[j].SizeBytes {
				return ordered[i].SizeBytes > ordered[j].SizeBytes
			}
			return ordered[i].Path < ordered[j].Path
		})
		return VolumeResolution{Route: types.VolumeRouteNestedPackage, Package: ordered[0]}, nil
	}
	if descriptor, ok := firstIdentified(bundles); ok {
		return VolumeResolution{Route: types.VolumeRouteBundleFallback, Bundle: descriptor}, nil
	}
	return VolumeResolution{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no identity candidates on volume %s", volume.MountPoint))
}

func firstIdentified(ordered []types.MetadataDescriptor) (types.MetadataDescriptor, bool) {
	for _, descriptor := range ordered {
		if descriptor.Identifier != "" {
			return descriptor, true
		}
	}
	return types.MetadataDescriptor{}, false
}
