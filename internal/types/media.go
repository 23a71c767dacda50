package types

// InstallMedia is a classified install artifact on disk. DisplayName is
// best-effort and may be empty when neither the volume header nor the
// installer metadata carries a human-readable name.
type InstallMedia struct {
	Path        string
	Kind        MediaKind
	DisplayName string
}

// MetadataDescriptor is one embedded metadata record found inside a
// package archive or a mounted volume. PayloadSizeBytes is the declared
// install size when the archive states one, otherwise the measured size
// of the containing directory.
type MetadataDescriptor struct {
	Identifier       string
	Version          string
	ContainingPath   string
	PayloadSizeBytes int64
}

// DistributionManifest carries the product declaration of a distribution
// archive: the product version plus the version-to-identifier pairs of
// its component references.
type DistributionManifest struct {
	DeclaredVersion     string
	IdentifierByVersion map[string]string
}

// ArchiveInventory is the full metadata yield of one package archive.
// Descriptors are ordered by payload weight descending, ties broken by
// containing path ascending.
type ArchiveInventory struct {
	Descriptors []MetadataDescriptor
	Manifest    *DistributionManifest
}

type WeightedPath struct {
	Path      string
	SizeBytes int64
}

// VolumeInventory is the survey result of one mounted disk image.
type VolumeInventory struct {
	MountPoint          string
	HasApplicationsLink bool
	Bundles             []MetadataDescriptor
	Packages            []WeightedPath
}

// ResolvedIdentity is the terminal result of an identity lookup: the
// media display name and the canonical identifier the install will be
// tracked under. Version, Kind, and SHA256 feed the catalog hand-off.
type ResolvedIdentity struct {
	MediaName  string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Version    string `yaml:"version,omitempty"`
	Kind       string `yaml:"kind"`
	SHA256     string `yaml:"sha256,omitempty"`
}

// BundleMetadata holds the identity fields read from an application
// bundle's metadata file.
type BundleMetadata struct {
	Identifier   string
	ShortVersion string
	DisplayName  string
	Name         string
}

// IdentityMap pins known identifiers to their application names. When a
// multi-component archive contains a mapped identifier, that component
// wins over the declared-version and largest-payload rules.
type IdentityMap struct {
	Identifiers map[string]string `yaml:"identifiers"`
}
