package ports

import "github.com/kandji-inc/kpkg/internal/types"

// BundleMetadataPort reads the identity fields of one bundle metadata
// file (property list).
type BundleMetadataPort interface {
	Read(path string) (types.BundleMetadata, error)
}
