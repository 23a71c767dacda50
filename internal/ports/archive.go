package ports

import (
	"context"

	"github.com/kandji-inc/kpkg/internal/types"
)

// ArchiveExtractorPort expands only the metadata files of a package
// archive into destDir. Payload contents stay packed and no archive
// scripts run.
type ArchiveExtractorPort interface {
	ExtractMetadata(ctx context.Context, pkgPath string, destDir string) error
}

// ArchiveInspectorPort produces the metadata inventory of a package
// archive: weighted descriptors plus the distribution manifest when the
// archive carries one.
type ArchiveInspectorPort interface {
	Inspect(ctx context.Context, pkgPath string) (types.ArchiveInventory, error)
}
