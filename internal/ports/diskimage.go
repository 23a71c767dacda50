package ports

import (
	"context"

	"github.com/kandji-inc/kpkg/internal/types"
)

// DiskImagePort attaches and detaches disk images. Attach must not
// trigger interactive prompts or auto-open behavior.
type DiskImagePort interface {
	Attach(ctx context.Context, imagePath string, mountPoint string) error
	Detach(ctx context.Context, mountPoint string, force bool) error

	// StaleMountPoint reports an existing mount of the same image left
	// behind by an earlier run, so it can be force-detached before a
	// retry.
	StaleMountPoint(ctx context.Context, imagePath string) (string, bool, error)
}

// VolumeSurveyPort inventories a mounted volume: application bundles,
// nested package archives, and whether the volume is laid out for
// drag-install.
type VolumeSurveyPort interface {
	Survey(ctx context.Context, mountPoint string) (types.VolumeInventory, error)
}
