package ports

import (
	"context"

	"github.com/kandji-inc/kpkg/internal/types"
)

// MediaProbePort classifies install media and derives display names.
type MediaProbePort interface {
	// Classify returns the media kind for a path. Unknown is a normal
	// result, not an error; callers decide how to proceed.
	Classify(ctx context.Context, path string) (types.MediaKind, error)

	// DisplayName derives a human-readable name for classified media:
	// volume name for disk images, installer title for packages, with a
	// cleaned filename fallback. May return "" without error.
	DisplayName(ctx context.Context, path string, kind types.MediaKind) (string, error)
}

// MediaScanPort discovers install media directly inside a directory.
type MediaScanPort interface {
	FindMedia(root string) ([]string, error)
}
