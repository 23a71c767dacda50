package ports

import (
	"context"

	"github.com/kandji-inc/kpkg/internal/types"
)

// ContentIndexPort queries the system content index for application
// bundles by identifier. An empty result is not an error.
type ContentIndexPort interface {
	Search(ctx context.Context, bundleID string) ([]string, error)
}

// BundleWalkPort lists application bundles under the given roots with a
// bounded directory walk. Roots that do not exist are skipped.
type BundleWalkPort interface {
	ListBundles(ctx context.Context, roots []string) ([]string, error)
}

// ReceiptStorePort looks up the local install receipt for a package
// identifier. A missing receipt is reported as a not-found error.
type ReceiptStorePort interface {
	Lookup(ctx context.Context, packageID string) (types.PackageReceipt, error)
}
