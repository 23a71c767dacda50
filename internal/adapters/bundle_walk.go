package adapters

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
)

// Install roots are shallow; three levels reaches vendor subfolders
// like /Applications/<vendor>/<product>/<app>.app.
const maxBundleWalkDepth = 3

// BundleWalkAdapter lists application bundles under the install roots
// with a bounded walk. It backs up the content index when Spotlight is
// unavailable or stale.
type BundleWalkAdapter struct {
	Policy policies.EnumerationPolicy
}

func NewBundleWalkAdapter(policy policies.EnumerationPolicy) BundleWalkAdapter {
	return BundleWalkAdapter{Policy: policy}
}

func (a BundleWalkAdapter) ListBundles(ctx context.Context, roots []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var bundles []string
	for _, root := range roots {
		root = filepath.Clean(root)
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() || path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || a.Policy.ExcludedDir(name) {
				return filepath.SkipDir
			}
			if strings.HasSuffix(name, ".app") {
				bundles = append(bundles, path)
				return filepath.SkipDir
			}
			if walkDepth(root, path) >= maxBundleWalkDepth {
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to walk install roots").
				WithCause(err)
		}
	}
	sort.Strings(bundles)
	return dedupeSorted(bundles), nil
}

func walkDepth(root string, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// dedupeSorted drops duplicates produced by overlapping roots.
func dedupeSorted(values []string) []string {
	if len(values) < 2 {
		return values
	}
	out := values[:1]
	for _, value := range values[1:] {
		if value != out[len(out)-1] {
			out = append(out, value)
		}
	}
	return out
}

var _ ports.BundleWalkPort = BundleWalkAdapter{}
