package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/kandji-inc/kpkg/internal/types"
)

// locateInstalled finds the installed counterpart of the target and
// reads its version. Absent targets return NotFound; installed targets
// whose version cannot be read return FailedPrecondition. Both bypass
// the deferral logic in the caller.
func (s Service) locateInstalled(ctx context.Context, target types.EnforcementTarget) (types.InstalledVersion, error) {
	if target.ReceiptID != "" {
		receipt, err := s.Receipts.Lookup(ctx, target.ReceiptID)
		if err != nil {
			return types.InstalledVersion{}, err
		}
		if strings.TrimSpace(receipt.Version) == "" {
			return types.InstalledVersion{}, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("install receipt carries no version")
		}
		return types.InstalledVersion{Version: receipt.Version, Source: types.InstalledSourceReceipt}, nil
	}

	paths, err := s.Index.Search(ctx, target.BundleID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("bundle_id", target.BundleID).
			Msg("content index unavailable, walking install roots")
		paths = nil
	}
	if metadata, ok := s.matchBundles(paths, target); ok {
		return installedFromBundle(metadata)
	}
	walked, err := s.Walker.ListBundles(ctx, s.InstallRoots)
	if err != nil {
		return types.InstalledVersion{}, err
	}
	if metadata, ok := s.matchBundles(walked, target); ok {
		return installedFromBundle(metadata)
	}
	return types.InstalledVersion{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("target application is not installed")
}

// matchBundles picks the first bundle whose identifier matches the
// target, falling back to a bundle named after the application when no
// identifier matches.
func (s Service) matchBundles(paths []string, target types.EnforcementTarget) (types.BundleMetadata, bool) {
	wantName := strings.TrimSuffix(target.AppName, ".app") + ".app"
	var nameMatch *types.BundleMetadata
	for _, bundlePath := range paths {
		metadata, err := s.Metadata.Read(filepath.Join(bundlePath, "Contents", "Info.plist"))
		if err != nil {
			continue
		}
		if metadata.Identifier == target.BundleID {
			return metadata, true
		}
		if nameMatch == nil && strings.EqualFold(filepath.Base(bundlePath), wantName) {
			match := metadata
			nameMatch = &match
		}
	}
	if nameMatch != nil {
		return *nameMatch, true
	}
	return types.BundleMetadata{}, false
}

func installedFromBundle(metadata types.BundleMetadata) (types.InstalledVersion, error) {
	if strings.TrimSpace(metadata.ShortVersion) == "" {
		return types.InstalledVersion{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("installed application reports no version")
	}
	return types.InstalledVersion{Version: metadata.ShortVersion, Source: types.InstalledSourceBundle}, nil
}
