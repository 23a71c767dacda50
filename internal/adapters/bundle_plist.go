package adapters

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"howett.net/plist"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// BundlePlistAdapter reads bundle identity out of an Info.plist, XML or
// binary encoded.
type BundlePlistAdapter struct{}

func NewBundlePlistAdapter() BundlePlistAdapter {
	return BundlePlistAdapter{}
}

type bundleInfoPlist struct {
	CFBundleIdentifier         string `plist:"CFBundleIdentifier"`
	CFBundleShortVersionString string `plist:"CFBundleShortVersionString"`
	CFBundleDisplayName        string `plist:"CFBundleDisplayName"`
	CFBundleName               string `plist:"CFBundleName"`
}

func (a BundlePlistAdapter) Read(path string) (types.BundleMetadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.BundleMetadata{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bundle metadata not found").
			WithCause(err)
	}
	var info bundleInfoPlist
	if _, err := plist.Unmarshal(content, &info); err != nil {
		return types.BundleMetadata{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse bundle metadata").
			WithCause(err)
	}
	return types.BundleMetadata{
		Identifier:   strings.TrimSpace(info.CFBundleIdentifier),
		ShortVersion: strings.TrimSpace(info.CFBundleShortVersionString),
		DisplayName:  strings.TrimSpace(info.CFBundleDisplayName),
		Name:         strings.TrimSpace(info.CFBundleName),
	}, nil
}

var _ ports.BundleMetadataPort = BundlePlistAdapter{}
