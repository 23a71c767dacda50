package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/ports"
)

// MediaScanAdapter discovers install media directly inside a directory.
// The scan stays a single level deep so a downloads folder full of
// expanded junk does not get crawled.
type MediaScanAdapter struct{}

func NewMediaScanAdapter() MediaScanAdapter {
	return MediaScanAdapter{}
}

func (a MediaScanAdapter) FindMedia(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("media directory is empty")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("media directory not found").
			WithCause(err)
	}
	var media []string
	for _, entry := range entries {
		if hasMediaSuffix(entry.Name()) {
			media = append(media, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(media)
	return media, nil
}

func hasMediaSuffix(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pkg", ".mpkg", ".dmg":
		return true
	default:
		return false
	}
}

var _ ports.MediaScanPort = MediaScanAdapter{}
