package adapters

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"howett.net/plist"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// MediaProbeAdapter classifies install media by asking the system tools
// that would consume it: hdiutil for disk images, installer for package
// archives.
type MediaProbeAdapter struct{}

func NewMediaProbeAdapter() MediaProbeAdapter {
	return MediaProbeAdapter{}
}

func (a MediaProbeAdapter) Classify(ctx context.Context, path string) (types.MediaKind, error) {
	if err := ctx.Err(); err != nil {
		return types.MediaKindUnknown, err
	}
	if _, err := exec.CommandContext(ctx, "hdiutil", "imageinfo", "-format", path).CombinedOutput(); err == nil {
		return types.MediaKindDiskImage, nil
	}
	if _, err := exec.CommandContext(ctx, "installer", "-pkginfo", "-pkg", path).CombinedOutput(); err == nil {
		return types.MediaKindPackage, nil
	}
	if err := ctx.Err(); err != nil {
		return types.MediaKindUnknown, err
	}
	if mime, err := exec.CommandContext(ctx, "file", "--mime-type", "-b", path).CombinedOutput(); err == nil {
		log.Ctx(ctx).Debug().
			Str("path", path).
			Str("mime", strings.TrimSpace(string(mime))).
			Msg("media not recognized as disk image or package")
	}
	return types.MediaKindUnknown, nil
}

func (a MediaProbeAdapter) DisplayName(ctx context.Context, path string, kind types.MediaKind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var raw string
	switch kind {
	case types.MediaKindDiskImage:
		raw = a.volumeName(ctx, path)
	case types.MediaKindPackage:
		raw = a.installerTitle(ctx, path)
	}
	if raw != "" {
		return cleanMediaName(raw), nil
	}
	return cleanMediaName(filepath.Base(path)), nil
}

type diskImageInfo struct {
	Partitions diskImagePartitionTable `plist:"partitions"`
}

type diskImagePartitionTable struct {
	Partitions []diskImagePartition `plist:"partitions"`
}

type diskImagePartition struct {
	Filesystems map[string]string `plist:"partition-filesystems"`
}

// volumeName reads the named filesystem of a disk image without
// mounting it. An encrypted or damaged image yields "".
func (a MediaProbeAdapter) volumeName(ctx context.Context, path string) string {
	output, err := exec.CommandContext(ctx, "hdiutil", "imageinfo", "-plist", path).Output()
	if err != nil {
		log.Ctx(ctx).Warn().Str("path", path).Msg("disk image metadata unavailable")
		return ""
	}
	var info diskImageInfo
	if _, err := plist.Unmarshal(output, &info); err != nil {
		return ""
	}
	return firstVolumeName(info)
}

// firstVolumeName picks the first named filesystem across the image's
// partitions. Synthesized partitions such as EFI carry no filesystem
// entry and are skipped.
func firstVolumeName(info diskImageInfo) string {
	for _, partition := range info.Partitions.Partitions {
		for _, name := range partition.Filesystems {
			if name != "" {
				return name
			}
		}
	}
	return ""
}

// installerTitle returns the first line of the installer's package
// summary.
func (a MediaProbeAdapter) installerTitle(ctx context.Context, path string) string {
	output, err := exec.CommandContext(ctx, "installer", "-pkginfo", "-pkg", path).Output()
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

var (
	cachePrefixPattern   = regexp.MustCompile(`^[a-f0-9]{64}--`)
	versionSuffixPattern = regexp.MustCompile(`\s+\d+\.\d+`)
)

// cleanMediaName strips the content-hash prefix cache downloads carry
// and cuts the name before any trailing version or dotted suffix.
// Names with nothing to strip pass through unchanged.
func cleanMediaName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	stripped := cachePrefixPattern.ReplaceAllString(trimmed, "")
	cut := len(stripped)
	if loc := versionSuffixPattern.FindStringIndex(stripped); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if idx := strings.IndexAny(stripped, ".-"); idx >= 0 && idx < cut {
		cut = idx
	}
	name := strings.TrimSpace(stripped[:cut])
	if name == "" {
		return stripped
	}
	return name
}

var _ ports.MediaProbePort = MediaProbeAdapter{}
