package adapters

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"howett.net/plist"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/shared"
)

// DiskImageHdiutilAdapter mounts and unmounts disk images with hdiutil.
// Attach never triggers Finder windows, verification passes, or autorun
// content.
type DiskImageHdiutilAdapter struct{}

func NewDiskImageHdiutilAdapter() DiskImageHdiutilAdapter {
	return DiskImageHdiutilAdapter{}
}

func (a DiskImageHdiutilAdapter) Attach(ctx context.Context, imagePath string, mountPoint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(imagePath) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("image path is empty")
	}
	if strings.TrimSpace(mountPoint) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mount point is empty")
	}
	output, err := exec.CommandContext(ctx, "hdiutil", "attach", imagePath,
		"-mountpoint", mountPoint,
		"-nobrowse", "-noverify", "-noautoopen",
	).CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to attach disk image").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

func (a DiskImageHdiutilAdapter) Detach(ctx context.Context, mountPoint string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(mountPoint) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("mount point is empty")
	}
	args := []string{"detach", mountPoint}
	if force {
		args = append(args, "-force")
	}
	output, err := exec.CommandContext(ctx, "hdiutil", args...).CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to detach disk image").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

type hdiutilInfo struct {
	Images []hdiutilImage `plist:"images"`
}

type hdiutilImage struct {
	ImagePath      string          `plist:"image-path"`
	SystemEntities []hdiutilEntity `plist:"system-entities"`
}

type hdiutilEntity struct {
	DevEntry   string `plist:"dev-entry"`
	MountPoint string `plist:"mount-point"`
}

// StaleMountPoint finds a mount of the same image left behind by an
// earlier run. The mount point is preferred; the device entry is
// returned when the volume never finished mounting, since hdiutil
// detach accepts either.
func (a DiskImageHdiutilAdapter) StaleMountPoint(ctx context.Context, imagePath string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	output, err := exec.CommandContext(ctx, "hdiutil", "info", "-plist").Output()
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query mounted images").
			WithCause(err)
	}
	var info hdiutilInfo
	if _, err := plist.Unmarshal(output, &info); err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse mounted image listing").
			WithCause(err)
	}
	target := filepath.Clean(imagePath)
	for _, image := range info.Images {
		if filepath.Clean(image.ImagePath) != target {
			continue
		}
		for _, entity := range image.SystemEntities {
			if entity.MountPoint != "" {
				return entity.MountPoint, true, nil
			}
		}
		for _, entity := range image.SystemEntities {
			if entity.DevEntry != "" {
				return entity.DevEntry, true, nil
			}
		}
	}
	return "", false, nil
}

var _ ports.DiskImagePort = DiskImageHdiutilAdapter{}
