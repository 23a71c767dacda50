package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/shared"
)

// ArchiveExtractAdapter expands package archives for metadata
// inspection. Component payloads stay packed and archive scripts never
// run.
type ArchiveExtractAdapter struct{}

func NewArchiveExtractAdapter() ArchiveExtractAdapter {
	return ArchiveExtractAdapter{}
}

func (a ArchiveExtractAdapter) ExtractMetadata(ctx context.Context, pkgPath string, destDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(pkgPath) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package path is empty")
	}
	if strings.TrimSpace(destDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("expansion destination is empty")
	}
	// pkgutil creates the destination itself and refuses to reuse one.
	if _, err := os.Stat(destDir); err == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("expansion destination already exists")
	}
	output, err := exec.CommandContext(ctx, "pkgutil", "--expand", pkgPath, destDir).CombinedOutput()
	if err == nil {
		return nil
	}
	expandErr := shared.CommandError(output, err)

	// Raw xar extraction handles archives pkgutil rejects, still
	// skipping payload and script members.
	if mkErr := os.MkdirAll(destDir, 0755); mkErr != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create expansion directory").
			WithCause(mkErr)
	}
	output, err = exec.CommandContext(ctx, "xar",
		"-xf", pkgPath,
		"-C", destDir,
		"--exclude", "Payload",
		"--exclude", "Scripts",
	).CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to expand package archive").
			WithCause(fmt.Errorf("pkgutil: %v; xar: %w", expandErr, shared.CommandError(output, err)))
	}
	return nil
}

var _ ports.ArchiveExtractorPort = ArchiveExtractAdapter{}
