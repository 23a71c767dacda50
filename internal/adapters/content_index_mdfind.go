package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/ports"
)

// ContentIndexMdfindAdapter queries the Spotlight index for installed
// bundles by identifier.
type ContentIndexMdfindAdapter struct{}

func NewContentIndexMdfindAdapter() ContentIndexMdfindAdapter {
	return ContentIndexMdfindAdapter{}
}

func (a ContentIndexMdfindAdapter) Search(ctx context.Context, bundleID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(bundleID) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle id is empty")
	}
	query := fmt.Sprintf("kMDItemCFBundleIdentifier == '%s'", bundleID)
	output, err := exec.CommandContext(ctx, "mdfind", query).Output()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("content index query failed").
			WithCause(err)
	}
	var paths []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

var _ ports.ContentIndexPort = ContentIndexMdfindAdapter{}
