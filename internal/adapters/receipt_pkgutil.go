package adapters

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"howett.net/plist"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// ReceiptPkgutilAdapter looks up local install receipts through
// pkgutil. Packages that install no bundle, like CLI tools and agent
// daemons, are only visible here.
type ReceiptPkgutilAdapter struct{}

func NewReceiptPkgutilAdapter() ReceiptPkgutilAdapter {
	return ReceiptPkgutilAdapter{}
}

func (a ReceiptPkgutilAdapter) Lookup(ctx context.Context, packageID string) (types.PackageReceipt, error) {
	if err := ctx.Err(); err != nil {
		return types.PackageReceipt{}, err
	}
	if strings.TrimSpace(packageID) == "" {
		return types.PackageReceipt{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package id is empty")
	}
	output, err := exec.CommandContext(ctx, "pkgutil", "--pkg-info-plist", packageID).Output()
	if err != nil {
		// pkgutil exits nonzero when no receipt exists.
		return types.PackageReceipt{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no install receipt for package id").
			WithCause(err)
	}
	receipt, err := parseReceiptPlist(output)
	if err != nil {
		return types.PackageReceipt{}, err
	}
	if receipt.PackageID == "" {
		receipt.PackageID = packageID
	}
	return receipt, nil
}

type receiptPlist struct {
	PackageID   string `plist:"pkgid"`
	Version     string `plist:"pkg-version"`
	InstallTime int64  `plist:"install-time"`
}

func parseReceiptPlist(data []byte) (types.PackageReceipt, error) {
	var parsed receiptPlist
	if _, err := plist.Unmarshal(data, &parsed); err != nil {
		return types.PackageReceipt{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse install receipt").
			WithCause(err)
	}
	receipt := types.PackageReceipt{
		PackageID: strings.TrimSpace(parsed.PackageID),
		Version:   strings.TrimSpace(parsed.Version),
	}
	if parsed.InstallTime > 0 {
		receipt.InstallTime = time.Unix(parsed.InstallTime, 0).UTC()
	}
	return receipt, nil
}

var _ ports.ReceiptStorePort = ReceiptPkgutilAdapter{}
