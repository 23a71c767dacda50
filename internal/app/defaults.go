package app

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultPromptTimeout = 300 * time.Second
	defaultSettleDelay   = 5 * time.Second
)

// defaultInstallRoots lists the well-known install locations walked when
// the content index has no answer for a bundle identifier.
func defaultInstallRoots() []string {
	roots := []string{
		"/Applications",
		"/Applications/Utilities",
		"/System/Applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "Applications"))
	}
	return roots
}

// defaultDeferralPath locates the deferral store next to the tool's
// other local state.
func defaultDeferralPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "KandjiPackages", "enforcement_delay.plist")
	}
	return filepath.Join(home, "Library", "KandjiPackages", "enforcement_delay.plist")
}
