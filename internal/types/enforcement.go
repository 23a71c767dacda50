package types

import "time"

// EnforcementTarget describes one application under version enforcement.
// BundleID drives bundle-mode lookup and process detection; ReceiptID,
// when set, switches installed-version lookup to the receipt registry.
type EnforcementTarget struct {
	BundleID       string
	ReceiptID      string
	AppName        string
	MinimumVersion string
	CreatedAt      time.Time
	GraceDays      int
}

// Key returns the identity key deferral records are filed under.
func (t EnforcementTarget) Key() string {
	if t.ReceiptID != "" {
		return t.ReceiptID
	}
	return t.BundleID
}

type InstalledVersion struct {
	Version string
	Source  InstalledSource
}

type PackageReceipt struct {
	PackageID   string
	Version     string
	InstallTime time.Time
}

// DeferralRecord is one granted delay: the target key and required
// version it applies to, and the instant it lapses.
type DeferralRecord struct {
	TargetKey       string
	RequiredVersion string
	ExpiresAt       time.Time
}

type RunningApp struct {
	PID        int32
	Name       string
	ExecPath   string
	Foreground bool
}

type Prompt struct {
	Title         string
	Message       string
	Buttons       []string
	DefaultButton string
	Timeout       time.Duration
}
