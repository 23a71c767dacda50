package types

type MediaKind string

const (
	MediaKindDiskImage MediaKind = "disk-image"
	MediaKindPackage   MediaKind = "package"
	MediaKindUnknown   MediaKind = "unknown"
)

type InstalledSource string

const (
	InstalledSourceBundle  InstalledSource = "bundle-metadata"
	InstalledSourceReceipt InstalledSource = "package-receipt"
)

type AuditSignal string

const (
	AuditSignalCompliant  AuditSignal = "compliant"
	AuditSignalSkipCycle  AuditSignal = "skip-cycle"
	AuditSignalInstallNow AuditSignal = "install-now"
)

type PromptChoice string

const (
	PromptChoiceQuit    PromptChoice = "quit"
	PromptChoiceDelay   PromptChoice = "delay"
	PromptChoiceTimeout PromptChoice = "timeout"
)

type DeferralPhase string

const (
	DeferralPhaseNoDelay       DeferralPhase = "no-delay"
	DeferralPhasePromptPending DeferralPhase = "prompt-pending"
	DeferralPhaseDeferred      DeferralPhase = "deferred"
	DeferralPhaseExpired       DeferralPhase = "expired"
	DeferralPhaseResolved      DeferralPhase = "resolved"
)

type VolumeRoute string

const (
	VolumeRouteDragInstall    VolumeRoute = "drag-install"
	VolumeRouteNestedPackage  VolumeRoute = "nested-package"
	VolumeRouteBundleFallback VolumeRoute = "bundle-fallback"
)
