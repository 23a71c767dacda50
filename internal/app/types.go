package app

import (
	"time"

	"github.com/kandji-inc/kpkg/internal/types"
)

type ProbeRequest struct {
	Media []string
}

type ProbeItem struct {
	Path        string
	Kind        types.MediaKind
	DisplayName string
}

type ProbeResult struct {
	Items []ProbeItem
}

type ResolveRequest struct {
	Media        []string
	IdentityMap  string
	ArtifactPath string
}

type ResolveFailure struct {
	Path   string
	Reason string
}

type ResolveResult struct {
	Identities []types.ResolvedIdentity
	Failed     []ResolveFailure
}

type AuditRequest struct {
	Target        types.EnforcementTarget
	DeferralPath  string
	PromptTimeout time.Duration
	SettleDelay   time.Duration
}

type AuditResult struct {
	Signal           types.AuditSignal
	InstalledVersion string
	Phase            types.DeferralPhase
	RemainingDelay   time.Duration
}

type DeferralsRequest struct {
	DeferralPath string
	Prune        bool
	ClearTarget  string
}

type DeferralsResult struct {
	Records []types.DeferralRecord
	Pruned  int
}
