package ports

import (
	"context"
	"time"

	"github.com/kandji-inc/kpkg/internal/types"
)

// ProcessMonitorPort detects whether an enforcement target is running
// as a foreground application and requests its termination. A target
// that only runs in the background reports absent.
type ProcessMonitorPort interface {
	Foreground(ctx context.Context, target types.EnforcementTarget) (types.RunningApp, bool, error)
	Terminate(ctx context.Context, app types.RunningApp) error
}

// DialogPort presents one modal prompt and reports the user's choice.
// An unanswered prompt resolves to the timeout choice when the prompt's
// timeout elapses.
type DialogPort interface {
	Show(ctx context.Context, prompt types.Prompt) (types.PromptChoice, error)
}

// DeferralStorePort persists granted delays in a single store file.
// Records are keyed by target identity and required version. Store I/O
// failures are fatal to the calling audit.
type DeferralStorePort interface {
	Get(targetKey string, requiredVersion string) (types.DeferralRecord, bool, error)
	Put(record types.DeferralRecord) error
	Delete(targetKey string, requiredVersion string) error
	DeleteTarget(targetKey string) error
	List() ([]types.DeferralRecord, error)

	// Prune removes records that lapsed at or before now and returns
	// how many were dropped.
	Prune(now time.Time) (int, error)
}
