package core

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/types"
)

// DeferralTTL is how long a granted delay holds off enforcement.
const DeferralTTL = 3600 * time.Second

// NewDeferralRecord stamps a fresh deferral for the given target key,
// expiring exactly one TTL after now.
func NewDeferralRecord(targetKey, requiredVersion string, now time.Time) types.DeferralRecord {
	return types.DeferralRecord{
		TargetKey:       targetKey,
		RequiredVersion: requiredVersion,
		ExpiresAt:       now.Add(DeferralTTL),
	}
}

// PhaseForRecord derives the enforcement phase from the stored deferral
// state. A record whose expiry has been reached counts as expired.
func PhaseForRecord(record types.DeferralRecord, found bool, now time.Time) types.DeferralPhase {
	if !found {
		return types.DeferralPhaseNoDelay
	}
	if now.Before(record.ExpiresAt) {
		return types.DeferralPhaseDeferred
	}
	return types.DeferralPhaseExpired
}

// RemainingDeferral reports how much delay is left on a record, never
// negative.
func RemainingDeferral(record types.DeferralRecord, now time.Time) time.Duration {
	remaining := record.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

var phaseTransitions = map[types.DeferralPhase][]types.DeferralPhase{
	types.DeferralPhaseNoDelay:       {types.DeferralPhasePromptPending},
	types.DeferralPhasePromptPending: {types.DeferralPhaseDeferred, types.DeferralPhaseResolved},
	types.DeferralPhaseDeferred:      {types.DeferralPhaseExpired, types.DeferralPhaseResolved},
	types.DeferralPhaseExpired:       {types.DeferralPhaseResolved},
	types.DeferralPhaseResolved:      {},
}

// CanTransition reports whether the enforcement state machine allows
// moving from one phase to another.
func CanTransition(from, to types.DeferralPhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the state machine to the next phase, rejecting moves
// the machine does not define.
func Transition(from, to types.DeferralPhase) (types.DeferralPhase, error) {
	if !CanTransition(from, to) {
		return from, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("illegal phase transition %s -> %s", from, to))
	}
	return to, nil
}
