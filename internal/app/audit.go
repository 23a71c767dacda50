package app

import (
	"context"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/kandji-inc/kpkg/internal/core"
	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// Audit runs one enforcement cycle for the target. The returned signal
// encodes the exit status for the external scheduler; errors are
// reserved for real failures, never for non-compliance.
func (s Service) Audit(ctx context.Context, req AuditRequest) (AuditResult, error) {
	target := req.Target
	if strings.TrimSpace(target.AppName) == "" {
		return AuditResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target app name is required")
	}
	if strings.TrimSpace(target.MinimumVersion) == "" {
		return AuditResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target minimum version is required")
	}
	if err := core.NewTargetCompiler().ValidateTarget(ctx, target); err != nil {
		return AuditResult{}, err
	}
	promptTimeout := req.PromptTimeout
	if promptTimeout <= 0 {
		promptTimeout = defaultPromptTimeout
	}
	settleDelay := req.SettleDelay
	if settleDelay <= 0 {
		settleDelay = defaultSettleDelay
	}
	deferralPath := strings.TrimSpace(req.DeferralPath)
	if deferralPath == "" {
		deferralPath = defaultDeferralPath()
	}

	installed, err := s.locateInstalled(ctx, target)
	if err != nil {
		// Absent or unreadable installs trigger installation without
		// touching the deferral store.
		switch errbuilder.CodeOf(err) {
		case errbuilder.CodeNotFound:
			log.Ctx(ctx).Info().Str("target", target.Key()).Msg("target not installed, installing now")
			return AuditResult{Signal: types.AuditSignalInstallNow, Phase: types.DeferralPhaseResolved}, nil
		case errbuilder.CodeFailedPrecondition:
			log.Ctx(ctx).Warn().Str("target", target.Key()).Msg("installed version unreadable, reinstalling")
			return AuditResult{Signal: types.AuditSignalInstallNow, Phase: types.DeferralPhaseResolved}, nil
		default:
			return AuditResult{}, err
		}
	}

	now := s.now()
	if !core.EnforcementDue(target.CreatedAt, target.GraceDays, now) {
		log.Ctx(ctx).Info().
			Str("target", target.Key()).
			Dur("remaining_grace", core.RemainingGrace(target.CreatedAt, target.GraceDays, now)).
			Msg("enforcement not due yet")
		return AuditResult{Signal: types.AuditSignalSkipCycle, InstalledVersion: installed.Version}, nil
	}

	store := s.DeferralStore(deferralPath)
	if core.VersionAtLeast(installed.Version, target.MinimumVersion) {
		if err := store.Delete(target.Key(), target.MinimumVersion); err != nil {
			return AuditResult{}, err
		}
		log.Ctx(ctx).Info().
			Str("target", target.Key()).
			Str("installed", installed.Version).
			Str("required", target.MinimumVersion).
			Msg("target compliant")
		return AuditResult{
			Signal:           types.AuditSignalCompliant,
			InstalledVersion: installed.Version,
			Phase:            types.DeferralPhaseResolved,
		}, nil
	}

	log.Ctx(ctx).Info().
		Str("target", target.Key()).
		Str("installed", installed.Version).
		Str("required", target.MinimumVersion).
		Msg("installed version below minimum")

	running, runningApp, err := s.foreground(ctx, target)
	if err != nil {
		return AuditResult{}, err
	}
	if !running {
		if err := store.Delete(target.Key(), target.MinimumVersion); err != nil {
			return AuditResult{}, err
		}
		log.Ctx(ctx).Info().Str("target", target.Key()).Msg("target not running, installing now")
		return AuditResult{
			Signal:           types.AuditSignalInstallNow,
			InstalledVersion: installed.Version,
			Phase:            types.DeferralPhaseResolved,
		}, nil
	}

	record, found, err := store.Get(target.Key(), target.MinimumVersion)
	if err != nil {
		return AuditResult{}, err
	}
	switch phase := core.PhaseForRecord(record, found, now); phase {
	case types.DeferralPhaseNoDelay:
		return s.promptFirst(ctx, store, target, installed, runningApp, now, promptTimeout, settleDelay)
	case types.DeferralPhaseDeferred:
		remaining := core.RemainingDeferral(record, now)
		log.Ctx(ctx).Info().
			Str("target", target.Key()).
			Dur("remaining", remaining).
			Msg("deferral pending, skipping cycle")
		return AuditResult{
			Signal:           types.AuditSignalSkipCycle,
			InstalledVersion: installed.Version,
			Phase:            phase,
			RemainingDelay:   remaining,
		}, nil
	default:
		return s.promptExpired(ctx, store, target, installed, runningApp, promptTimeout, settleDelay)
	}
}

// foreground wraps process detection; a detection failure is logged and
// treated as not running rather than blocking the audit.
func (s Service) foreground(ctx context.Context, target types.EnforcementTarget) (bool, types.RunningApp, error) {
	if err := ctx.Err(); err != nil {
		return false, types.RunningApp{}, err
	}
	app, running, err := s.Processes.Foreground(ctx, target)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("target", target.Key()).
			Msg("process detection failed, treating target as not running")
		return false, types.RunningApp{}, nil
	}
	return running, app, nil
}

// promptFirst handles a deficient running target with no stored delay:
// the user may quit now or defer once.
func (s Service) promptFirst(ctx context.Context, store ports.DeferralStorePort, target types.EnforcementTarget, installed types.InstalledVersion, runningApp types.RunningApp, now time.Time, promptTimeout, settleDelay time.Duration) (AuditResult, error) {
	phase, err := core.Transition(types.DeferralPhaseNoDelay, types.DeferralPhasePromptPending)
	if err != nil {
		return AuditResult{}, err
	}
	prompt := policies.NewPromptPolicy().Build(target, installed.Version, phase, promptTimeout)
	choice, err := s.Dialog.Show(ctx, prompt)
	if err != nil {
		return AuditResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("target", target.Key()).
		Str("choice", string(choice)).
		Msg("enforcement prompt answered")

	switch choice {
	case types.PromptChoiceDelay:
		record := core.NewDeferralRecord(target.Key(), target.MinimumVersion, now)
		if err := store.Put(record); err != nil {
			return AuditResult{}, err
		}
		phase, err = core.Transition(phase, types.DeferralPhaseDeferred)
		if err != nil {
			return AuditResult{}, err
		}
		log.Ctx(ctx).Info().
			Str("target", target.Key()).
			Time("expires_at", record.ExpiresAt).
			Msg("delay granted")
		return AuditResult{
			Signal:           types.AuditSignalSkipCycle,
			InstalledVersion: installed.Version,
			Phase:            phase,
			RemainingDelay:   core.DeferralTTL,
		}, nil
	case types.PromptChoiceQuit:
		if err := s.terminateAndSettle(ctx, runningApp, settleDelay); err != nil {
			return AuditResult{}, err
		}
		phase, err = core.Transition(phase, types.DeferralPhaseResolved)
		if err != nil {
			return AuditResult{}, err
		}
		return AuditResult{
			Signal:           types.AuditSignalInstallNow,
			InstalledVersion: installed.Version,
			Phase:            phase,
		}, nil
	default:
		// No answer leaves no record; the next cycle prompts again.
		log.Ctx(ctx).Info().Str("target", target.Key()).Msg("prompt timed out, skipping cycle")
		return AuditResult{
			Signal:           types.AuditSignalSkipCycle,
			InstalledVersion: installed.Version,
			Phase:            phase,
		}, nil
	}
}

// promptExpired handles a lapsed delay: the prompt offers quit only,
// and an unanswered prompt resolves the same way.
func (s Service) promptExpired(ctx context.Context, store ports.DeferralStorePort, target types.EnforcementTarget, installed types.InstalledVersion, runningApp types.RunningApp, promptTimeout, settleDelay time.Duration) (AuditResult, error) {
	prompt := policies.NewPromptPolicy().Build(target, installed.Version, types.DeferralPhaseExpired, promptTimeout)
	choice, err := s.Dialog.Show(ctx, prompt)
	if err != nil {
		return AuditResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("target", target.Key()).
		Str("choice", string(choice)).
		Msg("expired deferral prompt answered")

	if err := s.terminateAndSettle(ctx, runningApp, settleDelay); err != nil {
		return AuditResult{}, err
	}
	if err := store.Delete(target.Key(), target.MinimumVersion); err != nil {
		return AuditResult{}, err
	}
	phase, err := core.Transition(types.DeferralPhaseExpired, types.DeferralPhaseResolved)
	if err != nil {
		return AuditResult{}, err
	}
	return AuditResult{
		Signal:           types.AuditSignalInstallNow,
		InstalledVersion: installed.Version,
		Phase:            phase,
	}, nil
}

// terminateAndSettle quits the running target and waits briefly so the
// process releases its files before the installer takes over.
func (s Service) terminateAndSettle(ctx context.Context, runningApp types.RunningApp, settleDelay time.Duration) error {
	if err := s.Processes.Terminate(ctx, runningApp); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settleDelay):
		return nil
	}
}
