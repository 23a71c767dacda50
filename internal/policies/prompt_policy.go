package policies

import (
	"fmt"
	"time"

	"github.com/kandji-inc/kpkg/internal/types"
)

const (
	ButtonQuit  = "Quit"
	ButtonDelay = "Delay"
)

// PromptPolicy builds the modal prompt shown for a deficient target.
// The button set depends on the deferral phase: a first prompt offers a
// one-time delay, an expired deferral offers quit only.
type PromptPolicy struct{}

func NewPromptPolicy() PromptPolicy {
	return PromptPolicy{}
}

// Buttons returns the allowed choices for the given phase.
func (p PromptPolicy) Buttons(phase types.DeferralPhase) []string {
	if phase == types.DeferralPhaseExpired {
		return []string{ButtonQuit}
	}
	return []string{ButtonQuit, ButtonDelay}
}

// Build assembles the prompt for one enforcement decision.
func (p PromptPolicy) Build(target types.EnforcementTarget, installed string, phase types.DeferralPhase, timeout time.Duration) types.Prompt {
	buttons := p.Buttons(phase)
	message := fmt.Sprintf(
		"%s must be updated to version %s (installed: %s).\n\nQuit the application to allow the update to proceed.",
		target.AppName, target.MinimumVersion, installed,
	)
	if phase != types.DeferralPhaseExpired {
		message += "\nChoose Delay to postpone the update by one hour."
	} else {
		message = fmt.Sprintf(
			"The update delay for %s has ended.\n\n%s will now quit so version %s can be installed.",
			target.AppName, target.AppName, target.MinimumVersion,
		)
	}
	return types.Prompt{
		Title:         "Update Required",
		Message:       message,
		Buttons:       buttons,
		DefaultButton: buttons[len(buttons)-1],
		Timeout:       timeout,
	}
}
