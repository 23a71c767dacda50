package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/shared"
	"github.com/kandji-inc/kpkg/internal/types"
)

// DialogOsascriptAdapter shows the enforcement prompt as a modal
// AppleScript dialog. An unanswered dialog gives up after the prompt's
// timeout and reports that instead of a button.
type DialogOsascriptAdapter struct{}

func NewDialogOsascriptAdapter() DialogOsascriptAdapter {
	return DialogOsascriptAdapter{}
}

func (a DialogOsascriptAdapter) Show(ctx context.Context, prompt types.Prompt) (types.PromptChoice, error) {
	if err := ctx.Err(); err != nil {
		return types.PromptChoiceTimeout, err
	}
	if len(prompt.Buttons) == 0 {
		return types.PromptChoiceTimeout, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("prompt has no buttons")
	}
	output, err := exec.CommandContext(ctx, "osascript", "-e", buildDialogScript(prompt)).CombinedOutput()
	if err != nil {
		return types.PromptChoiceTimeout, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to present dialog").
			WithCause(shared.CommandError(output, err))
	}
	button, gaveUp := parseDialogReply(string(output))
	if gaveUp {
		return types.PromptChoiceTimeout, nil
	}
	switch button {
	case policies.ButtonQuit:
		return types.PromptChoiceQuit, nil
	case policies.ButtonDelay:
		return types.PromptChoiceDelay, nil
	default:
		return types.PromptChoiceTimeout, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unrecognized dialog reply %q", button))
	}
}

func buildDialogScript(prompt types.Prompt) string {
	quoted := make([]string, 0, len(prompt.Buttons))
	for _, button := range prompt.Buttons {
		quoted = append(quoted, quoteAppleScript(button))
	}
	defaultButton := prompt.DefaultButton
	if defaultButton == "" {
		defaultButton = prompt.Buttons[len(prompt.Buttons)-1]
	}
	script := fmt.Sprintf("display dialog %s with title %s buttons {%s} default button %s",
		quoteAppleScript(prompt.Message),
		quoteAppleScript(prompt.Title),
		strings.Join(quoted, ", "),
		quoteAppleScript(defaultButton),
	)
	if prompt.Timeout > 0 {
		script += fmt.Sprintf(" giving up after %d", int(prompt.Timeout.Seconds()))
	}
	return script
}

func quoteAppleScript(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// parseDialogReply splits osascript's "button returned:X, gave up:true"
// reply format.
func parseDialogReply(output string) (string, bool) {
	reply := strings.TrimSpace(output)
	if strings.Contains(reply, "gave up:true") {
		return "", true
	}
	const marker = "button returned:"
	idx := strings.Index(reply, marker)
	if idx < 0 {
		return "", false
	}
	button := reply[idx+len(marker):]
	if comma := strings.Index(button, ","); comma >= 0 {
		button = button[:comma]
	}
	return strings.TrimSpace(button), false
}

var _ ports.DialogPort = DialogOsascriptAdapter{}
