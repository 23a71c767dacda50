package adapters

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/shared"
	"github.com/kandji-inc/kpkg/internal/types"
)

// ProcessMonitorAdapter finds running enforcement targets. Bundle
// identifiers resolve through the launch services registry; receipt
// targets without one fall back to a process name scan.
type ProcessMonitorAdapter struct{}

func NewProcessMonitorAdapter() ProcessMonitorAdapter {
	return ProcessMonitorAdapter{}
}

var lsappinfoPIDPattern = regexp.MustCompile(`"pid"\s*=\s*(\d+)`)

func (a ProcessMonitorAdapter) Foreground(ctx context.Context, target types.EnforcementTarget) (types.RunningApp, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.RunningApp{}, false, err
	}
	if target.BundleID == "" {
		return a.scanByName(ctx, target.AppName)
	}
	output, err := exec.CommandContext(ctx, "lsappinfo", "info", "-only", "pid", "-app", target.BundleID).CombinedOutput()
	if err != nil {
		return types.RunningApp{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query running applications").
			WithCause(shared.CommandError(output, err))
	}
	match := lsappinfoPIDPattern.FindStringSubmatch(string(output))
	if match == nil {
		return types.RunningApp{}, false, nil
	}
	pid, err := strconv.ParseInt(match[1], 10, 32)
	if err != nil {
		return types.RunningApp{}, false, nil
	}
	app := types.RunningApp{
		PID:        int32(pid),
		Name:       strings.TrimSuffix(target.AppName, ".app"),
		Foreground: true,
	}
	if proc, procErr := process.NewProcessWithContext(ctx, app.PID); procErr == nil {
		if name, nameErr := proc.NameWithContext(ctx); nameErr == nil && name != "" {
			app.Name = name
		}
		if exe, exeErr := proc.ExeWithContext(ctx); exeErr == nil {
			app.ExecPath = exe
		}
	}
	return app, true, nil
}

// scanByName matches the target by process name. Receipt-only targets
// have no bundle identifier the launch services registry could answer
// for.
func (a ProcessMonitorAdapter) scanByName(ctx context.Context, appName string) (types.RunningApp, bool, error) {
	want := strings.ToLower(strings.TrimSuffix(appName, ".app"))
	if want == "" {
		return types.RunningApp{}, false, nil
	}
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return types.RunningApp{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list processes").
			WithCause(err)
	}
	for _, proc := range procs {
		name, nameErr := proc.NameWithContext(ctx)
		if nameErr != nil || strings.ToLower(name) != want {
			continue
		}
		app := types.RunningApp{PID: proc.Pid, Name: name}
		if exe, exeErr := proc.ExeWithContext(ctx); exeErr == nil {
			app.ExecPath = exe
		}
		return app, true, nil
	}
	return types.RunningApp{}, false, nil
}

func (a ProcessMonitorAdapter) Terminate(ctx context.Context, app types.RunningApp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	proc, err := process.NewProcessWithContext(ctx, app.PID)
	if err != nil {
		// Already exited.
		return nil
	}
	if err := proc.TerminateWithContext(ctx); err == nil {
		return nil
	}
	if err := proc.KillWithContext(ctx); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to terminate application").
			WithCause(err)
	}
	return nil
}

var _ ports.ProcessMonitorPort = ProcessMonitorAdapter{}
