package core

import (
	"context"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/kandji-inc/kpkg/internal/types"
)

type TargetCompiler struct{}

func NewTargetCompiler() TargetCompiler {
	return TargetCompiler{}
}

// ValidateTarget checks an enforcement target before any audit work
// happens. A target needs a display name, a version floor, at least one
// lookup identifier, and a well-formed enforcement window.
func (c TargetCompiler) ValidateTarget(ctx context.Context, target types.EnforcementTarget) error {
	assert.NotEmpty(ctx, target.AppName, "app_name must be set")
	assert.NotEmpty(ctx, target.MinimumVersion, "min_version must be set")
	if target.BundleID == "" && target.ReceiptID == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("either bundle_id or receipt_id must be set")
	}
	if target.CreatedAt.IsZero() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("created timestamp must be set")
	}
	if target.GraceDays < 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("grace_days must not be negative")
	}
	log.Ctx(ctx).Debug().Str("target", target.Key()).Msg("enforcement target validated")
	return nil
}
