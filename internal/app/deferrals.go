package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Deferrals lists stored delay records, with optional maintenance:
// pruning lapsed records or clearing every record of one target.
func (s Service) Deferrals(ctx context.Context, req DeferralsRequest) (DeferralsResult, error) {
	path := strings.TrimSpace(req.DeferralPath)
	if path == "" {
		path = defaultDeferralPath()
	}
	store := s.DeferralStore(path)

	result := DeferralsResult{}
	if clear := strings.TrimSpace(req.ClearTarget); clear != "" {
		if err := store.DeleteTarget(clear); err != nil {
			return DeferralsResult{}, err
		}
		log.Ctx(ctx).Info().Str("target", clear).Msg("deferral records cleared")
	}
	if req.Prune {
		pruned, err := store.Prune(s.now())
		if err != nil {
			return DeferralsResult{}, err
		}
		result.Pruned = pruned
		log.Ctx(ctx).Info().Int("pruned", pruned).Msg("lapsed deferral records pruned")
	}
	records, err := store.List()
	if err != nil {
		return DeferralsResult{}, err
	}
	result.Records = records
	return result, nil
}
