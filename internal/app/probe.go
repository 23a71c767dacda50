package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Probe classifies each media item without resolving its identity.
func (s Service) Probe(ctx context.Context, req ProbeRequest) (ProbeResult, error) {
	media, err := s.expandMedia(ctx, req.Media)
	if err != nil {
		return ProbeResult{}, err
	}
	result := ProbeResult{}
	for _, path := range media {
		kind, err := s.Prober.Classify(ctx, path)
		if err != nil {
			return ProbeResult{}, err
		}
		name, err := s.Prober.DisplayName(ctx, path, kind)
		if err != nil {
			return ProbeResult{}, err
		}
		log.Ctx(ctx).Info().
			Str("media", path).
			Str("kind", string(kind)).
			Str("name", name).
			Msg("media classified")
		result.Items = append(result.Items, ProbeItem{Path: path, Kind: kind, DisplayName: name})
	}
	return result, nil
}
