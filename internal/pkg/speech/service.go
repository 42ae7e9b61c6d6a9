package speech

import (
	"context"
	"strings"
)

// Service routes synthesis requests to the right provider and fronts both
// with the shared audio cache.
type Service struct {
	polly   Synthesizer
	minimax Synthesizer
	cache   AudioCache
}

// NewService wires the gateway from its providers and cache.
func NewService(polly, minimax Synthesizer, cache AudioCache) *Service {
	return &Service{polly: polly, minimax: minimax, cache: cache}
}

// Synthesize validates the request, serves from cache when possible and
// renders through the selected provider otherwise. Minimax requests for a
// language outside its coverage fail with ErrUnsupportedLanguage rather
// than silently switching providers.
func (s *Service) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if req.Provider == "" {
		req.Provider = ProviderPolly
	}
	if req.Speed == 0 {
		req.Speed = 1
	}

	if audio, ok := s.cache.Get(req); ok {
		return audio, nil
	}

	var synth Synthesizer
	switch req.Provider {
	case ProviderMinimax:
		if !MinimaxSupported(req.Language) {
			return nil, ErrUnsupportedLanguage
		}
		synth = s.minimax
	default:
		synth = s.polly
	}

	audio, err := synth.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.Set(req, audio)
	return audio, nil
}
