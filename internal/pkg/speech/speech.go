package speech

import (
	"context"
	"errors"
)

// Provider names a synthesis backend.
type Provider string

const (
	ProviderPolly   Provider = "aws"
	ProviderMinimax Provider = "minimax"
)

var (
	// ErrEmptyText marks a synthesis request without text.
	ErrEmptyText = errors.New("speech: text is required")
	// ErrUnsupportedLanguage marks a language the selected provider cannot
	// synthesize.
	ErrUnsupportedLanguage = errors.New("speech: language not supported by provider")
	// ErrProviderTimeout marks a backend that did not answer in time.
	ErrProviderTimeout = errors.New("speech: provider timed out")
	// ErrProviderResponse marks a malformed or failed backend response.
	ErrProviderResponse = errors.New("speech: provider returned an invalid response")
)

// Request describes one synthesis job. Speed only affects Polly playback
// metadata; Minimax always renders at speed 1. An explicit VoiceID wins
// over the language and gender voice maps.
type Request struct {
	Text     string
	Language string
	VoiceID  string
	Female   bool
	Speed    float64
	Provider Provider
}

// Synthesizer renders a request into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}
