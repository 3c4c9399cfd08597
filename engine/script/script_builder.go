package script

import "github.com/rs/zerolog"

// PlayerBuilderOption is a functional option for configuring a Player.
type PlayerBuilderOption func(*player)

// WithLogger sets the logger used to report applied and skipped cues.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) PlayerBuilderOption {
	return func(p *player) {
		p.logger = logger
	}
}

// WithDefaultFadeTime sets the fade time used by fadeIn and fadeOut cues that carry none.
// A negative value defers to the clip default for fadeIn cues.
//
// Parameters:
//   - seconds: the fade time
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithDefaultFadeTime(seconds float32) PlayerBuilderOption {
	return func(p *player) {
		p.fadeTime = seconds
	}
}
