package animation

import "github.com/rs/zerolog"

// AnimationBuilderOption is a functional option for configuring an Animation.
type AnimationBuilderOption func(*animation)

// WithLogger sets the logger used for debug records. Defaults to a disabled logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AnimationBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) AnimationBuilderOption {
	return func(a *animation) {
		a.logger = logger
	}
}

// WithTimeScale sets the multiplier applied to every tick. Defaults to 1.
//
// Parameters:
//   - scale: the multiplier
//
// Returns:
//   - AnimationBuilderOption: option function to apply
func WithTimeScale(scale float32) AnimationBuilderOption {
	return func(a *animation) {
		a.timeScale = scale
	}
}
