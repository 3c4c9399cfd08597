package world

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/rs/zerolog"
)

// WorldBuilderOption is a functional option for configuring a World.
// Use the With* functions to create options.
type WorldBuilderOption func(w *world)

// WithWorkers sets the number of worker goroutines used to advance rigs in parallel.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithWorkers(n int) WorldBuilderOption {
	return func(w *world) {
		if n < 1 {
			n = 1
		}
		w.workers = n
	}
}

// WithLogger sets the logger used for registry changes.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) WorldBuilderOption {
	return func(w *world) {
		w.logger = logger
	}
}

// WithRigs registers initial rigs with the world in the given order.
//
// Parameters:
//   - rigs: the top-level armatures to register
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithRigs(rigs ...armature.Armature) WorldBuilderOption {
	return func(w *world) {
		w.initial = append(w.initial, rigs...)
	}
}

// WithRecordEvents controls whether rig events are copied into snapshots. Enabled by default.
//
// Parameters:
//   - enabled: true to record events
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithRecordEvents(enabled bool) WorldBuilderOption {
	return func(w *world) {
		w.recordEvents = enabled
	}
}
