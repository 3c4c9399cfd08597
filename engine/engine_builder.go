package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithFixedStep makes Run pass the nominal tick period as the delta time instead of the measured
// wall time, so playback is reproducible regardless of scheduling jitter.
//
// Parameters:
//   - fixed: true to use the nominal period
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFixedStep(fixed bool) EngineBuilderOption {
	return func(e *engine) {
		e.fixedStep = fixed
	}
}

// WithWorld registers a world at the given key during engine construction.
// Worlds are advanced in ascending key order.
//
// Parameters:
//   - key: the ordering key
//   - w: the World to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorld(key int, w world.World) EngineBuilderOption {
	return func(e *engine) {
		e.worlds[key] = w
	}
}

// WithLogger sets the logger for engine lifecycle messages and the default profiler.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
