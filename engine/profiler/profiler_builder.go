package profiler

import (
	"time"

	"github.com/rs/zerolog"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger that receives the interval statistics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithInterval sets how often statistics are logged. Values <= 0 keep the 1 second default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - now: the function returning the current time
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
