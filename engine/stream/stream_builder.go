package stream

import (
	"time"

	"github.com/rs/zerolog"
)

// HubBuilderOption is a functional option for configuring a Hub.
type HubBuilderOption func(*hub)

// WithLogger sets the logger used for client connects, disconnects and write failures.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) HubBuilderOption {
	return func(h *hub) {
		h.logger = logger
	}
}

// WithWriteTimeout sets the per-client write deadline used by Publish. Defaults to 200ms.
//
// Parameters:
//   - d: the write timeout
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithWriteTimeout(d time.Duration) HubBuilderOption {
	return func(h *hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithCheckOrigin overrides the websocket origin check. By default every origin is accepted.
//
// Parameters:
//   - check: the origin check
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithCheckOrigin(check func(origin string) bool) HubBuilderOption {
	return func(h *hub) {
		h.checkOrigin = check
	}
}
