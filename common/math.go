package common

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Pi is math.Pi narrowed to float32 for the animation math, which runs entirely in float32.
const Pi float32 = math.Pi

// Abs returns the absolute value of v.
//
// Parameters:
//   - v: the value
//
// Returns:
//   - T: |v|
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Mod returns the floating-point remainder of x/y with the sign of x, like math.Mod.
//
// Parameters:
//   - x: the dividend
//   - y: the divisor
//
// Returns:
//   - float32: the remainder
func Mod(x, y float32) float32 {
	return float32(math.Mod(float64(x), float64(y)))
}

// IsNaN reports whether v is an IEEE 754 "not-a-number" value.
func IsNaN(v float32) bool {
	return v != v
}

// Lerp linearly interpolates between a and b by t.
//
// Parameters:
//   - a: the value at t = 0
//   - b: the value at t = 1
//   - t: the interpolation factor
//
// Returns:
//   - T: a + (b-a)*t
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// FrameIndex maps a time to a uniform frame bucket: floor(t * frameCount / duration).
// Returns 0 for a non-positive duration or a negative time.
//
// Parameters:
//   - t: the time in seconds
//   - frameCount: the number of equal-length frame slots across duration
//   - duration: the duration in seconds covered by frameCount slots
//
// Returns:
//   - int: the bucket index
func FrameIndex(t float32, frameCount uint32, duration float32) int {
	if duration <= 0 || t <= 0 {
		return 0
	}
	return int(t * float32(frameCount) / duration)
}
