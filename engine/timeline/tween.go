package timeline

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// TweenType tells the caller of UpdateExtensionKeyFrame how to apply an extension payload.
type TweenType int

const (
	// TweenNone holds the current payload.
	TweenNone TweenType = iota

	// TweenOnce snaps to the current payload.
	TweenOnce

	// TweenAlways interpolates toward the next payload every tick.
	TweenAlways
)

// String returns the tween type name.
func (t TweenType) String() string {
	switch t {
	case TweenNone:
		return "none"
	case TweenOnce:
		return "once"
	case TweenAlways:
		return "always"
	default:
		return "unknown"
	}
}

// EasingValue applies the closed-form easing selected by easing to a linear progress.
//
//	easing > 2       linear
//	(1, 2]           ease in-out, residual easing-1
//	(0, 1]           ease out, residual easing
//	[-1, 0)          ease in, residual |easing|
//	[-2, -1)         ease out-in, residual |easing|-1
//	otherwise        linear
//
// The eased value is (base-progress)*residual + progress. Zero is the identity easing and
// callers skip this function for it.
//
// Parameters:
//   - progress: the linear progress in [0, 1]
//   - easing: the easing scalar
//
// Returns:
//   - float32: the eased progress
func EasingValue(progress, easing float32) float32 {
	var value float32
	switch {
	case easing > 2:
		return progress
	case easing > 1:
		value = 0.5 * (1 - float32(math.Cos(float64(progress*common.Pi))))
		easing -= 1
	case easing > 0:
		value = 1 - (1-progress)*(1-progress)
	case easing >= -1:
		easing = -easing
		value = progress * progress
	case easing >= -2:
		easing = -easing
		value = float32(math.Acos(float64(1-progress*2))) / common.Pi
		easing -= 1
	default:
		return progress
	}
	return (value-progress)*easing + progress
}

// CurveValue evaluates a sampled easing curve. samples holds flattened (x, y) pairs in x order.
// Progress before the first sample interpolates from the origin, progress past the last sample
// extrapolates toward (1, 1).
//
// Parameters:
//   - progress: the linear progress in [0, 1]
//   - samples: the curve samples
//
// Returns:
//   - float32: the eased progress
func CurveValue(progress float32, samples []float32) float32 {
	var x, y float32
	for i := 0; i+1 < len(samples); i += 2 {
		x = samples[i]
		y = samples[i+1]
		if x >= progress {
			if i == 0 {
				if x == 0 {
					return y
				}
				return y * progress / x
			}
			xP := samples[i-2]
			yP := samples[i-1]
			return yP + (y-yP)*(progress-xP)/(x-xP)
		}
	}
	if x >= 1 {
		return y
	}
	return y + (1-y)*(progress-x)/(1-x)
}

// UpdateExtensionKeyFrame computes the payload delta from current to next into result and
// classifies the transition. When both keyframes share a type, result.Tweens receives the
// elementwise delta and any non-zero delta yields TweenAlways. Otherwise result is reshaped to
// current's type, payload length and key signature, and TweenOnce is returned if anything changed.
//
// Parameters:
//   - current: the payload of the keyframe being arrived at
//   - next: the payload of its successor
//   - result: the cached delta, updated in place
//
// Returns:
//   - TweenType: how the caller should apply the payload
func UpdateExtensionKeyFrame(current, next, result *model.ExtensionFrameData) TweenType {
	tweenType := TweenNone
	resized := false

	if current.Type == next.Type && len(next.Tweens) >= len(current.Tweens) {
		if len(result.Tweens) != len(current.Tweens) {
			result.Tweens = make([]float32, len(current.Tweens))
			resized = true
		}
		for i := range current.Tweens {
			delta := next.Tweens[i] - current.Tweens[i]
			result.Tweens[i] = delta
			if delta != 0 {
				tweenType = TweenAlways
			}
		}
	}

	if tweenType != TweenNone {
		return tweenType
	}

	if result.Type != current.Type {
		tweenType = TweenOnce
		result.Type = current.Type
		clear(result.Tweens)
	}

	if resized || len(result.Tweens) != len(current.Tweens) {
		tweenType = TweenOnce
		result.Tweens = make([]float32, len(current.Tweens))
	}

	if len(result.Keys) != len(current.Keys) {
		tweenType = TweenOnce
		result.Keys = make([]int, len(current.Keys))
	}

	for i, key := range current.Keys {
		if result.Keys[i] != key {
			tweenType = TweenOnce
			result.Keys[i] = key
		}
	}

	return tweenType
}
