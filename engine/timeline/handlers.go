package timeline

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

var (
	actionFrames    frameHandler = actionHandler{}
	tweenFrames     frameHandler = tweenHandler{}
	extensionFrames frameHandler = extensionHandler{}
)

func handlerFor(kind model.TimelineKind) frameHandler {
	switch kind {
	case model.TimelineKindBone, model.TimelineKindSlot:
		return tweenFrames
	case model.TimelineKindExtension:
		return extensionFrames
	default:
		return actionFrames
	}
}

// actionHandler drives clip-level timelines, which only carry actions and events.
type actionHandler struct{}

func (actionHandler) onFadeIn(t *timelineState)                       {}
func (actionHandler) onArriveAtFrame(t *timelineState, isUpdate bool) {}
func (actionHandler) onUpdateFrame(t *timelineState, isUpdate bool)   {}

// tweenHandler computes eased progress between keyframes.
type tweenHandler struct{}

func (tweenHandler) onFadeIn(t *timelineState) {
	t.tweenProgress = 0
	t.tweenEasing = model.NoTween
	t.curve = nil
}

func (tweenHandler) onArriveAtFrame(t *timelineState, isUpdate bool) {
	frame := t.currentFrame
	t.tweenEasing = frame.TweenEasing
	t.curve = nil
	if len(frame.Curve) > 0 {
		t.curve = frame.Curve
	}

	if t.keyFrameCount == 1 || (frame.Next == t.data.Keyframes[0] && t.hasTween() && t.onFinalLoop()) {
		t.tweenEasing = model.NoTween
		t.curve = nil
	}
}

func (tweenHandler) onUpdateFrame(t *timelineState, isUpdate bool) {
	frame := t.currentFrame
	switch {
	case t.tweenEasing != model.NoTween && frame.Duration > 0:
		t.tweenProgress = (t.currentTime - frame.Position + t.position) / frame.Duration
		if t.tweenEasing != 0 {
			t.tweenProgress = EasingValue(t.tweenProgress, t.tweenEasing)
		}
	case t.curve != nil && frame.Duration > 0:
		t.tweenProgress = (t.currentTime - frame.Position + t.position) / frame.Duration
		t.tweenProgress = CurveValue(t.tweenProgress, t.curve)
	default:
		t.tweenProgress = 0
	}
}

// extensionHandler tweens a typed payload on top of the eased progress.
type extensionHandler struct {
	tweenHandler
}

func (h extensionHandler) onFadeIn(t *timelineState) {
	h.tweenHandler.onFadeIn(t)
	t.tweenType = TweenNone
	t.extension = model.ExtensionFrameData{}
}

func (h extensionHandler) onArriveAtFrame(t *timelineState, isUpdate bool) {
	h.tweenHandler.onArriveAtFrame(t, isUpdate)

	current := t.currentFrame.Extension
	if current == nil {
		t.tweenType = TweenNone
		return
	}
	next := current
	if t.hasTween() && t.currentFrame.Next.Extension != nil {
		next = t.currentFrame.Next.Extension
	}
	t.tweenType = UpdateExtensionKeyFrame(current, next, &t.extension)
}

func (h extensionHandler) onUpdateFrame(t *timelineState, isUpdate bool) {
	h.tweenHandler.onUpdateFrame(t, isUpdate)

	current := t.currentFrame.Extension
	if current == nil {
		t.extensionValues = t.extensionValues[:0]
		return
	}
	if cap(t.extensionValues) < len(current.Tweens) {
		t.extensionValues = make([]float32, len(current.Tweens))
	}
	t.extensionValues = t.extensionValues[:len(current.Tweens)]

	for i, v := range current.Tweens {
		if t.tweenType == TweenAlways {
			v = common.Lerp(v, v+t.extension.Tweens[i], t.tweenProgress)
		}
		t.extensionValues[i] = v
	}
}

func (t *timelineState) hasTween() bool {
	return t.tweenEasing != model.NoTween || t.curve != nil
}

// onFinalLoop reports whether the owning instance is playing its last repetition.
func (t *timelineState) onFinalLoop() bool {
	playTimes := t.state.PlayTimes()
	return playTimes > 0 && t.state.CurrentPlayTimes() == playTimes-1
}
