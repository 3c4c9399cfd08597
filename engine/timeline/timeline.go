package timeline

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// Instance is what a timeline needs from the animation instance that owns it.
type Instance interface {
	armature.StateInfo

	// PlayTimes returns the resolved repeat count. Zero loops forever.
	PlayTimes() int

	// CurrentPlayTimes returns the number of completed repetitions of the governing timeline.
	CurrentPlayTimes() int
}

// Binding carries what a timeline reads from its instance when it is faded in.
type Binding struct {
	// Armature receives staged actions and buffered events.
	Armature armature.Armature

	// State is the owning instance.
	State Instance

	// Clip is the clip the instance plays.
	Clip *model.AnimationData

	// Position and Duration bound the part of the clip the instance plays, in seconds.
	Position float32
	Duration float32

	// Governor is the instance's governing timeline. Leave it nil to bind the governing timeline itself.
	Governor TimelineState
}

// frameHandler is the per-kind behavior of a timeline, selected when the timeline is bound.
type frameHandler interface {
	onFadeIn(t *timelineState)
	onArriveAtFrame(t *timelineState, isUpdate bool)
	onUpdateFrame(t *timelineState, isUpdate bool)
}

// timelineState implements the TimelineState interface.
type timelineState struct {
	data     *model.TimelineData
	handler  frameHandler
	armature armature.Armature
	state    Instance
	governor TimelineState

	main  bool
	async bool

	completed        bool
	started          bool
	reverse          bool
	currentPlayTimes int
	currentTime      float32
	currentFrame     *model.FrameData

	keyFrameCount int
	frameCount    uint32
	position      float32
	duration      float32
	clipDuration  float32
	timeScale     float32
	timeOffset    float32

	// tween state, used by bone, slot and extension timelines
	tweenProgress float32
	tweenEasing   float32
	curve         []float32

	// extension state
	tweenType       TweenType
	extension       model.ExtensionFrameData
	extensionValues []float32
}

// TimelineState maps an instance's time onto one timeline: it resolves the current keyframe,
// fires the actions and events of every keyframe crossed, and computes the interpolation
// progress pose application reads after the tick.
type TimelineState interface {
	// FadeIn binds the timeline to an instance and seeks it to time.
	//
	// Parameters:
	//   - b: the owning instance and clip
	//   - data: the timeline to play
	//   - time: the instance's start time in seconds
	FadeIn(b Binding, data *model.TimelineData, time float32)

	// Update advances the timeline to the instance time, firing crossed keyframes.
	// Completed timelines ignore updates.
	//
	// Parameters:
	//   - time: the instance's accumulated time in seconds
	Update(time float32)

	// SetCurrentTime seeks the timeline without firing crossed keyframes.
	//
	// Parameters:
	//   - time: the instance time in seconds
	SetCurrentTime(time float32)

	// Reset clears the timeline for reuse.
	Reset()

	// Data returns the bound timeline, or nil.
	Data() *model.TimelineData

	// IsMain reports whether this is the instance's governing timeline.
	IsMain() bool

	// IsAsynchronous reports whether the timeline keeps its own time mapping.
	IsAsynchronous() bool

	// IsCompleted reports whether the timeline reached the end of its final repetition.
	IsCompleted() bool

	// IsReverse reports whether the last time change moved backward within a repetition.
	IsReverse() bool

	// CurrentTime returns the clip-local time in seconds, including the clip start position.
	CurrentTime() float32

	// CurrentPlayTimes returns the number of completed repetitions.
	CurrentPlayTimes() int

	// CurrentFrame returns the current keyframe, or nil before the first keyframe is reached.
	CurrentFrame() *model.FrameData

	// Progress returns the eased interpolation progress within the current keyframe.
	// It is 0 on hold keyframes.
	Progress() float32

	// TweenEasing returns the easing scalar in effect, or model.NoTween.
	TweenEasing() float32

	// Extension returns the tween classification and payload delta of an extension timeline.
	//
	// Returns:
	//   - TweenType: how to apply the payload
	//   - *model.ExtensionFrameData: the cached delta toward the next keyframe
	Extension() (TweenType, *model.ExtensionFrameData)

	// ExtensionValues returns the interpolated payload of an extension timeline.
	ExtensionValues() []float32
}

var _ TimelineState = &timelineState{}

// NewTimelineState creates an unbound TimelineState. Instances normally borrow these from a pool.
//
// Returns:
//   - TimelineState: the timeline state
func NewTimelineState() TimelineState {
	t := &timelineState{}
	t.Reset()
	return t
}

func (t *timelineState) Reset() {
	values := t.extensionValues[:0]
	*t = timelineState{
		timeScale:       1,
		tweenEasing:     model.NoTween,
		extensionValues: values,
	}
}

func (t *timelineState) FadeIn(b Binding, data *model.TimelineData, time float32) {
	t.armature = b.Armature
	t.state = b.State
	t.data = data
	t.governor = b.Governor
	t.handler = handlerFor(data.Kind)

	t.main = b.Governor == nil
	t.async = !t.main && (b.Clip.HasAsynchronyTimeline || data.Asynchronous || data.Offset != 0 || (data.Scale != 0 && data.Scale != 1))
	t.keyFrameCount = data.KeyframeCount()
	t.frameCount = b.Clip.FrameCount
	t.position = b.Position
	t.duration = b.Duration
	t.clipDuration = b.Clip.Duration

	t.timeScale = 1
	t.timeOffset = 0
	if !t.main {
		if data.Scale != 0 {
			t.timeScale = 1 / data.Scale
		}
		t.timeOffset = data.Offset
	}

	t.handler.onFadeIn(t)
	t.SetCurrentTime(time)
}

func (t *timelineState) SetCurrentTime(time float32) {
	t.setCurrentTime(time)

	switch t.keyFrameCount {
	case 0:
	case 1:
		t.currentFrame = t.data.Keyframes[0]
		t.handler.onArriveAtFrame(t, false)
		t.handler.onUpdateFrame(t, false)
	default:
		t.currentFrame = t.data.FrameAt(t.frameIndex())
		t.handler.onArriveAtFrame(t, false)
		t.handler.onUpdateFrame(t, false)
	}

	// at the clip start nothing has been crossed yet, so the next update fires the first keyframe
	if t.currentTime == t.position {
		t.currentFrame = nil
	}
}

func (t *timelineState) Update(time float32) {
	if t.completed {
		return
	}
	prevPlayTimes := t.currentPlayTimes
	if !t.setCurrentTime(time) {
		return
	}

	if t.main && !t.started {
		t.started = true
		t.dispatchLifecycle(armature.EventStart)
	}

	if t.keyFrameCount > 0 {
		index := 0
		if t.keyFrameCount > 1 {
			index = t.frameIndex()
		}
		frame := t.data.FrameAt(index)

		if t.currentFrame != frame {
			if t.keyFrameCount > 1 {
				crossed := t.currentFrame
				if crossed == nil {
					crossed = frame.Prev
				}
				t.currentFrame = frame

				if t.reverse {
					for crossed != frame {
						t.onCrossFrame(crossed)
						crossed = crossed.Prev
					}
				} else {
					for crossed != frame {
						crossed = crossed.Next
						t.onCrossFrame(crossed)
					}
				}
			} else {
				t.currentFrame = frame
				t.onCrossFrame(frame)
			}
			t.handler.onArriveAtFrame(t, true)
		}

		t.handler.onUpdateFrame(t, true)
	}

	if t.main && t.currentPlayTimes != prevPlayTimes {
		t.dispatchLifecycle(armature.EventLoopComplete)
		if t.completed {
			t.dispatchLifecycle(armature.EventComplete)
		}
	}
}

// setCurrentTime runs the time mapper and reports whether the mapped time changed.
func (t *timelineState) setCurrentTime(value float32) bool {
	playTimes := 0
	completed := false

	switch {
	case t.main || t.async:
		total := t.state.PlayTimes()
		value *= t.timeScale
		if t.timeOffset != 0 {
			value += t.timeOffset * t.clipDuration
		}

		switch {
		case t.duration <= 0:
			value = 0
			completed = total > 0
			playTimes = total
		case total > 0 && (value >= float32(total)*t.duration || value <= -float32(total)*t.duration):
			completed = true
			playTimes = total
			if value < 0 {
				value = 0
			} else {
				value = t.duration
			}
		default:
			if value < 0 {
				playTimes = int(-value / t.duration)
				value = t.duration - common.Mod(-value, t.duration)
			} else {
				playTimes = int(value / t.duration)
				value = common.Mod(value, t.duration)
			}
			if total > 0 && playTimes > total {
				playTimes = total
			}
		}
		value += t.position

	case t.governor != nil:
		value = t.governor.CurrentTime()
		playTimes = t.governor.CurrentPlayTimes()
		completed = t.governor.IsCompleted()
	}

	t.completed = completed
	if t.currentTime == value && t.currentPlayTimes == playTimes {
		return false
	}

	if t.keyFrameCount == 1 && value > t.position && !t.main {
		t.completed = true
	}

	t.reverse = t.currentTime > value && t.currentPlayTimes == playTimes
	t.currentTime = value
	t.currentPlayTimes = playTimes
	return true
}

func (t *timelineState) frameIndex() int {
	return common.FrameIndex(t.currentTime, t.frameCount, t.clipDuration)
}

// onCrossFrame stages the keyframe's actions on their target armatures and buffers its events
// for every event type somebody listens to.
func (t *timelineState) onCrossFrame(frame *model.FrameData) {
	for _, action := range frame.Actions {
		switch {
		case action.Slot != "":
			if s := t.armature.Slot(action.Slot); s != nil {
				if child := s.ChildArmature(); child != nil {
					child.BufferAction(action)
				}
			}
		case action.Bone != "":
			for _, s := range t.armature.Slots() {
				if child := s.ChildArmature(); child != nil {
					child.BufferAction(action)
				}
			}
		default:
			t.armature.BufferAction(action)
		}
	}

	display := t.armature.Display()
	for _, ev := range frame.Events {
		eventType := armature.EventFrame
		if ev.Type == model.EventTypeSound {
			eventType = armature.EventSound
		}
		if !display.HasEvent(eventType) {
			continue
		}

		e := armature.BorrowEvent(eventType)
		e.State = t.state
		e.Name = ev.Name
		e.Data = ev.Data
		if ev.Bone != "" {
			e.Bone = t.armature.Bone(ev.Bone)
		}
		if ev.Slot != "" {
			e.Slot = t.armature.Slot(ev.Slot)
		}
		t.armature.BufferEvent(e)
	}
}

func (t *timelineState) dispatchLifecycle(eventType string) {
	if !t.armature.Display().HasEvent(eventType) {
		return
	}
	e := armature.BorrowEvent(eventType)
	e.State = t.state
	e.Name = t.state.Name()
	t.armature.BufferEvent(e)
}

func (t *timelineState) Data() *model.TimelineData {
	return t.data
}

func (t *timelineState) IsMain() bool {
	return t.main
}

func (t *timelineState) IsAsynchronous() bool {
	return t.async
}

func (t *timelineState) IsCompleted() bool {
	return t.completed
}

func (t *timelineState) IsReverse() bool {
	return t.reverse
}

func (t *timelineState) CurrentTime() float32 {
	return t.currentTime
}

func (t *timelineState) CurrentPlayTimes() int {
	return t.currentPlayTimes
}

func (t *timelineState) CurrentFrame() *model.FrameData {
	return t.currentFrame
}

func (t *timelineState) Progress() float32 {
	return t.tweenProgress
}

func (t *timelineState) TweenEasing() float32 {
	return t.tweenEasing
}

func (t *timelineState) Extension() (TweenType, *model.ExtensionFrameData) {
	return t.tweenType, &t.extension
}

func (t *timelineState) ExtensionValues() []float32 {
	return t.extensionValues
}
