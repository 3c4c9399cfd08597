package model

import "math"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithBones is an option builder that sets the bone hierarchy of the Model.
//
// Parameters:
//   - bones: the bones, parents before children
//
// Returns:
//   - ModelBuilderOption: a function that applies the bones option to a model
func WithBones(bones ...*BoneData) ModelBuilderOption {
	return func(m *model) {
		m.bones = append(m.bones, bones...)
	}
}

// WithSlots is an option builder that sets the slots of the Model.
//
// Parameters:
//   - slots: the slots in draw order
//
// Returns:
//   - ModelBuilderOption: a function that applies the slots option to a model
func WithSlots(slots ...*SlotData) ModelBuilderOption {
	return func(m *model) {
		m.slots = append(m.slots, slots...)
	}
}

// WithAnimations is an option builder that registers animation clips on the Model.
// The first clip registered becomes the default animation unless WithDefaultAnimation is used.
//
// Parameters:
//   - animations: the clips to register
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations ...*AnimationData) ModelBuilderOption {
	return func(m *model) {
		for _, a := range animations {
			m.AddAnimation(a)
		}
	}
}

// WithDefaultAnimation is an option builder that designates the clip played by an unnamed Play.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - ModelBuilderOption: a function that applies the default animation option to a model
func WithDefaultAnimation(name string) ModelBuilderOption {
	return func(m *model) {
		m.defaultAnimation = name
	}
}

// FrameBuilderOption is a functional option for configuring a keyframe via NewFrame.
type FrameBuilderOption func(*FrameData)

// WithTween sets the keyframe's easing scalar. Zero is linear.
//
// Parameters:
//   - easing: the easing scalar
//
// Returns:
//   - FrameBuilderOption: a function that applies the easing to a keyframe
func WithTween(easing float32) FrameBuilderOption {
	return func(f *FrameData) {
		f.TweenEasing = easing
	}
}

// WithCurve sets the keyframe's custom easing curve as flattened (x, y) pairs.
//
// Parameters:
//   - samples: the curve samples
//
// Returns:
//   - FrameBuilderOption: a function that applies the curve to a keyframe
func WithCurve(samples ...float32) FrameBuilderOption {
	return func(f *FrameData) {
		f.Curve = samples
	}
}

// WithActions attaches actions to the keyframe.
//
// Parameters:
//   - actions: the actions staged when the keyframe is crossed
//
// Returns:
//   - FrameBuilderOption: a function that applies the actions to a keyframe
func WithActions(actions ...*ActionData) FrameBuilderOption {
	return func(f *FrameData) {
		f.Actions = append(f.Actions, actions...)
	}
}

// WithEvents attaches events to the keyframe.
//
// Parameters:
//   - events: the events emitted when the keyframe is crossed
//
// Returns:
//   - FrameBuilderOption: a function that applies the events to a keyframe
func WithEvents(events ...*EventData) FrameBuilderOption {
	return func(f *FrameData) {
		f.Events = append(f.Events, events...)
	}
}

// WithExtension sets the keyframe's typed payload.
//
// Parameters:
//   - ext: the payload
//
// Returns:
//   - FrameBuilderOption: a function that applies the payload to a keyframe
func WithExtension(ext *ExtensionFrameData) FrameBuilderOption {
	return func(f *FrameData) {
		f.Extension = ext
	}
}

// NewFrame creates a hold keyframe at position lasting duration, then applies options.
//
// Parameters:
//   - position: the keyframe start in seconds
//   - duration: the keyframe length in seconds
//   - options: functional options such as WithTween or WithEvents
//
// Returns:
//   - *FrameData: the keyframe
func NewFrame(position, duration float32, options ...FrameBuilderOption) *FrameData {
	f := &FrameData{
		Position:    position,
		Duration:    duration,
		TweenEasing: NoTween,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// TimelineBuilderOption is a functional option for configuring a timeline via NewTimeline.
type TimelineBuilderOption func(*TimelineData)

// WithTimeScale stretches the timeline relative to its clip.
//
// Parameters:
//   - scale: the stretch factor
//
// Returns:
//   - TimelineBuilderOption: a function that applies the scale to a timeline
func WithTimeScale(scale float32) TimelineBuilderOption {
	return func(t *TimelineData) {
		t.Scale = scale
	}
}

// WithTimeOffset shifts the timeline's start by a fraction of the clip duration.
//
// Parameters:
//   - offset: the fractional offset
//
// Returns:
//   - TimelineBuilderOption: a function that applies the offset to a timeline
func WithTimeOffset(offset float32) TimelineBuilderOption {
	return func(t *TimelineData) {
		t.Offset = offset
	}
}

// WithAsynchronous marks the timeline as keeping its own time mapping.
//
// Returns:
//   - TimelineBuilderOption: a function that marks a timeline asynchronous
func WithAsynchronous() TimelineBuilderOption {
	return func(t *TimelineData) {
		t.Asynchronous = true
	}
}

// NewTimeline creates an unlinked timeline. Keyframes are linked and the frame lookup table
// is built when the timeline is attached to a clip by NewAnimationData, or by calling Link.
//
// Parameters:
//   - kind: what the timeline animates
//   - name: the target bone or slot name
//   - keyframes: the keyframes in time order
//   - options: functional options such as WithTimeScale
//
// Returns:
//   - *TimelineData: the timeline
func NewTimeline(kind TimelineKind, name string, keyframes []*FrameData, options ...TimelineBuilderOption) *TimelineData {
	t := &TimelineData{
		Kind:      kind,
		Name:      name,
		Scale:     1,
		Keyframes: keyframes,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Link wires the keyframes into a ring and builds the uniform frame lookup table for a clip
// of the given frame count and duration. The table has frameCount+1 entries so the clip end
// resolves to the last keyframe.
//
// Parameters:
//   - frameCount: the clip's frame count
//   - duration: the clip's duration in seconds
func (t *TimelineData) Link(frameCount uint32, duration float32) {
	n := len(t.Keyframes)
	for i, f := range t.Keyframes {
		f.index = i
		f.Prev = t.Keyframes[(i+n-1)%n]
		f.Next = t.Keyframes[(i+1)%n]
	}

	t.frames = nil
	if n < 2 || frameCount == 0 || duration <= 0 {
		return
	}

	t.frames = make([]*FrameData, frameCount+1)
	rate := float64(frameCount) / float64(duration)
	for i, f := range t.Keyframes {
		start := int(math.Round(float64(f.Position) * rate))
		if i == 0 {
			start = 0
		}
		end := len(t.frames)
		if i+1 < n {
			end = int(math.Round(float64(t.Keyframes[i+1].Position) * rate))
		}
		for j := max(start, 0); j < end && j < len(t.frames); j++ {
			t.frames[j] = f
		}
	}
	// Keyframes shorter than one frame can leave holes; carry the previous keyframe forward.
	for j := 1; j < len(t.frames); j++ {
		if t.frames[j] == nil {
			t.frames[j] = t.frames[j-1]
		}
	}
}

// AnimationBuilderOption is a functional option for configuring a clip via NewAnimationData.
type AnimationBuilderOption func(*AnimationData)

// WithPlayTimes sets the clip's default repeat count. Zero loops forever.
//
// Parameters:
//   - playTimes: the repeat count
//
// Returns:
//   - AnimationBuilderOption: a function that applies the repeat count to a clip
func WithPlayTimes(playTimes int) AnimationBuilderOption {
	return func(a *AnimationData) {
		a.PlayTimes = playTimes
	}
}

// WithFadeInTime sets the clip's default cross-fade time.
//
// Parameters:
//   - seconds: the fade time
//
// Returns:
//   - AnimationBuilderOption: a function that applies the fade time to a clip
func WithFadeInTime(seconds float32) AnimationBuilderOption {
	return func(a *AnimationData) {
		a.FadeInTime = seconds
	}
}

// WithScale stretches the clip. Instances play at 1/scale speed.
//
// Parameters:
//   - scale: the stretch factor
//
// Returns:
//   - AnimationBuilderOption: a function that applies the scale to a clip
func WithScale(scale float32) AnimationBuilderOption {
	return func(a *AnimationData) {
		a.Scale = scale
	}
}

// WithPosition sets the clip start in seconds.
//
// Parameters:
//   - position: the clip start
//
// Returns:
//   - AnimationBuilderOption: a function that applies the start position to a clip
func WithPosition(position float32) AnimationBuilderOption {
	return func(a *AnimationData) {
		a.Position = position
	}
}

// WithAsynchrony makes every secondary timeline of the clip keep its own time mapping.
//
// Returns:
//   - AnimationBuilderOption: a function that marks a clip asynchronous
func WithAsynchrony() AnimationBuilderOption {
	return func(a *AnimationData) {
		a.HasAsynchronyTimeline = true
	}
}

// WithActionTimeline sets the clip-level keyframes that carry actions and events.
//
// Parameters:
//   - keyframes: the keyframes in time order
//
// Returns:
//   - AnimationBuilderOption: a function that applies the clip timeline
func WithActionTimeline(keyframes ...*FrameData) AnimationBuilderOption {
	return func(a *AnimationData) {
		a.Timeline = NewTimeline(TimelineKindAnimation, "", keyframes)
	}
}

// WithTimelines adds secondary timelines, dispatched to the bone, slot or extension list by kind.
// Timelines of kind TimelineKindAnimation replace the clip-level timeline.
//
// Parameters:
//   - timelines: the timelines
//
// Returns:
//   - AnimationBuilderOption: a function that applies the timelines
func WithTimelines(timelines ...*TimelineData) AnimationBuilderOption {
	return func(a *AnimationData) {
		for _, t := range timelines {
			switch t.Kind {
			case TimelineKindAnimation:
				a.Timeline = t
			case TimelineKindBone:
				a.BoneTimelines = append(a.BoneTimelines, t)
			case TimelineKindSlot:
				a.SlotTimelines = append(a.SlotTimelines, t)
			case TimelineKindExtension:
				a.ExtensionTimelines = append(a.ExtensionTimelines, t)
			}
		}
	}
}

// NewAnimationData creates a clip, applies options and links every timeline against the
// clip's frame count and duration. A clip built without a clip-level timeline gets an empty one.
//
// Parameters:
//   - name: the clip identifier
//   - duration: the clip length in seconds
//   - frameCount: the number of equal-length frames across duration
//   - options: functional options such as WithPlayTimes or WithTimelines
//
// Returns:
//   - *AnimationData: the clip
func NewAnimationData(name string, duration float32, frameCount uint32, options ...AnimationBuilderOption) *AnimationData {
	a := &AnimationData{
		Name:       name,
		Duration:   duration,
		FrameCount: frameCount,
		PlayTimes:  1,
		Scale:      1,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.Timeline == nil {
		a.Timeline = NewTimeline(TimelineKindAnimation, "", nil)
	}

	a.Timeline.Link(a.FrameCount, a.Duration)
	for _, group := range [][]*TimelineData{a.BoneTimelines, a.SlotTimelines, a.ExtensionTimelines} {
		for _, t := range group {
			t.Link(a.FrameCount, a.Duration)
		}
	}
	return a
}

// Timelines returns every secondary timeline of the clip in binding order: bones, slots, extensions.
//
// Returns:
//   - []*TimelineData: the secondary timelines
func (a *AnimationData) Timelines() []*TimelineData {
	out := make([]*TimelineData, 0, len(a.BoneTimelines)+len(a.SlotTimelines)+len(a.ExtensionTimelines))
	out = append(out, a.BoneTimelines...)
	out = append(out, a.SlotTimelines...)
	return append(out, a.ExtensionTimelines...)
}
