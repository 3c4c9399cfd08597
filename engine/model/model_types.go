package model

// NoTween is the TweenEasing sentinel for a keyframe that holds its value until the next keyframe.
const NoTween float32 = 100

// --- Timeline Types ---

// TimelineKind identifies what a timeline animates, and therefore which per-frame behavior
// the timeline engine attaches to it.
type TimelineKind int

const (
	// TimelineKindAnimation is the clip-level timeline carrying actions and events.
	// Every clip has exactly one and it governs its instance's play count and completion.
	TimelineKindAnimation TimelineKind = iota

	// TimelineKindBone animates a bone transform.
	TimelineKindBone

	// TimelineKindSlot animates a slot's display and color.
	TimelineKindSlot

	// TimelineKindExtension animates an auxiliary typed payload, such as mesh deformation.
	TimelineKindExtension
)

// String returns the kind name.
func (k TimelineKind) String() string {
	switch k {
	case TimelineKindAnimation:
		return "animation"
	case TimelineKindBone:
		return "bone"
	case TimelineKindSlot:
		return "slot"
	case TimelineKindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// TimelineData is the ordered keyframe sequence for one animated property.
type TimelineData struct {
	// Kind is what this timeline animates.
	Kind TimelineKind

	// Name is the target bone or slot name. Empty for the clip-level timeline.
	Name string

	// Scale stretches this timeline relative to its clip. A scale of 2 plays at half speed.
	// Zero is treated as 1.
	Scale float32

	// Offset shifts this timeline's start, as a fraction of the clip duration.
	Offset float32

	// Asynchronous marks a timeline that keeps its own time mapping instead of
	// mirroring the clip's governing timeline.
	Asynchronous bool

	// Keyframes are the distinct keyframes in time order, linked circularly through Prev and Next.
	Keyframes []*FrameData

	// frames is the uniform per-frame lookup table. Entry i is the keyframe covering frame i.
	frames []*FrameData
}

// KeyframeCount returns the number of distinct keyframes.
//
// Returns:
//   - int: the keyframe count
func (t *TimelineData) KeyframeCount() int {
	return len(t.Keyframes)
}

// FrameAt returns the keyframe covering the given frame index. The index is clamped to the
// table bounds. Returns nil for a timeline without keyframes.
//
// Parameters:
//   - index: the uniform frame index
//
// Returns:
//   - *FrameData: the covering keyframe, or nil
func (t *TimelineData) FrameAt(index int) *FrameData {
	if len(t.frames) == 0 {
		if len(t.Keyframes) == 0 {
			return nil
		}
		return t.Keyframes[0]
	}
	if index < 0 {
		index = 0
	}
	if index >= len(t.frames) {
		index = len(t.frames) - 1
	}
	return t.frames[index]
}

// FrameData is a single keyframe.
type FrameData struct {
	// Position is the keyframe start in seconds, relative to the clip start.
	Position float32

	// Duration is the keyframe length in seconds.
	Duration float32

	// TweenEasing selects a closed-form easing shape, or NoTween for a hold.
	// Zero is linear.
	TweenEasing float32

	// Curve is an optional custom easing curve as flattened (x, y) sample pairs.
	Curve []float32

	// Actions are staged on their targets when the keyframe is crossed.
	Actions []*ActionData

	// Events are emitted when the keyframe is crossed.
	Events []*EventData

	// Extension is the typed payload for extension timelines.
	Extension *ExtensionFrameData

	// Prev and Next link the keyframes of a timeline in a ring.
	Prev, Next *FrameData

	index int
}

// Index returns the keyframe's position in its timeline's Keyframes.
func (f *FrameData) Index() int {
	return f.index
}

// HasTween reports whether the keyframe interpolates toward its successor,
// either through an easing scalar or a curve.
//
// Returns:
//   - bool: true if the keyframe tweens
func (f *FrameData) HasTween() bool {
	return f.TweenEasing != NoTween || len(f.Curve) > 0
}

// ExtensionFrameData is the typed payload of an extension keyframe.
type ExtensionFrameData struct {
	// Type is the discrete payload type tag. Payloads of different types never interpolate.
	Type int

	// Tweens is the numeric payload.
	Tweens []float32

	// Keys is the key signature of the payload, e.g. the vertex indices it covers.
	Keys []int
}

// --- Action and Event Types ---

// ActionType identifies what a staged keyframe action does to its target rig.
type ActionType int

const (
	// ActionPlay plays AnimationName (or resumes when empty).
	ActionPlay ActionType = iota

	// ActionStop stops AnimationName (or the whole controller when empty).
	ActionStop

	// ActionGotoAndPlay restarts AnimationName from its start.
	ActionGotoAndPlay

	// ActionGotoAndStop seeks AnimationName to its start and stops it.
	ActionGotoAndStop

	// ActionFadeIn fades AnimationName in using its default fade time.
	ActionFadeIn

	// ActionFadeOut fades AnimationName out using its default fade time.
	ActionFadeOut
)

// ActionData is a command attached to a keyframe.
type ActionData struct {
	// Type is the command.
	Type ActionType

	// AnimationName is the clip the command applies to.
	AnimationName string

	// Slot targets the nested rig of the named slot.
	Slot string

	// Bone targets the nested rigs of every slot.
	Bone string
}

// EventType identifies the kind of a keyframe event.
type EventType int

const (
	// EventTypeFrame is a generic user frame event.
	EventTypeFrame EventType = iota

	// EventTypeSound is a sound cue.
	EventTypeSound
)

// EventData is an event attached to a keyframe.
type EventData struct {
	// Type is the event kind.
	Type EventType

	// Name is the user-facing event name, e.g. "footstep".
	Name string

	// Bone optionally names the bone the event refers to.
	Bone string

	// Slot optionally names the slot the event refers to.
	Slot string

	// Data is an optional user payload carried through to the event record.
	Data any
}

// --- Clip Types ---

// AnimationData is an immutable animation clip, shared by every instance that plays it.
type AnimationData struct {
	// Name is the clip identifier.
	Name string

	// Duration is the clip length in seconds.
	Duration float32

	// FrameCount is the number of equal-length frames across Duration.
	FrameCount uint32

	// PlayTimes is the default repeat count. Zero loops forever.
	PlayTimes int

	// FadeInTime is the default cross-fade time in seconds.
	FadeInTime float32

	// Scale stretches the clip. Instances play at 1/Scale speed. Zero is treated as 1.
	Scale float32

	// Position is the clip start in seconds.
	Position float32

	// HasAsynchronyTimeline makes every secondary timeline keep its own time mapping.
	HasAsynchronyTimeline bool

	// Timeline is the clip-level timeline carrying actions and events.
	Timeline *TimelineData

	// BoneTimelines animate bones, in binding order.
	BoneTimelines []*TimelineData

	// SlotTimelines animate slots, in binding order.
	SlotTimelines []*TimelineData

	// ExtensionTimelines animate extension payloads of slots, in binding order.
	ExtensionTimelines []*TimelineData
}

// --- Rig Types ---

// BoneData describes one bone of a rig.
type BoneData struct {
	// Name is the bone identifier.
	Name string

	// Parent is the parent bone name, empty for a root bone.
	Parent string
}

// SlotData describes one slot of a rig.
type SlotData struct {
	// Name is the slot identifier.
	Name string

	// Parent is the bone the slot is attached to.
	Parent string

	// InheritAnimation makes a nested rig in this slot follow clips the parent rig plays.
	InheritAnimation bool
}
