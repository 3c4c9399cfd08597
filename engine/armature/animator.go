package armature

import "github.com/Carmen-Shannon/oxy-anim/engine/model"

// Animator is the animation controller surface an armature drives. It is implemented by
// the animation package and attached to an armature with SetAnimation.
type Animator interface {
	// AdvanceTime advances every playing instance by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	AdvanceTime(dt float32)

	// HasAnimation reports whether a clip is registered under name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: true if the clip is registered
	HasAnimation(name string) bool

	// HasState reports whether an instance of the named clip is active.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: true if an instance exists
	HasState(name string) bool

	// Inherit fades the named clip in on behalf of a parent armature.
	// visited holds the armatures already reached during this propagation.
	//
	// Parameters:
	//   - name: the clip name
	//   - visited: armatures already reached
	Inherit(name string, visited map[Armature]struct{})

	// ExecuteAction runs a keyframe action staged on the owning armature.
	//
	// Parameters:
	//   - action: the action
	ExecuteAction(action *model.ActionData)

	// InvalidateTimelines marks the bound timelines stale after the armature's bones or slots change.
	InvalidateTimelines()

	// Reset stops playback and releases every instance.
	Reset()
}
