package armature

// ArmatureBuilderOption is a functional option for configuring an Armature.
type ArmatureBuilderOption func(*armature)

// WithChild nests an armature in the named slot. Unknown slot names are ignored.
//
// Parameters:
//   - slotName: the host slot
//   - child: the nested armature
//
// Returns:
//   - ArmatureBuilderOption: option function to apply
func WithChild(slotName string, child Armature) ArmatureBuilderOption {
	return func(a *armature) {
		if s, ok := a.slotIndex[slotName].(*slot); ok {
			s.child = child
		}
	}
}

// WithDisplay replaces the default event dispatcher.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - ArmatureBuilderOption: option function to apply
func WithDisplay(d EventDispatcher) ArmatureBuilderOption {
	return func(a *armature) {
		if d != nil {
			a.display = d
		}
	}
}

// WithName overrides the armature name, which defaults to the model name.
//
// Parameters:
//   - name: the armature name
//
// Returns:
//   - ArmatureBuilderOption: option function to apply
func WithName(name string) ArmatureBuilderOption {
	return func(a *armature) {
		a.name = name
	}
}
