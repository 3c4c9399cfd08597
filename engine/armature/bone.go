package armature

import "github.com/Carmen-Shannon/oxy-anim/engine/model"

// bone implements the Bone interface.
type bone struct {
	data   *model.BoneData
	parent Bone
}

// Bone is a node of an armature's hierarchy.
type Bone interface {
	// Name returns the bone name.
	Name() string

	// Data returns the bone description.
	Data() *model.BoneData

	// Parent returns the parent bone, or nil for a root bone.
	Parent() Bone
}

var _ Bone = &bone{}

func (b *bone) Name() string {
	return b.data.Name
}

func (b *bone) Data() *model.BoneData {
	return b.data
}

func (b *bone) Parent() Bone {
	return b.parent
}

// slot implements the Slot interface.
type slot struct {
	data  *model.SlotData
	bone  Bone
	owner *armature
	child Armature
}

// Slot is an attachment point on a bone. A slot may host a nested armature.
type Slot interface {
	// Name returns the slot name.
	Name() string

	// Data returns the slot description.
	Data() *model.SlotData

	// Bone returns the bone the slot is attached to, or nil.
	Bone() Bone

	// InheritAnimation reports whether the nested armature follows clips the owner plays.
	InheritAnimation() bool

	// ChildArmature returns the nested armature, or nil.
	ChildArmature() Armature

	// SetChildArmature replaces the nested armature. Pass nil to detach it.
	//
	// Parameters:
	//   - child: the nested armature
	SetChildArmature(child Armature)
}

var _ Slot = &slot{}

func (s *slot) Name() string {
	return s.data.Name
}

func (s *slot) Data() *model.SlotData {
	return s.data
}

func (s *slot) Bone() Bone {
	return s.bone
}

func (s *slot) InheritAnimation() bool {
	return s.data.InheritAnimation
}

func (s *slot) ChildArmature() Armature {
	return s.child
}

func (s *slot) SetChildArmature(child Armature) {
	if s.child == child {
		return
	}
	s.child = child
	if s.owner != nil {
		s.owner.invalidate()
	}
}
