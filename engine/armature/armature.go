package armature

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// armature implements the Armature interface.
type armature struct {
	model model.Model
	name  string

	bones     []Bone
	boneIndex map[string]Bone
	slots     []Slot
	slotIndex map[string]Slot

	display   EventDispatcher
	animation Animator

	actions []*model.ActionData
	events  []*EventObject

	updating bool
}

// Armature is a posed instance of a Model. It owns the bones and slots the animation core
// resolves by name, a staged action list executed at the start of the next tick, and an
// event buffer flushed to its dispatcher at the end of every tick.
//
// An Armature is not safe for concurrent use. Different armatures may be advanced concurrently.
type Armature interface {
	// Name returns the armature name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Model returns the description the armature was built from.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// Bone returns the bone with the given name.
	//
	// Parameters:
	//   - name: the bone name
	//
	// Returns:
	//   - Bone: the bone, or nil if not found
	Bone(name string) Bone

	// Bones returns every bone in hierarchy order.
	//
	// Returns:
	//   - []Bone: the bones
	Bones() []Bone

	// Slot returns the slot with the given name.
	//
	// Parameters:
	//   - name: the slot name
	//
	// Returns:
	//   - Slot: the slot, or nil if not found
	Slot(name string) Slot

	// Slots returns every slot in draw order.
	//
	// Returns:
	//   - []Slot: the slots
	Slots() []Slot

	// AddSlot attaches a new slot and invalidates the animation's bound timelines.
	//
	// Parameters:
	//   - data: the slot description
	//
	// Returns:
	//   - Slot: the new slot
	AddSlot(data *model.SlotData) Slot

	// RemoveSlot detaches the named slot and invalidates the animation's bound timelines.
	//
	// Parameters:
	//   - name: the slot name
	RemoveSlot(name string)

	// Display returns the event dispatcher listeners register on.
	//
	// Returns:
	//   - EventDispatcher: the dispatcher
	Display() EventDispatcher

	// BufferEvent queues an event record for dispatch at the end of the current tick.
	//
	// Parameters:
	//   - e: the record, borrowed with BorrowEvent
	BufferEvent(e *EventObject)

	// BufferAction stages an action for execution at the start of the next tick.
	//
	// Parameters:
	//   - action: the action
	BufferAction(action *model.ActionData)

	// DefaultAnimation returns the clip played by an unnamed Play.
	//
	// Returns:
	//   - *model.AnimationData: the default clip, or nil
	DefaultAnimation() *model.AnimationData

	// Animation returns the attached animation controller.
	//
	// Returns:
	//   - Animator: the controller, or nil
	Animation() Animator

	// SetAnimation attaches an animation controller.
	//
	// Parameters:
	//   - a: the controller
	SetAnimation(a Animator)

	// AdvanceTime runs staged actions, advances the animation and nested armatures by dt,
	// then flushes buffered events. A call made while the armature is already advancing is ignored.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	AdvanceTime(dt float32)
}

var _ Armature = &armature{}

// NewArmature creates an Armature from a Model. Bones and slots are instantiated from the model.
// Panics if m is nil.
//
// Parameters:
//   - m: the rig description
//   - options: functional options such as WithChild or WithDisplay
//
// Returns:
//   - Armature: the newly created armature
func NewArmature(m model.Model, options ...ArmatureBuilderOption) Armature {
	if m == nil {
		panic("armature: NewArmature requires a non-nil model")
	}
	a := &armature{
		model:     m,
		name:      m.Name(),
		boneIndex: make(map[string]Bone),
		slotIndex: make(map[string]Slot),
		display:   NewEventDispatcher(),
	}

	for _, bd := range m.Bones() {
		b := &bone{data: bd, parent: a.boneIndex[bd.Parent]}
		a.bones = append(a.bones, b)
		a.boneIndex[bd.Name] = b
	}
	for _, sd := range m.Slots() {
		a.addSlot(sd)
	}

	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *armature) Name() string {
	return a.name
}

func (a *armature) Model() model.Model {
	return a.model
}

func (a *armature) Bone(name string) Bone {
	return a.boneIndex[name]
}

func (a *armature) Bones() []Bone {
	return a.bones
}

func (a *armature) Slot(name string) Slot {
	return a.slotIndex[name]
}

func (a *armature) Slots() []Slot {
	return a.slots
}

func (a *armature) AddSlot(data *model.SlotData) Slot {
	s := a.addSlot(data)
	a.invalidate()
	return s
}

func (a *armature) RemoveSlot(name string) {
	if _, ok := a.slotIndex[name]; !ok {
		return
	}
	delete(a.slotIndex, name)
	for i, s := range a.slots {
		if s.Name() == name {
			a.slots = append(a.slots[:i], a.slots[i+1:]...)
			break
		}
	}
	a.invalidate()
}

func (a *armature) Display() EventDispatcher {
	return a.display
}

func (a *armature) BufferEvent(e *EventObject) {
	if e == nil {
		return
	}
	e.Armature = a
	a.events = append(a.events, e)
}

func (a *armature) BufferAction(action *model.ActionData) {
	if action == nil {
		return
	}
	a.actions = append(a.actions, action)
}

func (a *armature) DefaultAnimation() *model.AnimationData {
	return a.model.DefaultAnimation()
}

func (a *armature) Animation() Animator {
	return a.animation
}

func (a *armature) SetAnimation(anim Animator) {
	a.animation = anim
}

func (a *armature) AdvanceTime(dt float32) {
	if a.updating {
		return
	}
	a.updating = true
	defer func() {
		a.updating = false
	}()

	if len(a.actions) > 0 {
		actions := a.actions
		a.actions = nil
		if a.animation != nil {
			for _, action := range actions {
				a.animation.ExecuteAction(action)
			}
		}
	}

	if a.animation != nil {
		a.animation.AdvanceTime(dt)
	}

	for _, s := range a.slots {
		if child := s.ChildArmature(); child != nil {
			child.AdvanceTime(dt)
		}
	}

	a.flushEvents()
}

// flushEvents dispatches the buffered events in buffering order and returns them to the pool.
// Events buffered by listeners during the flush wait for the next tick.
func (a *armature) flushEvents() {
	if len(a.events) == 0 {
		return
	}
	events := a.events
	a.events = nil
	for _, e := range events {
		a.display.DispatchEvent(e)
		ReturnEvent(e)
	}
}

func (a *armature) addSlot(data *model.SlotData) Slot {
	if s, ok := a.slotIndex[data.Name]; ok {
		return s
	}
	s := &slot{data: data, bone: a.boneIndex[data.Parent], owner: a}
	a.slots = append(a.slots, s)
	a.slotIndex[data.Name] = s
	return s
}

func (a *armature) invalidate() {
	if a.animation != nil {
		a.animation.InvalidateTimelines()
	}
}
