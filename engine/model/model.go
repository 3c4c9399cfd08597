package model

import (
	"sort"
	"sync"
)

// model implements the Model interface.
type model struct {
	mu *sync.Mutex

	name             string
	bones            []*BoneData
	slots            []*SlotData
	animations       map[string]*AnimationData
	animationNames   []string
	defaultAnimation string
}

// Model is the immutable-after-load description of a rig: its bones, slots and the clips
// registered for it. A Model is shared by every armature built from it.
type Model interface {
	// Name returns the rig name.
	//
	// Returns:
	//   - string: the rig name
	Name() string

	// Bones returns the bone descriptions in hierarchy order.
	//
	// Returns:
	//   - []*BoneData: the bones
	Bones() []*BoneData

	// Slots returns the slot descriptions in draw order.
	//
	// Returns:
	//   - []*SlotData: the slots
	Slots() []*SlotData

	// Animation returns the clip registered under name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationData: the clip, or nil if none is registered under name
	Animation(name string) *AnimationData

	// Animations returns a copy of the clip registry keyed by clip name.
	//
	// Returns:
	//   - map[string]*AnimationData: the clips
	Animations() map[string]*AnimationData

	// AnimationNames returns the registered clip names in registration order.
	//
	// Returns:
	//   - []string: the clip names
	AnimationNames() []string

	// AddAnimation registers a clip, replacing any clip with the same name.
	// The first clip added becomes the default animation if none is set.
	//
	// Parameters:
	//   - a: the clip to register
	AddAnimation(a *AnimationData)

	// DefaultAnimation returns the clip played by an unnamed Play, or nil if the rig has no clips.
	//
	// Returns:
	//   - *AnimationData: the default clip, or nil
	DefaultAnimation() *AnimationData

	// SetDefaultAnimation designates the clip played by an unnamed Play.
	//
	// Parameters:
	//   - name: the clip name
	SetDefaultAnimation(name string)
}

var _ Model = &model{}

// NewModel creates a new Model with the given name and options.
//
// Parameters:
//   - name: the rig name
//   - options: functional options such as WithBones, WithSlots or WithAnimations
//
// Returns:
//   - Model: the newly created model
func NewModel(name string, options ...ModelBuilderOption) Model {
	m := &model{
		mu:         &sync.Mutex{},
		name:       name,
		animations: make(map[string]*AnimationData),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Bones() []*BoneData {
	return m.bones
}

func (m *model) Slots() []*SlotData {
	return m.slots
}

func (m *model) Animation(name string) *AnimationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.animations[name]
}

func (m *model) Animations() map[string]*AnimationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]*AnimationData, len(m.animations))
	for k, v := range m.animations {
		cp[k] = v
	}
	return cp
}

func (m *model) AnimationNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.animationNames...)
}

func (m *model) AddAnimation(a *AnimationData) {
	if a == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animations[a.Name]; !ok {
		m.animationNames = append(m.animationNames, a.Name)
	}
	m.animations[a.Name] = a
	if m.defaultAnimation == "" {
		m.defaultAnimation = a.Name
	}
}

func (m *model) DefaultAnimation() *AnimationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.animations[m.defaultAnimation]
}

func (m *model) SetDefaultAnimation(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultAnimation = name
}

// SortedNames returns the keys of a clip mapping in lexical order.
//
// Parameters:
//   - animations: a clip mapping
//
// Returns:
//   - []string: the sorted clip names
func SortedNames(animations map[string]*AnimationData) []string {
	names := make([]string, 0, len(animations))
	for name := range animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
