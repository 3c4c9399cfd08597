package animation

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/pool"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/rs/zerolog"
)

var (
	statePool = pool.NewPool(newAnimationState, pool.WithReset((*animationState).reset))

	timelinePool = pool.NewPool(timeline.NewTimelineState, pool.WithReset(func(t timeline.TimelineState) {
		t.Reset()
	}))

	// emptyActionTimeline stands in for the governing track of clips built without one.
	emptyActionTimeline = model.NewTimeline(model.TimelineKindAnimation, "", nil)
)

// animation implements the Animation interface.
type animation struct {
	armature armature.Armature
	logger   zerolog.Logger

	timeScale     float32
	playing       bool
	timelineDirty bool

	// time is the start time applied to the next instance faded in
	time float32

	lastState      *animationState
	states         []*animationState
	animations     map[string]*model.AnimationData
	animationNames []string
}

// Animation is the animation controller of one armature. It owns the active instances ordered
// by layer, applies fade-out policies when new clips fade in, and on every tick distributes the
// blend weight across layers: lower layers take weight first and higher layers receive what is left.
//
// An Animation is driven by its armature's AdvanceTime and is not safe for concurrent use.
type Animation interface {
	armature.Animator

	// Armature returns the armature the controller is attached to.
	//
	// Returns:
	//   - armature.Armature: the armature
	Armature() armature.Armature

	// Play plays a clip from its start, fading everything else out immediately.
	// With an empty name it plays the armature's default clip if nothing has played yet,
	// resumes if the controller is stopped, or restarts the last clip.
	//
	// Parameters:
	//   - name: the clip name, or empty
	//   - playTimes: the repeat count, negative for the clip's default
	//
	// Returns:
	//   - AnimationState: the instance, or nil if no clip could be played
	Play(name string, playTimes int) AnimationState

	// FadeIn creates an instance of the named clip and cross-fades it in.
	//
	// Parameters:
	//   - name: the clip name
	//   - options: functional options such as WithFadeInTime, WithLayer or WithFadeOutMode
	//
	// Returns:
	//   - AnimationState: the new instance, or nil if the clip is not registered
	FadeIn(name string, options ...FadeInOption) AnimationState

	// FadeOut fades out the instances selected by mode.
	//
	// Parameters:
	//   - fadeOutTime: the fade time in seconds
	//   - layer: the layer compared by the layer modes
	//   - group: the group compared by the group modes
	//   - mode: the selection mode
	//   - pausePlayhead: true to freeze the faded instances
	FadeOut(fadeOutTime float32, layer int, group string, mode FadeOutMode, pausePlayhead bool)

	// Stop freezes the named instance, or the whole controller when name is empty.
	//
	// Parameters:
	//   - name: the clip name, or empty
	Stop(name string)

	// GotoAndPlayByTime plays a clip starting at time seconds.
	//
	// Parameters:
	//   - name: the clip name
	//   - time: the start time in seconds
	//   - playTimes: the repeat count, negative for the clip's default
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndPlayByTime(name string, time float32, playTimes int) AnimationState

	// GotoAndPlayByFrame plays a clip starting at the given frame.
	//
	// Parameters:
	//   - name: the clip name
	//   - frame: the start frame
	//   - playTimes: the repeat count, negative for the clip's default
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndPlayByFrame(name string, frame uint32, playTimes int) AnimationState

	// GotoAndPlayByProgress plays a clip starting at a fraction of its duration.
	//
	// Parameters:
	//   - name: the clip name
	//   - progress: the start progress, negative values clamp to 0
	//   - playTimes: the repeat count, negative for the clip's default
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndPlayByProgress(name string, progress float32, playTimes int) AnimationState

	// GotoAndStopByTime shows a clip frozen at time seconds.
	//
	// Parameters:
	//   - name: the clip name
	//   - time: the time in seconds
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndStopByTime(name string, time float32) AnimationState

	// GotoAndStopByFrame shows a clip frozen at the given frame.
	//
	// Parameters:
	//   - name: the clip name
	//   - frame: the frame
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndStopByFrame(name string, frame uint32) AnimationState

	// GotoAndStopByProgress shows a clip frozen at a fraction of its duration.
	//
	// Parameters:
	//   - name: the clip name
	//   - progress: the progress
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	GotoAndStopByProgress(name string, progress float32) AnimationState

	// State returns the first active instance of the named clip.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - AnimationState: the instance, or nil
	State(name string) AnimationState

	// States returns the active instances in layer order.
	//
	// Returns:
	//   - []AnimationState: the instances
	States() []AnimationState

	// IsPlaying reports whether the controller is running.
	IsPlaying() bool

	// IsCompleted reports whether the last faded-in instance and every other instance completed.
	// It is true when nothing has played.
	IsCompleted() bool

	// LastAnimationName returns the clip name of the last faded-in instance, or empty.
	LastAnimationName() string

	// LastAnimationState returns the last faded-in instance, or nil.
	LastAnimationState() AnimationState

	// AnimationNames returns the registered clip names in lexical order.
	AnimationNames() []string

	// Animations returns a copy of the clip registry.
	Animations() map[string]*model.AnimationData

	// SetAnimations replaces the clip registry if it differs from the current one.
	//
	// Parameters:
	//   - animations: the clips keyed by name
	SetAnimations(animations map[string]*model.AnimationData)

	// TimeScale returns the multiplier applied to every tick.
	TimeScale() float32

	// SetTimeScale sets the multiplier applied to every tick.
	//
	// Parameters:
	//   - scale: the multiplier
	SetTimeScale(scale float32)
}

var _ Animation = &animation{}

// NewAnimation creates a controller for arm, registers the clips of arm's model and attaches
// itself with arm.SetAnimation. Panics if arm is nil.
//
// Parameters:
//   - arm: the armature to animate
//   - options: functional options such as WithLogger or WithTimeScale
//
// Returns:
//   - Animation: the newly created controller
func NewAnimation(arm armature.Armature, options ...AnimationBuilderOption) Animation {
	if arm == nil {
		panic("animation: NewAnimation requires a non-nil armature")
	}
	a := &animation{
		armature:   arm,
		logger:     zerolog.Nop(),
		timeScale:  1,
		animations: make(map[string]*model.AnimationData),
	}
	if m := arm.Model(); m != nil {
		a.SetAnimations(m.Animations())
	}

	for _, opt := range options {
		opt(a)
	}

	arm.SetAnimation(a)
	return a
}

func (a *animation) Armature() armature.Armature {
	return a.armature
}

func (a *animation) Play(name string, playTimes int) AnimationState {
	switch {
	case name != "":
	case a.lastState == nil:
		def := a.armature.DefaultAnimation()
		if def == nil {
			return nil
		}
		name = def.Name
	case !a.playing:
		a.playing = true
		return a.lastState
	default:
		name = a.lastState.name
	}
	return a.FadeIn(name,
		WithFadeInTime(0),
		WithPlayTimes(playTimes),
		WithFadeOutMode(FadeOutAll),
	)
}

func (a *animation) FadeIn(name string, options ...FadeInOption) AnimationState {
	cfg := defaultFadeIn()
	for _, opt := range options {
		opt(&cfg)
	}
	s := a.fadeIn(name, cfg, nil)
	if s == nil {
		return nil
	}
	return s
}

func (a *animation) fadeIn(name string, cfg fadeInConfig, visited map[armature.Armature]struct{}) *animationState {
	clip := a.animations[name]
	if clip == nil {
		a.time = 0
		a.logger.Debug().Str("armature", a.armature.Name()).Str("animation", name).Msg("fade in of unknown animation ignored")
		return nil
	}

	a.playing = true

	if common.IsNaN(cfg.fadeInTime) || cfg.fadeInTime < 0 {
		cfg.fadeInTime = 0
		if a.lastState != nil {
			cfg.fadeInTime = clip.FadeInTime
		}
	}
	if cfg.playTimes < 0 {
		cfg.playTimes = clip.PlayTimes
	}

	a.FadeOut(cfg.fadeInTime, cfg.layer, cfg.group, cfg.fadeOutMode, cfg.pauseFadeOut)

	scale := clip.Scale
	if scale == 0 {
		scale = 1
	}

	s := statePool.Borrow()
	s.layer = cfg.layer
	s.group = cfg.group
	s.additive = cfg.additive
	s.displayControl = cfg.displayControl
	s.fadeIn(a.armature, clip, cfg.playTimes, a.time, 1/scale, cfg.fadeInTime, cfg.pauseFadeIn)

	a.lastState = s
	a.states = append(a.states, s)
	a.time = 0
	if len(a.states) > 1 {
		sort.SliceStable(a.states, func(i, j int) bool {
			return a.states[i].layer < a.states[j].layer
		})
	}

	if visited == nil {
		visited = make(map[armature.Armature]struct{})
	}
	visited[a.armature] = struct{}{}
	for _, slot := range a.armature.Slots() {
		if !slot.InheritAnimation() {
			continue
		}
		child := slot.ChildArmature()
		if child == nil || child.Animation() == nil {
			continue
		}
		if anim := child.Animation(); anim.HasAnimation(name) && !anim.HasState(name) {
			anim.Inherit(name, visited)
		}
	}

	if cfg.fadeInTime == 0 {
		a.armature.AdvanceTime(0)
	}

	return s
}

func (a *animation) Inherit(name string, visited map[armature.Armature]struct{}) {
	if _, ok := visited[a.armature]; ok {
		a.logger.Debug().Str("armature", a.armature.Name()).Str("animation", name).Msg("inherited fade in skipped, armature already reached")
		return
	}
	a.fadeIn(name, defaultFadeIn(), visited)
}

func (a *animation) FadeOut(fadeOutTime float32, layer int, group string, mode FadeOutMode, pausePlayhead bool) {
	for _, s := range a.states {
		switch mode {
		case FadeOutSameLayer:
			if s.layer != layer {
				continue
			}
		case FadeOutSameGroup:
			if s.group != group {
				continue
			}
		case FadeOutSameLayerAndGroup:
			if s.layer != layer || s.group != group {
				continue
			}
		case FadeOutAll:
		default:
			return
		}
		s.FadeOut(fadeOutTime, pausePlayhead)
	}
}

func (a *animation) Stop(name string) {
	if name == "" {
		a.playing = false
		return
	}
	if s := a.state(name); s != nil {
		s.Stop()
	}
}

func (a *animation) GotoAndPlayByTime(name string, time float32, playTimes int) AnimationState {
	a.time = time
	return a.FadeIn(name, WithFadeInTime(0), WithPlayTimes(playTimes), WithFadeOutMode(FadeOutAll))
}

func (a *animation) GotoAndPlayByFrame(name string, frame uint32, playTimes int) AnimationState {
	if clip := a.animations[name]; clip != nil && clip.FrameCount > 0 {
		a.time = clip.Duration * float32(frame) / float32(clip.FrameCount)
	}
	return a.FadeIn(name, WithFadeInTime(0), WithPlayTimes(playTimes), WithFadeOutMode(FadeOutAll))
}

func (a *animation) GotoAndPlayByProgress(name string, progress float32, playTimes int) AnimationState {
	if clip := a.animations[name]; clip != nil {
		a.time = clip.Duration * max(progress, 0)
	}
	return a.FadeIn(name, WithFadeInTime(0), WithPlayTimes(playTimes), WithFadeOutMode(FadeOutAll))
}

func (a *animation) GotoAndStopByTime(name string, time float32) AnimationState {
	return stopped(a.GotoAndPlayByTime(name, time, 1))
}

func (a *animation) GotoAndStopByFrame(name string, frame uint32) AnimationState {
	return stopped(a.GotoAndPlayByFrame(name, frame, 1))
}

func (a *animation) GotoAndStopByProgress(name string, progress float32) AnimationState {
	return stopped(a.GotoAndPlayByProgress(name, progress, 1))
}

func stopped(s AnimationState) AnimationState {
	if s != nil {
		s.Stop()
	}
	return s
}

func (a *animation) HasAnimation(name string) bool {
	_, ok := a.animations[name]
	return ok
}

func (a *animation) HasState(name string) bool {
	return a.state(name) != nil
}

func (a *animation) State(name string) AnimationState {
	if s := a.state(name); s != nil {
		return s
	}
	return nil
}

func (a *animation) state(name string) *animationState {
	for _, s := range a.states {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (a *animation) States() []AnimationState {
	out := make([]AnimationState, len(a.states))
	for i, s := range a.states {
		out[i] = s
	}
	return out
}

func (a *animation) IsPlaying() bool {
	return a.playing
}

func (a *animation) IsCompleted() bool {
	if a.lastState == nil {
		return true
	}
	if !a.lastState.IsCompleted() {
		return false
	}
	for _, s := range a.states {
		if !s.IsCompleted() {
			return false
		}
	}
	return true
}

func (a *animation) LastAnimationName() string {
	if a.lastState == nil {
		return ""
	}
	return a.lastState.name
}

func (a *animation) LastAnimationState() AnimationState {
	if a.lastState == nil {
		return nil
	}
	return a.lastState
}

func (a *animation) AnimationNames() []string {
	return append([]string(nil), a.animationNames...)
}

func (a *animation) Animations() map[string]*model.AnimationData {
	cp := make(map[string]*model.AnimationData, len(a.animations))
	for k, v := range a.animations {
		cp[k] = v
	}
	return cp
}

func (a *animation) SetAnimations(animations map[string]*model.AnimationData) {
	if sameAnimations(a.animations, animations) {
		return
	}
	a.animations = make(map[string]*model.AnimationData, len(animations))
	for k, v := range animations {
		a.animations[k] = v
	}
	a.animationNames = model.SortedNames(a.animations)
}

func sameAnimations(a, b map[string]*model.AnimationData) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func (a *animation) TimeScale() float32 {
	return a.timeScale
}

func (a *animation) SetTimeScale(scale float32) {
	a.timeScale = scale
}

func (a *animation) InvalidateTimelines() {
	a.timelineDirty = true
}

func (a *animation) ExecuteAction(action *model.ActionData) {
	switch action.Type {
	case model.ActionPlay:
		a.Play(action.AnimationName, -1)
	case model.ActionStop:
		a.Stop(action.AnimationName)
	case model.ActionGotoAndPlay:
		a.GotoAndPlayByTime(action.AnimationName, 0, -1)
	case model.ActionGotoAndStop:
		a.GotoAndStopByTime(action.AnimationName, 0)
	case model.ActionFadeIn:
		a.FadeIn(action.AnimationName)
	case model.ActionFadeOut:
		if s := a.state(action.AnimationName); s != nil {
			s.FadeOut(s.clip.FadeInTime, false)
		}
	}
}

func (a *animation) AdvanceTime(dt float32) {
	if !a.playing {
		return
	}
	dt = common.Abs(dt) * a.timeScale

	switch count := len(a.states); {
	case count == 1:
		s := a.states[0]
		if s.IsFadeOutComplete() {
			a.evict(s)
			a.states = a.states[:0]
			a.lastState = nil
		} else {
			if a.timelineDirty {
				s.bindTimelines()
			}
			s.advanceTime(dt, 1, 0)
		}

	case count > 1:
		prevLayer := a.states[0].layer
		weightLeft := float32(1)
		layerTotalWeight := float32(0)
		layerIndex := 1
		r := 0

		for i := 0; i < count; i++ {
			s := a.states[i]
			if s.IsFadeOutComplete() {
				r++
				if a.lastState == s {
					a.lastState = nil
					if i >= r {
						a.lastState = a.states[i-r]
					}
				}
				a.evict(s)
				continue
			}

			if r > 0 {
				a.states[i-r] = s
			}

			if s.layer != prevLayer {
				prevLayer = s.layer
				weightLeft = max(weightLeft-layerTotalWeight, 0)
				layerTotalWeight = 0
			}

			if a.timelineDirty {
				s.bindTimelines()
			}
			s.advanceTime(dt, weightLeft, layerIndex)

			if s.weightResult != 0 {
				layerTotalWeight += s.weightResult
				layerIndex++
			}
		}

		if r > 0 {
			clear(a.states[count-r:])
			a.states = a.states[:count-r]
		}
	}

	a.timelineDirty = false
}

func (a *animation) evict(s *animationState) {
	a.logger.Debug().Str("armature", a.armature.Name()).Str("animation", s.name).Int("layer", s.layer).Msg("animation state released")
	s.release()
	statePool.Return(s)
}

func (a *animation) Reset() {
	a.playing = false
	a.lastState = nil
	for _, s := range a.states {
		a.evict(s)
	}
	clear(a.states)
	a.states = a.states[:0]
}
