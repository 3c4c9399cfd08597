package animation

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
)

// minFadeProgress keeps a fade-out from dividing by a zero progress.
const minFadeProgress float32 = 0.000001

// fade states
const (
	fadingIn   = -1
	fadeSteady = 0
	fadingOut  = 1
)

// animationState implements the AnimationState interface.
type animationState struct {
	armature armature.Armature
	clip     *model.AnimationData
	name     string

	layer          int
	group          string
	layerIndex     int
	additive       bool
	displayControl bool

	playTimes       int
	position        float32
	duration        float32
	timeScale       float32
	weight          float32
	autoFadeOutTime float32
	time            float32
	playing         bool
	pauseFadeIn     bool

	fadeState       int
	subFadeState    int
	fadeTime        float32
	fadeTotalTime   float32
	fadeProgress    float32
	fadeOutComplete bool
	weightResult    float32

	governor  timeline.TimelineState
	timelines []timeline.TimelineState
}

// AnimationState is one playing instance of a clip. Instances are created by Animation.FadeIn
// and released by the controller once their fade-out completes, so a handle must not be used
// after IsFadeOutComplete reports true.
type AnimationState interface {
	armature.StateInfo

	// Clip returns the clip being played.
	//
	// Returns:
	//   - *model.AnimationData: the clip
	Clip() *model.AnimationData

	// Play resumes the playhead.
	Play()

	// Stop freezes the playhead. Fades continue.
	Stop()

	// IsPlaying reports whether the playhead is running and the instance has not completed.
	//
	// Returns:
	//   - bool: true while playing
	IsPlaying() bool

	// IsCompleted reports whether the governing timeline finished its final repetition.
	//
	// Returns:
	//   - bool: true once complete
	IsCompleted() bool

	// FadeOut starts fading the instance out. A non-positive time completes the fade immediately.
	//
	// Parameters:
	//   - fadeOutTime: the fade time in seconds
	//   - pausePlayhead: true to freeze the playhead while fading
	FadeOut(fadeOutTime float32, pausePlayhead bool)

	// IsFadeIn reports whether the instance is fading in.
	IsFadeIn() bool

	// IsFadeOut reports whether the instance is fading out.
	IsFadeOut() bool

	// IsFadeComplete reports whether the instance is neither fading in nor out.
	IsFadeComplete() bool

	// IsFadeOutComplete reports whether the fade-out finished and the instance awaits release.
	IsFadeOutComplete() bool

	// FadeProgress returns the fade factor in [0, 1] applied to the weight.
	FadeProgress() float32

	// Weight returns the instance's own blend weight.
	Weight() float32

	// SetWeight sets the instance's own blend weight.
	//
	// Parameters:
	//   - weight: the blend weight
	SetWeight(weight float32)

	// WeightResult returns the weight the instance contributed on the last tick.
	WeightResult() float32

	// LayerIndex returns the ordinal among weighted instances assigned on the last tick.
	LayerIndex() int

	// Additive reports whether the instance blends additively.
	Additive() bool

	// DisplayControl reports whether the instance drives slot display changes.
	DisplayControl() bool

	// TimeScale returns the playback speed multiplier.
	TimeScale() float32

	// SetTimeScale sets the playback speed multiplier.
	//
	// Parameters:
	//   - scale: the multiplier
	SetTimeScale(scale float32)

	// AutoFadeOutTime returns the fade time used once the instance completes, or a negative value when disabled.
	AutoFadeOutTime() float32

	// SetAutoFadeOutTime makes the instance fade out by itself once complete. A negative value disables it.
	//
	// Parameters:
	//   - seconds: the fade time
	SetAutoFadeOutTime(seconds float32)

	// PlayTimes returns the resolved repeat count. Zero loops forever.
	PlayTimes() int

	// CurrentPlayTimes returns the number of completed repetitions.
	CurrentPlayTimes() int

	// CurrentTime returns the clip-local time of the governing timeline.
	CurrentTime() float32

	// SetCurrentTime seeks within the current repetition without firing crossed keyframes.
	//
	// Parameters:
	//   - seconds: the clip-local time
	SetCurrentTime(seconds float32)

	// TotalTime returns the played duration of one repetition.
	TotalTime() float32

	// Timelines returns the bound secondary timelines pose application reads.
	//
	// Returns:
	//   - []timeline.TimelineState: the timelines in binding order
	Timelines() []timeline.TimelineState
}

var _ AnimationState = &animationState{}
var _ timeline.Instance = &animationState{}

func newAnimationState() *animationState {
	s := &animationState{}
	s.reset()
	return s
}

func (s *animationState) reset() {
	*s = animationState{
		timeScale:       1,
		weight:          1,
		autoFadeOutTime: -1,
		displayControl:  true,
	}
}

// fadeIn binds the instance to a clip and seeks it to time.
func (s *animationState) fadeIn(arm armature.Armature, clip *model.AnimationData, playTimes int, time, timeScale, fadeInTime float32, pauseFadeIn bool) {
	s.armature = arm
	s.clip = clip
	s.name = clip.Name
	s.playTimes = playTimes
	s.position = clip.Position
	s.duration = clip.Duration
	s.time = time
	s.timeScale = timeScale
	s.playing = true
	s.pauseFadeIn = pauseFadeIn

	s.fadeTotalTime = fadeInTime
	s.fadeState = fadingIn
	s.subFadeState = -1
	s.fadeTime = 0
	s.fadeProgress = 0

	governing := clip.Timeline
	if governing == nil {
		governing = emptyActionTimeline
	}
	s.governor = timelinePool.Borrow()
	s.governor.FadeIn(s.binding(nil), governing, s.time)
	s.bindTimelines()
}

func (s *animationState) binding(governor timeline.TimelineState) timeline.Binding {
	return timeline.Binding{
		Armature: s.armature,
		State:    s,
		Clip:     s.clip,
		Position: s.position,
		Duration: s.duration,
		Governor: governor,
	}
}

// bindTimelines binds a timeline for every clip track whose target exists on the armature and
// releases bound timelines whose target is gone. Binding order follows the clip.
func (s *animationState) bindTimelines() {
	bound := make(map[*model.TimelineData]timeline.TimelineState, len(s.timelines))
	for _, ts := range s.timelines {
		bound[ts.Data()] = ts
	}

	timelines := s.timelines[:0]
	for _, data := range s.clip.Timelines() {
		ts, ok := bound[data]
		if data == nil || !s.hasTarget(data) {
			continue
		}
		if ok {
			delete(bound, data)
		} else {
			ts = timelinePool.Borrow()
			ts.FadeIn(s.binding(s.governor), data, s.time)
		}
		timelines = append(timelines, ts)
	}
	for _, ts := range bound {
		timelinePool.Return(ts)
	}
	s.timelines = timelines
}

func (s *animationState) hasTarget(data *model.TimelineData) bool {
	switch data.Kind {
	case model.TimelineKindBone:
		return s.armature.Bone(data.Name) != nil
	case model.TimelineKindSlot, model.TimelineKindExtension:
		return s.armature.Slot(data.Name) != nil
	default:
		return false
	}
}

// release returns the bound timelines to their pool.
func (s *animationState) release() {
	if s.governor != nil {
		timelinePool.Return(s.governor)
		s.governor = nil
	}
	for _, ts := range s.timelines {
		timelinePool.Return(ts)
	}
	s.timelines = nil
}

// advanceTime advances fades, the playhead and every bound timeline, then records the weight
// the instance contributes out of weightLeft.
func (s *animationState) advanceTime(dt, weightLeft float32, layerIndex int) {
	s.layerIndex = layerIndex

	if s.fadeState != fadeSteady || s.subFadeState != 0 {
		s.advanceFadeTime(dt)
	}

	if s.playing && !(s.pauseFadeIn && s.fadeState == fadingIn) {
		s.time += dt * s.timeScale
	}

	s.weightResult = s.weight * s.fadeProgress
	if !s.additive {
		s.weightResult *= weightLeft
	}

	s.governor.Update(s.time)
	for _, ts := range s.timelines {
		ts.Update(s.time)
	}

	if s.fadeState == fadeSteady {
		if s.subFadeState > 0 {
			s.subFadeState = 0
		}
		if s.autoFadeOutTime >= 0 && s.governor.IsCompleted() {
			s.FadeOut(s.autoFadeOutTime, false)
		}
	}
}

func (s *animationState) advanceFadeTime(dt float32) {
	isFadeOut := s.fadeState > fadeSteady
	wasComplete := s.subFadeState > 0

	if s.subFadeState < 0 {
		s.subFadeState = 0
		s.dispatch(common.Ternary(isFadeOut, armature.EventFadeOut, armature.EventFadeIn))
	}

	s.fadeTime += common.Abs(dt)
	switch {
	case s.fadeTime >= s.fadeTotalTime:
		s.subFadeState = 1
		s.fadeProgress = common.Ternary[float32](isFadeOut, 0, 1)
	case s.fadeTime > 0:
		progress := s.fadeTime / s.fadeTotalTime
		s.fadeProgress = common.Ternary(isFadeOut, 1-progress, progress)
	default:
		s.fadeProgress = common.Ternary[float32](isFadeOut, 1, 0)
	}

	if s.subFadeState > 0 && !wasComplete {
		if isFadeOut {
			s.fadeOutComplete = true
			s.dispatch(armature.EventFadeOutComplete)
		} else {
			s.fadeState = fadeSteady
			s.pauseFadeIn = false
			s.dispatch(armature.EventFadeInComplete)
		}
	}
}

func (s *animationState) dispatch(eventType string) {
	if s.armature == nil || !s.armature.Display().HasEvent(eventType) {
		return
	}
	e := armature.BorrowEvent(eventType)
	e.Name = s.name
	e.State = s
	s.armature.BufferEvent(e)
}

func (s *animationState) FadeOut(fadeOutTime float32, pausePlayhead bool) {
	if fadeOutTime < 0 || common.IsNaN(fadeOutTime) {
		fadeOutTime = 0
	}
	if pausePlayhead {
		s.playing = false
	}

	if s.fadeState == fadingOut {
		if fadeOutTime > s.fadeTotalTime-s.fadeTime {
			return
		}
	} else {
		s.fadeState = fadingOut
		s.subFadeState = -1
		if fadeOutTime <= 0 || s.fadeProgress <= 0 {
			s.fadeProgress = minFadeProgress
		}
	}

	s.displayControl = false
	s.fadeTotalTime = 0
	if s.fadeProgress > minFadeProgress {
		s.fadeTotalTime = fadeOutTime / s.fadeProgress
	}
	s.fadeTime = s.fadeTotalTime * (1 - s.fadeProgress)

	if fadeOutTime <= 0 && !s.fadeOutComplete {
		s.fadeTime = 0
		s.fadeTotalTime = 0
		s.advanceFadeTime(0)
	}
}

func (s *animationState) Name() string {
	return s.name
}

func (s *animationState) Layer() int {
	return s.layer
}

func (s *animationState) Group() string {
	return s.group
}

func (s *animationState) Clip() *model.AnimationData {
	return s.clip
}

func (s *animationState) Play() {
	s.playing = true
}

func (s *animationState) Stop() {
	s.playing = false
}

func (s *animationState) IsPlaying() bool {
	return s.playing && !s.IsCompleted()
}

func (s *animationState) IsCompleted() bool {
	return s.governor != nil && s.governor.IsCompleted()
}

func (s *animationState) IsFadeIn() bool {
	return s.fadeState == fadingIn
}

func (s *animationState) IsFadeOut() bool {
	return s.fadeState == fadingOut
}

func (s *animationState) IsFadeComplete() bool {
	return s.fadeState == fadeSteady
}

func (s *animationState) IsFadeOutComplete() bool {
	return s.fadeOutComplete
}

func (s *animationState) FadeProgress() float32 {
	return s.fadeProgress
}

func (s *animationState) Weight() float32 {
	return s.weight
}

func (s *animationState) SetWeight(weight float32) {
	s.weight = weight
}

func (s *animationState) WeightResult() float32 {
	return s.weightResult
}

func (s *animationState) LayerIndex() int {
	return s.layerIndex
}

func (s *animationState) Additive() bool {
	return s.additive
}

func (s *animationState) DisplayControl() bool {
	return s.displayControl
}

func (s *animationState) TimeScale() float32 {
	return s.timeScale
}

func (s *animationState) SetTimeScale(scale float32) {
	s.timeScale = scale
}

func (s *animationState) AutoFadeOutTime() float32 {
	return s.autoFadeOutTime
}

func (s *animationState) SetAutoFadeOutTime(seconds float32) {
	s.autoFadeOutTime = seconds
}

func (s *animationState) PlayTimes() int {
	return s.playTimes
}

func (s *animationState) CurrentPlayTimes() int {
	if s.governor == nil {
		return 0
	}
	return s.governor.CurrentPlayTimes()
}

func (s *animationState) CurrentTime() float32 {
	if s.governor == nil {
		return 0
	}
	return s.governor.CurrentTime()
}

func (s *animationState) SetCurrentTime(seconds float32) {
	if s.governor == nil || s.duration <= 0 {
		return
	}

	loops := s.governor.CurrentPlayTimes()
	if s.governor.IsCompleted() && loops > 0 {
		loops--
	}

	value := seconds
	switch {
	case value < 0 || value > s.duration:
		value = common.Mod(value, s.duration)
		if value < 0 {
			value += s.duration
		}
	case s.playTimes > 0 && loops == s.playTimes-1 && value == s.duration:
		value = s.duration - minFadeProgress
	}
	value += float32(loops) * s.duration

	if s.time == value {
		return
	}
	s.time = value
	s.governor.SetCurrentTime(s.time)
	for _, ts := range s.timelines {
		ts.SetCurrentTime(s.time)
	}
}

func (s *animationState) TotalTime() float32 {
	return s.duration
}

func (s *animationState) Timelines() []timeline.TimelineState {
	return s.timelines
}
