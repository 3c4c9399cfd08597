package animation

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loop(name string, options ...model.AnimationBuilderOption) *model.AnimationData {
	return model.NewAnimationData(name, 1, 10, append([]model.AnimationBuilderOption{model.WithPlayTimes(0)}, options...)...)
}

func newRig(name string, clips []*model.AnimationData, slots ...*model.SlotData) (armature.Armature, Animation) {
	m := model.NewModel(name,
		model.WithBones(&model.BoneData{Name: "root"}),
		model.WithSlots(slots...),
		model.WithAnimations(clips...),
	)
	arm := armature.NewArmature(m)
	return arm, NewAnimation(arm)
}

func names(states []AnimationState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Name()
	}
	return out
}

func TestNewAnimationAttaches(t *testing.T) {
	arm, anim := newRig("hero", []*model.AnimationData{loop("walk"), loop("idle")})

	assert.Same(t, anim, arm.Animation())
	assert.Equal(t, []string{"idle", "walk"}, anim.AnimationNames())
	assert.True(t, anim.HasAnimation("walk"))
	assert.False(t, anim.IsPlaying())
	assert.True(t, anim.IsCompleted())
	assert.Panics(t, func() { NewAnimation(nil) })
}

func TestFadeInUnknownAnimation(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	walk := anim.Play("walk", -1)
	require.NotNil(t, walk)

	assert.Nil(t, anim.FadeIn("jump"))
	assert.Nil(t, anim.GotoAndPlayByTime("jump", 0.5, -1))
	assert.Equal(t, []string{"walk"}, names(anim.States()))
	assert.Equal(t, "walk", anim.LastAnimationName())

	restarted := anim.Play("walk", -1)
	assert.Equal(t, float32(0), restarted.CurrentTime())
}

func TestPlayDefaultResumeAndRestart(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("idle"), loop("walk")})

	first := anim.Play("", -1)
	require.NotNil(t, first)
	assert.Equal(t, "idle", first.Name())
	assert.True(t, anim.IsPlaying())

	anim.Stop("")
	assert.False(t, anim.IsPlaying())
	assert.Same(t, first, anim.Play("", -1))
	assert.True(t, anim.IsPlaying())

	restarted := anim.Play("", -1)
	require.NotNil(t, restarted)
	assert.NotSame(t, first, restarted)
	assert.Equal(t, []string{"idle"}, names(anim.States()))
}

func TestPlayWithoutClips(t *testing.T) {
	_, anim := newRig("empty", nil)
	assert.Nil(t, anim.Play("", -1))
}

func TestFiniteRepeatCompletes(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{model.NewAnimationData("attack", 1, 10)})
	s := anim.Play("attack", 1)
	require.NotNil(t, s)

	anim.AdvanceTime(0.5)
	assert.False(t, anim.IsCompleted())
	anim.AdvanceTime(0.5)
	anim.AdvanceTime(0.5)

	assert.True(t, s.IsCompleted())
	assert.True(t, anim.IsCompleted())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, float32(1), s.CurrentTime())
	assert.Equal(t, 1, s.CurrentPlayTimes())
}

func TestDefaultPlayTimesAndFadeTime(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{
		model.NewAnimationData("walk", 1, 10, model.WithPlayTimes(3), model.WithFadeInTime(0.4)),
	})

	first := anim.FadeIn("walk")
	require.NotNil(t, first)
	assert.Equal(t, 3, first.PlayTimes())
	assert.True(t, first.IsFadeComplete(), "the first fade-in has no previous pose to blend from")

	second := anim.FadeIn("walk", WithPlayTimes(0))
	require.NotNil(t, second)
	assert.Equal(t, 0, second.PlayTimes())
	assert.True(t, second.IsFadeIn())
	assert.True(t, first.IsFadeOut())

	anim.AdvanceTime(0.2)
	assert.InDelta(t, 0.5, second.FadeProgress(), 1e-6)
	anim.AdvanceTime(0.2)
	assert.True(t, second.IsFadeComplete())
}

func TestCrossFadeKeepsBothPlayheadsMoving(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk"), loop("run")})
	walk := anim.Play("walk", -1)
	anim.AdvanceTime(0.2)
	require.InDelta(t, 0.2, walk.CurrentTime(), 1e-6)

	run := anim.FadeIn("run", WithFadeInTime(0.5))
	require.NotNil(t, run)
	anim.AdvanceTime(0.25)

	assert.Equal(t, []string{"walk", "run"}, names(anim.States()))
	assert.InDelta(t, 0.45, walk.CurrentTime(), 1e-6)
	assert.True(t, walk.IsPlaying())
	assert.InDelta(t, 0.25, run.CurrentTime(), 1e-6)
	assert.InDelta(t, 0.5, run.FadeProgress(), 1e-6)
}

func TestCrossFadePauseOptions(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk"), loop("run")})
	walk := anim.Play("walk", -1)
	anim.AdvanceTime(0.2)

	run := anim.FadeIn("run", WithFadeInTime(0.5), WithPauseFadeOut(true), WithPauseFadeIn(true))
	anim.AdvanceTime(0.25)
	assert.InDelta(t, 0.2, walk.CurrentTime(), 1e-6)
	assert.Equal(t, float32(0), run.CurrentTime())

	// the playhead is released on the tick the fade completes
	anim.AdvanceTime(0.25)
	assert.True(t, run.IsFadeComplete())
	assert.InDelta(t, 0.25, run.CurrentTime(), 1e-6)
}

func TestSingleFadedOutStateIsEvicted(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	s := anim.Play("walk", -1)

	s.FadeOut(0, false)
	assert.True(t, s.IsFadeOutComplete())

	anim.AdvanceTime(0.016)
	assert.Empty(t, anim.States())
	assert.Equal(t, "", anim.LastAnimationName())
	assert.Nil(t, anim.LastAnimationState())
	assert.True(t, anim.IsCompleted())
}

func TestLayerWeightBudget(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("a"), loop("b"), loop("c")})
	add := func(name string, layer int) AnimationState {
		s := anim.FadeIn(name, WithFadeInTime(0), WithLayer(layer), WithFadeOutMode(FadeOutNone))
		require.NotNil(t, s)
		return s
	}
	a := add("a", 0)
	b := add("b", 0)
	c := add("c", 1)
	a.SetWeight(0.4)
	b.SetWeight(0.3)

	anim.AdvanceTime(0.1)

	assert.InDelta(t, 0.4, a.WeightResult(), 1e-6)
	assert.InDelta(t, 0.3, b.WeightResult(), 1e-6)
	assert.InDelta(t, 0.3, c.WeightResult(), 1e-6)
	assert.Equal(t, []int{1, 2, 3}, []int{a.LayerIndex(), b.LayerIndex(), c.LayerIndex()})
}

func TestAdditiveIgnoresBudget(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("base"), loop("breath")})
	anim.FadeIn("base", WithFadeInTime(0), WithFadeOutMode(FadeOutNone))
	breath := anim.FadeIn("breath", WithFadeInTime(0), WithLayer(1), WithAdditive(true), WithFadeOutMode(FadeOutNone))

	anim.AdvanceTime(0.1)
	assert.True(t, breath.Additive())
	assert.InDelta(t, 1, breath.WeightResult(), 1e-6)
}

func TestFadeOutSameLayerAndGroup(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("x"), loop("y"), loop("z"), loop("w")})
	x := anim.FadeIn("x", WithFadeInTime(0), WithLayer(2), WithGroup("combat"), WithFadeOutMode(FadeOutNone))
	y := anim.FadeIn("y", WithFadeInTime(0), WithLayer(2), WithGroup("idle"), WithFadeOutMode(FadeOutNone))
	z := anim.FadeIn("z", WithFadeInTime(0), WithLayer(0), WithGroup("combat"), WithFadeOutMode(FadeOutNone))
	anim.AdvanceTime(0.1)
	yTime, zTime := y.CurrentTime(), z.CurrentTime()

	anim.FadeIn("w", WithFadeInTime(0.5), WithLayer(2), WithGroup("combat"))

	assert.True(t, x.IsFadeOut())
	assert.False(t, x.IsPlaying())
	for _, s := range []AnimationState{y, z} {
		assert.False(t, s.IsFadeOut(), s.Name())
		assert.Equal(t, float32(1), s.FadeProgress(), s.Name())
	}
	assert.Equal(t, yTime, y.CurrentTime())
	assert.Equal(t, zTime, z.CurrentTime())
}

func TestFadeOutModes(t *testing.T) {
	tests := []struct {
		mode  FadeOutMode
		faded []string
	}{
		{FadeOutNone, nil},
		{FadeOutSameLayer, []string{"a", "b"}},
		{FadeOutSameGroup, []string{"a", "c"}},
		{FadeOutAll, []string{"a", "b", "c"}},
		{FadeOutSameLayerAndGroup, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			_, anim := newRig("hero", []*model.AnimationData{loop("a"), loop("b"), loop("c")})
			anim.FadeIn("a", WithFadeInTime(0), WithLayer(1), WithGroup("g"), WithFadeOutMode(FadeOutNone))
			anim.FadeIn("b", WithFadeInTime(0), WithLayer(1), WithGroup("h"), WithFadeOutMode(FadeOutNone))
			anim.FadeIn("c", WithFadeInTime(0), WithLayer(2), WithGroup("g"), WithFadeOutMode(FadeOutNone))

			anim.FadeOut(0.3, 1, "g", tt.mode, false)

			var faded []string
			for _, s := range anim.States() {
				if s.IsFadeOut() {
					faded = append(faded, s.Name())
				}
			}
			assert.Equal(t, tt.faded, faded)
		})
	}
}

func TestStatesStayStableWithinLayer(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("a"), loop("b"), loop("c"), loop("d")})
	for _, fade := range []struct {
		name  string
		layer int
	}{{"a", 1}, {"b", 0}, {"c", 1}, {"d", 0}} {
		anim.FadeIn(fade.name, WithFadeInTime(0.2), WithLayer(fade.layer), WithFadeOutMode(FadeOutNone))
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, names(anim.States()))
}

func TestEvictionCompactsAndRemapsLast(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("a"), loop("b"), loop("c")})
	a := anim.FadeIn("a", WithFadeInTime(0), WithFadeOutMode(FadeOutNone))
	anim.FadeIn("b", WithFadeInTime(0), WithFadeOutMode(FadeOutNone))
	c := anim.FadeIn("c", WithFadeInTime(0), WithFadeOutMode(FadeOutNone))
	anim.State("b").FadeOut(0, false)
	c.FadeOut(0, false)

	anim.AdvanceTime(0.1)

	assert.Equal(t, []string{"a"}, names(anim.States()))
	assert.Same(t, a, anim.LastAnimationState())
}

func TestGotoVariants(t *testing.T) {
	clip := model.NewAnimationData("walk", 2, 20, model.WithPlayTimes(0))
	_, anim := newRig("hero", []*model.AnimationData{clip})

	s := anim.GotoAndPlayByFrame("walk", 5, -1)
	assert.InDelta(t, 0.5, s.CurrentTime(), 1e-6)

	s = anim.GotoAndPlayByProgress("walk", 0.25, -1)
	assert.InDelta(t, 0.5, s.CurrentTime(), 1e-6)

	s = anim.GotoAndPlayByProgress("walk", -3, -1)
	assert.Equal(t, float32(0), s.CurrentTime())

	s = anim.GotoAndStopByTime("walk", 0.3)
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 1, s.PlayTimes())
	anim.AdvanceTime(0.1)
	assert.InDelta(t, 0.3, s.CurrentTime(), 1e-6)

	s = anim.GotoAndStopByFrame("walk", 10)
	assert.InDelta(t, 1, s.CurrentTime(), 1e-6)
	s = anim.GotoAndStopByProgress("walk", 0.75)
	assert.InDelta(t, 1.5, s.CurrentTime(), 1e-6)
	assert.Len(t, anim.States(), 1)
}

func TestAdvanceTimeScaleAndSign(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	s := anim.Play("walk", -1)

	anim.AdvanceTime(-0.25)
	assert.InDelta(t, 0.25, s.CurrentTime(), 1e-6)

	anim.SetTimeScale(2)
	anim.AdvanceTime(0.1)
	assert.InDelta(t, 0.45, s.CurrentTime(), 1e-6)

	s.SetTimeScale(0.5)
	anim.AdvanceTime(0.1)
	assert.InDelta(t, 0.55, s.CurrentTime(), 1e-6)

	anim.Stop("")
	anim.AdvanceTime(1)
	assert.InDelta(t, 0.55, s.CurrentTime(), 1e-6)
}

func TestStateControls(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	s := anim.Play("walk", -1)

	anim.Stop("walk")
	assert.False(t, s.IsPlaying())
	anim.AdvanceTime(0.5)
	assert.Equal(t, float32(0), s.CurrentTime())

	s.Play()
	anim.AdvanceTime(2.5)
	assert.Equal(t, 2, s.CurrentPlayTimes())

	s.SetCurrentTime(0.75)
	assert.InDelta(t, 0.75, s.CurrentTime(), 1e-6)
	assert.Equal(t, 2, s.CurrentPlayTimes())
	assert.Equal(t, float32(1), s.TotalTime())
}

func TestAutoFadeOut(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{model.NewAnimationData("attack", 1, 10)})
	s := anim.Play("attack", 1)
	s.SetAutoFadeOutTime(0)

	anim.AdvanceTime(1.5)
	assert.True(t, s.IsFadeOutComplete())
	anim.AdvanceTime(0.1)
	assert.Empty(t, anim.States())
}

func TestLifecycleEvents(t *testing.T) {
	arm, anim := newRig("hero", []*model.AnimationData{model.NewAnimationData("attack", 1, 10)})
	var got []string
	for _, eventType := range []string{
		armature.EventStart, armature.EventLoopComplete, armature.EventComplete,
		armature.EventFadeIn, armature.EventFadeInComplete, armature.EventFadeOut, armature.EventFadeOutComplete,
	} {
		arm.Display().AddEventListener(eventType, func(e *armature.EventObject) {
			assert.Equal(t, "attack", e.Name)
			got = append(got, e.Type)
		})
	}

	anim.Play("attack", 1)
	assert.Equal(t, []string{armature.EventFadeIn, armature.EventFadeInComplete}, got)

	got = nil
	arm.AdvanceTime(0.5)
	assert.Equal(t, []string{armature.EventStart}, got)

	got = nil
	arm.AdvanceTime(0.6)
	assert.Equal(t, []string{armature.EventLoopComplete, armature.EventComplete}, got)

	got = nil
	anim.State("attack").FadeOut(0, false)
	arm.AdvanceTime(0)
	assert.Equal(t, []string{armature.EventFadeOut, armature.EventFadeOutComplete}, got)
}

func TestKeyframeActionsRunNextTick(t *testing.T) {
	attack := model.NewAnimationData("attack", 1, 10, model.WithActionTimeline(
		model.NewFrame(0, 0.5, model.WithActions(&model.ActionData{Type: model.ActionPlay, AnimationName: "idle"})),
		model.NewFrame(0.5, 0.5),
	))
	arm, anim := newRig("hero", []*model.AnimationData{attack, loop("idle")})

	anim.Play("attack", 1)
	arm.AdvanceTime(0.1)
	assert.Equal(t, "attack", anim.LastAnimationName())

	arm.AdvanceTime(0.1)
	assert.Equal(t, "idle", anim.LastAnimationName())
}

func TestExecuteActions(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk", model.WithFadeInTime(0.3))})

	anim.ExecuteAction(&model.ActionData{Type: model.ActionGotoAndStop, AnimationName: "walk"})
	require.NotNil(t, anim.State("walk"))
	assert.False(t, anim.State("walk").IsPlaying())

	anim.ExecuteAction(&model.ActionData{Type: model.ActionGotoAndPlay, AnimationName: "walk"})
	assert.True(t, anim.State("walk").IsPlaying())

	anim.ExecuteAction(&model.ActionData{Type: model.ActionFadeOut, AnimationName: "walk"})
	assert.True(t, anim.State("walk").IsFadeOut())

	anim.ExecuteAction(&model.ActionData{Type: model.ActionStop})
	assert.False(t, anim.IsPlaying())
}

func TestNestedArmaturesInherit(t *testing.T) {
	childArm, childAnim := newRig("weapon", []*model.AnimationData{loop("walk")})
	slot := &model.SlotData{Name: "hand", Parent: "root", InheritAnimation: true}
	parentArm, parentAnim := newRig("hero", []*model.AnimationData{loop("walk"), loop("idle")}, slot)
	parentArm.Slot("hand").SetChildArmature(childArm)

	parentAnim.Play("walk", -1)
	assert.True(t, childAnim.HasState("walk"))

	parentAnim.Play("idle", -1)
	assert.False(t, childAnim.HasState("idle"))
}

func TestNestedArmatureCycleTerminates(t *testing.T) {
	slot := &model.SlotData{Name: "hand", Parent: "root", InheritAnimation: true}
	armA, animA := newRig("a", []*model.AnimationData{loop("walk")}, slot)
	armB, animB := newRig("b", []*model.AnimationData{loop("walk")}, slot)
	armA.Slot("hand").SetChildArmature(armB)
	armB.Slot("hand").SetChildArmature(armA)

	animA.Play("walk", -1)
	assert.Len(t, animA.States(), 1)
	assert.Len(t, animB.States(), 1)

	armA.AdvanceTime(0.1)
	assert.InDelta(t, 0.1, animB.State("walk").CurrentTime(), 1e-6)
}

func TestInheritSkipsVisitedArmature(t *testing.T) {
	arm, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	anim.Inherit("walk", map[armature.Armature]struct{}{arm: {}})
	assert.False(t, anim.HasState("walk"))

	anim.Inherit("walk", map[armature.Armature]struct{}{})
	assert.True(t, anim.HasState("walk"))
}

func TestTimelinesRefreshWhenSlotsChange(t *testing.T) {
	clip := loop("wave", model.WithTimelines(
		model.NewTimeline(model.TimelineKindSlot, "hand", []*model.FrameData{model.NewFrame(0, 1)}),
		model.NewTimeline(model.TimelineKindSlot, "hat", []*model.FrameData{model.NewFrame(0, 1)}),
		model.NewTimeline(model.TimelineKindBone, "root", []*model.FrameData{model.NewFrame(0, 1)}),
	))
	arm, anim := newRig("hero", []*model.AnimationData{clip}, &model.SlotData{Name: "hand", Parent: "root"})

	s := anim.Play("wave", -1)
	require.Len(t, s.Timelines(), 2)

	arm.AddSlot(&model.SlotData{Name: "hat", Parent: "root"})
	anim.AdvanceTime(0.1)
	assert.Len(t, s.Timelines(), 3)

	arm.RemoveSlot("hand")
	anim.AdvanceTime(0.1)
	require.Len(t, s.Timelines(), 2)
	assert.Equal(t, "root", s.Timelines()[0].Data().Name)
	assert.Equal(t, "hat", s.Timelines()[1].Data().Name)
}

func TestSetAnimations(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	current := anim.Animations()
	anim.SetAnimations(current)
	assert.Equal(t, []string{"walk"}, anim.AnimationNames())

	anim.SetAnimations(map[string]*model.AnimationData{"run": loop("run"), "jump": loop("jump")})
	assert.Equal(t, []string{"jump", "run"}, anim.AnimationNames())
	assert.False(t, anim.HasAnimation("walk"))
}

func TestHandBuiltClipWithoutTracks(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("walk")})
	anim.SetAnimations(map[string]*model.AnimationData{
		"blank": {Name: "blank"},
		"pose":  {Name: "pose", Duration: 1, FrameCount: 10, BoneTimelines: []*model.TimelineData{nil}},
	})

	var blank, pose AnimationState
	require.NotPanics(t, func() {
		blank = anim.Play("blank", -1)
		anim.AdvanceTime(0.1)
		pose = anim.FadeIn("pose", WithFadeInTime(0))
		anim.AdvanceTime(0.25)
	})
	require.NotNil(t, blank)
	require.NotNil(t, pose)
	assert.Empty(t, pose.Timelines())
	assert.InDelta(t, 0.25, pose.CurrentTime(), 1e-6)
}

func TestReset(t *testing.T) {
	_, anim := newRig("hero", []*model.AnimationData{loop("a"), loop("b")})
	anim.FadeIn("a", WithFadeOutMode(FadeOutNone))
	anim.FadeIn("b", WithFadeOutMode(FadeOutNone))

	anim.Reset()
	assert.False(t, anim.IsPlaying())
	assert.Empty(t, anim.States())
	assert.True(t, anim.IsCompleted())
}

func TestParseFadeOutMode(t *testing.T) {
	m, ok := ParseFadeOutMode("sameGroup")
	assert.True(t, ok)
	assert.Equal(t, FadeOutSameGroup, m)

	m, ok = ParseFadeOutMode("bogus")
	assert.False(t, ok)
	assert.Equal(t, FadeOutSameLayerAndGroup, m)
}
