package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkBuildsRingAndLookupTable(t *testing.T) {
	k0 := NewFrame(0, 0.3)
	k1 := NewFrame(0.3, 0.2)
	k2 := NewFrame(0.5, 0.5)
	tl := NewTimeline(TimelineKindBone, "arm", []*FrameData{k0, k1, k2})
	tl.Link(10, 1)

	assert.Equal(t, k1, k0.Next)
	assert.Equal(t, k2, k0.Prev)
	assert.Equal(t, k0, k2.Next)
	assert.Equal(t, 2, k2.Index())

	tests := []struct {
		index int
		want  *FrameData
	}{
		{-1, k0},
		{0, k0},
		{2, k0},
		{3, k1},
		{4, k1},
		{5, k2},
		{10, k2},
		{42, k2},
	}
	for _, tt := range tests {
		assert.Same(t, tt.want, tl.FrameAt(tt.index), "index %d", tt.index)
	}
}

func TestFrameAtWithoutTable(t *testing.T) {
	empty := NewTimeline(TimelineKindSlot, "s", nil)
	empty.Link(10, 1)
	assert.Nil(t, empty.FrameAt(0))

	only := NewFrame(0, 1)
	single := NewTimeline(TimelineKindSlot, "s", []*FrameData{only})
	single.Link(10, 1)
	assert.Same(t, only, single.FrameAt(7))
	assert.Same(t, only, only.Next)
}

func TestNewFrameDefaults(t *testing.T) {
	f := NewFrame(0, 1)
	assert.Equal(t, NoTween, f.TweenEasing)
	assert.False(t, f.HasTween())

	assert.True(t, NewFrame(0, 1, WithTween(0)).HasTween())
	assert.True(t, NewFrame(0, 1, WithCurve(0.5, 0.5)).HasTween())
}

func TestNewAnimationData(t *testing.T) {
	bone := NewTimeline(TimelineKindBone, "arm", []*FrameData{NewFrame(0, 0.5), NewFrame(0.5, 0.5)})
	slot := NewTimeline(TimelineKindSlot, "hand", []*FrameData{NewFrame(0, 1)})
	clip := NewAnimationData("walk", 1, 10, WithPlayTimes(3), WithFadeInTime(0.2), WithTimelines(bone, slot))

	require.NotNil(t, clip.Timeline)
	assert.Equal(t, TimelineKindAnimation, clip.Timeline.Kind)
	assert.Equal(t, 3, clip.PlayTimes)
	assert.Equal(t, float32(0.2), clip.FadeInTime)
	assert.Equal(t, float32(1), clip.Scale)
	assert.Equal(t, []*TimelineData{bone, slot}, clip.Timelines())
	assert.Same(t, bone.Keyframes[1], bone.FrameAt(9))
}

func TestModelRegistry(t *testing.T) {
	walk := NewAnimationData("walk", 1, 10)
	run := NewAnimationData("run", 1, 10)
	m := NewModel("hero", WithAnimations(walk, run))

	assert.Equal(t, "hero", m.Name())
	assert.Same(t, walk, m.DefaultAnimation())
	assert.Same(t, run, m.Animation("run"))
	assert.Nil(t, m.Animation("jump"))
	assert.Equal(t, []string{"walk", "run"}, m.AnimationNames())
	assert.Equal(t, []string{"run", "walk"}, SortedNames(m.Animations()))

	m.SetDefaultAnimation("run")
	assert.Same(t, run, m.DefaultAnimation())
}
