package world

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRig(t *testing.T, name string) (armature.Armature, animation.Animation) {
	t.Helper()
	m := model.NewModel(name,
		model.WithBones(&model.BoneData{Name: "root"}),
		model.WithAnimations(
			model.NewAnimationData("walk", 1, 10, model.WithPlayTimes(0)),
			model.NewAnimationData("attack", 0.5, 5),
		),
	)
	arm := armature.NewArmature(m)
	return arm, animation.NewAnimation(arm)
}

func TestRegistry(t *testing.T) {
	heroArm, _ := newRig(t, "hero")
	w := NewWorld("test", WithWorkers(2), WithRigs(heroArm))
	defer w.Close()

	foeArm, _ := newRig(t, "foe")
	foe := w.Add(foeArm)

	assert.Equal(t, 2, w.Count())
	assert.Equal(t, []uint64{1, 2}, w.IDs())
	assert.Same(t, foeArm, w.Get(foe))
	assert.Nil(t, w.Get(42))

	id, arm, err := w.Find("hero")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Same(t, heroArm, arm)

	_, _, err = w.Find("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, w.Remove(foe))
	assert.True(t, errors.Is(w.Remove(foe), ErrNotFound))
	assert.Equal(t, 1, w.Count())

	w.Clear()
	assert.Zero(t, w.Count())
	assert.Panics(t, func() { w.Add(nil) })
}

func TestAnimationLookup(t *testing.T) {
	arm, anim := newRig(t, "hero")
	bare := armature.NewArmature(model.NewModel("prop"))
	w := NewWorld("test", WithRigs(arm, bare))
	defer w.Close()

	got, err := w.Animation("hero")
	require.NoError(t, err)
	assert.Same(t, anim, got)

	_, err = w.Animation("prop")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAdvanceTimeAdvancesEveryRig(t *testing.T) {
	w := NewWorld("test", WithWorkers(4))
	defer w.Close()

	var anims []animation.Animation
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		arm, anim := newRig(t, name)
		anim.Play("walk", -1)
		w.Add(arm)
		anims = append(anims, anim)
	}

	var snap Snapshot
	for range 5 {
		snap = w.AdvanceTime(0.1)
	}

	for _, anim := range anims {
		assert.InDelta(t, 0.5, anim.State("walk").CurrentTime(), 1e-5)
	}
	assert.Equal(t, uint64(5), snap.Tick)
	assert.InDelta(t, 0.5, snap.Time, 1e-6)
	require.Len(t, snap.Rigs, 6)
	assert.Equal(t, "a", snap.Rigs[0].Name)
	assert.Equal(t, "walk", snap.Rigs[0].Last)
	require.Len(t, snap.Rigs[0].States, 1)
	assert.Equal(t, "walk", snap.Rigs[0].States[0].Name)
	assert.True(t, snap.Rigs[0].States[0].Playing)
}

func TestSnapshotEvents(t *testing.T) {
	arm, anim := newRig(t, "hero")
	w := NewWorld("test", WithRigs(arm))
	defer w.Close()

	anim.Play("attack", 1)
	pending := w.Snapshot()
	require.Len(t, pending.Rigs, 1)
	assert.Equal(t, []string{armature.EventFadeIn, armature.EventFadeInComplete}, eventTypes(pending.Rigs[0].Events))

	snap := w.AdvanceTime(0.1)
	assert.Equal(t, []string{armature.EventFadeIn, armature.EventFadeInComplete, armature.EventStart}, eventTypes(snap.Rigs[0].Events))
	assert.Equal(t, "attack", snap.Rigs[0].Events[2].State)

	snap = w.AdvanceTime(0.5)
	assert.Equal(t, []string{armature.EventLoopComplete, armature.EventComplete}, eventTypes(snap.Rigs[0].Events))
	assert.True(t, snap.Rigs[0].States[0].Completed)

	snap = w.AdvanceTime(0.1)
	assert.Empty(t, snap.Rigs[0].Events)
}

func TestRecordEventsDisabled(t *testing.T) {
	arm, anim := newRig(t, "hero")
	w := NewWorld("test", WithRigs(arm), WithRecordEvents(false))
	defer w.Close()

	anim.Play("attack", 1)
	snap := w.AdvanceTime(0.1)
	assert.Empty(t, snap.Rigs[0].Events)
	assert.False(t, arm.Display().HasEvent(armature.EventStart))
}

func TestRemoveDetachesRecorders(t *testing.T) {
	arm, anim := newRig(t, "hero")
	w := NewWorld("test", WithRigs(arm))
	defer w.Close()

	var own []string
	arm.Display().AddEventListener(armature.EventComplete, func(e *armature.EventObject) {
		own = append(own, e.Name)
	})
	require.True(t, arm.Display().HasEvent(armature.EventStart))

	id, _, err := w.Find("hero")
	require.NoError(t, err)
	require.NoError(t, w.Remove(id))

	assert.False(t, arm.Display().HasEvent(armature.EventStart))
	assert.False(t, arm.Display().HasEvent(armature.EventFrame))
	assert.True(t, arm.Display().HasEvent(armature.EventComplete))

	anim.Play("attack", 1)
	arm.AdvanceTime(0.6)
	assert.Equal(t, []string{"attack"}, own)

	w.Add(arm)
	snap := w.AdvanceTime(0.1)
	require.Len(t, snap.Rigs, 1)
	assert.Empty(t, snap.Rigs[0].Events)

	w.Clear()
	assert.False(t, arm.Display().HasEvent(armature.EventStart))
	assert.True(t, arm.Display().HasEvent(armature.EventComplete))
}

func eventTypes(events []EventRecord) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
