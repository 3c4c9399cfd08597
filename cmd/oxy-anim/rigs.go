package main

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/rs/zerolog"
)

// rigTemplates builds the demo rigs a config can reference by template name.
var rigTemplates = map[string]func(name string, logger zerolog.Logger) armature.Armature{
	"hero":  buildHero,
	"sword": buildSword,
	"slime": buildSlime,
}

func templateNames() []string {
	names := make([]string, 0, len(rigTemplates))
	for name := range rigTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildRig(template, name string, logger zerolog.Logger) (armature.Armature, error) {
	build, ok := rigTemplates[template]
	if !ok {
		return nil, fmt.Errorf("unknown rig template %q (known: %v)", template, templateNames())
	}
	return build(name, logger), nil
}

func animate(arm armature.Armature, logger zerolog.Logger) armature.Armature {
	animation.NewAnimation(arm, animation.WithLogger(logger.With().Str("rig", arm.Name()).Logger()))
	return arm
}

func key(position, duration float32, options ...model.FrameBuilderOption) *model.FrameData {
	return model.NewFrame(position, duration, options...)
}

func buildHero(name string, logger zerolog.Logger) armature.Armature {
	idle := model.NewAnimationData("idle", 2, 48,
		model.WithPlayTimes(0),
		model.WithFadeInTime(0.3),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindBone, "spine", []*model.FrameData{
				key(0, 1, model.WithTween(0)),
				key(1, 1, model.WithTween(0)),
			}),
		),
	)

	walk := model.NewAnimationData("walk", 1, 24,
		model.WithPlayTimes(0),
		model.WithFadeInTime(0.2),
		model.WithActionTimeline(
			key(0, 0.5, model.WithEvents(&model.EventData{Type: model.EventTypeSound, Name: "footstep", Bone: "leg_l"})),
			key(0.5, 0.5, model.WithEvents(&model.EventData{Type: model.EventTypeSound, Name: "footstep", Bone: "leg_r"})),
		),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindBone, "arm_l", []*model.FrameData{
				key(0, 0.5, model.WithCurve(0.25, 0.1, 0.75, 0.9)),
				key(0.5, 0.5, model.WithCurve(0.25, 0.1, 0.75, 0.9)),
			}),
			model.NewTimeline(model.TimelineKindBone, "arm_r", []*model.FrameData{
				key(0, 0.5, model.WithTween(1)),
				key(0.5, 0.5, model.WithTween(1)),
			}, model.WithTimeOffset(0.5)),
		),
	)

	attack := model.NewAnimationData("attack", 0.6, 18,
		model.WithFadeInTime(0.1),
		model.WithActionTimeline(
			key(0, 0.3),
			key(0.3, 0.3, model.WithEvents(&model.EventData{Type: model.EventTypeFrame, Name: "hit", Slot: "hand_r"})),
		),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindExtension, "body", []*model.FrameData{
				key(0, 0.3, model.WithTween(0), model.WithExtension(&model.ExtensionFrameData{Tweens: []float32{0, 0, 0, 0}})),
				key(0.3, 0.3, model.WithTween(0), model.WithExtension(&model.ExtensionFrameData{Tweens: []float32{2, -1, 2, -1}})),
			}),
			model.NewTimeline(model.TimelineKindSlot, "hand_r", []*model.FrameData{
				key(0, 0.6, model.WithActions(&model.ActionData{Type: model.ActionGotoAndPlay, AnimationName: "attack", Slot: "hand_r"})),
			}),
		),
	)

	wave := model.NewAnimationData("wave", 1.5, 36,
		model.WithPlayTimes(2),
		model.WithFadeInTime(0.3),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindBone, "arm_l", []*model.FrameData{
				key(0, 0.75, model.WithTween(-0.5)),
				key(0.75, 0.75, model.WithTween(0.5)),
			}),
		),
	)

	m := model.NewModel(name,
		model.WithBones(
			&model.BoneData{Name: "root"},
			&model.BoneData{Name: "spine", Parent: "root"},
			&model.BoneData{Name: "arm_l", Parent: "spine"},
			&model.BoneData{Name: "arm_r", Parent: "spine"},
			&model.BoneData{Name: "leg_l", Parent: "root"},
			&model.BoneData{Name: "leg_r", Parent: "root"},
		),
		model.WithSlots(
			&model.SlotData{Name: "body", Parent: "spine"},
			&model.SlotData{Name: "hand_r", Parent: "arm_r", InheritAnimation: true},
		),
		model.WithAnimations(idle, walk, attack, wave),
	)

	sword := buildSword(name+"/sword", logger)
	return animate(armature.NewArmature(m, armature.WithChild("hand_r", sword)), logger)
}

func buildSword(name string, logger zerolog.Logger) armature.Armature {
	walk := model.NewAnimationData("walk", 1, 24,
		model.WithPlayTimes(0),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindBone, "blade", []*model.FrameData{
				key(0, 0.5, model.WithTween(0)),
				key(0.5, 0.5, model.WithTween(0)),
			}),
		),
	)
	attack := model.NewAnimationData("attack", 0.6, 18,
		model.WithActionTimeline(
			key(0, 0.2),
			key(0.2, 0.4, model.WithEvents(&model.EventData{Type: model.EventTypeFrame, Name: "slash", Bone: "blade"})),
		),
	)

	m := model.NewModel(name,
		model.WithBones(&model.BoneData{Name: "blade"}),
		model.WithAnimations(walk, attack),
	)
	return animate(armature.NewArmature(m), logger)
}

func buildSlime(name string, logger zerolog.Logger) armature.Armature {
	bounce := model.NewAnimationData("bounce", 0.8, 20,
		model.WithPlayTimes(0),
		model.WithAsynchrony(),
		model.WithTimelines(
			model.NewTimeline(model.TimelineKindBone, "body", []*model.FrameData{
				key(0, 0.4, model.WithTween(0)),
				key(0.4, 0.4, model.WithTween(0)),
			}, model.WithTimeScale(0.5), model.WithAsynchronous()),
		),
	)
	squash := model.NewAnimationData("squash", 0.4, 10,
		model.WithActionTimeline(
			key(0, 0.4, model.WithEvents(&model.EventData{Type: model.EventTypeSound, Name: "splat"})),
		),
	)

	m := model.NewModel(name,
		model.WithBones(&model.BoneData{Name: "body"}),
		model.WithAnimations(bounce, squash),
	)
	return animate(armature.NewArmature(m), logger)
}
