package script

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/rs/zerolog"
)

// player implements the Player interface.
type player struct {
	w        world.World
	cues     []config.Cue
	next     int
	fadeTime float32
	logger   zerolog.Logger
}

// Player applies scripted controller calls to the rigs of a world as a clock passes their cue times.
// A Player is not safe for concurrent use; drive it from the goroutine that ticks the world.
type Player interface {
	// Update applies every cue whose time is at or before clock.
	//
	// Parameters:
	//   - clock: the script time in seconds
	//
	// Returns:
	//   - int: the number of cues applied by this call
	Update(clock float32) int

	// Pending returns the number of cues not yet applied.
	//
	// Returns:
	//   - int: the pending cue count
	Pending() int

	// Reset rewinds the script so every cue is applied again.
	Reset()
}

var _ Player = &player{}

// NewPlayer creates a Player over the given cues. The cues are sorted by time; ties keep their order.
//
// Parameters:
//   - w: the world whose rigs receive the cues (must not be nil)
//   - cues: the script
//   - options: functional options to configure the player
//
// Returns:
//   - Player: the newly created player
func NewPlayer(w world.World, cues []config.Cue, options ...PlayerBuilderOption) Player {
	if w == nil {
		panic("script: NewPlayer requires a non-nil World")
	}
	p := &player{
		w:        w,
		cues:     (&config.Config{Cues: cues}).SortedCues(),
		fadeTime: -1,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *player) Update(clock float32) int {
	applied := 0
	for p.next < len(p.cues) && p.cues[p.next].At <= clock {
		p.apply(p.cues[p.next])
		p.next++
		applied++
	}
	return applied
}

func (p *player) Pending() int {
	return len(p.cues) - p.next
}

func (p *player) Reset() {
	p.next = 0
}

func (p *player) apply(cue config.Cue) {
	log := p.logger.With().Float32("at", cue.At).Str("rig", cue.Rig).Str("op", cue.Op).Str("clip", cue.Clip).Logger()

	anim, err := p.w.Animation(cue.Rig)
	if err != nil {
		log.Warn().Err(err).Msg("cue skipped")
		return
	}

	playTimes := -1
	if cue.PlayTimes != nil {
		playTimes = *cue.PlayTimes
	}
	fadeTime := p.fadeTime
	if cue.FadeTime != nil {
		fadeTime = *cue.FadeTime
	}

	var state animation.AnimationState
	switch cue.Op {
	case config.OpPlay:
		state = anim.Play(cue.Clip, playTimes)
	case config.OpFadeIn:
		options := []animation.FadeInOption{
			animation.WithFadeInTime(fadeTime),
			animation.WithPlayTimes(playTimes),
			animation.WithLayer(cue.Layer),
			animation.WithGroup(cue.Group),
			animation.WithAdditive(cue.Additive),
		}
		if mode, ok := animation.ParseFadeOutMode(cue.Mode); ok {
			options = append(options, animation.WithFadeOutMode(mode))
		}
		state = anim.FadeIn(cue.Clip, options...)
	case config.OpFadeOut:
		p.fadeOut(anim, cue, max(fadeTime, 0))
		log.Debug().Msg("cue applied")
		return
	case config.OpStop:
		anim.Stop(cue.Clip)
		log.Debug().Msg("cue applied")
		return
	case config.OpGotoAndPlay:
		state = anim.GotoAndPlayByTime(cue.Clip, cue.Time, playTimes)
	case config.OpGotoAndStop:
		state = anim.GotoAndStopByTime(cue.Clip, cue.Time)
	default:
		log.Warn().Msg("cue has an unknown op")
		return
	}

	if state == nil {
		log.Warn().Msg("cue names an unknown clip")
		return
	}
	log.Debug().Int("layer", state.Layer()).Str("group", state.Group()).Msg("cue applied")
}

// fadeOut fades a single named state, or every state matching the cue's layer/group under its mode.
func (p *player) fadeOut(anim animation.Animation, cue config.Cue, fadeTime float32) {
	if cue.Clip != "" {
		if s := anim.State(cue.Clip); s != nil {
			s.FadeOut(fadeTime, true)
		}
		return
	}
	mode := animation.FadeOutAll
	if cue.Mode != "" {
		mode, _ = animation.ParseFadeOutMode(cue.Mode)
	}
	anim.FadeOut(fadeTime, cue.Layer, cue.Group, mode, true)
}
