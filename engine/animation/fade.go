package animation

// FadeOutMode selects which active instances a new fade-in fades out.
type FadeOutMode int

const (
	// FadeOutNone fades nothing out.
	FadeOutNone FadeOutMode = iota

	// FadeOutSameLayer fades out instances on the new instance's layer.
	FadeOutSameLayer

	// FadeOutSameGroup fades out instances in the new instance's group.
	FadeOutSameGroup

	// FadeOutAll fades out every instance.
	FadeOutAll

	// FadeOutSameLayerAndGroup fades out instances matching both layer and group.
	FadeOutSameLayerAndGroup
)

// String returns the mode name.
func (m FadeOutMode) String() string {
	switch m {
	case FadeOutNone:
		return "none"
	case FadeOutSameLayer:
		return "sameLayer"
	case FadeOutSameGroup:
		return "sameGroup"
	case FadeOutAll:
		return "all"
	case FadeOutSameLayerAndGroup:
		return "sameLayerAndGroup"
	default:
		return "unknown"
	}
}

// ParseFadeOutMode returns the mode with the given name. Unknown names map to FadeOutSameLayerAndGroup.
//
// Parameters:
//   - name: the mode name as returned by String
//
// Returns:
//   - FadeOutMode: the mode
//   - bool: false if name is unknown
func ParseFadeOutMode(name string) (FadeOutMode, bool) {
	for m := FadeOutNone; m <= FadeOutSameLayerAndGroup; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return FadeOutSameLayerAndGroup, false
}

// fadeInConfig holds the resolved parameters of a FadeIn call.
type fadeInConfig struct {
	fadeInTime     float32
	playTimes      int
	layer          int
	group          string
	fadeOutMode    FadeOutMode
	additive       bool
	displayControl bool
	pauseFadeOut   bool
	pauseFadeIn    bool
}

func defaultFadeIn() fadeInConfig {
	return fadeInConfig{
		fadeInTime:     -1,
		playTimes:      -1,
		fadeOutMode:    FadeOutSameLayerAndGroup,
		displayControl: true,
	}
}

// FadeInOption is a functional option for a FadeIn call.
type FadeInOption func(*fadeInConfig)

// WithFadeInTime sets the cross-fade time. NaN or a negative value uses the clip's default
// once any instance has played, and 0 before that.
//
// Parameters:
//   - seconds: the fade time
//
// Returns:
//   - FadeInOption: option function to apply
func WithFadeInTime(seconds float32) FadeInOption {
	return func(c *fadeInConfig) {
		c.fadeInTime = seconds
	}
}

// WithPlayTimes sets the repeat count. Zero loops forever, a negative value uses the clip's default.
//
// Parameters:
//   - playTimes: the repeat count
//
// Returns:
//   - FadeInOption: option function to apply
func WithPlayTimes(playTimes int) FadeInOption {
	return func(c *fadeInConfig) {
		c.playTimes = playTimes
	}
}

// WithLayer sets the blend layer. Lower layers take weight first.
//
// Parameters:
//   - layer: the layer
//
// Returns:
//   - FadeInOption: option function to apply
func WithLayer(layer int) FadeInOption {
	return func(c *fadeInConfig) {
		c.layer = layer
	}
}

// WithGroup sets the group tag used by fade-out selection.
//
// Parameters:
//   - group: the group tag
//
// Returns:
//   - FadeInOption: option function to apply
func WithGroup(group string) FadeInOption {
	return func(c *fadeInConfig) {
		c.group = group
	}
}

// WithFadeOutMode selects the instances faded out before the new one is inserted.
// Defaults to FadeOutSameLayerAndGroup.
//
// Parameters:
//   - mode: the selection mode
//
// Returns:
//   - FadeInOption: option function to apply
func WithFadeOutMode(mode FadeOutMode) FadeInOption {
	return func(c *fadeInConfig) {
		c.fadeOutMode = mode
	}
}

// WithAdditive makes the instance blend additively on top of the layered pose.
//
// Parameters:
//   - additive: true for additive blending
//
// Returns:
//   - FadeInOption: option function to apply
func WithAdditive(additive bool) FadeInOption {
	return func(c *fadeInConfig) {
		c.additive = additive
	}
}

// WithDisplayControl sets whether the instance drives slot display changes. Defaults to true.
//
// Parameters:
//   - enabled: true to drive display changes
//
// Returns:
//   - FadeInOption: option function to apply
func WithDisplayControl(enabled bool) FadeInOption {
	return func(c *fadeInConfig) {
		c.displayControl = enabled
	}
}

// WithPauseFadeOut sets whether faded-out instances freeze their playhead. Defaults to false.
//
// Parameters:
//   - pause: true to freeze
//
// Returns:
//   - FadeInOption: option function to apply
func WithPauseFadeOut(pause bool) FadeInOption {
	return func(c *fadeInConfig) {
		c.pauseFadeOut = pause
	}
}

// WithPauseFadeIn sets whether the new instance holds its playhead until its fade-in completes.
// Defaults to false.
//
// Parameters:
//   - pause: true to hold
//
// Returns:
//   - FadeInOption: option function to apply
func WithPauseFadeIn(pause bool) FadeInOption {
	return func(c *fadeInConfig) {
		c.pauseFadeIn = pause
	}
}
