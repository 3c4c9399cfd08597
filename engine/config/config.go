package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Cue operations understood by the playback script.
const (
	OpPlay        = "play"
	OpFadeIn      = "fadeIn"
	OpFadeOut     = "fadeOut"
	OpStop        = "stop"
	OpGotoAndPlay = "gotoAndPlay"
	OpGotoAndStop = "gotoAndStop"
)

var knownOps = map[string]bool{
	OpPlay:        true,
	OpFadeIn:      true,
	OpFadeOut:     true,
	OpStop:        true,
	OpGotoAndPlay: true,
	OpGotoAndStop: true,
}

type StreamCfg struct {
	Addr string `yaml:"addr"` // e.g. :8080, empty disables the stream
	Path string `yaml:"path"` // websocket endpoint, defaults to /ws
}

type RigCfg struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"` // built-in rig the cmd knows how to construct
}

// Cue is one scripted controller call applied once the engine clock reaches At.
// FadeTime and PlayTimes are optional; nil selects the clip defaults.
type Cue struct {
	At        float32  `yaml:"at"`
	Rig       string   `yaml:"rig"`
	Op        string   `yaml:"op"`
	Clip      string   `yaml:"clip,omitempty"`
	FadeTime  *float32 `yaml:"fade_time,omitempty"`
	PlayTimes *int     `yaml:"play_times,omitempty"`
	Layer     int      `yaml:"layer,omitempty"`
	Group     string   `yaml:"group,omitempty"`
	Mode      string   `yaml:"mode,omitempty"` // fade-out mode name, see animation.ParseFadeOutMode
	Time      float32  `yaml:"time,omitempty"` // seek position for goto ops
	Additive  bool     `yaml:"additive,omitempty"`
}

type Config struct {
	TickRate   float64 `yaml:"tick_rate"` // ticks per second
	Workers    int     `yaml:"workers"`   // 0 selects runtime.NumCPU()-1
	Profiling  bool    `yaml:"profiling"`
	LogLevel   string  `yaml:"log_level"`
	Duration   float64 `yaml:"duration"` // seconds to run, 0 runs until interrupted
	TimeScale  float32 `yaml:"time_scale"`
	FadeInTime float32 `yaml:"fade_in_time"` // default for fadeIn cues without fade_time

	Stream StreamCfg `yaml:"stream"`
	Rigs   []RigCfg  `yaml:"rigs"`
	Cues   []Cue     `yaml:"cues"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		TickRate:   60,
		LogLevel:   "info",
		TimeScale:  1,
		FadeInTime: 0.2,
		Stream:     StreamCfg{Path: "/ws"},
	}
}

// Load reads and validates a YAML configuration file.
// Fields missing from the file keep the values from Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML configuration.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks ranges and cross references between cues and rigs.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %v", ErrInvalid, c.TickRate)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %v", ErrInvalid, c.Duration)
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("%w: time_scale must not be negative, got %v", ErrInvalid, c.TimeScale)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	rigs := make(map[string]bool, len(c.Rigs))
	for i, r := range c.Rigs {
		if r.Name == "" {
			return fmt.Errorf("%w: rigs[%d] has no name", ErrInvalid, i)
		}
		if rigs[r.Name] {
			return fmt.Errorf("%w: duplicate rig %q", ErrInvalid, r.Name)
		}
		rigs[r.Name] = true
	}

	for i, cue := range c.Cues {
		if !knownOps[cue.Op] {
			return fmt.Errorf("%w: cues[%d] unknown op %q", ErrInvalid, i, cue.Op)
		}
		if !rigs[cue.Rig] {
			return fmt.Errorf("%w: cues[%d] references unknown rig %q", ErrInvalid, i, cue.Rig)
		}
		if cue.At < 0 {
			return fmt.Errorf("%w: cues[%d] at must not be negative", ErrInvalid, i)
		}
		if cue.Mode != "" {
			if _, ok := animation.ParseFadeOutMode(cue.Mode); !ok {
				return fmt.Errorf("%w: cues[%d] unknown fade-out mode %q", ErrInvalid, i, cue.Mode)
			}
		}
		switch cue.Op {
		case OpFadeIn, OpGotoAndPlay, OpGotoAndStop:
			if cue.Clip == "" {
				return fmt.Errorf("%w: cues[%d] op %s needs a clip", ErrInvalid, i, cue.Op)
			}
		}
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	return lvl, nil
}

// SortedCues returns the cues ordered by At. Cues with equal At keep file order.
func (c *Config) SortedCues() []Cue {
	out := make([]Cue, len(c.Cues))
	copy(out, c.Cues)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}
