package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable ApplyEnv reads.
const EnvPrefix = "OXY_ANIM_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment.
// Variables already set are not overwritten. Missing files are reported but harmless to callers
// that only want optional overrides.
//
// Parameters:
//   - paths: the files to read, .env when empty
//
// Returns:
//   - error: the first read or parse failure
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("config: dotenv: %w", err)
	}
	return nil
}

// ParseEnv parses dotenv formatted text into a lookup, for tests and embedded overrides.
func ParseEnv(text string) (LookupFunc, error) {
	vars, err := godotenv.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("config: dotenv: %w", err)
	}
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides fields from OXY_ANIM_* variables and revalidates the result.
//
// Recognized keys: TICK_RATE, WORKERS, PROFILING, LOG_LEVEL, DURATION, TIME_SCALE,
// FADE_IN_TIME, STREAM_ADDR, STREAM_PATH.
//
// Parameters:
//   - lookup: the variable source, normally os.LookupEnv
//
// Returns:
//   - error: a parse failure wrapping ErrInvalid, or a validation failure
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("TICK_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sTICK_RATE: %v", ErrInvalid, EnvPrefix, err)
		}
		c.TickRate = f
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sWORKERS: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := get("PROFILING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sPROFILING: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Profiling = b
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("DURATION"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sDURATION: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Duration = f
	}
	if v, ok := get("TIME_SCALE"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%w: %sTIME_SCALE: %v", ErrInvalid, EnvPrefix, err)
		}
		c.TimeScale = float32(f)
	}
	if v, ok := get("FADE_IN_TIME"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%w: %sFADE_IN_TIME: %v", ErrInvalid, EnvPrefix, err)
		}
		c.FadeInTime = float32(f)
	}
	if v, ok := get("STREAM_ADDR"); ok {
		c.Stream.Addr = v
	}
	if v, ok := get("STREAM_PATH"); ok {
		c.Stream.Path = v
	}
	return c.Validate()
}
