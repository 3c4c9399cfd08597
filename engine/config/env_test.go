package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides(t *testing.T) {
	lookup, err := ParseEnv(`
# overrides for a headless run
OXY_ANIM_TICK_RATE=120
OXY_ANIM_WORKERS=3
OXY_ANIM_PROFILING=true
OXY_ANIM_LOG_LEVEL=warn
OXY_ANIM_DURATION=2.5
OXY_ANIM_TIME_SCALE=0.5
OXY_ANIM_FADE_IN_TIME=0
OXY_ANIM_STREAM_ADDR=":9090"
OXY_ANIM_STREAM_PATH=/live
UNRELATED=1
`)
	require.NoError(t, err)

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))

	assert.Equal(t, 120.0, c.TickRate)
	assert.Equal(t, 3, c.Workers)
	assert.True(t, c.Profiling)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 2.5, c.Duration)
	assert.Equal(t, float32(0.5), c.TimeScale)
	assert.Equal(t, float32(0), c.FadeInTime)
	assert.Equal(t, ":9090", c.Stream.Addr)
	assert.Equal(t, "/live", c.Stream.Path)
}

func TestApplyEnvKeepsUnsetAndBlank(t *testing.T) {
	lookup, err := ParseEnv("OXY_ANIM_LOG_LEVEL=\nOXY_ANIM_WORKERS=\"  \"\n")
	require.NoError(t, err)

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, Default(), c)
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"tick rate not a number", "OXY_ANIM_TICK_RATE=fast"},
		{"workers not an int", "OXY_ANIM_WORKERS=1.5"},
		{"profiling not a bool", "OXY_ANIM_PROFILING=sometimes"},
		{"duration not a number", "OXY_ANIM_DURATION=forever"},
		{"time scale not a number", "OXY_ANIM_TIME_SCALE=x"},
		{"fade time not a number", "OXY_ANIM_FADE_IN_TIME=x"},
		{"bad level fails validation", "OXY_ANIM_LOG_LEVEL=loud"},
		{"negative workers fail validation", "OXY_ANIM_WORKERS=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup, err := ParseEnv(tt.env)
			require.NoError(t, err)
			err = Default().ApplyEnv(lookup)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OXY_ANIM_TEST_DOTENV_VALUE=hello\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("OXY_ANIM_TEST_DOTENV_VALUE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "hello", os.Getenv("OXY_ANIM_TEST_DOTENV_VALUE"))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
