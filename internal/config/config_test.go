package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, int32(15), c.PointLimit)
	assert.Equal(t, 9, c.HandSize)
	assert.Equal(t, 800, c.BotMinDelayMs)
	assert.Equal(t, 2200, c.BotMaxDelayMs)
	assert.False(t, c.Debug.DisableAutoPlay)
	assert.Zero(t, c.Debug.FixedSeed)
}

func TestGetBeforeLoadFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, Default().PointLimit, Get().PointLimit)
}

// Load latches its result process-wide, so the file-backed path gets a
// single test that exercises both the parse and the override precedence.
func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"point_limit": 21,
		"bot_min_delay_ms": 100,
		"debug": {"fixed_seed": 99}
	}`), 0o644))

	t.Setenv("KOMBIO_BOT_MIN_DELAY_MS", "50")

	require.NoError(t, Load(path))
	c := Get()
	assert.Equal(t, int32(21), c.PointLimit)
	assert.Equal(t, 9, c.HandSize, "unset fields keep their defaults")
	assert.Equal(t, 50, c.BotMinDelayMs, "environment wins over file")
	assert.Equal(t, int64(99), c.Debug.FixedSeed)

	// A second Load is a no-op regardless of path.
	require.NoError(t, Load(filepath.Join(t.TempDir(), "absent.json")))
	assert.Equal(t, int32(21), Get().PointLimit)
}

func TestEnvInt(t *testing.T) {
	t.Setenv("KOMBIO_TEST_VALUE", "12")
	v, ok := envInt("KOMBIO_TEST_VALUE")
	require.True(t, ok)
	assert.Equal(t, 12, v)

	t.Setenv("KOMBIO_TEST_VALUE", "notanumber")
	_, ok = envInt("KOMBIO_TEST_VALUE")
	assert.False(t, ok)

	_, ok = envInt("KOMBIO_TEST_UNSET")
	assert.False(t, ok)
}
