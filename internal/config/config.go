package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// DebugFlags tune behavior for development builds.
type DebugFlags struct {
	// DisableAutoPlay stops AI turns from firing on a timer; the
	// presentation layer triggers them manually instead.
	DisableAutoPlay bool `json:"disable_auto_play"`
	// FixedSeed makes shuffles reproducible when non-zero.
	FixedSeed int64 `json:"fixed_seed"`
	// VerboseEvents logs every dispatched event at debug level.
	VerboseEvents bool `json:"verbose_events"`
}

// GameConfig holds the tunable match parameters.
type GameConfig struct {
	PointLimit    int32      `json:"point_limit"`
	HandSize      int        `json:"hand_size"`
	BotMinDelayMs int        `json:"bot_min_delay_ms"`
	BotMaxDelayMs int        `json:"bot_max_delay_ms"`
	Debug         DebugFlags `json:"debug"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in configuration.
func Default() *GameConfig {
	return &GameConfig{
		PointLimit:    15,
		HandSize:      9,
		BotMinDelayMs: 800,
		BotMaxDelayMs: 2200,
	}
}

// Load reads the game configuration from the given path exactly once and
// applies environment overrides. A missing file falls back to defaults;
// malformed content is an error.
func Load(path string) error {
	loadOnce.Do(func() {
		c := Default()

		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, c); err != nil {
				loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
				return
			}
		} else if !os.IsNotExist(err) {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		applyEnv(c)
		cfg = c
	})
	return loadErr
}

// Get returns the loaded configuration, or defaults if Load was never
// called.
func Get() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// applyEnv overlays KOMBIO_* environment variables, sourcing a local .env
// file first when present.
func applyEnv(c *GameConfig) {
	_ = godotenv.Load()

	if v, ok := envInt("KOMBIO_POINT_LIMIT"); ok {
		c.PointLimit = int32(v)
	}
	if v, ok := envInt("KOMBIO_HAND_SIZE"); ok {
		c.HandSize = v
	}
	if v, ok := envInt("KOMBIO_BOT_MIN_DELAY_MS"); ok {
		c.BotMinDelayMs = v
	}
	if v, ok := envInt("KOMBIO_BOT_MAX_DELAY_MS"); ok {
		c.BotMaxDelayMs = v
	}
	if v := os.Getenv("KOMBIO_DISABLE_AUTO_PLAY"); v == "true" {
		c.Debug.DisableAutoPlay = true
	}
	if v, ok := envInt("KOMBIO_FIXED_SEED"); ok {
		c.Debug.FixedSeed = int64(v)
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}
