package ports

import "context"

// SavedPlayer is one remembered seat from the last local match setup.
type SavedPlayer struct {
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
	IsAI        bool   `json:"is_ai"`
	Level       string `json:"level"`
}

// Settings holds the locally persisted preferences and roster.
type Settings struct {
	PointLimit int32         `json:"point_limit"`
	SoundOn    bool          `json:"sound_on"`
	Roster     []SavedPlayer `json:"roster"`
}

// SettingsStore defines the interface for persisting local settings
// between sessions.
type SettingsStore interface {
	// Load retrieves the saved settings, or (nil, nil) when nothing has
	// been saved yet.
	Load(ctx context.Context) (*Settings, error)

	// Save overwrites the saved settings.
	Save(ctx context.Context, s *Settings) error
}
