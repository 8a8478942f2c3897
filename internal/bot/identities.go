package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"kombio/internal/domain"
)

// Identity is a display profile for an AI participant.
type Identity struct {
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
	Level       string `json:"level"` // "beginner" or "advanced"
}

var (
	identities []Identity
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads the AI profile pool from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
	})
	return loadErr
}

// GetIdentity returns an identity for an AI seat by index (mod pool size).
// Without a loaded pool it falls back to a generated profile.
func GetIdentity(index int) Identity {
	if len(identities) == 0 {
		return Identity{
			Name:        fmt.Sprintf("AI Player %d", index+1),
			AvatarIndex: index,
			Level:       string(domain.AILevelBeginner),
		}
	}
	return identities[index%len(identities)]
}

// ParseLevel maps an identity level string to the domain AI level,
// defaulting to beginner for unknown values.
func ParseLevel(level string) domain.AILevel {
	if level == string(domain.AILevelAdvanced) {
		return domain.AILevelAdvanced
	}
	return domain.AILevelBeginner
}
