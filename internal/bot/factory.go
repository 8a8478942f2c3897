package bot

import (
	"fmt"

	"kombio/internal/domain"
)

// NewBrain creates the strategy for the given difficulty level.
func NewBrain(level domain.AILevel) (Brain, error) {
	switch level {
	case domain.AILevelBeginner:
		return &BeginnerBot{}, nil
	case domain.AILevelAdvanced:
		return &AdvancedBot{}, nil
	default:
		return nil, fmt.Errorf("unknown AI level: %q", level)
	}
}
