package engine

import (
	"kombio/internal/domain"

	"github.com/google/uuid"
)

// SideEffect is the closed set of impure jobs the reducer may request.
// The dispatcher hands them to the manager in order, synchronously,
// before processing the next queued event.
type SideEffect interface {
	isSideEffect()
	Name() string
}

// StartAITimer schedules the AI thinking delay for the current turn.
// TurnID is the turn counter at scheduling time; the resulting
// AITimerExpired event is inert if the turn has moved on.
type StartAITimer struct {
	TurnID int64
}

// ComputeAIMove asks the heuristics engine to decide for the given AI
// participant and re-inject the result as a CardPlayed or PlayerSkipped
// event.
type ComputeAIMove struct {
	Actor uuid.UUID
}

// ShowRoundOverDialog requests the round-end modal.
type ShowRoundOverDialog struct {
	WinnerName string
}

// ShowGameOverDialog requests the match-end modal.
type ShowGameOverDialog struct {
	WinnerNames []string
}

// ShowQuitDialog requests the quit confirmation modal.
type ShowQuitDialog struct{}

// PlaySound queues a one-shot audio cue for the presentation layer.
type PlaySound struct {
	Sound domain.SoundCue
}

func (StartAITimer) isSideEffect()        {}
func (ComputeAIMove) isSideEffect()       {}
func (ShowRoundOverDialog) isSideEffect() {}
func (ShowGameOverDialog) isSideEffect()  {}
func (ShowQuitDialog) isSideEffect()      {}
func (PlaySound) isSideEffect()           {}

func (StartAITimer) Name() string        { return "start_ai_timer" }
func (ComputeAIMove) Name() string       { return "compute_ai_move" }
func (ShowRoundOverDialog) Name() string { return "show_round_over_dialog" }
func (ShowGameOverDialog) Name() string  { return "show_game_over_dialog" }
func (ShowQuitDialog) Name() string      { return "show_quit_dialog" }
func (PlaySound) Name() string           { return "play_sound" }
