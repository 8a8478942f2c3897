// Package engine holds the event-sourced core of a Kombio match: the
// closed event and side-effect vocabularies, the pure reducer, and the
// single-writer dispatcher that serializes all game-affecting actions.
package engine

import (
	"kombio/internal/domain"

	"github.com/google/uuid"
)

// GameEvent is the closed set of intents the reducer consumes. The
// unexported marker method keeps the variant set sealed to this package;
// the reducer's default case treats an unknown variant as a fatal
// programming error.
type GameEvent interface {
	isGameEvent()
	// Name identifies the variant for logging.
	Name() string
}

// NewRoundStarted regenerates the deck, deals fresh hands, and advances
// the round starter.
type NewRoundStarted struct{}

// CardPlayed commits a validated combination for the acting participant,
// optionally keeping one card from the table.
type CardPlayed struct {
	Actor uuid.UUID
	Cards []domain.Card
	Keep  *domain.Card
}

// PlayerSkipped records that the acting participant passed on beating the
// table combination.
type PlayerSkipped struct {
	Actor uuid.UUID
}

// NextTurn advances the turn pointer round-robin and bumps the turn
// counter.
type NextTurn struct{}

// AITimerExpired fires when the AI thinking delay elapses. TurnID fences
// stale timers: a mismatch against the current turn counter means the turn
// already advanced and the event is ignored.
type AITimerExpired struct {
	TurnID int64
}

// QuitRequested asks the presentation layer to confirm leaving the match.
type QuitRequested struct{}

// GameOver and RoundOver are audit markers; the state change they follow
// was already applied by CardPlayed.
type GameOver struct{}
type RoundOver struct{}

// CardSelectionToggled flips the earmark flag on one of the turn holder's
// hand cards while a candidate combination is being built.
type CardSelectionToggled struct {
	Actor uuid.UUID
	Card  domain.Card
}

// SelectionCleared removes every earmark from the turn holder's hand.
type SelectionCleared struct {
	Actor uuid.UUID
}

func (NewRoundStarted) isGameEvent()      {}
func (CardPlayed) isGameEvent()           {}
func (PlayerSkipped) isGameEvent()        {}
func (NextTurn) isGameEvent()             {}
func (AITimerExpired) isGameEvent()       {}
func (QuitRequested) isGameEvent()        {}
func (GameOver) isGameEvent()             {}
func (RoundOver) isGameEvent()            {}
func (CardSelectionToggled) isGameEvent() {}
func (SelectionCleared) isGameEvent()     {}

func (NewRoundStarted) Name() string      { return "new_round_started" }
func (CardPlayed) Name() string           { return "card_played" }
func (PlayerSkipped) Name() string        { return "player_skipped" }
func (NextTurn) Name() string             { return "next_turn" }
func (AITimerExpired) Name() string       { return "ai_timer_expired" }
func (QuitRequested) Name() string        { return "quit_requested" }
func (GameOver) Name() string             { return "game_over" }
func (RoundOver) Name() string            { return "round_over" }
func (CardSelectionToggled) Name() string { return "card_selection_toggled" }
func (SelectionCleared) Name() string     { return "selection_cleared" }
