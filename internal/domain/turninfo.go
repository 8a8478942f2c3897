package domain

import (
	"errors"
	"fmt"
)

// ErrAffordanceConflict signals that more than one of the mutually
// exclusive play/skip affordances derived as active. This is an internal
// consistency failure, never a recoverable condition.
var ErrAffordanceConflict = errors.New("turn info: multiple exclusive affordances active")

// TurnInfo is the derived turn-capability descriptor: what the current
// turn holder may do right now. It is recomputed from scratch after every
// reducer step and never patched incrementally.
type TurnInfo struct {
	// CanSkip is true when skipping is a legal action at all.
	CanSkip bool

	// CanPlayAllIn is true when the holder may play their entire hand as
	// one combination, bypassing the normal size constraint. Only open on
	// the true first move of a round.
	CanPlayAllIn bool

	// Exactly zero or one of the following three is true.
	PlayActive        bool // current selection forms a legal move
	SkipActive        bool // plain skip available
	SkipCounterActive bool // skip available and it would complete the cascade

	// RemoveSelectionActive is true while any card is earmarked.
	RemoveSelectionActive bool

	// AIManualTrigger is true when the holder is AI and automatic play is
	// disabled, so the presentation layer must trigger the move.
	AIManualTrigger bool
}

// IsFirstMoveOfRound reports whether the table is untouched this round: no
// combination on it, no skips recorded, and no skip cascade has cleared it.
func IsFirstMoveOfRound(s *GameState) bool {
	return s.Table.IsEmpty() && s.SkipCounter == 0 && !s.TableClearedBySkips
}

// CalculateTurnInfo derives the capability descriptor for the current turn
// holder. Outside the playing phase every capability is off. A violation
// of the affordance exclusivity invariant is returned as an error.
func CalculateTurnInfo(s *GameState) (TurnInfo, error) {
	var info TurnInfo
	if s.Phase != PhasePlaying || len(s.Participants) == 0 {
		return info, nil
	}

	holder := s.CurrentParticipant()
	selected := holder.Hand.SelectedCards()
	firstMove := IsFirstMoveOfRound(s)

	info.CanSkip = !s.Table.IsEmpty()
	info.CanPlayAllIn = firstMove && !holder.Hand.IsEmpty() &&
		IsValidCombination(NewCombination(holder.Hand.Cards))
	info.RemoveSelectionActive = len(selected) > 0
	info.AIManualTrigger = holder.IsAI() && s.AutoPlayDisabled

	if len(selected) > 0 {
		if IsValidMove(s.Table, NewCombination(selected), holder.Hand.Cards) {
			info.PlayActive = true
		}
	} else if info.CanSkip {
		if s.SkipCounter == len(s.Participants)-2 {
			info.SkipCounterActive = true
		} else {
			info.SkipActive = true
		}
	}

	active := 0
	for _, f := range []bool{info.PlayActive, info.SkipActive, info.SkipCounterActive} {
		if f {
			active++
		}
	}
	if active > 1 {
		return TurnInfo{}, fmt.Errorf("%w: play=%t skip=%t skipCounter=%t",
			ErrAffordanceConflict, info.PlayActive, info.SkipActive, info.SkipCounterActive)
	}
	return info, nil
}

// BuildHint renders the human-readable turn hint from the snapshot: what
// the last actor did and whose turn it is now.
func BuildHint(s *GameState) string {
	if len(s.Participants) == 0 {
		return ""
	}
	switch s.Phase {
	case PhaseLobby:
		return "Waiting for the first deal"
	case PhaseRoundOver:
		if s.LastActor >= 0 {
			return fmt.Sprintf("Round over: %s emptied their hand", s.Participants[s.LastActor].Name)
		}
		return "Round over"
	case PhaseEnded:
		winners := GetWinners(s.Participants)
		if len(winners) == 1 {
			return fmt.Sprintf("Game over: %s wins", winners[0].Name)
		}
		return "Game over: tied"
	}

	holder := s.CurrentParticipant()
	if s.LastActor < 0 {
		return fmt.Sprintf("%s leads the round", holder.Name)
	}
	if s.Table.IsEmpty() {
		return fmt.Sprintf("Everyone skipped, %s restarts on an empty table", holder.Name)
	}
	last := s.Participants[s.LastActor]
	hint := fmt.Sprintf("%s played %d", last.Name, s.Table.Value())
	if s.LastKeptCard != nil {
		hint += fmt.Sprintf(", kept %s", s.LastKeptCard)
	}
	return hint + fmt.Sprintf(", %s to beat it", holder.Name)
}
