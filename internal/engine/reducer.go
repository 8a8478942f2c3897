package engine

import (
	"errors"
	"fmt"

	"kombio/internal/domain"

	"github.com/sirupsen/logrus"
)

var (
	// ErrIllegalMove means a CardPlayed event failed validation inside the
	// reducer. Callers pre-filter with the rules engine, so this is an
	// internal consistency failure, not a user mistake.
	ErrIllegalMove = errors.New("reducer: illegal move reached the reducer")
	// ErrWrongActor means an event named an actor who does not hold the turn.
	ErrWrongActor = errors.New("reducer: event actor does not hold the turn")
	// ErrWrongPhase means an event arrived in a phase where it is unreachable.
	ErrWrongPhase = errors.New("reducer: event not applicable in current phase")
	// ErrDeckExhausted means the deck ran out mid-deal.
	ErrDeckExhausted = errors.New("reducer: deck exhausted during deal")
	// ErrUnknownEvent guards the closed event set.
	ErrUnknownEvent = errors.New("reducer: unknown event variant")
)

// Reducer is the pure transition function of the match state machine. It
// consumes one event against the current snapshot and produces the next
// snapshot plus zero or more follow-up events and side effects. All game
// progression logic lives here.
type Reducer struct {
	deck domain.DeckSource
	log  *logrus.Entry
}

// NewReducer builds a reducer around the given deck source.
func NewReducer(deck domain.DeckSource, log *logrus.Entry) *Reducer {
	return &Reducer{deck: deck, log: log}
}

// Reduce applies one event. The input snapshot is never mutated; the
// returned snapshot is a fresh value with the turn-capability descriptor
// and hint text recomputed from scratch regardless of branch.
func (r *Reducer) Reduce(s *domain.GameState, ev GameEvent) (*domain.GameState, []GameEvent, []SideEffect, error) {
	next := s.Clone()
	var followUps []GameEvent
	var effects []SideEffect

	switch e := ev.(type) {
	case NewRoundStarted:
		var err error
		followUps, effects, err = r.startRound(next)
		if err != nil {
			return nil, nil, nil, err
		}

	case CardPlayed:
		var err error
		followUps, effects, err = r.playCards(next, e)
		if err != nil {
			return nil, nil, nil, err
		}

	case PlayerSkipped:
		var err error
		followUps, effects, err = r.skipTurn(next, e)
		if err != nil {
			return nil, nil, nil, err
		}

	case NextTurn:
		if next.Phase != domain.PhasePlaying {
			return nil, nil, nil, fmt.Errorf("%w: next_turn in %q", ErrWrongPhase, next.Phase)
		}
		next.CurrentTurn = (next.CurrentTurn + 1) % len(next.Participants)
		next.TurnCounter++
		if holder := next.CurrentParticipant(); holder.IsAI() && !next.AutoPlayDisabled {
			effects = append(effects, StartAITimer{TurnID: next.TurnCounter})
		}

	case AITimerExpired:
		if e.TurnID != next.TurnCounter {
			// Stale timer from a turn that already advanced. Not an error.
			r.log.WithFields(logrus.Fields{"timer_turn": e.TurnID, "current_turn": next.TurnCounter}).
				Debug("ignoring stale AI timer")
			break
		}
		if next.Phase != domain.PhasePlaying || !next.CurrentParticipant().IsAI() {
			r.log.WithField("turn", e.TurnID).Warn("AI timer fired for a non-AI turn, ignoring")
			break
		}
		effects = append(effects, ComputeAIMove{Actor: next.CurrentParticipant().ID})

	case QuitRequested:
		effects = append(effects, ShowQuitDialog{})

	case GameOver, RoundOver:
		// Audit markers. CardPlayed already applied the state change.

	case CardSelectionToggled:
		idx := next.ParticipantIndex(e.Actor)
		if idx < 0 || idx != next.CurrentTurn || next.Phase != domain.PhasePlaying {
			r.log.WithField("actor", e.Actor).Warn("selection toggle outside the actor's turn, ignoring")
			break
		}
		next.Participants[idx].Hand = next.Participants[idx].Hand.ToggleSelection(e.Card)

	case SelectionCleared:
		idx := next.ParticipantIndex(e.Actor)
		if idx < 0 || idx != next.CurrentTurn || next.Phase != domain.PhasePlaying {
			r.log.WithField("actor", e.Actor).Warn("selection clear outside the actor's turn, ignoring")
			break
		}
		next.Participants[idx].Hand = next.Participants[idx].Hand.ClearSelection()

	default:
		return nil, nil, nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}

	info, err := domain.CalculateTurnInfo(next)
	if err != nil {
		return nil, nil, nil, err
	}
	next.TurnInfo = info
	next.HintText = domain.BuildHint(next)

	return next, followUps, effects, nil
}

// startRound reshuffles, deals, and hands the turn to the next starter.
func (r *Reducer) startRound(next *domain.GameState) ([]GameEvent, []SideEffect, error) {
	if next.Phase == domain.PhaseEnded || next.Phase == domain.PhasePlaying {
		return nil, nil, fmt.Errorf("%w: new_round_started in %q", ErrWrongPhase, next.Phase)
	}
	count := len(next.Participants)
	if count < 2 {
		return nil, nil, fmt.Errorf("%w: %d participants", ErrWrongPhase, count)
	}

	deck := r.deck.Generate(true, count)
	if len(deck) < count*next.HandSize {
		return nil, nil, fmt.Errorf("%w: %d cards for %d participants", ErrDeckExhausted, len(deck), count)
	}

	next.RoundStarter = (next.RoundStarter + 1) % count
	for i := range next.Participants {
		next.Participants[i].Hand = domain.NewHand(deck[:next.HandSize])
		deck = deck[next.HandSize:]
	}
	next.Deck = deck
	next.Table = domain.Combination{}
	next.DiscardPile = nil
	next.SkipCounter = 0
	next.TableClearedBySkips = false
	next.LastActor = -1
	next.LastKeptCard = nil
	next.CurrentTurn = next.RoundStarter
	next.TurnCounter++
	next.Phase = domain.PhasePlaying

	effects := []SideEffect{PlaySound{Sound: domain.SoundDeal}}
	if starter := next.CurrentParticipant(); starter.IsAI() && !next.AutoPlayDisabled {
		effects = append(effects, StartAITimer{TurnID: next.TurnCounter})
	}
	return nil, effects, nil
}

// playCards applies a validated combination for the acting participant.
func (r *Reducer) playCards(next *domain.GameState, e CardPlayed) ([]GameEvent, []SideEffect, error) {
	if next.Phase != domain.PhasePlaying {
		return nil, nil, fmt.Errorf("%w: card_played in %q", ErrWrongPhase, next.Phase)
	}
	idx := next.ParticipantIndex(e.Actor)
	if idx < 0 || idx != next.CurrentTurn {
		return nil, nil, fmt.Errorf("%w: %s", ErrWrongActor, e.Actor)
	}

	actor := &next.Participants[idx]
	combo := domain.NewCombination(e.Cards)
	if !domain.IsValidMove(next.Table, combo, actor.Hand.Cards) {
		return nil, nil, fmt.Errorf("%w: %s onto %s", ErrIllegalMove, combo, next.Table)
	}
	if e.Keep != nil && !next.Table.ContainsCard(*e.Keep) {
		return nil, nil, fmt.Errorf("%w: kept card %s not on the table", ErrIllegalMove, e.Keep)
	}

	oldTable := next.Table
	actor.Hand = actor.Hand.Remove(e.Cards).ClearSelection()

	if domain.HasWonRound(actor.Hand.Cards) {
		// Round won. Scores drop by remaining hand size for everyone,
		// winner included (whose empty hand makes it a no-op).
		next.DiscardPile = append(next.DiscardPile, oldTable.Cards...)
		next.Table = combo
		next.LastActor = idx
		next.LastKeptCard = nil
		domain.UpdateScores(next.Participants)

		if domain.IsGameOver(next.Participants) {
			next.Phase = domain.PhaseEnded
			names := winnerNames(next.Participants)
			return []GameEvent{GameOver{}},
				[]SideEffect{ShowGameOverDialog{WinnerNames: names}, PlaySound{Sound: domain.SoundFanfare}},
				nil
		}
		next.Phase = domain.PhaseRoundOver
		return []GameEvent{RoundOver{}},
			[]SideEffect{ShowRoundOverDialog{WinnerName: actor.Name}, PlaySound{Sound: domain.SoundFanfare}},
			nil
	}

	// Table cards go to discard except the kept one, which returns to the
	// actor's hand.
	for _, tc := range oldTable.Cards {
		if e.Keep != nil && domain.SameCard(tc, *e.Keep) {
			continue
		}
		next.DiscardPile = append(next.DiscardPile, tc)
	}
	if e.Keep != nil {
		actor.Hand = actor.Hand.Add(*e.Keep)
		kept := *e.Keep
		kept.Selected = false
		next.LastKeptCard = &kept
	} else {
		next.LastKeptCard = nil
	}

	next.Table = combo
	next.SkipCounter = 0
	next.TableClearedBySkips = false
	next.LastActor = idx

	return []GameEvent{NextTurn{}}, []SideEffect{PlaySound{Sound: domain.SoundPlay}}, nil
}

// skipTurn records a pass and fires the cascade when everyone else skipped.
func (r *Reducer) skipTurn(next *domain.GameState, e PlayerSkipped) ([]GameEvent, []SideEffect, error) {
	if next.Phase != domain.PhasePlaying {
		return nil, nil, fmt.Errorf("%w: player_skipped in %q", ErrWrongPhase, next.Phase)
	}
	idx := next.ParticipantIndex(e.Actor)
	if idx < 0 || idx != next.CurrentTurn {
		return nil, nil, fmt.Errorf("%w: %s", ErrWrongActor, e.Actor)
	}
	if next.Table.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: skip with an empty table", ErrIllegalMove)
	}

	effects := []SideEffect{PlaySound{Sound: domain.SoundSkip}}
	next.SkipCounter++
	if next.SkipCounter >= len(next.Participants)-1 {
		// Skip cascade: everyone but the last player to play has skipped.
		// The table goes to discard and the counter resets; the NextTurn
		// follow-up lands the turn back on the lone non-skipper. All-in
		// eligibility does not reopen.
		next.DiscardPile = append(next.DiscardPile, next.Table.Cards...)
		next.Table = domain.Combination{}
		next.SkipCounter = 0
		next.TableClearedBySkips = true
		effects = append(effects, PlaySound{Sound: domain.SoundSweep})
	}

	return []GameEvent{NextTurn{}}, effects, nil
}

func winnerNames(participants []domain.Participant) []string {
	winners := domain.GetWinners(participants)
	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Name
	}
	return names
}
