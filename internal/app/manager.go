// Package app owns the Kombio match façade. The Manager exposes intent
// methods to its collaborators (presentation layer, AI timer, remote
// transport), an observable stream of state snapshots, and performs the
// one genuinely impure job in the system: executing the side effects the
// reducer asks for.
package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"kombio/internal/bot"
	"kombio/internal/config"
	"kombio/internal/domain"
	"kombio/internal/engine"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoMatch means no match has been started yet.
	ErrNoMatch = errors.New("no active match")
	// ErrIllegalMove is the expected rejection for a play that fails
	// pre-validation. It never reaches the reducer.
	ErrIllegalMove = errors.New("illegal move")
	// ErrNotYourTurn rejects an intent from a participant who does not
	// hold the turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCannotSkip rejects a skip when leading an empty table.
	ErrCannotSkip = errors.New("cannot skip on an empty table")
	// ErrTooFewPlayers rejects a roster with fewer than two seats.
	ErrTooFewPlayers = errors.New("not enough participants to start")
)

// PlayerSetup describes one seat when starting a new match.
type PlayerSetup struct {
	Name        string
	AvatarIndex int
	Control     domain.ControlKind
	Level       domain.AILevel
}

// Manager is the explicitly constructed, explicitly owned engine handle.
// All access is serialized through its mutex: intent methods, timer
// callbacks, and the remote adapter all funnel into the dispatcher under
// the same lock, preserving the single-writer discipline.
type Manager struct {
	mu sync.Mutex

	cfg    *config.GameConfig
	log    *logrus.Entry
	rng    *rand.Rand
	stream *Stream
	fatal  chan error

	dispatcher *engine.Dispatcher
	brains     map[uuid.UUID]bot.Brain
}

// NewManager builds a manager. A nil rng is seeded from the config's fixed
// seed when set, otherwise from the clock.
func NewManager(cfg *config.GameConfig, log *logrus.Entry, rng *rand.Rand) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if rng == nil {
		seed := cfg.Debug.FixedSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Manager{
		cfg:    cfg,
		log:    log,
		rng:    rng,
		stream: NewStream(log),
		fatal:  make(chan error, 1),
	}
}

// Subscribe registers an observer on the state stream.
func (m *Manager) Subscribe() (<-chan *domain.GameState, func()) {
	return m.stream.Subscribe()
}

// Fatal exposes the fatal-error channel. A value here means an internal
// invariant was violated; the presentation layer must show a blocking,
// unrecoverable notice.
func (m *Manager) Fatal() <-chan error {
	return m.fatal
}

// State returns the latest snapshot, or nil before the first match.
func (m *Manager) State() *domain.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return nil
	}
	return m.dispatcher.State()
}

// StartNewGame discards any running match and constructs a fresh one from
// the roster, then deals the first round.
func (m *Manager) StartNewGame(roster []PlayerSetup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(roster) < 2 {
		return ErrTooFewPlayers
	}

	participants := make([]domain.Participant, len(roster))
	brains := make(map[uuid.UUID]bot.Brain)
	for i, setup := range roster {
		p := domain.Participant{
			ID:          uuid.New(),
			Name:        setup.Name,
			AvatarIndex: setup.AvatarIndex,
			Control:     setup.Control,
			Level:       setup.Level,
		}
		if p.Control == domain.ControlAI {
			brain, err := bot.NewBrain(p.Level)
			if err != nil {
				return err
			}
			brains[p.ID] = brain
		}
		participants[i] = p
	}
	m.brains = brains

	initial := domain.NewGameState(participants, m.cfg.PointLimit, m.cfg.HandSize, m.cfg.Debug.DisableAutoPlay)
	reducer := engine.NewReducer(domain.NewDeckSource(m.rng), m.log)
	m.dispatcher = engine.NewDispatcher(reducer, initial, m.stream.Publish, m, m.fatal, m.log)

	m.stream.Publish(initial)
	m.dispatcher.Enqueue(engine.NewRoundStarted{})
	return nil
}

// StartNewRound deals the next round after a round-over pause.
func (m *Manager) StartNewRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	m.dispatcher.Enqueue(engine.NewRoundStarted{})
	return nil
}

// PlayCombination validates and commits a play for the given actor. An
// illegal attempt is rejected here and never enqueued; the reducer treats
// any invalid play that slips through as a fatal inconsistency.
func (m *Manager) PlayCombination(actor uuid.UUID, cards []domain.Card, keep *domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}

	s := m.dispatcher.State()
	idx := s.ParticipantIndex(actor)
	if idx < 0 || idx != s.CurrentTurn || s.Phase != domain.PhasePlaying {
		return ErrNotYourTurn
	}
	combo := domain.NewCombination(cards)
	if !domain.IsValidMove(s.Table, combo, s.Participants[idx].Hand.Cards) {
		return ErrIllegalMove
	}
	if keep != nil && !s.Table.ContainsCard(*keep) {
		return ErrIllegalMove
	}

	m.dispatcher.Enqueue(engine.CardPlayed{Actor: actor, Cards: combo.Cards, Keep: keep})
	return nil
}

// SkipTurn records a pass for the given actor.
func (m *Manager) SkipTurn(actor uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}

	s := m.dispatcher.State()
	idx := s.ParticipantIndex(actor)
	if idx < 0 || idx != s.CurrentTurn || s.Phase != domain.PhasePlaying {
		return ErrNotYourTurn
	}
	if s.Table.IsEmpty() {
		return ErrCannotSkip
	}

	m.dispatcher.Enqueue(engine.PlayerSkipped{Actor: actor})
	return nil
}

// ToggleCardSelection earmarks or clears one hand card while the actor
// builds a candidate combination.
func (m *Manager) ToggleCardSelection(actor uuid.UUID, card domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	m.dispatcher.Enqueue(engine.CardSelectionToggled{Actor: actor, Card: card})
	return nil
}

// ClearSelection removes every earmark from the actor's hand.
func (m *Manager) ClearSelection(actor uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	m.dispatcher.Enqueue(engine.SelectionCleared{Actor: actor})
	return nil
}

// TriggerAIMove fires the current AI turn immediately. Used when automatic
// play is disabled, and harmless otherwise: the turn counter fences it the
// same way it fences timers.
func (m *Manager) TriggerAIMove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	s := m.dispatcher.State()
	m.dispatcher.Enqueue(engine.AITimerExpired{TurnID: s.TurnCounter})
	return nil
}

// Quit asks for the quit-confirmation dialog. Game progression is
// untouched until the presentation layer acts on the answer.
func (m *Manager) Quit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	m.dispatcher.Enqueue(engine.QuitRequested{})
	return nil
}

// SetAutoPlay enables or disables automatic AI turns. UI-adjacent: the
// flag only controls whether timers get scheduled, so it is patched
// outside the reducer.
func (m *Manager) SetAutoPlay(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return ErrNoMatch
	}
	m.patchLocked(func(s *domain.GameState) {
		s.AutoPlayDisabled = !enabled
	})
	return nil
}

// AcknowledgeDialog clears the pending dialog after the presentation layer
// has shown it.
func (m *Manager) AcknowledgeDialog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return
	}
	m.patchLocked(func(s *domain.GameState) {
		s.PendingDialog = nil
	})
}

// ConsumeNotifications drains and acknowledges the pending one-shot UI
// notifications.
func (m *Manager) ConsumeNotifications() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatcher == nil {
		return nil
	}
	pending := m.dispatcher.State().Notifications
	if len(pending) == 0 {
		return nil
	}
	out := append([]domain.Notification{}, pending...)
	m.patchLocked(func(s *domain.GameState) {
		s.Notifications = nil
	})
	return out
}

// patchLocked applies a UI-adjacent partial update outside the reducer.
// The derived fields are recomputed the same way the reducer recomputes
// them, so observers never see a stale capability descriptor.
func (m *Manager) patchLocked(apply func(*domain.GameState)) {
	next := m.dispatcher.State().Clone()
	apply(next)

	info, err := domain.CalculateTurnInfo(next)
	if err != nil {
		m.log.WithError(err).Error("fatal error during partial update")
		select {
		case m.fatal <- err:
		default:
		}
		return
	}
	next.TurnInfo = info
	next.HintText = domain.BuildHint(next)
	m.dispatcher.Replace(next)
}
