package app

import (
	"time"

	"kombio/internal/domain"
	"kombio/internal/engine"

	"github.com/google/uuid"
)

// HandleEffect executes the side effects the reducer requested. It runs
// inside the dispatcher's drain loop, which runs under the manager mutex,
// so it must not lock; only the deferred timer callback re-enters through
// the front door.
func (m *Manager) HandleEffect(effect engine.SideEffect) {
	switch eff := effect.(type) {
	case engine.StartAITimer:
		m.scheduleAITimer(eff.TurnID)

	case engine.ComputeAIMove:
		m.computeAIMove(eff.Actor)

	case engine.ShowRoundOverDialog:
		m.patchLocked(func(s *domain.GameState) {
			if s.PendingDialog != nil {
				return
			}
			s.PendingDialog = &domain.Dialog{
				Kind:        domain.DialogRoundOver,
				WinnerNames: []string{eff.WinnerName},
			}
		})

	case engine.ShowGameOverDialog:
		m.patchLocked(func(s *domain.GameState) {
			if s.PendingDialog != nil {
				return
			}
			s.PendingDialog = &domain.Dialog{
				Kind:        domain.DialogGameOver,
				WinnerNames: eff.WinnerNames,
			}
		})

	case engine.ShowQuitDialog:
		m.patchLocked(func(s *domain.GameState) {
			if s.PendingDialog != nil {
				return
			}
			s.PendingDialog = &domain.Dialog{Kind: domain.DialogQuit}
		})

	case engine.PlaySound:
		m.patchLocked(func(s *domain.GameState) {
			s.Notifications = append(s.Notifications, domain.Notification{
				Kind:  domain.NotificationSound,
				Sound: eff.Sound,
			})
		})
	}
}

// scheduleAITimer arms a one-shot think delay for the AI holding the given
// turn. The turn id travels with the expiry so a stale timer firing after
// the turn has moved on is discarded by the reducer.
func (m *Manager) scheduleAITimer(turnID int64) {
	spread := m.cfg.BotMaxDelayMs - m.cfg.BotMinDelayMs
	delayMs := m.cfg.BotMinDelayMs
	if spread > 0 {
		delayMs += m.rng.Intn(spread + 1)
	}

	time.AfterFunc(time.Duration(delayMs)*time.Millisecond, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dispatcher == nil {
			return
		}
		m.dispatcher.Enqueue(engine.AITimerExpired{TurnID: turnID})
	})
}

// computeAIMove runs the actor's brain over the current snapshot and feeds
// the chosen move back as an ordinary event. Move calculation is pure and
// fast, so it runs synchronously in the drain.
func (m *Manager) computeAIMove(actor uuid.UUID) {
	s := m.dispatcher.State()
	brain, ok := m.brains[actor]
	if !ok {
		m.log.WithField("participant", actor).Warn("ai move requested for participant without a brain")
		return
	}
	idx := s.ParticipantIndex(actor)
	if idx < 0 {
		m.log.WithField("participant", actor).Warn("ai move requested for unknown participant")
		return
	}

	move, err := brain.CalculateMove(s.Participants[idx].Hand.Cards, s.Table)
	if err != nil {
		m.log.WithError(err).Error("fatal error computing ai move")
		select {
		case m.fatal <- err:
		default:
		}
		return
	}

	if move.Skip {
		m.dispatcher.Enqueue(engine.PlayerSkipped{Actor: actor})
		return
	}
	m.dispatcher.Enqueue(engine.CardPlayed{Actor: actor, Cards: move.Cards, Keep: move.Keep})
}
