package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"kombio/internal/app"
	"kombio/internal/bot"
	"kombio/internal/config"
	"kombio/internal/domain"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

const (
	maxSeats = 4
	botIDTag = "bot:"
)

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The Manager owns the game; the handler owns seats, presences
// and the tick-fenced bot pacing around it.
type MatchState struct {
	Seats     [maxSeats]string            `json:"seats"` // user IDs, "" means empty
	OwnerSeat int                         `json:"owner_seat"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`

	Manager           *app.Manager      `json:"-"`
	ParticipantBySeat map[int]uuid.UUID `json:"-"`

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`           // seconds a bot waits, lower bound
	BotMaxDelay          int   `json:"bot_max_delay"`           // seconds a bot waits, upper bound
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // seconds before auto-filling with bots
	BotWaitUntil         int64 `json:"bot_wait_until"`          // tick when the pending bot acts
	LastSinglePlayerTick int64 `json:"last_single_player_tick"` // tick when a lone human started waiting
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return maxSeats - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// inLobby reports whether no deal has happened yet, so seats may still be
// reshuffled freely.
func (ms *MatchState) inLobby() bool {
	if ms.Manager == nil {
		return true
	}
	s := ms.Manager.State()
	return s == nil || s.Phase == domain.PhaseLobby
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return strings.HasPrefix(userId, botIDTag)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or
// -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	// AI turns are driven off the match tick, not wall-clock timers, so
	// the manager's own auto-play stays disabled.
	cfg := config.Default()
	cfg.Debug.DisableAutoPlay = true

	state := &MatchState{
		OwnerSeat:         -1,
		Presences:         make(map[string]runtime.Presence),
		Manager:           app.NewManager(cfg, logrus.NewEntry(logrus.StandardLogger()), rand.New(rand.NewSource(time.Now().UnixNano()))),
		ParticipantBySeat: make(map[int]uuid.UUID),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["kombio_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["kombio_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["kombio_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["kombio_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}

	labelBytes, err := json.Marshal(MatchLabel{Open: state.GetOpenSeatsCount(), Game: "kombio", Phase: string(domain.PhaseLobby)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace (lobby only).
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.inLobby() {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := -1
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = i
				break
			}
		}

		if assigned < 0 && matchState.inLobby() {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					matchState.Seats[i] = p.GetUserId()
					assigned = i
					break
				}
			}
		}

		if assigned < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}

		evt, _ := json.Marshal(PlayerJoinedEvent{UserID: p.GetUserId(), Seat: assigned, IsOwner: assigned == matchState.OwnerSeat})
		_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)
	}

	// Owner seat must be held by a human.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshots(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)

				evt, _ := json.Marshal(PlayerLeftEvent{UserID: p.GetUserId(), Seat: i})
				_ = dispatcher.BroadcastMessage(OpPlayerLeft, evt, nil, nil, true)
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// An unrecoverable engine inconsistency kills the match.
	select {
	case err := <-matchState.Manager.Fatal():
		logger.Error("MatchLoop: Fatal engine error, terminating match: %v", err)
		return nil
	default:
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(matchState, dispatcher, logger, msg)
		case OpPlayCombination:
			mh.handlePlayCombination(matchState, dispatcher, logger, msg)
		case OpSkipTurn:
			mh.handleSkipTurn(matchState, dispatcher, logger, msg)
		case OpStartNewRound:
			mh.handleStartNewRound(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with bots when a lone human has waited.
	if state.inLobby() {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetIdentity(i)
						state.Seats[i] = botUserID(i)
						logger.Info("processBots: Added bot %s to seat %d", identity.Name, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastSnapshots(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Pace AI turns off the match tick.
	s := state.Manager.State()
	if s == nil || s.Phase != domain.PhasePlaying {
		state.BotWaitUntil = 0
		return
	}
	if !s.CurrentParticipant().IsAI() {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot turn, acting at tick %d (current %d)", state.BotWaitUntil, state.Tick)
		return
	}

	if state.Tick >= state.BotWaitUntil {
		state.BotWaitUntil = 0
		if err := state.Manager.TriggerAIMove(); err != nil {
			logger.Error("processBots: Failed to trigger AI move: %v", err)
			return
		}
		mh.broadcastSnapshots(state, dispatcher, logger)
	}
}

func botUserID(seat int) string {
	return botIDTag + strconv.Itoa(seat)
}

func (mh *matchHandler) senderSeat(state *MatchState, userID string) int {
	for i, seatUserId := range state.Seats {
		if seatUserId == userID {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	if state.GetOccupiedSeatCount() < 2 {
		logger.Warn("StartGame: Cannot start with %d players. Need at least 2.", state.GetOccupiedSeatCount())
		return
	}

	roster := make([]app.PlayerSetup, 0, maxSeats)
	seats := make([]int, 0, maxSeats)
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		setup := app.PlayerSetup{Name: userID, AvatarIndex: i}
		if isBotUserId(userID) {
			identity := bot.GetIdentity(i)
			setup.Name = identity.Name
			setup.AvatarIndex = identity.AvatarIndex
			setup.Control = domain.ControlAI
			setup.Level = bot.ParseLevel(identity.Level)
		} else {
			if p, ok := state.Presences[userID]; ok {
				setup.Name = p.GetUsername()
			}
			setup.Control = domain.ControlRemote
		}
		roster = append(roster, setup)
		seats = append(seats, i)
	}

	if err := state.Manager.StartNewGame(roster); err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}

	// Participants come back in roster order; remember which seat each
	// participant id belongs to for intent routing.
	state.ParticipantBySeat = make(map[int]uuid.UUID, len(seats))
	for i, p := range state.Manager.State().Participants {
		state.ParticipantBySeat[seats[i]] = p.ID
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshots(state, dispatcher, logger)

	logger.Info("StartGame: Game started with %d players.", len(roster))
}

func (mh *matchHandler) handlePlayCombination(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	actor, ok := state.ParticipantBySeat[senderSeat]
	if !ok {
		logger.Warn("handlePlayCombination: User %s (seat %d) is not in the running game.", senderID, senderSeat)
		return
	}

	request := &PlayCombinationRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Error("handlePlayCombination: Failed to unmarshal request: %v", err)
		return
	}

	var keep *domain.Card
	if request.Keep != nil {
		kept := toDomainCard(*request.Keep)
		keep = &kept
	}

	if err := state.Manager.PlayCombination(actor, toDomainCards(request.Cards), keep); err != nil {
		logger.Warn("handlePlayCombination: User %s (seat %d) failed to play: %v. Requested: %+v", senderID, senderSeat, err, request.Cards)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) handleSkipTurn(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	actor, ok := state.ParticipantBySeat[senderSeat]
	if !ok {
		logger.Warn("handleSkipTurn: User %s (seat %d) is not in the running game.", senderID, senderSeat)
		return
	}

	if err := state.Manager.SkipTurn(actor); err != nil {
		logger.Warn("handleSkipTurn: User %s (seat %d) failed to skip: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartNewRound(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if senderSeat != state.OwnerSeat {
		logger.Warn("handleStartNewRound: User %s is not owner.", senderID)
		return
	}

	if err := state.Manager.StartNewRound(); err != nil {
		logger.Error("handleStartNewRound: Failed to start round: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshots(state, dispatcher, logger)
}

// broadcastSnapshots sends every connected human its private view of the
// match: own hand in full, everyone else reduced to a card count. The
// pending sounds and dialog ride along and are acknowledged here, so each
// one-shot reaches the clients exactly once.
func (mh *matchHandler) broadcastSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	s := state.Manager.State()

	var sounds []string
	for _, n := range state.Manager.ConsumeNotifications() {
		if n.Kind == domain.NotificationSound {
			sounds = append(sounds, string(n.Sound))
		}
	}
	var dialog string
	var winnerNames []string
	if s != nil && s.PendingDialog != nil {
		dialog = string(s.PendingDialog.Kind)
		winnerNames = s.PendingDialog.WinnerNames
		state.Manager.AcknowledgeDialog()
	}

	for seat, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		presence, ok := state.Presences[userID]
		if !ok {
			continue
		}

		snapshot := mh.buildSnapshot(state, s, seat)
		snapshot.Sounds = sounds
		snapshot.Dialog = dialog
		snapshot.WinnerNames = winnerNames

		bytes, err := json.Marshal(snapshot)
		if err != nil {
			logger.Error("broadcastSnapshots: Failed to marshal snapshot: %v", err)
			return
		}
		_ = dispatcher.BroadcastMessage(OpStateSnapshot, bytes, []runtime.Presence{presence}, nil, true)
	}
}

func (mh *matchHandler) buildSnapshot(state *MatchState, s *domain.GameState, recipientSeat int) *StateSnapshot {
	snapshot := &StateSnapshot{
		Phase:           string(domain.PhaseLobby),
		CurrentTurnSeat: -1,
		Tick:            state.Tick,
	}

	for seat, userID := range state.Seats {
		if userID == "" {
			continue
		}
		view := SeatView{
			Seat:        seat,
			UserID:      userID,
			DisplayName: userID,
			IsOwner:     seat == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
		}
		if p, ok := state.Presences[userID]; ok {
			view.DisplayName = p.GetUsername()
		} else if view.IsBot {
			identity := bot.GetIdentity(seat)
			view.DisplayName = identity.Name
			view.AvatarIndex = identity.AvatarIndex
		}

		if s != nil {
			if id, ok := state.ParticipantBySeat[seat]; ok {
				if idx := s.ParticipantIndex(id); idx >= 0 {
					p := s.Participants[idx]
					view.DisplayName = p.Name
					view.AvatarIndex = p.AvatarIndex
					view.Score = p.Score
					view.HandCount = p.Hand.Size()
					if seat == recipientSeat {
						view.Hand = toWireCards(p.Hand.Cards)
					}
				}
			}
		}
		snapshot.Seats = append(snapshot.Seats, view)
	}

	if s == nil {
		return snapshot
	}

	snapshot.Phase = string(s.Phase)
	snapshot.Table = toWireCards(s.Table.Cards)
	snapshot.DiscardCount = len(s.DiscardPile)
	snapshot.SkipCounter = s.SkipCounter
	snapshot.Hint = s.HintText
	if s.LastKeptCard != nil {
		kept := toWireCard(*s.LastKeptCard)
		snapshot.LastKeptCard = &kept
	}

	for seat, id := range state.ParticipantBySeat {
		if idx := s.ParticipantIndex(id); idx == s.CurrentTurn {
			snapshot.CurrentTurnSeat = seat
			break
		}
	}
	if snapshot.CurrentTurnSeat == recipientSeat && s.Phase == domain.PhasePlaying {
		snapshot.Turn = toTurnView(s.TurnInfo)
	}

	return snapshot
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int32, message string) {
	bytes, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	_ = dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := string(domain.PhaseLobby)
	if s := state.Manager.State(); s != nil {
		phase = string(s.Phase)
	}

	labelBytes, err := json.Marshal(MatchLabel{Open: state.GetOpenSeatsCount(), Game: "kombio", Phase: phase})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
