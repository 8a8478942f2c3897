package nakama

import (
	"encoding/json"
	"io"
	"math/rand"
	"testing"

	"kombio/internal/app"
	"kombio/internal/config"
	"kombio/internal/domain"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func testManager() *app.Manager {
	cfg := config.Default()
	cfg.Debug.DisableAutoPlay = true
	log := logrus.New()
	log.SetOutput(io.Discard)
	return app.NewManager(cfg, logrus.NewEntry(log), rand.New(rand.NewSource(1)))
}

func TestIsBotUserId(t *testing.T) {
	if !isBotUserId(botUserID(2)) {
		t.Fatalf("bot user id not recognized")
	}
	if isBotUserId("user-1") {
		t.Fatalf("human user id flagged as bot")
	}
	if isBotUserId("") {
		t.Fatalf("empty seat flagged as bot")
	}
}

func TestFindFirstHumanSeat(t *testing.T) {
	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{botUserID(0), "user-1", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{botUserID(0), botUserID(1), "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", botUserID(1), "user-2", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	tests := []struct {
		name  string
		seats []string
		want  bool
	}{
		{
			name:  "BotsOnly",
			seats: []string{botUserID(0), botUserID(1), botUserID(2), botUserID(3)},
			want:  true,
		},
		{
			name:  "BotsAndEmpty",
			seats: []string{botUserID(0), "", botUserID(2), ""},
			want:  true,
		},
		{
			name:  "HumansPresent",
			seats: []string{botUserID(0), "user-1", "", ""},
			want:  false,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := shouldTerminateNoHumans(test.seats); got != test.want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	payload, err := json.Marshal(MatchLabel{Open: 3, Game: "kombio", Phase: "lobby"})
	if err != nil {
		t.Fatalf("Failed to marshal label: %v", err)
	}
	want := `{"open":3,"game":"kombio","phase":"lobby"}`
	if string(payload) != want {
		t.Fatalf("Got %s, want %s", payload, want)
	}
}

func TestProcessBotsAddsBotsForSoloHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:                [4]string{"user-1", "", "", ""},
		Presences:            make(map[string]runtime.Presence),
		Manager:              testManager(),
		ParticipantBySeat:    make(map[int]uuid.UUID),
		BotAutoFillDelay:     2,
		LastSinglePlayerTick: 8,
		Tick:                 10,
	}

	handler.processBots(state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}

	if botCount != 3 {
		t.Fatalf("Expected 3 bots, got %d", botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected 0 open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected label update after auto-fill")
	}
}

func TestProcessBotsWaitsOutTheDelay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:                [4]string{"user-1", "", "", ""},
		Presences:            make(map[string]runtime.Presence),
		Manager:              testManager(),
		ParticipantBySeat:    make(map[int]uuid.UUID),
		BotAutoFillDelay:     5,
		LastSinglePlayerTick: 8,
		Tick:                 10,
	}

	handler.processBots(state, dispatcher, noopLogger{})

	for _, seat := range state.Seats[1:] {
		if seat != "" {
			t.Fatalf("Expected no bots before the auto-fill delay elapses")
		}
	}
}

func TestProcessBotsFencesAITurnOnTick(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := startedMatchState(t)
	state.Tick = 100

	// First pass on an AI turn schedules the wake-up tick without acting.
	handler.processBots(state, dispatcher, noopLogger{})
	if state.BotWaitUntil <= state.Tick {
		t.Fatalf("Expected a future wake-up tick, got %d at tick %d", state.BotWaitUntil, state.Tick)
	}
	turnBefore := state.Manager.State().TurnCounter

	// Before the wake-up tick nothing happens.
	handler.processBots(state, dispatcher, noopLogger{})
	if got := state.Manager.State().TurnCounter; got != turnBefore {
		t.Fatalf("Bot acted before its wake-up tick")
	}

	// At the wake-up tick the bot takes its turn and the fence resets.
	state.Tick = state.BotWaitUntil
	handler.processBots(state, dispatcher, noopLogger{})
	if got := state.Manager.State().TurnCounter; got == turnBefore {
		t.Fatalf("Bot did not act at its wake-up tick")
	}
	if state.BotWaitUntil != 0 {
		t.Fatalf("Expected wake-up fence reset, got %d", state.BotWaitUntil)
	}
}

// startedMatchState builds a running two-seat match: a bot in seat 0 and a
// remote human in seat 2. The bot is the first participant, so it holds the
// opening turn.
func startedMatchState(t *testing.T) *MatchState {
	t.Helper()

	state := &MatchState{
		Seats:             [4]string{botUserID(0), "", "user-1", ""},
		OwnerSeat:         2,
		Presences:         make(map[string]runtime.Presence),
		Manager:           testManager(),
		ParticipantBySeat: make(map[int]uuid.UUID),
		BotMinDelay:       1,
		BotMaxDelay:       3,
	}

	roster := []app.PlayerSetup{
		{Name: "Bot", AvatarIndex: 0, Control: domain.ControlAI, Level: domain.AILevelBeginner},
		{Name: "user-1", AvatarIndex: 2, Control: domain.ControlRemote},
	}
	if err := state.Manager.StartNewGame(roster); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	seats := []int{0, 2}
	for i, p := range state.Manager.State().Participants {
		state.ParticipantBySeat[seats[i]] = p.ID
	}
	return state
}

func TestBuildSnapshotHidesOtherHands(t *testing.T) {
	handler := &matchHandler{}
	state := startedMatchState(t)
	s := state.Manager.State()

	snapshot := handler.buildSnapshot(state, s, 2)

	if snapshot.Phase != string(domain.PhasePlaying) {
		t.Fatalf("Expected playing phase, got %s", snapshot.Phase)
	}
	if len(snapshot.Seats) != 2 {
		t.Fatalf("Expected 2 seat views, got %d", len(snapshot.Seats))
	}

	for _, view := range snapshot.Seats {
		if view.HandCount != domain.DefaultHandSize {
			t.Fatalf("Seat %d: expected hand count %d, got %d", view.Seat, domain.DefaultHandSize, view.HandCount)
		}
		if view.Seat == 2 {
			if len(view.Hand) != domain.DefaultHandSize {
				t.Fatalf("Recipient's own hand not included, got %d cards", len(view.Hand))
			}
		} else if view.Hand != nil {
			t.Fatalf("Seat %d: opponent hand leaked to recipient", view.Seat)
		}
	}
}

func TestBuildSnapshotTurnViewOnlyForHolder(t *testing.T) {
	handler := &matchHandler{}
	state := startedMatchState(t)
	s := state.Manager.State()

	holderSeat := -1
	for seat, id := range state.ParticipantBySeat {
		if s.ParticipantIndex(id) == s.CurrentTurn {
			holderSeat = seat
		}
	}
	if holderSeat < 0 {
		t.Fatalf("Current turn participant has no seat")
	}

	withTurn := handler.buildSnapshot(state, s, holderSeat)
	if withTurn.Turn == nil {
		t.Fatalf("Turn holder's snapshot missing the capability descriptor")
	}
	if withTurn.CurrentTurnSeat != holderSeat {
		t.Fatalf("CurrentTurnSeat = %d, want %d", withTurn.CurrentTurnSeat, holderSeat)
	}

	otherSeat := 0
	if holderSeat == 0 {
		otherSeat = 2
	}
	withoutTurn := handler.buildSnapshot(state, s, otherSeat)
	if withoutTurn.Turn != nil {
		t.Fatalf("Non-holder received the capability descriptor")
	}
}

func TestBuildSnapshotBeforeGame(t *testing.T) {
	handler := &matchHandler{}
	state := &MatchState{
		Seats:             [4]string{"user-1", "", "", ""},
		Presences:         make(map[string]runtime.Presence),
		Manager:           testManager(),
		ParticipantBySeat: make(map[int]uuid.UUID),
	}

	snapshot := handler.buildSnapshot(state, state.Manager.State(), 0)
	if snapshot.Phase != string(domain.PhaseLobby) {
		t.Fatalf("Expected lobby phase before the first deal, got %s", snapshot.Phase)
	}
	if len(snapshot.Seats) != 1 {
		t.Fatalf("Expected 1 seat view, got %d", len(snapshot.Seats))
	}
	if snapshot.CurrentTurnSeat != -1 {
		t.Fatalf("Expected no turn holder, got seat %d", snapshot.CurrentTurnSeat)
	}
}

func TestSenderSeat(t *testing.T) {
	handler := &matchHandler{}
	state := &MatchState{Seats: [4]string{"user-1", "", botUserID(2), ""}}

	if got := handler.senderSeat(state, "user-1"); got != 0 {
		t.Fatalf("senderSeat(user-1) = %d, want 0", got)
	}
	if got := handler.senderSeat(state, "stranger"); got != -1 {
		t.Fatalf("senderSeat(stranger) = %d, want -1", got)
	}
}
