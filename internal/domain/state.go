package domain

import "github.com/google/uuid"

// Phase is the lifecycle stage of a Kombio match.
type Phase string

const (
	// PhaseLobby is the pre-game state before the first deal.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseRoundOver is the pause between a round win and the next deal.
	PhaseRoundOver Phase = "round_over"
	// PhaseEnded is the state after a participant's score reaches zero.
	PhaseEnded Phase = "ended"
)

// ControlKind tags who decides a participant's moves.
type ControlKind string

const (
	// ControlLocal is a participant driven by the local presentation layer.
	ControlLocal ControlKind = "local"
	// ControlAI is a participant driven by the heuristics engine.
	ControlAI ControlKind = "ai"
	// ControlRemote is a participant driven by the remote transport.
	ControlRemote ControlKind = "remote"
)

// AILevel selects the heuristic depth for AI participants.
type AILevel string

const (
	AILevelBeginner AILevel = "beginner"
	AILevelAdvanced AILevel = "advanced"
)

// Participant is one seat at the table.
type Participant struct {
	ID          uuid.UUID
	Name        string
	AvatarIndex int
	Control     ControlKind
	Level       AILevel // meaningful only for ControlAI

	// Score starts at the match point limit and is reduced by the
	// participant's remaining hand size at every round end.
	Score int32
	Hand  Hand
}

// IsAI reports whether the participant is computer-controlled.
func (p Participant) IsAI() bool { return p.Control == ControlAI }

// NotificationKind distinguishes one-shot UI notifications.
type NotificationKind string

const (
	NotificationSound    NotificationKind = "sound"
	NotificationMusic    NotificationKind = "music"
	NotificationSnackbar NotificationKind = "snackbar"
)

// SoundCue names the audio events the presentation layer may play.
type SoundCue string

const (
	SoundDeal    SoundCue = "deal"
	SoundPlay    SoundCue = "play"
	SoundSkip    SoundCue = "skip"
	SoundSweep   SoundCue = "sweep"
	SoundFanfare SoundCue = "fanfare"
)

// Notification is a pending one-shot UI request queued on the state until
// the presentation layer drains and acknowledges it.
type Notification struct {
	Kind    NotificationKind
	Sound   SoundCue
	Message string
}

// DialogKind identifies the modal dialog requested of the presentation
// layer. At most one dialog is pending at a time.
type DialogKind string

const (
	DialogRoundOver DialogKind = "round_over"
	DialogGameOver  DialogKind = "game_over"
	DialogQuit      DialogKind = "quit"
)

// Dialog is a pending modal dialog request.
type Dialog struct {
	Kind DialogKind
	// WinnerNames carries display names for the round/game-over dialogs.
	WinnerNames []string
}

// GameState is the single immutable snapshot of a match. The reducer
// replaces it wholesale on every event; it is never mutated in place, so a
// previous snapshot stays valid for comparison by observers.
type GameState struct {
	Phase        Phase
	Participants []Participant

	// CurrentTurn and RoundStarter index into Participants.
	CurrentTurn  int
	RoundStarter int

	Table       Combination
	DiscardPile []Card
	Deck        []Card
	HandSize    int

	// TurnCounter increases on every turn change and fences stale
	// asynchronous timer callbacks.
	TurnCounter int64
	SkipCounter int

	// TableClearedBySkips distinguishes a post-skip-cascade restart from a
	// true first move of the round; the cascade resets the skip counter, so
	// the counter alone cannot carry the distinction. All-in eligibility
	// never reopens after a cascade.
	TableClearedBySkips bool

	PointLimit int32

	// LastActor/LastKeptCard feed the turn hint text. LastActor is -1 when
	// nobody has played yet this round.
	LastActor    int
	LastKeptCard *Card

	AutoPlayDisabled bool

	// Derived fields, recomputed from scratch after every reducer step.
	TurnInfo TurnInfo
	HintText string

	// UI-adjacent pending requests, patched outside the reducer only via
	// the manager's narrow partial-update entry point.
	Notifications []Notification
	PendingDialog *Dialog
}

// NewGameState builds the pre-deal snapshot for a fresh match.
func NewGameState(participants []Participant, pointLimit int32, handSize int, autoPlayDisabled bool) *GameState {
	ps := make([]Participant, len(participants))
	for i, p := range participants {
		p.Score = pointLimit
		p.Hand = NewHand(nil)
		ps[i] = p
	}
	return &GameState{
		Phase:            PhaseLobby,
		Participants:     ps,
		CurrentTurn:      0,
		RoundStarter:     -1,
		HandSize:         handSize,
		PointLimit:       pointLimit,
		LastActor:        -1,
		AutoPlayDisabled: autoPlayDisabled,
	}
}

// CurrentParticipant returns the turn holder.
func (s *GameState) CurrentParticipant() Participant {
	return s.Participants[s.CurrentTurn]
}

// ParticipantIndex returns the index of the participant with the given id,
// or -1 if absent.
func (s *GameState) ParticipantIndex(id uuid.UUID) int {
	for i, p := range s.Participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (s *GameState) Clone() *GameState {
	out := *s

	out.Participants = make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		p.Hand = p.Hand.Clone()
		out.Participants[i] = p
	}

	out.Table = NewCombination(s.Table.Cards)
	out.DiscardPile = append([]Card{}, s.DiscardPile...)
	out.Deck = append([]Card{}, s.Deck...)
	out.Notifications = append([]Notification{}, s.Notifications...)

	if s.LastKeptCard != nil {
		kept := *s.LastKeptCard
		out.LastKeptCard = &kept
	}
	if s.PendingDialog != nil {
		dialog := *s.PendingDialog
		dialog.WinnerNames = append([]string{}, s.PendingDialog.WinnerNames...)
		out.PendingDialog = &dialog
	}
	return &out
}
