package nakama

// Wire types for client messages and server events. Everything goes over
// JSON; cards travel as (suit, rank) pairs with suits numbered the way the
// domain numbers them.

// WireCard is a card on the wire.
type WireCard struct {
	Suit int32 `json:"suit"`
	Rank int32 `json:"rank"`
}

// PlayCombinationRequest asks the server to commit a play for the sender.
type PlayCombinationRequest struct {
	Cards []WireCard `json:"cards"`
	// Keep names the table card the sender retains, omitted when the table
	// is empty.
	Keep *WireCard `json:"keep,omitempty"`
}

// SeatView is one seat as seen by a snapshot recipient. Hand is populated
// only for the recipient's own seat; everyone else gets the count.
type SeatView struct {
	Seat        int        `json:"seat"`
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	AvatarIndex int        `json:"avatar_index"`
	IsOwner     bool       `json:"is_owner"`
	IsBot       bool       `json:"is_bot"`
	Score       int32      `json:"score"`
	HandCount   int        `json:"hand_count"`
	Hand        []WireCard `json:"hand,omitempty"`
}

// TurnView mirrors the turn-capability descriptor for the recipient when
// they hold the turn.
type TurnView struct {
	CanSkip               bool `json:"can_skip"`
	CanPlayAllIn          bool `json:"can_play_all_in"`
	PlayActive            bool `json:"play_active"`
	SkipActive            bool `json:"skip_active"`
	SkipCounterActive     bool `json:"skip_counter_active"`
	RemoveSelectionActive bool `json:"remove_selection_active"`
}

// StateSnapshot is the per-recipient view of the match, sent privately
// after every committed state change.
type StateSnapshot struct {
	Phase           string     `json:"phase"`
	CurrentTurnSeat int        `json:"current_turn_seat"`
	Seats           []SeatView `json:"seats"`
	Table           []WireCard `json:"table"`
	DiscardCount    int        `json:"discard_count"`
	SkipCounter     int        `json:"skip_counter"`
	LastKeptCard    *WireCard  `json:"last_kept_card,omitempty"`
	Hint            string     `json:"hint"`
	Turn            *TurnView  `json:"turn,omitempty"`
	Sounds          []string   `json:"sounds,omitempty"`
	Dialog          string     `json:"dialog,omitempty"`
	WinnerNames     []string   `json:"winner_names,omitempty"`
	Tick            int64      `json:"tick"`
}

// PlayerJoinedEvent announces a seat assignment.
type PlayerJoinedEvent struct {
	UserID  string `json:"user_id"`
	Seat    int    `json:"seat"`
	IsOwner bool   `json:"is_owner"`
}

// PlayerLeftEvent announces a freed seat.
type PlayerLeftEvent struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

// GameErrorEvent reports a rejected client action back to its sender.
type GameErrorEvent struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// MatchLabel is the label advertised for quick-match queries.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}
