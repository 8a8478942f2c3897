package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameKombio is the authoritative match handler name registered
	// with Nakama.
	MatchNameKombio = "kombio_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpPlayCombination int64 = 2
	OpSkipTurn        int64 = 3
	OpStartNewRound   int64 = 4

	// Server -> Client events
	OpPlayerJoined  int64 = 101
	OpPlayerLeft    int64 = 102
	OpStateSnapshot int64 = 103 // sent privately, hands obfuscated per recipient
	OpGameError     int64 = 110
)
