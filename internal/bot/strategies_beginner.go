package bot

import (
	"kombio/internal/bot/internal"
	"kombio/internal/domain"
)

// BeginnerBot plays the strongest qualifying combination it holds and
// keeps the first table card without further thought.
type BeginnerBot struct{}

func (b *BeginnerBot) CalculateMove(hand []domain.Card, table domain.Combination) (Move, error) {
	if len(hand) == 0 {
		return Move{Skip: true}, nil
	}

	qualifying := internal.QualifyingMoves(hand, table)
	if len(qualifying) == 0 {
		return Move{Skip: true}, nil
	}

	move := Move{Cards: qualifying[0].Cards}
	if !table.IsEmpty() {
		keep := table.Cards[0]
		keep.Selected = false
		move.Keep = &keep
	}
	return move, nil
}
