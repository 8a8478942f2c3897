package bot

import "kombio/internal/domain"

// Move is the decision an AI participant commits for its turn.
type Move struct {
	Skip  bool
	Cards []domain.Card
	Keep  *domain.Card
}

// Brain is the interface all AI strategies implement. CalculateMove is a
// pure function of the hand and the table combination.
type Brain interface {
	CalculateMove(hand []domain.Card, table domain.Combination) (Move, error)
}
