package bot

import (
	"kombio/internal/bot/internal"
	"kombio/internal/domain"
)

// AdvancedBot plays the best qualifying combination that does not strand a
// freshly created singleton, and picks its kept card for hand structure
// rather than raw value.
type AdvancedBot struct{}

func (b *AdvancedBot) CalculateMove(hand []domain.Card, table domain.Combination) (Move, error) {
	if len(hand) == 0 {
		return Move{Skip: true}, nil
	}

	qualifying := internal.QualifyingMoves(hand, table)
	if len(qualifying) == 0 {
		return Move{Skip: true}, nil
	}

	// Qualifying moves arrive sorted by descending value; the first one
	// that avoids creating a singleton wins. If every option strands a
	// card, fall back to the strongest play.
	chosen := qualifying[0]
	for _, c := range qualifying {
		if !internal.CreatesSingleton(hand, c) {
			chosen = c
			break
		}
	}

	move := Move{Cards: chosen.Cards}
	if !table.IsEmpty() {
		remaining := domain.RemoveCards(hand, chosen.Cards)
		keep := b.pickKeep(table.Cards, remaining)
		move.Keep = &keep
	}
	return move, nil
}

// pickKeep chooses which table card to take back into the hand.
// Preference order: a card that is not a singleton with respect to the
// hand, then a card that rescues an existing singleton, then the card
// with the highest suit/rank affinity.
func (b *AdvancedBot) pickKeep(tableCards []domain.Card, hand []domain.Card) domain.Card {
	for _, tc := range tableCards {
		if !internal.IsSingleton(tc, append(append([]domain.Card{}, hand...), tc)) {
			tc.Selected = false
			return tc
		}
	}
	for _, tc := range tableCards {
		if internal.Rescues(tc, hand) {
			tc.Selected = false
			return tc
		}
	}

	best := tableCards[0]
	bestAffinity := -1
	for _, tc := range tableCards {
		if a := internal.Affinity(tc, hand); a > bestAffinity {
			bestAffinity = a
			best = tc
		}
	}
	best.Selected = false
	return best
}
