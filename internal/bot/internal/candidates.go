package internal

import "kombio/internal/domain"

// QualifyingMoves returns every combination in the hand that legally beats
// the table combination, sorted by descending value. An empty result means
// the only option is to skip.
func QualifyingMoves(hand []domain.Card, table domain.Combination) []domain.Combination {
	all := domain.FindValidCombinations(hand)
	var qualifying []domain.Combination
	for _, c := range all {
		if domain.IsValidMove(table, c, hand) {
			qualifying = append(qualifying, c)
		}
	}
	return qualifying
}
