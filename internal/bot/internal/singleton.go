package internal

import "kombio/internal/domain"

// IsSingleton reports whether the card shares neither suit nor rank with
// any other card in the hand, making it unplayable except alone.
func IsSingleton(card domain.Card, hand []domain.Card) bool {
	for _, other := range hand {
		if domain.SameCard(other, card) {
			continue
		}
		if other.Suit == card.Suit || other.Rank == card.Rank {
			return false
		}
	}
	return true
}

// Singletons returns the cards in the hand that are singletons.
func Singletons(hand []domain.Card) []domain.Card {
	var out []domain.Card
	for _, c := range hand {
		if IsSingleton(c, hand) {
			out = append(out, c)
		}
	}
	return out
}

// CreatesSingleton reports whether removing the combination from the hand
// strands a card that was not already a singleton before the play.
func CreatesSingleton(hand []domain.Card, combo domain.Combination) bool {
	remaining := domain.RemoveCards(hand, combo.Cards)
	for _, c := range remaining {
		if IsSingleton(c, remaining) && !IsSingleton(c, hand) {
			return true
		}
	}
	return false
}

// Affinity counts how many hand cards share the given card's suit plus how
// many share its rank. Higher affinity means the card plugs into more of
// the hand's structure.
func Affinity(card domain.Card, hand []domain.Card) int {
	count := 0
	for _, other := range hand {
		if domain.SameCard(other, card) {
			continue
		}
		if other.Suit == card.Suit {
			count++
		}
		if other.Rank == card.Rank {
			count++
		}
	}
	return count
}

// Rescues reports whether taking the card would give an existing singleton
// in the hand a suit or rank partner.
func Rescues(card domain.Card, hand []domain.Card) bool {
	for _, s := range Singletons(hand) {
		if s.Suit == card.Suit || s.Rank == card.Rank {
			return true
		}
	}
	return false
}
