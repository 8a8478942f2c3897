package domain

import (
	"math/rand"
	"sort"
)

// DefaultHandSize is the number of cards dealt to each participant at the
// start of a round.
const DefaultHandSize = 9

// SmallGameThreshold is the participant count at or below which the deck
// drops suits to keep rounds short.
const SmallGameThreshold = 2

// reducedSuits are removed from the deck for small games.
var reducedSuits = []Suit{SuitPurple, SuitOrange}

// DeckSource produces decks for new rounds. The reducer takes it as a
// dependency so state transitions stay deterministic under test.
type DeckSource interface {
	Generate(shuffled bool, participantCount int) []Card
}

// StandardDeckSource builds full decks with an owned rng.
type StandardDeckSource struct {
	rng *rand.Rand
}

// NewDeckSource returns a deck source backed by the given rng.
func NewDeckSource(rng *rand.Rand) *StandardDeckSource {
	return &StandardDeckSource{rng: rng}
}

// Generate returns an ordered or shuffled deck sized for the participant
// count: all six suits normally, two suits removed for small games.
func (d *StandardDeckSource) Generate(shuffled bool, participantCount int) []Card {
	deck := make([]Card, 0, SuitCount*int(MaxRank))
	for s := Suit(0); s < SuitCount; s++ {
		if participantCount <= SmallGameThreshold && isReducedSuit(s) {
			continue
		}
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	if shuffled {
		d.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	}
	return deck
}

func isReducedSuit(s Suit) bool {
	for _, rs := range reducedSuits {
		if s == rs {
			return true
		}
	}
	return false
}

// SortCards orders cards by descending rank, then by suit for stability.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank > cards[j].Rank
		}
		return cards[i].Suit < cards[j].Suit
	})
}

// RemoveCards removes the given cards from a hand using multiset semantics
// and returns the updated slice. Selection flags are ignored for matching.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	out := append([]Card{}, hand...)
	for _, rc := range toRemove {
		for i := 0; i < len(out); i++ {
			if SameCard(out[i], rc) {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

// ContainsAll reports whether every card in subset is present in hand,
// respecting multiplicity.
func ContainsAll(hand []Card, subset []Card) bool {
	remaining := append([]Card{}, hand...)
	for _, sc := range subset {
		found := false
		for i := 0; i < len(remaining); i++ {
			if SameCard(remaining[i], sc) {
				remaining = append(remaining[:i], remaining[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
