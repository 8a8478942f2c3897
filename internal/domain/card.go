package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Suit is one of the six card colors in the Kombio deck.
type Suit int32

const (
	SuitRed Suit = iota
	SuitBlue
	SuitGreen
	SuitYellow
	SuitPurple
	SuitOrange
)

// SuitCount is the number of suits in a full deck.
const SuitCount = 6

const (
	// MinRank is the lowest card rank.
	MinRank int32 = 1
	// MaxRank is the highest card rank.
	MaxRank int32 = 9
)

var suitNames = [SuitCount]string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange"}

func (s Suit) String() string {
	if s < 0 || int(s) >= len(suitNames) {
		return fmt.Sprintf("Suit(%d)", int32(s))
	}
	return suitNames[s]
}

// Card is a single playing card. Selected is transient UI-adjacent state:
// it marks the card as earmarked by the acting participant while a
// candidate combination is being built, and is read by the turn-capability
// derivation. Card identity is (Suit, Rank) only.
type Card struct {
	Suit     Suit
	Rank     int32
	Selected bool
}

// SameCard reports whether two cards have the same identity, ignoring the
// transient selection flag.
func SameCard(a, b Card) bool {
	return a.Suit == b.Suit && a.Rank == b.Rank
}

func (c Card) String() string {
	return fmt.Sprintf("%s %d", c.Suit, c.Rank)
}

// Combination is a non-empty group of cards played or playable as one unit.
// Order of Cards is irrelevant; Value is the scored strength.
type Combination struct {
	Cards []Card
}

// NewCombination copies the given cards into a combination, dropping the
// transient selection flags.
func NewCombination(cards []Card) Combination {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.Selected = false
		out[i] = c
	}
	return Combination{Cards: out}
}

// Size returns the number of cards in the combination.
func (c Combination) Size() int { return len(c.Cards) }

// IsEmpty reports whether the combination holds no cards.
func (c Combination) IsEmpty() bool { return len(c.Cards) == 0 }

// Value is the combination's strength: ranks sorted descending and
// concatenated as decimal digits. Ranks 9,5,5 score 955. The empty
// combination scores 0 so any play beats an empty table.
func (c Combination) Value() int64 {
	if len(c.Cards) == 0 {
		return 0
	}
	ranks := make([]int32, len(c.Cards))
	for i, card := range c.Cards {
		ranks[i] = card.Rank
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	value := int64(0)
	for _, r := range ranks {
		value = value*10 + int64(r)
	}
	return value
}

func (c Combination) String() string {
	if len(c.Cards) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(c.Cards))
	for i, card := range c.Cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, ", ")
}

// ContainsCard reports whether the combination holds a card with the given
// identity.
func (c Combination) ContainsCard(card Card) bool {
	for _, cc := range c.Cards {
		if SameCard(cc, card) {
			return true
		}
	}
	return false
}
