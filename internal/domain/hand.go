package domain

// Hand is the cards owned by one participant plus a cached list of every
// multi-card combination currently formable from them. The cache is
// recomputed on every mutation so readers never observe a stale view.
// Hand values are treated as immutable: mutating methods return a new Hand.
type Hand struct {
	Cards []Card

	// combos caches all valid combinations of 2+ cards.
	combos []Combination
}

// NewHand builds a hand from the given cards and computes the combination
// cache.
func NewHand(cards []Card) Hand {
	h := Hand{Cards: append([]Card{}, cards...)}
	h.combos = multiCardCombinations(h.Cards)
	return h
}

// Size returns the number of cards held.
func (h Hand) Size() int { return len(h.Cards) }

// IsEmpty reports whether the hand holds no cards.
func (h Hand) IsEmpty() bool { return len(h.Cards) == 0 }

// Combinations returns the cached valid combinations of 2+ cards.
func (h Hand) Combinations() []Combination { return h.combos }

// Add returns a new hand with the card appended, selection cleared.
func (h Hand) Add(card Card) Hand {
	card.Selected = false
	return NewHand(append(append([]Card{}, h.Cards...), card))
}

// Remove returns a new hand with the given cards removed (multiset
// semantics, selection flags ignored for matching).
func (h Hand) Remove(cards []Card) Hand {
	return NewHand(RemoveCards(h.Cards, cards))
}

// ToggleSelection returns a new hand with the selection flag flipped on the
// first card matching the given identity. The combination cache is reused:
// selection does not change which combinations are formable.
func (h Hand) ToggleSelection(card Card) Hand {
	out := Hand{Cards: append([]Card{}, h.Cards...), combos: h.combos}
	for i := range out.Cards {
		if SameCard(out.Cards[i], card) {
			out.Cards[i].Selected = !out.Cards[i].Selected
			return out
		}
	}
	return out
}

// ClearSelection returns a new hand with every selection flag cleared.
func (h Hand) ClearSelection() Hand {
	out := Hand{Cards: append([]Card{}, h.Cards...), combos: h.combos}
	for i := range out.Cards {
		out.Cards[i].Selected = false
	}
	return out
}

// SelectedCards returns the cards currently earmarked by the owner.
func (h Hand) SelectedCards() []Card {
	var sel []Card
	for _, c := range h.Cards {
		if c.Selected {
			sel = append(sel, c)
		}
	}
	return sel
}

// Clone returns a deep copy sharing no slices with the receiver.
func (h Hand) Clone() Hand {
	out := Hand{
		Cards:  append([]Card{}, h.Cards...),
		combos: make([]Combination, len(h.combos)),
	}
	for i, c := range h.combos {
		out.combos[i] = NewCombination(c.Cards)
	}
	return out
}

// multiCardCombinations filters the full enumeration down to combinations
// of 2+ cards, which is what the cache contract covers.
func multiCardCombinations(cards []Card) []Combination {
	all := FindValidCombinations(cards)
	out := make([]Combination, 0, len(all))
	for _, c := range all {
		if c.Size() >= 2 {
			out = append(out, c)
		}
	}
	return out
}
