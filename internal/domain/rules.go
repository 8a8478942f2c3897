package domain

import "sort"

// IsValidCombination reports whether the cards form a legal Kombio
// combination: non-empty and either all the same suit or all the same rank.
// A single card satisfies both trivially.
func IsValidCombination(combo Combination) bool {
	if combo.IsEmpty() {
		return false
	}
	return allSameSuit(combo.Cards) || allSameRank(combo.Cards)
}

// IsValidMove reports whether candidate may be played on top of current.
// The candidate must itself be valid, must strictly beat the table value,
// and may exceed the table size by at most one card, unless the actor is
// playing their entire remaining hand in one combination (the all-in
// escape hatch, judged against the hand at the moment of the attempt).
// Illegal input returns false, never an error.
func IsValidMove(current, candidate Combination, actorHand []Card) bool {
	if candidate.IsEmpty() || !IsValidCombination(candidate) {
		return false
	}
	if !ContainsAll(actorHand, candidate.Cards) {
		return false
	}
	if candidate.Value() <= current.Value() {
		return false
	}
	if candidate.Size() <= current.Size()+1 {
		return true
	}
	return candidate.Size() == len(actorHand)
}

// FindValidCombinations enumerates every distinct valid combination that can
// be formed from the given cards: each single card, plus every subset of
// size >= 2 drawn from a same-suit or same-rank group. The result is
// deduplicated by card set and sorted by descending value.
//
// This is exponential in the largest group size (bounded by the rank range)
// and is meant to run on hand mutation, not per frame.
func FindValidCombinations(cards []Card) []Combination {
	var combos []Combination
	for _, c := range cards {
		combos = append(combos, NewCombination([]Card{c}))
	}

	for _, group := range groupBySuit(cards) {
		combos = append(combos, subsetCombinations(group)...)
	}
	for _, group := range groupByRank(cards) {
		combos = append(combos, subsetCombinations(group)...)
	}

	combos = dedupeCombinations(combos)
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Value() > combos[j].Value()
	})
	return combos
}

// HasWonRound reports whether the hand is empty after a play.
func HasWonRound(hand []Card) bool {
	return len(hand) == 0
}

// UpdateScores subtracts each participant's remaining hand size from their
// score. Every participant is charged, including the round winner, whose
// empty hand makes the subtraction a no-op. That symmetry is deliberate.
func UpdateScores(participants []Participant) {
	for i := range participants {
		participants[i].Score -= int32(participants[i].Hand.Size())
	}
}

// IsGameOver reports whether any participant's score has reached zero or
// below.
func IsGameOver(participants []Participant) bool {
	for _, p := range participants {
		if p.Score <= 0 {
			return true
		}
	}
	return false
}

// GetWinners returns the participants sharing the maximum score. Ties all
// win.
func GetWinners(participants []Participant) []Participant {
	if len(participants) == 0 {
		return nil
	}
	best := participants[0].Score
	for _, p := range participants[1:] {
		if p.Score > best {
			best = p.Score
		}
	}
	var winners []Participant
	for _, p := range participants {
		if p.Score == best {
			winners = append(winners, p)
		}
	}
	return winners
}

// Ranking pairs a participant with their 1-indexed standing.
type Ranking struct {
	Place       int
	Participant Participant
}

// GetRankings returns participants sorted by descending score, 1-indexed.
// Equal scores share a place.
func GetRankings(participants []Participant) []Ranking {
	sorted := append([]Participant{}, participants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	rankings := make([]Ranking, len(sorted))
	place := 0
	var prevScore int32
	for i, p := range sorted {
		if i == 0 || p.Score != prevScore {
			place = i + 1
		}
		prevScore = p.Score
		rankings[i] = Ranking{Place: place, Participant: p}
	}
	return rankings
}

func allSameSuit(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	s := cards[0].Suit
	for _, c := range cards {
		if c.Suit != s {
			return false
		}
	}
	return true
}

func allSameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	r := cards[0].Rank
	for _, c := range cards {
		if c.Rank != r {
			return false
		}
	}
	return true
}

func groupBySuit(cards []Card) [][]Card {
	m := make(map[Suit][]Card)
	for _, c := range cards {
		m[c.Suit] = append(m[c.Suit], c)
	}
	groups := make([][]Card, 0, len(m))
	for s := Suit(0); s < SuitCount; s++ {
		if g := m[s]; len(g) >= 2 {
			groups = append(groups, g)
		}
	}
	return groups
}

func groupByRank(cards []Card) [][]Card {
	m := make(map[int32][]Card)
	for _, c := range cards {
		m[c.Rank] = append(m[c.Rank], c)
	}
	groups := make([][]Card, 0, len(m))
	for r := MinRank; r <= MaxRank; r++ {
		if g := m[r]; len(g) >= 2 {
			groups = append(groups, g)
		}
	}
	return groups
}

// subsetCombinations returns the group itself and every subset of size >= 2,
// generated via k-combinations over indices.
func subsetCombinations(group []Card) []Combination {
	var combos []Combination
	for k := 2; k <= len(group); k++ {
		for _, idxs := range kCombinations(len(group), k) {
			subset := make([]Card, k)
			for i, idx := range idxs {
				subset[i] = group[idx]
			}
			combos = append(combos, NewCombination(subset))
		}
	}
	return combos
}

// kCombinations yields every k-sized index combination of [0, n).
func kCombinations(n, k int) [][]int {
	if k > n || k <= 0 {
		return nil
	}
	var result [][]int
	idxs := make([]int, k)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == k {
			result = append(result, append([]int{}, idxs...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idxs[depth] = i
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
	return result
}

func dedupeCombinations(combos []Combination) []Combination {
	seen := make(map[string]bool, len(combos))
	out := combos[:0]
	for _, c := range combos {
		key := comboKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func comboKey(c Combination) string {
	cards := append([]Card{}, c.Cards...)
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit < cards[j].Suit
		}
		return cards[i].Rank < cards[j].Rank
	})
	key := make([]byte, 0, len(cards)*2)
	for _, card := range cards {
		key = append(key, byte(card.Suit), byte(card.Rank))
	}
	return string(key)
}
