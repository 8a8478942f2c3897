package nakama

import "kombio/internal/domain"

func toWireCard(card domain.Card) WireCard {
	return WireCard{Suit: int32(card.Suit), Rank: card.Rank}
}

func toWireCards(cards []domain.Card) []WireCard {
	out := make([]WireCard, len(cards))
	for i, c := range cards {
		out[i] = toWireCard(c)
	}
	return out
}

func toDomainCard(card WireCard) domain.Card {
	return domain.Card{Suit: domain.Suit(card.Suit), Rank: card.Rank}
}

func toDomainCards(cards []WireCard) []domain.Card {
	out := make([]domain.Card, len(cards))
	for i, c := range cards {
		out[i] = toDomainCard(c)
	}
	return out
}

func toTurnView(info domain.TurnInfo) *TurnView {
	return &TurnView{
		CanSkip:               info.CanSkip,
		CanPlayAllIn:          info.CanPlayAllIn,
		PlayActive:            info.PlayActive,
		SkipActive:            info.SkipActive,
		SkipCounterActive:     info.SkipCounterActive,
		RemoveSelectionActive: info.RemoveSelectionActive,
	}
}
