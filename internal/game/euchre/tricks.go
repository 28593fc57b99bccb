// internal/game/euchre/tricks.go
package euchre

import "github.com/jason-s-yu/partyhall/internal/game"

var plainOrder = map[string]int{"9": 1, "T": 2, "J": 3, "Q": 4, "K": 5, "A": 6}

var trumpOrder = map[string]int{"9": 1, "T": 2, "Q": 3, "K": 4, "A": 5}

func isRightBower(c game.Card, trump string) bool {
	return c.Rank == "J" && c.Suit == trump
}

func isLeftBower(c game.Card, trump string) bool {
	return c.Rank == "J" && c.Suit == game.SameColor(trump)
}

// effectiveSuit treats the left bower as a trump card.
func effectiveSuit(c game.Card, trump string) string {
	if trump != "" && isLeftBower(c, trump) {
		return trump
	}
	return c.Suit
}

func hasSuit(hand []game.Card, suit, trump string) bool {
	for _, c := range hand {
		if effectiveSuit(c, trump) == suit {
			return true
		}
	}
	return false
}

// power ranks a card within a trick; cards that neither follow nor trump score 0.
func power(c game.Card, trump, led string) int {
	switch {
	case isRightBower(c, trump):
		return 200
	case isLeftBower(c, trump):
		return 199
	case c.Suit == trump:
		return 100 + trumpOrder[c.Rank]
	case c.Suit == led:
		return plainOrder[c.Rank]
	}
	return 0
}

// trickWinner returns the seat that won a completed trick.
func trickWinner(trick []Play, trump string) int {
	led := effectiveSuit(trick[0].Card, trump)
	best := trick[0]
	bestPower := power(best.Card, trump, led)
	for _, p := range trick[1:] {
		if pw := power(p.Card, trump, led); pw > bestPower {
			best, bestPower = p, pw
		}
	}
	return best.Seat
}

// legalCards lists the cards in hand that may be played on the current trick.
func legalCards(hand []game.Card, trick []Play, trump string) []game.Card {
	if len(trick) == 0 {
		return append([]game.Card(nil), hand...)
	}
	led := effectiveSuit(trick[0].Card, trump)
	var follow []game.Card
	for _, c := range hand {
		if effectiveSuit(c, trump) == led {
			follow = append(follow, c)
		}
	}
	if len(follow) > 0 {
		return follow
	}
	return append([]game.Card(nil), hand...)
}
