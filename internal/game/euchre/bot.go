// internal/game/euchre/bot.go
package euchre

import (
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// trumpStrength counts the cards that would be trump if suit were named, weighting bowers.
func trumpStrength(hand []game.Card, suit string) int {
	n := 0
	for _, c := range hand {
		switch {
		case isRightBower(c, suit), isLeftBower(c, suit):
			n += 2
		case c.Suit == suit:
			n++
		}
	}
	return n
}

// BotAction picks the move for the seat whose turn it is.
func (Euchre) BotAction(s *State, env game.Env) (string, models.GameAction, error) {
	if !s.biddingOrPlaying() {
		return "", models.GameAction{}, game.ErrInvalidPhase("no bot action during %s", s.Phase)
	}
	seat := s.CurrentTurnSeatIndex
	hand := s.Hands[seat]
	playerID := s.Seats[seat]

	switch s.Phase {
	case PhaseRound1:
		strength := trumpStrength(hand, s.TurnedCard.Suit)
		if seat == s.DealerSeat {
			strength++
		}
		if strength >= 4 || (strength == 3 && env.Rand.Intn(2) == 0) {
			return playerID, models.NewGameAction(ActionCallTrump, callPayload{GoAlone: strength >= 7}), nil
		}
		return playerID, models.NewGameAction(ActionPassTrump, nil), nil

	case PhaseRound2:
		bestSuit, best := "", -1
		for _, suit := range game.Suits {
			if suit == s.TurnedCard.Suit {
				continue
			}
			if st := trumpStrength(hand, suit); st > best {
				bestSuit, best = suit, st
			}
		}
		stuck := s.StickTheDealer && seat == s.DealerSeat
		if best >= 3 || stuck {
			return playerID, models.NewGameAction(ActionCallTrump, callPayload{Suit: bestSuit, GoAlone: best >= 7}), nil
		}
		return playerID, models.NewGameAction(ActionPassTrump, nil), nil

	case PhaseDealerDiscard:
		return playerID, models.NewGameAction(ActionDiscard, cardPayload{Card: weakestCard(hand, s.TrumpSuit)}), nil
	}

	legal := legalCards(hand, s.CurrentTrick, s.TrumpSuit)
	card := legal[env.Rand.Intn(len(legal))]
	return playerID, models.NewGameAction(ActionPlayCard, cardPayload{Card: card}), nil
}

// weakestCard prefers throwing away the lowest non-trump card.
func weakestCard(hand []game.Card, trump string) game.Card {
	best := hand[0]
	bestScore := 1 << 30
	for _, c := range hand {
		score := plainOrder[c.Rank]
		if effectiveSuit(c, trump) == trump {
			score += 100
		}
		if score < bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
