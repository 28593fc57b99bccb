// internal/game/deck.go
package game

import (
	"fmt"
	"math/rand"
)

// Suits, single-letter as used across the card games.
const (
	Hearts   = "H"
	Diamonds = "D"
	Clubs    = "C"
	Spades   = "S"
)

// Suits lists the four suits in a fixed order.
var Suits = []string{Hearts, Diamonds, Clubs, Spades}

// Card is a playing card. Ranks use "2".."9", "T", "J", "Q", "K", "A".
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// ParseCard parses the two-letter form produced by Card.String, e.g. "JH".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return Card{Rank: s[:1], Suit: s[1:]}, nil
}

// IsRed reports whether the card's suit is hearts or diamonds.
func (c Card) IsRed() bool {
	return c.Suit == Hearts || c.Suit == Diamonds
}

// SameColor returns the other suit of the same colour.
func SameColor(suit string) string {
	switch suit {
	case Hearts:
		return Diamonds
	case Diamonds:
		return Hearts
	case Clubs:
		return Spades
	case Spades:
		return Clubs
	}
	return ""
}

// NewDeck builds the cross product of ranks and suits in a fixed order: suit-major.
func NewDeck(ranks []string) []Card {
	deck := make([]Card, 0, len(ranks)*len(Suits))
	for _, s := range Suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of items using rng. The input is left untouched.
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal hands out count cards to each of n hands in rotation starting with hand 0,
// returning the hands and the undealt remainder.
func Deal[T any](deck []T, n, count int) ([][]T, []T, error) {
	if n*count > len(deck) {
		return nil, nil, fmt.Errorf("cannot deal %d x %d from %d cards", n, count, len(deck))
	}
	hands := make([][]T, n)
	for i := range hands {
		hands[i] = make([]T, 0, count)
	}
	idx := 0
	for c := 0; c < count; c++ {
		for h := 0; h < n; h++ {
			hands[h] = append(hands[h], deck[idx])
			idx++
		}
	}
	rest := make([]T, len(deck)-idx)
	copy(rest, deck[idx:])
	return hands, rest, nil
}

// IndexOf returns the position of item in items, or -1.
func IndexOf[T comparable](items []T, item T) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}

// RemoveAt returns a copy of items without the element at i.
func RemoveAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// ReplaceID rewrites every occurrence of oldID in ids.
func ReplaceID(ids []string, oldID, newID string) {
	for i, id := range ids {
		if id == oldID {
			ids[i] = newID
		}
	}
}

// RekeyMap moves m[oldID] to m[newID] in place.
func RekeyMap[V any](m map[string]V, oldID, newID string) {
	if m == nil {
		return
	}
	if v, ok := m[oldID]; ok {
		delete(m, oldID)
		m[newID] = v
	}
}
