// internal/game/env.go
package game

import (
	"math/rand"
	"time"
)

// Bot think time bounds. Bots wait a random duration in this window before acting.
const (
	BotDelayMin = 1200 * time.Millisecond
	BotDelayMax = 2800 * time.Millisecond
)

// Env carries everything non-deterministic a rule engine may consult: the wall clock,
// a random source and which seated players are bots. Tests inject a seeded Rand and a
// fixed Now to make every transition replayable.
type Env struct {
	Now  time.Time
	Rand *rand.Rand
	Bots map[string]bool
}

// NewEnv builds an environment with a time-seeded random source.
func NewEnv(now time.Time, bots map[string]bool) Env {
	return Env{
		Now:  now,
		Rand: rand.New(rand.NewSource(now.UnixNano())),
		Bots: bots,
	}
}

// IsBot reports whether playerID belongs to a bot.
func (e Env) IsBot(playerID string) bool {
	return e.Bots[playerID]
}

// BotDelay returns a randomized think time inside [BotDelayMin, BotDelayMax).
func (e Env) BotDelay() time.Duration {
	span := int64(BotDelayMax - BotDelayMin)
	return BotDelayMin + time.Duration(e.Rand.Int63n(span))
}

// BotActionAt returns the wall-clock deadline at which a bot should act if playerID is a
// bot, or nil when the player is human.
func (e Env) BotActionAt(playerID string) *time.Time {
	if !e.IsBot(playerID) {
		return nil
	}
	at := e.Now.Add(e.BotDelay())
	return &at
}

// After returns a pointer to Now+d, the usual shape of a phase deadline.
func (e Env) After(d time.Duration) *time.Time {
	at := e.Now.Add(d)
	return &at
}

// Passed reports whether a deadline is set and not after now.
func Passed(deadline *time.Time, now time.Time) bool {
	return deadline != nil && !now.Before(*deadline)
}
