// internal/game/cardjudge/bot.go
package cardjudge

import (
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// BotAction submits random cards for the first pending bot, or has a bot czar pick a
// random winner.
func (CardJudge) BotAction(s *State, env game.Env) (string, models.GameAction, error) {
	switch s.Phase {
	case PhaseSubmitting:
		id := s.pendingBot(env)
		if id == "" {
			return "", models.GameAction{}, game.ErrInvalidPhase("no bot owes a submission")
		}
		hand := game.Shuffle(env.Rand, s.Hands[id])
		if len(hand) < s.BlackCard.Pick {
			return "", models.GameAction{}, game.ErrInvalidAction("bot %s cannot cover the prompt", id)
		}
		return id, models.NewGameAction(ActionSubmit, submitPayload{Cards: hand[:s.BlackCard.Pick]}), nil

	case PhaseJudging:
		if len(s.RevealOrder) == 0 {
			return "", models.GameAction{}, game.ErrInvalidPhase("nothing to judge")
		}
		winner := s.RevealOrder[env.Rand.Intn(len(s.RevealOrder))]
		return s.czar(), models.NewGameAction(ActionJudge, judgePayload{WinnerID: winner}), nil
	}
	return "", models.GameAction{}, game.ErrInvalidPhase("no bot action during %s", s.Phase)
}
