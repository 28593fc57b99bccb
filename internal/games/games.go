// internal/games/games.go
package games

import (
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/game/battleship"
	"github.com/jason-s-yu/partyhall/internal/game/cardjudge"
	"github.com/jason-s-yu/partyhall/internal/game/connectfour"
	"github.com/jason-s-yu/partyhall/internal/game/euchre"
	"github.com/jason-s-yu/partyhall/internal/game/minesweeper"
	"github.com/jason-s-yu/partyhall/internal/game/wordguess"
)

// Default returns a registry holding every game the service can host.
func Default() *game.Registry {
	return game.NewRegistry(
		euchre.New(),
		cardjudge.New(),
		connectfour.New(),
		battleship.New(),
		minesweeper.New(),
		wordguess.New(),
	)
}
