// internal/game/battleship/bot.go
package battleship

import (
	"math/rand"
	"sort"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

func (Battleship) BotAction(s *State, env game.Env) (string, models.GameAction, error) {
	if s.Phase != PhasePlaying {
		return "", models.GameAction{}, game.ErrInvalidPhase("no bot action during %s", s.Phase)
	}
	target := s.Boards[1-s.CurrentTurn]
	cell := chooseTarget(target.Received, sunkCells(target.Ships), env.Rand)
	return s.current(), models.NewGameAction(ActionFire, map[string]int{"row": cell[0], "col": cell[1]}), nil
}

func sunkCells(ships []Ship) map[[2]int]bool {
	out := make(map[[2]int]bool)
	for _, ship := range ships {
		if ship.Sunk {
			for _, c := range ship.Cells() {
				out[c] = true
			}
		}
	}
	return out
}

// chooseTarget is the hunt-and-target heuristic. Only information the shooter has is used:
// the shot grid and the cells of ships already announced as sunk.
func chooseTarget(g Grid, sunk map[[2]int]bool, rng *rand.Rand) [2]int {
	open := func(r, c int) bool { return inBounds(r, c) && g[r][c] == Unknown }
	live := func(r, c int) bool { return inBounds(r, c) && g[r][c] == Hit && !sunk[[2]int{r, c}] }

	var hits [][2]int
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if live(r, c) {
				hits = append(hits, [2]int{r, c})
			}
		}
	}

	if len(hits) > 0 {
		// Target mode: extend the longest run of live hits along a row or column.
		type run struct {
			cells [][2]int
			dr    int
			dc    int
		}
		var runs []run
		for _, h := range hits {
			for _, d := range [][2]int{{0, 1}, {1, 0}} {
				// Only start runs at their first cell.
				if live(h[0]-d[0], h[1]-d[1]) {
					continue
				}
				cells := [][2]int{h}
				for r, c := h[0]+d[0], h[1]+d[1]; live(r, c); r, c = r+d[0], c+d[1] {
					cells = append(cells, [2]int{r, c})
				}
				if len(cells) >= 2 {
					runs = append(runs, run{cells: cells, dr: d[0], dc: d[1]})
				}
			}
		}
		sort.SliceStable(runs, func(i, j int) bool { return len(runs[i].cells) > len(runs[j].cells) })
		for _, rn := range runs {
			first, last := rn.cells[0], rn.cells[len(rn.cells)-1]
			var ends [][2]int
			if open(first[0]-rn.dr, first[1]-rn.dc) {
				ends = append(ends, [2]int{first[0] - rn.dr, first[1] - rn.dc})
			}
			if open(last[0]+rn.dr, last[1]+rn.dc) {
				ends = append(ends, [2]int{last[0] + rn.dr, last[1] + rn.dc})
			}
			if len(ends) > 0 {
				return ends[rng.Intn(len(ends))]
			}
		}

		var adjacent [][2]int
		for _, h := range hits {
			for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				if open(h[0]+d[0], h[1]+d[1]) {
					adjacent = append(adjacent, [2]int{h[0] + d[0], h[1] + d[1]})
				}
			}
		}
		if len(adjacent) > 0 {
			return adjacent[rng.Intn(len(adjacent))]
		}
	}

	// Hunt mode: the smallest ship spans two cells, so checkerboard parity covers it.
	var parity, rest [][2]int
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !open(r, c) {
				continue
			}
			rest = append(rest, [2]int{r, c})
			if (r+c)%2 == 0 {
				parity = append(parity, [2]int{r, c})
			}
		}
	}
	if len(parity) > 0 {
		return parity[rng.Intn(len(parity))]
	}
	return rest[rng.Intn(len(rest))]
}
