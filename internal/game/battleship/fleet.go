// internal/game/battleship/fleet.go
package battleship

import (
	"math/rand"

	"github.com/jason-s-yu/partyhall/internal/game"
)

// Size is the board edge length.
const Size = 10

// Shot outcomes recorded on a Grid.
const (
	Unknown = 0
	Miss    = 1
	Hit     = 2
)

// Grid records the shots a board has received.
type Grid [Size][Size]int

// ShipSpec names a ship class and its length.
type ShipSpec struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Fleet is the exact set of ships each player places.
var Fleet = []ShipSpec{
	{"carrier", 5},
	{"battleship", 4},
	{"cruiser", 3},
	{"submarine", 3},
	{"destroyer", 2},
}

func shipSize(name string) int {
	for _, s := range Fleet {
		if s.Name == name {
			return s.Size
		}
	}
	return 0
}

// Ship is a placed ship. Row/Col is the top-left cell.
type Ship struct {
	Name       string `json:"name"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Horizontal bool   `json:"horizontal"`
	Size       int    `json:"size"`
	Sunk       bool   `json:"sunk"`
}

// Cells lists the coordinates the ship covers.
func (s Ship) Cells() [][2]int {
	cells := make([][2]int, s.Size)
	for i := 0; i < s.Size; i++ {
		if s.Horizontal {
			cells[i] = [2]int{s.Row, s.Col + i}
		} else {
			cells[i] = [2]int{s.Row + i, s.Col}
		}
	}
	return cells
}

func inBounds(r, c int) bool {
	return r >= 0 && r < Size && c >= 0 && c < Size
}

// validateFleet checks that ships is exactly the standard fleet, in bounds and without
// overlap. Sizes are filled in from the fleet table.
func validateFleet(ships []Ship) ([]Ship, error) {
	if len(ships) != len(Fleet) {
		return nil, game.ErrInvalidAction("place exactly %d ships", len(Fleet))
	}
	out := make([]Ship, len(ships))
	seen := make(map[string]bool)
	var occupied [Size][Size]bool
	for i, s := range ships {
		size := shipSize(s.Name)
		if size == 0 {
			return nil, game.ErrInvalidAction("unknown ship %q", s.Name)
		}
		if seen[s.Name] {
			return nil, game.ErrInvalidAction("ship %q placed twice", s.Name)
		}
		seen[s.Name] = true
		s.Size = size
		s.Sunk = false
		for _, cell := range s.Cells() {
			if !inBounds(cell[0], cell[1]) {
				return nil, game.ErrInvalidAction("ship %q is off the board", s.Name)
			}
			if occupied[cell[0]][cell[1]] {
				return nil, game.ErrInvalidAction("ship %q overlaps another ship", s.Name)
			}
			occupied[cell[0]][cell[1]] = true
		}
		out[i] = s
	}
	return out, nil
}

// randomFleet places every ship at a random legal position.
func randomFleet(rng *rand.Rand) []Ship {
	var occupied [Size][Size]bool
	ships := make([]Ship, 0, len(Fleet))
	for _, spec := range Fleet {
		for {
			s := Ship{Name: spec.Name, Size: spec.Size, Horizontal: rng.Intn(2) == 0}
			if s.Horizontal {
				s.Row, s.Col = rng.Intn(Size), rng.Intn(Size-spec.Size+1)
			} else {
				s.Row, s.Col = rng.Intn(Size-spec.Size+1), rng.Intn(Size)
			}
			free := true
			for _, cell := range s.Cells() {
				if occupied[cell[0]][cell[1]] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			for _, cell := range s.Cells() {
				occupied[cell[0]][cell[1]] = true
			}
			ships = append(ships, s)
			break
		}
	}
	return ships
}
