// internal/game/connectfour/board.go
package connectfour

const (
	Rows    = 6
	Columns = 7
	connect = 4
)

// Board holds seat numbers (1 or 2) and 0 for empty. Row 0 is the top.
type Board [Rows][Columns]int

// drop returns the row a disc would land in, or -1 if the column is full.
func (b *Board) drop(col int) int {
	if col < 0 || col >= Columns {
		return -1
	}
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == 0 {
			return r
		}
	}
	return -1
}

func (b *Board) legalColumns() []int {
	var cols []int
	for c := 0; c < Columns; c++ {
		if b[0][c] == 0 {
			cols = append(cols, c)
		}
	}
	return cols
}

func (b *Board) full() bool {
	return len(b.legalColumns()) == 0
}

var directions = [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// line returns the four-or-more run through (row, col) if the disc there completes one.
func (b *Board) line(row, col int) [][2]int {
	disc := b[row][col]
	if disc == 0 {
		return nil
	}
	for _, d := range directions {
		run := [][2]int{{row, col}}
		for _, sign := range []int{1, -1} {
			r, c := row+sign*d[0], col+sign*d[1]
			for r >= 0 && r < Rows && c >= 0 && c < Columns && b[r][c] == disc {
				run = append(run, [2]int{r, c})
				r, c = r+sign*d[0], c+sign*d[1]
			}
		}
		if len(run) >= connect {
			return run
		}
	}
	return nil
}

// wins reports whether disc dropped into col would complete a line.
func (b Board) wins(col, disc int) bool {
	r := b.drop(col)
	if r < 0 {
		return false
	}
	b[r][col] = disc
	return b.line(r, col) != nil
}
