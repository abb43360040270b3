// Package grid maps linear key indices onto a row-major key grid and holds
// the static key-to-slot table.
package grid

import "fmt"

// Coordinate is a row/column position on the grid.
type Coordinate struct {
	Row int
	Col int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid describes a rectangular key grid laid out row-major.
type Grid struct {
	Rows int
	Cols int
}

// Square returns an n×n grid.
func Square(n int) Grid {
	return Grid{Rows: n, Cols: n}
}

// Len returns the number of keys on the grid.
func (g Grid) Len() int {
	if g.Rows <= 0 || g.Cols <= 0 {
		return 0
	}
	return g.Rows * g.Cols
}

// Coordinate returns the position of key i. ok is false when i is outside
// [0, Len()).
func (g Grid) Coordinate(i int) (c Coordinate, ok bool) {
	if i < 0 || i >= g.Len() {
		return Coordinate{}, false
	}
	return Coordinate{Row: i / g.Cols, Col: i % g.Cols}, true
}

// Index returns the key index at c. ok is false when c is off the grid.
func (g Grid) Index(c Coordinate) (i int, ok bool) {
	if c.Row < 0 || c.Col < 0 || c.Row >= g.Rows || c.Col >= g.Cols {
		return 0, false
	}
	return c.Row*g.Cols + c.Col, true
}

// ForKeys returns the smallest square grid holding n keys.
func ForKeys(n int) Grid {
	side := 0
	for side*side < n {
		side++
	}
	return Square(side)
}
