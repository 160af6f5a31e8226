package types

import "time"

// Grid represents the game grid dimensions
type Grid struct {
	Width  int
	Height int
}

// Game constants
const (
	ArenaWidth   = 20
	ArenaHeight  = 20
	MoveInterval = 150 * time.Millisecond
	CellSize     = 25 // Pixels per cell in the window frontend

	// Reserved display zone (score text) in the top-left corner of the arena
	ReservedMaxX        = 2
	ReservedRowsFromTop = 2
)

// InitialPosition is where the head spawns on every round start
var InitialPosition = Position{X: 3, Y: 3}

// DefaultGrid returns the fixed arena
func DefaultGrid() Grid {
	return Grid{Width: ArenaWidth, Height: ArenaHeight}
}

// Position is a cell on the arena
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Add returns p translated by one cell in direction d, without wrapping
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Wrap maps any integer coordinate into [0, dimension)
func Wrap(coord, dimension int) int {
	return ((coord % dimension) + dimension) % dimension
}

// Wrap applies toroidal wrap on both axes
func (g Grid) Wrap(p Position) Position {
	return Position{X: Wrap(p.X, g.Width), Y: Wrap(p.Y, g.Height)}
}

// Contains reports whether p lies inside the grid
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Cells returns the number of cells on the grid
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// InReservedZone reports whether p is under the score display
func (g Grid) InReservedZone(p Position) bool {
	return p.X <= ReservedMaxX && p.Y >= g.Height-ReservedRowsFromTop
}

// Distance is the Manhattan distance between two cells, taking wrapping into account
func (g Grid) Distance(a, b Position) int {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)

	if dx > g.Width/2 {
		dx = g.Width - dx
	}
	if dy > g.Height/2 {
		dy = g.Height - dy
	}

	return dx + dy
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
