package types

// Direction is a cardinal heading on the grid
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every heading in input priority order
var Directions = [4]Direction{Left, Right, Up, Down}

// Opposite returns the reverse heading
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	default:
		return Up
	}
}

// Delta converts a Direction into a one-cell displacement. Up increments Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, 1
	default:
		return 0, -1
	}
}

// TurnLeft returns the heading after a counter-clockwise quarter turn
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Right:
		return Up
	case Down:
		return Right
	default:
		return Down
	}
}

// TurnRight returns the heading after a clockwise quarter turn
func (d Direction) TurnRight() Direction {
	return d.TurnLeft().Opposite()
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}
