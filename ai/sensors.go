package ai

import (
	"snake-arena/game"
	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// Sense reduces a snapshot to the discrete state seen by the agent.
// All directions are relative to the current heading, so the agent cannot express a reversal.
func Sense(snap game.Snapshot) (State, bool) {
	head, ok := snap.Head()
	if !ok {
		return State{}, false
	}
	grid := types.Grid{Width: snap.Width, Height: snap.Height}
	heading := snap.Direction

	// The tail vacates its cell on the next step
	body := snap.Snake
	if len(body) > 1 {
		body = body[:len(body)-1]
	}
	collisions := manager.NewCollisionManager(grid)

	s := State{FoodDistance: -1}
	for i, a := range Actions {
		next := grid.Wrap(head.Add(a.Apply(heading)))
		s.Dangers[i] = collisions.IsOccupied(next, body[1:])
	}

	if food, ok := nearestFood(grid, head, snap.Food); ok {
		s.FoodDistance = grid.Distance(head, food)
		s.FoodAhead, s.FoodSide = relativeFood(grid, head, food, heading)
	}
	return s, true
}

func nearestFood(grid types.Grid, head types.Position, foods []types.Position) (types.Position, bool) {
	best := -1
	var pos types.Position
	for _, f := range foods {
		if d := grid.Distance(head, f); best < 0 || d < best {
			best, pos = d, f
		}
	}
	return pos, best >= 0
}

// relativeFood returns the sign of the shortest wrapped offset to the food,
// projected on the heading (ahead/behind) and its left-hand side (left/right)
func relativeFood(grid types.Grid, head, food types.Position, heading types.Direction) (ahead, side int) {
	dx := shortestOffset(head.X, food.X, grid.Width)
	dy := shortestOffset(head.Y, food.Y, grid.Height)

	fx, fy := heading.Delta()
	lx, ly := heading.TurnLeft().Delta()
	return sign(dx*fx + dy*fy), sign(dx*lx + dy*ly)
}

func shortestOffset(from, to, dimension int) int {
	d := types.Wrap(to-from, dimension)
	if d > dimension/2 {
		d -= dimension
	}
	return d
}

func sign(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}
