package manager

import (
	"snake-arena/game/entity"
	"snake-arena/game/types"
)

// selfCollisionStart is the first body index that can kill the head.
// The segment directly behind the head is exempt.
const selfCollisionStart = 2

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// FoodAt returns the food occupying the head's cell, if any
func (cm *CollisionManager) FoodAt(head types.Position, foods []entity.FoodRef) (entity.FoodRef, bool) {
	for _, food := range foods {
		if food.Pos == head {
			return food, true
		}
	}
	return entity.FoodRef{}, false
}

// IsSelfCollision checks the head (positions[0]) against the body.
// Walls never collide on a torus, so this is the only fatal case.
func (cm *CollisionManager) IsSelfCollision(positions []types.Position) bool {
	if len(positions) <= selfCollisionStart {
		return false
	}
	head := positions[0]
	for _, p := range positions[selfCollisionStart:] {
		if p == head {
			return true
		}
	}
	return false
}

// IsOccupied reports whether any of positions sits on pos
func (cm *CollisionManager) IsOccupied(pos types.Position, positions []types.Position) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}
