package manager

import (
	"snake-arena/game/types"

	"golang.org/x/exp/rand"
)

// spawnAttemptsPerCell bounds the rejection sampler before it falls back to a full scan
const spawnAttemptsPerCell = 4

type FoodManager struct {
	grid types.Grid
	rng  *rand.Rand
}

// NewFoodManager creates a food placer. The same seed always yields the same placements.
func NewFoodManager(grid types.Grid, seed uint64) *FoodManager {
	return &FoodManager{
		grid: grid,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// IsValidSpawn reports whether food may be placed at pos
func (fm *FoodManager) IsValidSpawn(pos types.Position, excluded map[types.Position]struct{}) bool {
	if !fm.grid.Contains(pos) || fm.grid.InReservedZone(pos) {
		return false
	}
	_, taken := excluded[pos]
	return !taken
}

// Spawn picks a uniformly random free cell outside the score overlay.
// Returns false when the board has no free cell left.
func (fm *FoodManager) Spawn(excluded []types.Position) (types.Position, bool) {
	taken := make(map[types.Position]struct{}, len(excluded))
	for _, p := range excluded {
		taken[p] = struct{}{}
	}

	attempts := fm.grid.Cells() * spawnAttemptsPerCell
	for i := 0; i < attempts; i++ {
		pos := types.Position{
			X: fm.rng.Intn(fm.grid.Width),
			Y: fm.rng.Intn(fm.grid.Height),
		}
		if fm.IsValidSpawn(pos, taken) {
			return pos, true
		}
	}

	// Nearly full board: pick among the remaining cells directly
	var free []types.Position
	for y := 0; y < fm.grid.Height; y++ {
		for x := 0; x < fm.grid.Width; x++ {
			pos := types.Position{X: x, Y: y}
			if fm.IsValidSpawn(pos, taken) {
				free = append(free, pos)
			}
		}
	}
	if len(free) == 0 {
		return types.Position{}, false
	}
	return free[fm.rng.Intn(len(free))], true
}
