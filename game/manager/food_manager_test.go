package manager

import (
	"testing"

	"snake-arena/game/types"
)

func TestSpawnAvoidsReservedZoneAndExclusions(t *testing.T) {
	grid := types.DefaultGrid()
	fm := NewFoodManager(grid, 42)
	excluded := []types.Position{{X: 3, Y: 3}, {X: 4, Y: 3}, {X: 5, Y: 3}}

	for i := 0; i < 1000; i++ {
		pos, ok := fm.Spawn(excluded)
		if !ok {
			t.Fatal("Expected a free cell")
		}
		if !grid.Contains(pos) {
			t.Fatalf("Spawned off-grid at %v", pos)
		}
		if grid.InReservedZone(pos) {
			t.Fatalf("Spawned inside reserved zone at %v", pos)
		}
		for _, e := range excluded {
			if pos == e {
				t.Fatalf("Spawned on excluded cell %v", pos)
			}
		}
	}
}

func TestSpawnIsDeterministicForSeed(t *testing.T) {
	grid := types.DefaultGrid()
	a := NewFoodManager(grid, 7)
	b := NewFoodManager(grid, 7)

	for i := 0; i < 50; i++ {
		pa, _ := a.Spawn(nil)
		pb, _ := b.Spawn(nil)
		if pa != pb {
			t.Fatalf("Draw %d: expected identical placements, got %v and %v", i, pa, pb)
		}
	}
}

func TestSpawnFindsLastFreeCell(t *testing.T) {
	grid := types.Grid{Width: 6, Height: 6}
	fm := NewFoodManager(grid, 1)

	free := types.Position{X: 5, Y: 0}
	var excluded []types.Position
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := types.Position{X: x, Y: y}
			if p != free {
				excluded = append(excluded, p)
			}
		}
	}

	pos, ok := fm.Spawn(excluded)
	if !ok {
		t.Fatal("Expected the last free cell to be found")
	}
	if pos != free {
		t.Errorf("Expected %v, got %v", free, pos)
	}
}

func TestSpawnReportsFullBoard(t *testing.T) {
	grid := types.Grid{Width: 4, Height: 4}
	fm := NewFoodManager(grid, 1)

	var excluded []types.Position
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			excluded = append(excluded, types.Position{X: x, Y: y})
		}
	}

	if pos, ok := fm.Spawn(excluded); ok {
		t.Errorf("Expected no free cell, got %v", pos)
	}
}
