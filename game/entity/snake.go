package entity

import (
	"snake-arena/game/types"

	"github.com/mlange-42/ark/ecs"
)

// DirectionQueue supplies buffered heading changes, oldest first
type DirectionQueue interface {
	Dequeue() (types.Direction, bool)
}

// Snake is the ordered list of segment handles. Index 0 is the head.
type Snake struct {
	Segments []ecs.Entity
}

func (s *Snake) Len() int {
	return len(s.Segments)
}

// GetHead returns the head handle
func (s *Snake) GetHead() (ecs.Entity, bool) {
	if len(s.Segments) == 0 {
		return ecs.Entity{}, false
	}
	return s.Segments[0], true
}

// Spawn places a fresh head. Any previous segments must have been cleared.
func (s *Snake) Spawn(r *Registry, pos types.Position, dir types.Direction) {
	s.Segments = append(s.Segments[:0], r.SpawnHead(pos, dir))
}

// Clear despawns every segment and empties the list
func (s *Snake) Clear(r *Registry) {
	for _, e := range s.Segments {
		r.Despawn(e)
	}
	s.Segments = s.Segments[:0]
}

// Direction returns the head's current heading
func (s *Snake) Direction(r *Registry) (types.Direction, bool) {
	head, ok := s.GetHead()
	if !ok {
		return types.Right, false
	}
	return r.Direction(head)
}

// Positions returns every segment position, head first
func (s *Snake) Positions(r *Registry) []types.Position {
	positions := make([]types.Position, 0, len(s.Segments))
	for _, e := range s.Segments {
		if pos, ok := r.Position(e); ok {
			positions = append(positions, pos)
		}
	}
	return positions
}

// PreviousPositions returns where every segment stood before the last step, head first
func (s *Snake) PreviousPositions(r *Registry) []types.Position {
	positions := make([]types.Position, 0, len(s.Segments))
	for _, e := range s.Segments {
		if pos, ok := r.PreviousPosition(e); ok {
			positions = append(positions, pos)
		}
	}
	return positions
}

// Step advances the snake by one cell. A buffered direction, if any, becomes the new heading.
// Each body segment takes the pre-step cell of the segment ahead of it.
// Returns false when there is no head to move.
func (s *Snake) Step(r *Registry, queue DirectionQueue, grid types.Grid) bool {
	head, ok := s.GetHead()
	if !ok {
		return false
	}
	dir, ok := r.Direction(head)
	if !ok {
		return false
	}
	if next, ok := queue.Dequeue(); ok {
		dir = next
		r.SetDirection(head, dir)
	}

	// Snapshot before any mutation: segment i's old cell is segment i+1's new cell
	before := s.Positions(r)
	if len(before) != len(s.Segments) {
		return false
	}

	r.Move(head, grid.Wrap(before[0].Add(dir)))
	for i := 1; i < len(s.Segments); i++ {
		r.Move(s.Segments[i], before[i-1])
	}
	return true
}

// Grow appends a new segment on the tail's cell. It separates from the tail on the next step.
func (s *Snake) Grow(r *Registry) bool {
	if len(s.Segments) == 0 {
		return false
	}
	tail, ok := r.Position(s.Segments[len(s.Segments)-1])
	if !ok {
		return false
	}
	s.Segments = append(s.Segments, r.SpawnSegment(tail))
	return true
}
