package game

import (
	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// Snapshot is a read-only copy of everything a frontend needs to draw one frame
type Snapshot struct {
	Round     string           `json:"round" msgpack:"round"`
	Phase     manager.Phase    `json:"phase" msgpack:"phase"`
	Score     int              `json:"score" msgpack:"score"`
	GameOver  bool             `json:"game_over" msgpack:"game_over"`
	Tick      int              `json:"tick" msgpack:"tick"`
	Direction types.Direction  `json:"direction" msgpack:"direction"`
	Snake     []types.Position `json:"snake" msgpack:"snake"`
	Previous  []types.Position `json:"previous" msgpack:"previous"`
	Food      []types.Position `json:"food" msgpack:"food"`
	Progress  float64          `json:"progress" msgpack:"progress"`
	Width     int              `json:"width" msgpack:"width"`
	Height    int              `json:"height" msgpack:"height"`
}

// Head returns the head cell
func (s Snapshot) Head() (types.Position, bool) {
	if len(s.Snake) == 0 {
		return types.Position{}, false
	}
	return s.Snake[0], true
}

// Lerp returns the interpolated cell coordinates of segment i between its previous and current cell.
// A step across a wrapped edge is unwrapped so the segment slides out of the arena instead of
// sweeping across it. The caller is expected to draw modulo the arena size.
func (s Snapshot) Lerp(i int) (x, y float64) {
	if i < 0 || i >= len(s.Snake) {
		return 0, 0
	}
	cur := s.Snake[i]
	prev := cur
	if i < len(s.Previous) {
		prev = s.Previous[i]
	}

	px := unwrap(prev.X, cur.X, s.Width)
	py := unwrap(prev.Y, cur.Y, s.Height)

	t := s.Progress
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}
	return px + (float64(cur.X)-px)*t, py + (float64(cur.Y)-py)*t
}

// unwrap shifts prev by one arena length when the move to cur crossed an edge
func unwrap(prev, cur, dimension int) float64 {
	d := cur - prev
	switch {
	case d > dimension/2:
		return float64(prev + dimension)
	case d < -dimension/2:
		return float64(prev - dimension)
	default:
		return float64(prev)
	}
}
