package game

import "snake-arena/game/types"

// EventType tags a cosmetic notification emitted by a move tick
type EventType int

const (
	EventFoodEaten EventType = iota
	EventGrowth
)

func (e EventType) String() string {
	switch e {
	case EventFoodEaten:
		return "food_eaten"
	case EventGrowth:
		return "growth"
	default:
		return "unknown"
	}
}

// Event is drained by presentation code once per frame. Nothing in the simulation reads it back.
type Event struct {
	Type     EventType      `json:"type" msgpack:"type"`
	Position types.Position `json:"position" msgpack:"position"`
}
