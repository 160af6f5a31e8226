package entity

import "snake-arena/game/types"

// PreviousPosition holds where an entity stood before the last grid step.
// Renderers interpolate between it and the current Position.
type PreviousPosition struct {
	Pos types.Position
}

// Head marks the snake head and carries its heading
type Head struct {
	Direction types.Direction
}

// Segment tags body segments
type Segment struct{}

// Food tags food entities
type Food struct{}
