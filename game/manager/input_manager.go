package manager

import "snake-arena/game/types"

// InputBufferSize is the number of direction changes that may be queued ahead of the move tick
const InputBufferSize = 2

// KeyState is the raw per-frame input collapsed from arrow keys, WASD and the confirm key
type KeyState struct {
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Confirm bool
}

// Direction returns the first pressed heading in Left, Right, Up, Down order, or fallback
func (k KeyState) Direction(fallback types.Direction) types.Direction {
	switch {
	case k.Left:
		return types.Left
	case k.Right:
		return types.Right
	case k.Up:
		return types.Up
	case k.Down:
		return types.Down
	default:
		return fallback
	}
}

// Press marks the heading d as held
func (k *KeyState) Press(d types.Direction) {
	switch d {
	case types.Left:
		k.Left = true
	case types.Right:
		k.Right = true
	case types.Up:
		k.Up = true
	case types.Down:
		k.Down = true
	}
}

// InputBuffer is a bounded FIFO of pending direction changes.
// It only enforces capacity; reversal filtering happens in InputManager.
type InputBuffer struct {
	queued []types.Direction
}

func NewInputBuffer() *InputBuffer {
	return &InputBuffer{queued: make([]types.Direction, 0, InputBufferSize)}
}

// Enqueue appends d unless the buffer is full
func (b *InputBuffer) Enqueue(d types.Direction) bool {
	if len(b.queued) >= InputBufferSize {
		return false
	}
	b.queued = append(b.queued, d)
	return true
}

// Dequeue removes and returns the oldest entry
func (b *InputBuffer) Dequeue() (types.Direction, bool) {
	if len(b.queued) == 0 {
		return types.Right, false
	}
	d := b.queued[0]
	copy(b.queued, b.queued[1:])
	b.queued = b.queued[:len(b.queued)-1]
	return d, true
}

// PeekLast returns the most recently queued entry without removing it
func (b *InputBuffer) PeekLast() (types.Direction, bool) {
	if len(b.queued) == 0 {
		return types.Right, false
	}
	return b.queued[len(b.queued)-1], true
}

func (b *InputBuffer) Clear() {
	b.queued = b.queued[:0]
}

func (b *InputBuffer) Len() int {
	return len(b.queued)
}

// InputManager turns raw key state into buffered direction changes
type InputManager struct {
	buffer *InputBuffer
}

func NewInputManager(buffer *InputBuffer) *InputManager {
	return &InputManager{buffer: buffer}
}

// Effective returns the heading the snake will have once the buffer drains
func (im *InputManager) Effective(current types.Direction) types.Direction {
	if last, ok := im.buffer.PeekLast(); ok {
		return last
	}
	return current
}

// Process runs one input pass against the head's current heading.
// A change is queued only if it differs from the effective heading and does not reverse it,
// which lets two quick turns (Right -> Up -> Left) queue without ever allowing a U-turn.
func (im *InputManager) Process(keys KeyState, current types.Direction) bool {
	effective := im.Effective(current)
	next := keys.Direction(effective)

	if next == effective || next == effective.Opposite() {
		return false
	}
	return im.buffer.Enqueue(next)
}
