package ui

import (
	"snake-arena/game/manager"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ReadKeys samples arrow keys, WASD and space for the current frame
func ReadKeys() manager.KeyState {
	return manager.KeyState{
		Left:    rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA),
		Right:   rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD),
		Up:      rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW),
		Down:    rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS),
		Confirm: rl.IsKeyPressed(rl.KeySpace),
	}
}
