package ui

import (
	"fmt"
	"math"

	"snake-arena/game"
	"snake-arena/game/manager"
	"snake-arena/game/types"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	statsPanel    = 180 // Width of the side panel in pixels
	borderPadding = 10
	flashDuration = 0.25 // Seconds a food pickup flash stays visible
)

// HUD is the session summary shown next to the arena
type HUD struct {
	Best      int
	Rounds    int
	Average   float64
	Autopilot bool
	Viewers   int
}

type Renderer struct {
	cellSize int32
	grid     types.Grid
	offsetX  int32
	offsetY  int32
	flash    float32
	flashAt  types.Position
}

func NewRenderer(grid types.Grid) *Renderer {
	return &Renderer{
		cellSize: types.CellSize,
		grid:     grid,
		offsetX:  borderPadding,
		offsetY:  borderPadding,
	}
}

// WindowSize returns the window dimensions needed for the arena plus the side panel
func (r *Renderer) WindowSize() (int32, int32) {
	w := r.cellSize*int32(r.grid.Width) + borderPadding*2 + statsPanel
	h := r.cellSize*int32(r.grid.Height) + borderPadding*2
	return w, h
}

// Notify consumes the events of the last frame for cosmetic effects
func (r *Renderer) Notify(events []game.Event) {
	for _, e := range events {
		if e.Type == game.EventFoodEaten {
			r.flash = flashDuration
			r.flashAt = e.Position
		}
	}
}

// cellOrigin converts fractional cell coordinates into screen pixels. Y grows upwards on the arena.
func (r *Renderer) cellOrigin(x, y float64) rl.Vector2 {
	px := float64(r.offsetX) + x*float64(r.cellSize)
	py := float64(r.offsetY) + (float64(r.grid.Height)-1-y)*float64(r.cellSize)
	return rl.NewVector2(float32(px), float32(py))
}

// drawCell draws a cell at fractional coordinates, splitting it across the wrapped edge when needed
func (r *Renderer) drawCell(x, y float64, color rl.Color) {
	w, h := float64(r.grid.Width), float64(r.grid.Height)
	x = x - math.Floor(x/w)*w
	y = y - math.Floor(y/h)*h

	size := rl.NewVector2(float32(r.cellSize), float32(r.cellSize))
	xs := []float64{x}
	if x > w-1 {
		xs = append(xs, x-w)
	}
	ys := []float64{y}
	if y > h-1 {
		ys = append(ys, y-h)
	}
	for _, cx := range xs {
		for _, cy := range ys {
			rl.DrawRectangleV(r.cellOrigin(cx, cy), size, color)
		}
	}
}

func (r *Renderer) Draw(snap game.Snapshot, hud HUD) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	arenaW := r.cellSize * int32(r.grid.Width)
	arenaH := r.cellSize * int32(r.grid.Height)

	rl.DrawRectangle(r.offsetX-1, r.offsetY-1, arenaW+2, arenaH+2, rl.DarkGray)
	rl.DrawRectangle(r.offsetX, r.offsetY, arenaW, arenaH, rl.Black)

	rl.BeginScissorMode(r.offsetX, r.offsetY, arenaW, arenaH)
	for _, food := range snap.Food {
		r.drawCell(float64(food.X), float64(food.Y), rl.Red)
	}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		x, y := snap.Lerp(i)
		color := rl.Green
		if i == 0 {
			color = rl.Lime
		}
		r.drawCell(x, y, color)
	}
	if r.flash > 0 {
		alpha := r.flash / flashDuration
		r.drawCell(float64(r.flashAt.X), float64(r.flashAt.Y), rl.Fade(rl.Yellow, alpha))
		r.flash -= rl.GetFrameTime()
	}
	rl.EndScissorMode()

	// Score sits over the reserved top-left cells, where food never spawns
	score := fmt.Sprintf("%d", snap.Score)
	rl.DrawText(score, r.offsetX+5, r.offsetY+5, r.cellSize, rl.White)

	switch snap.Phase {
	case manager.PhaseMenu:
		r.drawBanner("SNAKE", "Press SPACE to start", arenaW, arenaH)
	case manager.PhaseGameOver:
		r.drawBanner("GAME OVER", fmt.Sprintf("Score %d - SPACE to restart", snap.Score), arenaW, arenaH)
	}

	r.drawStatsPanel(snap, hud, arenaW)
	rl.EndDrawing()
}

func (r *Renderer) drawBanner(title, subtitle string, arenaW, arenaH int32) {
	const titleSize, subSize = 40, 18
	tw := rl.MeasureText(title, titleSize)
	sw := rl.MeasureText(subtitle, subSize)
	cy := r.offsetY + arenaH/2

	rl.DrawText(title, r.offsetX+(arenaW-tw)/2, cy-titleSize, titleSize, rl.White)
	rl.DrawText(subtitle, r.offsetX+(arenaW-sw)/2, cy+10, subSize, rl.LightGray)
}

func (r *Renderer) drawStatsPanel(snap game.Snapshot, hud HUD, arenaW int32) {
	const fontSize, lineHeight = 16, 22
	statsX := r.offsetX + arenaW + borderPadding*2
	statsY := r.offsetY

	lines := []string{
		fmt.Sprintf("Score: %d", snap.Score),
		fmt.Sprintf("Length: %d", len(snap.Snake)),
		fmt.Sprintf("Best: %d", hud.Best),
		fmt.Sprintf("Rounds: %d", hud.Rounds),
		fmt.Sprintf("Avg: %.2f", hud.Average),
	}
	if hud.Autopilot {
		lines = append(lines, "Autopilot")
	}
	if hud.Viewers > 0 {
		lines = append(lines, fmt.Sprintf("Viewers: %d", hud.Viewers))
	}

	for _, line := range lines {
		rl.DrawText(line, statsX, statsY, fontSize, rl.White)
		statsY += lineHeight
	}
}
