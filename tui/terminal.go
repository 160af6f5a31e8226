package tui

import (
	"fmt"

	"snake-arena/game"
	"snake-arena/game/manager"
	"snake-arena/game/types"

	"github.com/gdamore/tcell/v2"
)

// cellWidth is the number of terminal columns per arena cell, which keeps cells roughly square
const cellWidth = 2

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Background(tcell.ColorSpringGreen)
	styleBody   = tcell.StyleDefault.Background(tcell.ColorGreen)
	styleFood   = tcell.StyleDefault.Background(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Terminal is a text frontend. Terminals report key presses, not key state,
// so each press is held for exactly one frame.
type Terminal struct {
	screen tcell.Screen
	grid   types.Grid
	keys   manager.KeyState
	quit   bool
}

// NewTerminal opens the controlling terminal
func NewTerminal(grid types.Grid) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewTerminalWithScreen(screen, grid), nil
}

// NewTerminalWithScreen wraps an already initialised screen
func NewTerminalWithScreen(screen tcell.Screen, grid types.Grid) *Terminal {
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	return &Terminal{screen: screen, grid: grid}
}

// Events pumps screen events into a channel until the screen is closed
func (t *Terminal) Events() <-chan tcell.Event {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()
	return events
}

// HandleEvent folds one event into the pending key state
func (t *Terminal) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			t.quit = true
		case tcell.KeyLeft:
			t.keys.Left = true
		case tcell.KeyRight:
			t.keys.Right = true
		case tcell.KeyUp:
			t.keys.Up = true
		case tcell.KeyDown:
			t.keys.Down = true
		case tcell.KeyEnter:
			t.keys.Confirm = true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'a', 'A':
				t.keys.Left = true
			case 'd', 'D':
				t.keys.Right = true
			case 'w', 'W':
				t.keys.Up = true
			case 's', 'S':
				t.keys.Down = true
			case ' ':
				t.keys.Confirm = true
			case 'q', 'Q':
				t.quit = true
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// Keys returns the key state gathered since the previous call
func (t *Terminal) Keys() manager.KeyState {
	keys := t.keys
	t.keys = manager.KeyState{}
	return keys
}

// Quit reports whether the player asked to leave
func (t *Terminal) Quit() bool {
	return t.quit
}

// screenPos maps an arena cell to terminal coordinates inside the border. Y grows upwards on the arena.
func (t *Terminal) screenPos(p types.Position) (int, int) {
	return 1 + p.X*cellWidth, 1 + (t.grid.Height - 1 - p.Y)
}

func (t *Terminal) fillCell(p types.Position, style tcell.Style) {
	x, y := t.screenPos(p)
	for i := 0; i < cellWidth; i++ {
		t.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (t *Terminal) drawBorder() {
	right := 1 + t.grid.Width*cellWidth
	bottom := 1 + t.grid.Height
	for x := 1; x < right; x++ {
		t.screen.SetContent(x, 0, tcell.RuneHLine, nil, styleBorder)
		t.screen.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := 1; y < bottom; y++ {
		t.screen.SetContent(0, y, tcell.RuneVLine, nil, styleBorder)
		t.screen.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	t.screen.SetContent(0, 0, tcell.RuneULCorner, nil, styleBorder)
	t.screen.SetContent(right, 0, tcell.RuneURCorner, nil, styleBorder)
	t.screen.SetContent(0, bottom, tcell.RuneLLCorner, nil, styleBorder)
	t.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}

// Draw renders a snapshot. Cells are drawn at their current grid position without interpolation.
func (t *Terminal) Draw(snap game.Snapshot) {
	t.screen.Clear()
	t.drawBorder()

	for _, food := range snap.Food {
		t.fillCell(food, styleFood)
	}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		style := styleBody
		if i == 0 {
			style = styleHead
		}
		t.fillCell(snap.Snake[i], style)
	}

	// Score overlays the reserved top-left cells
	t.drawText(1, 1, fmt.Sprintf("%d", snap.Score), styleText)

	status := 3 + t.grid.Height
	switch snap.Phase {
	case manager.PhaseMenu:
		t.drawText(0, status-1, "SPACE to start, q to quit", styleText)
	case manager.PhaseGameOver:
		t.drawText(0, status-1, fmt.Sprintf("Game over! Score %d. SPACE to restart", snap.Score), styleText)
	}

	t.screen.Show()
}

// Close restores the terminal
func (t *Terminal) Close() {
	t.screen.Fini()
}
