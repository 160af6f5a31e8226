package game

import (
	"log"
	"time"

	"snake-arena/game/entity"
	"snake-arena/game/manager"
	"snake-arena/game/types"

	"github.com/google/uuid"
)

// MoveTimer tracks time since the last grid step. It drives interpolation only.
type MoveTimer struct {
	Elapsed time.Duration
}

// Progress is the fraction of the move interval that has passed, capped at 1
func (t MoveTimer) Progress() float64 {
	p := float64(t.Elapsed) / float64(types.MoveInterval)
	if p > 1 {
		return 1
	}
	return p
}

func (t *MoveTimer) Reset() {
	t.Elapsed = 0
}

// Game owns the whole simulation: entity storage, phase, score, input buffer and move timer.
// It is not safe for concurrent use; frontends read it through Snapshot.
type Game struct {
	UUID  string // round id, regenerated on every start
	Grid  types.Grid
	State manager.GameState
	Input *manager.InputBuffer
	Timer MoveTimer
	Ticks int

	registry     *entity.Registry
	inputMgr     *manager.InputManager
	foodMgr      *manager.FoodManager
	collisionMgr *manager.CollisionManager
	stateMgr     *manager.StateManager
	events       []Event
	accumulator  time.Duration // unconsumed frame time, always below one interval after a step
}

// NewGame creates a game in the menu phase. Food placement is driven by seed.
func NewGame(width, height int, seed uint64) *Game {
	grid := types.Grid{Width: width, Height: height}
	input := manager.NewInputBuffer()

	g := &Game{
		Grid:         grid,
		State:        manager.GameState{Phase: manager.PhaseMenu},
		Input:        input,
		registry:     entity.NewRegistry(),
		inputMgr:     manager.NewInputManager(input),
		foodMgr:      manager.NewFoodManager(grid, seed),
		collisionMgr: manager.NewCollisionManager(grid),
	}
	g.stateMgr = manager.NewStateManager(&g.State)
	return g
}

// Phase returns the current phase
func (g *Game) Phase() manager.Phase {
	return g.State.Phase
}

// Score returns the current round score
func (g *Game) Score() int {
	return g.State.Score
}

// Start leaves the menu. It is ignored in any other phase.
func (g *Game) Start() bool {
	if !g.stateMgr.Apply(manager.CommandStart) {
		return false
	}
	g.enterPlaying()
	return true
}

// Restart begins a new round after a game over. It is ignored in any other phase.
func (g *Game) Restart() bool {
	if !g.stateMgr.Apply(manager.CommandRestart) {
		return false
	}
	g.enterPlaying()
	return true
}

// Confirm maps the confirm key onto whichever of Start or Restart is valid
func (g *Game) Confirm() bool {
	switch g.State.Phase {
	case manager.PhaseMenu:
		return g.Start()
	case manager.PhaseGameOver:
		return g.Restart()
	default:
		return false
	}
}

// enterPlaying rebuilds the round from scratch. Both Start and Restart land here.
func (g *Game) enterPlaying() {
	g.State.Snake.Clear(g.registry)
	g.registry.Clear()
	g.stateMgr.ResetRound()
	g.Input.Clear()
	g.Timer.Reset()
	g.accumulator = 0
	g.events = g.events[:0]
	g.Ticks = 0
	g.UUID = uuid.New().String()

	g.State.Snake.Spawn(g.registry, types.InitialPosition, types.Right)
	g.spawnFood([]types.Position{types.InitialPosition})
}

// HandleInput runs one input pass. Only effective while playing.
func (g *Game) HandleInput(keys manager.KeyState) bool {
	if !g.stateMgr.IsPlaying() {
		return false
	}
	current, ok := g.State.Snake.Direction(g.registry)
	if !ok {
		return false
	}
	return g.inputMgr.Process(keys, current)
}

// Update advances one frame: confirm key, input pass, then at most one grid step
// once a full interval has accumulated. Time left over after a step carries into
// the next interval. Returns true if a step ran.
func (g *Game) Update(keys manager.KeyState, dt time.Duration) bool {
	if keys.Confirm {
		g.Confirm()
	}
	if !g.stateMgr.IsPlaying() {
		return false
	}

	g.HandleInput(keys)

	g.Timer.Elapsed += dt
	g.accumulator += dt
	if g.accumulator < types.MoveInterval {
		return false
	}
	if !g.Tick() {
		return false
	}
	// A stall longer than one interval still yields a single step
	g.accumulator = (g.accumulator - types.MoveInterval) % types.MoveInterval
	return true
}

// Tick performs one grid step followed by the food, growth and game-over passes
func (g *Game) Tick() bool {
	if !g.stateMgr.IsPlaying() {
		return false
	}
	if !g.State.Snake.Step(g.registry, g.Input, g.Grid) {
		return false
	}
	g.Timer.Reset()
	g.Ticks++

	positions := g.State.Snake.Positions(g.registry)
	head := positions[0]

	if food, ok := g.collisionMgr.FoodAt(head, g.registry.Foods()); ok {
		g.registry.Despawn(food.Entity)
		g.stateMgr.AddScore(1)
		g.emit(EventFoodEaten, food.Pos)
		g.spawnFood(positions)

		if g.State.Snake.Grow(g.registry) {
			g.emit(EventGrowth, positions[len(positions)-1])
		}
		positions = g.State.Snake.Positions(g.registry)
	}

	if g.collisionMgr.IsSelfCollision(positions) {
		g.stateMgr.Apply(manager.CommandCollide)
		log.Printf("Game Over! Final score: %d", g.State.Score)
	}
	return true
}

func (g *Game) spawnFood(excluded []types.Position) {
	pos, ok := g.foodMgr.Spawn(excluded)
	if !ok {
		log.Printf("No free cell left for food after %d ticks", g.Ticks)
		return
	}
	g.registry.SpawnFood(pos)
}

func (g *Game) emit(t EventType, pos types.Position) {
	g.events = append(g.events, Event{Type: t, Position: pos})
}

// DrainEvents returns and clears the notifications emitted since the last call
func (g *Game) DrainEvents() []Event {
	if len(g.events) == 0 {
		return nil
	}
	out := make([]Event, len(g.events))
	copy(out, g.events)
	g.events = g.events[:0]
	return out
}

// Snapshot copies the current state for rendering
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Round:    g.UUID,
		Phase:    g.State.Phase,
		Score:    g.State.Score,
		GameOver: g.State.GameOver,
		Tick:     g.Ticks,
		Snake:    g.State.Snake.Positions(g.registry),
		Previous: g.State.Snake.PreviousPositions(g.registry),
		Progress: g.Timer.Progress(),
		Width:    g.Grid.Width,
		Height:   g.Grid.Height,
	}
	if dir, ok := g.State.Snake.Direction(g.registry); ok {
		snap.Direction = dir
	}
	for _, food := range g.registry.Foods() {
		snap.Food = append(snap.Food, food.Pos)
	}
	return snap
}
