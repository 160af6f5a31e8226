package game

import (
	"testing"
	"time"

	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// placeFood replaces whatever food is on the board with a single piece at pos
func placeFood(g *Game, pos types.Position) {
	for _, f := range g.registry.Foods() {
		g.registry.Despawn(f.Entity)
	}
	g.registry.SpawnFood(pos)
}

// setSnake replaces the snake with the given cells, head first
func setSnake(g *Game, dir types.Direction, cells ...types.Position) {
	g.State.Snake.Clear(g.registry)
	g.State.Snake.Spawn(g.registry, cells[0], dir)
	for _, c := range cells[1:] {
		g.State.Snake.Segments = append(g.State.Snake.Segments, g.registry.SpawnSegment(c))
	}
}

func newStartedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame(types.ArenaWidth, types.ArenaHeight, 1)
	if !g.Start() {
		t.Fatal("Expected start from menu to succeed")
	}
	return g
}

func TestNewGameStartsInMenu(t *testing.T) {
	g := NewGame(types.ArenaWidth, types.ArenaHeight, 1)
	if g.Phase() != manager.PhaseMenu {
		t.Errorf("Expected menu phase, got %v", g.Phase())
	}
	if g.Tick() {
		t.Error("Expected no step outside of playing")
	}
	if g.Restart() {
		t.Error("Expected restart to be ignored in menu")
	}
}

func TestStartResetsRound(t *testing.T) {
	g := newStartedGame(t)

	if g.Phase() != manager.PhasePlaying {
		t.Fatalf("Expected playing, got %v", g.Phase())
	}
	snap := g.Snapshot()
	if snap.Score != 0 || snap.GameOver {
		t.Errorf("Expected score 0 and no game over, got %d/%v", snap.Score, snap.GameOver)
	}
	if len(snap.Snake) != 1 || snap.Snake[0] != types.InitialPosition {
		t.Errorf("Expected single head at %v, got %v", types.InitialPosition, snap.Snake)
	}
	if snap.Direction != types.Right {
		t.Errorf("Expected heading right, got %v", snap.Direction)
	}
	if len(snap.Food) != 1 {
		t.Fatalf("Expected exactly one food, got %d", len(snap.Food))
	}
	if snap.Food[0] == types.InitialPosition || g.Grid.InReservedZone(snap.Food[0]) {
		t.Errorf("Food spawned on an illegal cell %v", snap.Food[0])
	}
	if snap.Round == "" {
		t.Error("Expected a round id")
	}
	if g.Start() {
		t.Error("Expected second start to be ignored while playing")
	}
}

func TestFirstStepMovesRight(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 10, Y: 10})

	g.Tick()

	snap := g.Snapshot()
	if snap.Snake[0] != (types.Position{X: 4, Y: 3}) {
		t.Errorf("Expected head at (4,3), got %v", snap.Snake[0])
	}
	if snap.Score != 0 {
		t.Errorf("Expected score 0, got %d", snap.Score)
	}
}

func TestEatingFoodScoresAndGrows(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 10, Y: 10})

	// Right to x=10, then up to y=10
	for i := 0; i < 7; i++ {
		g.Tick()
	}
	g.HandleInput(manager.KeyState{Up: true})
	for i := 0; i < 6; i++ {
		g.Tick()
	}
	if g.Score() != 0 {
		t.Fatalf("Expected no food eaten yet, got score %d", g.Score())
	}
	if head := g.Snapshot().Snake[0]; head != (types.Position{X: 10, Y: 9}) {
		t.Fatalf("Expected head at (10,9), got %v", head)
	}

	tailBefore := types.Position{X: 10, Y: 10}
	g.Tick()

	snap := g.Snapshot()
	if snap.Score != 1 {
		t.Errorf("Expected score 1, got %d", snap.Score)
	}
	if len(snap.Snake) != 2 {
		t.Fatalf("Expected length 2, got %d", len(snap.Snake))
	}
	if snap.Snake[1] != tailBefore {
		t.Errorf("Expected new segment at pre-growth tail %v, got %v", tailBefore, snap.Snake[1])
	}
	if snap.Phase != manager.PhasePlaying {
		t.Errorf("Head resting on its new segment must not be fatal, got %v", snap.Phase)
	}
	if len(snap.Food) != 1 {
		t.Fatalf("Expected food to respawn, got %d pieces", len(snap.Food))
	}
	for _, p := range snap.Snake {
		if snap.Food[0] == p {
			t.Errorf("Food respawned on the snake at %v", p)
		}
	}

	events := g.DrainEvents()
	if len(events) != 2 || events[0].Type != EventFoodEaten || events[1].Type != EventGrowth {
		t.Fatalf("Expected [food_eaten growth], got %v", events)
	}
	if events[0].Position != (types.Position{X: 10, Y: 10}) {
		t.Errorf("Expected food eaten at (10,10), got %v", events[0].Position)
	}
	if g.DrainEvents() != nil {
		t.Error("Expected events to be drained")
	}

	// The new segment separates on the next step
	g.Tick()
	snap = g.Snapshot()
	if snap.Snake[0] != (types.Position{X: 10, Y: 11}) || snap.Snake[1] != (types.Position{X: 10, Y: 10}) {
		t.Errorf("Unexpected body after growth step: %v", snap.Snake)
	}
}

func TestWrapIsNotFatal(t *testing.T) {
	g := newStartedGame(t)
	setSnake(g, types.Right, types.Position{X: 19, Y: 7})
	placeFood(g, types.Position{X: 10, Y: 10})

	g.Tick()

	snap := g.Snapshot()
	if snap.Snake[0] != (types.Position{X: 0, Y: 7}) {
		t.Errorf("Expected head to wrap to (0,7), got %v", snap.Snake[0])
	}
	if snap.Phase != manager.PhasePlaying {
		t.Errorf("Expected wrap to be harmless, got %v", snap.Phase)
	}
}

func TestSelfCollisionOnSegmentTwoEndsGame(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 15, Y: 15})

	// Heading down from (5,5) lands on (5,4), which the shift hands to segment 4
	setSnake(g, types.Down,
		types.Position{X: 5, Y: 5},
		types.Position{X: 6, Y: 5},
		types.Position{X: 6, Y: 4},
		types.Position{X: 5, Y: 4},
		types.Position{X: 4, Y: 4},
	)

	g.Tick()

	if g.Phase() != manager.PhaseGameOver {
		t.Fatalf("Expected game over, got %v", g.Phase())
	}
	if !g.State.GameOver {
		t.Error("Expected game-over flag to follow the phase")
	}

	// Frozen after game over
	before := g.Snapshot().Snake
	if g.Tick() {
		t.Error("Expected no step after game over")
	}
	after := g.Snapshot().Snake
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Snake moved after game over: %v -> %v", before, after)
		}
	}
}

func TestHeadOnSegmentOneIsExempt(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 15, Y: 15})

	// A freshly grown segment shares the head's cell
	setSnake(g, types.Right,
		types.Position{X: 5, Y: 5},
		types.Position{X: 5, Y: 5},
	)
	positions := g.State.Snake.Positions(g.registry)
	if g.collisionMgr.IsSelfCollision(positions) {
		t.Fatal("Expected index 1 overlap to be exempt")
	}

	g.Tick()
	if g.Phase() != manager.PhasePlaying {
		t.Errorf("Expected to keep playing, got %v", g.Phase())
	}
}

func TestRestartBehavesLikeStart(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 15, Y: 15})
	setSnake(g, types.Down,
		types.Position{X: 5, Y: 5},
		types.Position{X: 6, Y: 5},
		types.Position{X: 6, Y: 4},
		types.Position{X: 5, Y: 4},
		types.Position{X: 4, Y: 4},
	)
	g.State.Score = 9
	g.Tick()
	if g.Phase() != manager.PhaseGameOver {
		t.Fatalf("Expected game over, got %v", g.Phase())
	}
	firstRound := g.UUID

	g.Input.Enqueue(types.Up)
	if !g.Restart() {
		t.Fatal("Expected restart from game over to succeed")
	}

	snap := g.Snapshot()
	if snap.Phase != manager.PhasePlaying || snap.Score != 0 || snap.GameOver {
		t.Errorf("Expected fresh round, got phase=%v score=%d gameOver=%v", snap.Phase, snap.Score, snap.GameOver)
	}
	if len(snap.Snake) != 1 || snap.Snake[0] != types.InitialPosition || snap.Direction != types.Right {
		t.Errorf("Expected single head at %v facing right, got %v facing %v", types.InitialPosition, snap.Snake, snap.Direction)
	}
	if g.Input.Len() != 0 {
		t.Errorf("Expected input buffer cleared, got %d entries", g.Input.Len())
	}
	if g.Timer.Elapsed != 0 {
		t.Errorf("Expected move timer reset, got %v", g.Timer.Elapsed)
	}
	if len(snap.Food) != 1 {
		t.Errorf("Expected one food, got %d", len(snap.Food))
	}
	heads, segments, foods := g.registry.Count()
	if heads != 1 || segments != 0 || foods != 1 {
		t.Errorf("Expected 1 head, 0 segments, 1 food; got %d/%d/%d", heads, segments, foods)
	}
	if snap.Round == firstRound {
		t.Error("Expected a new round id")
	}
}

func TestUpdateGatesStepsOnMoveInterval(t *testing.T) {
	g := NewGame(types.ArenaWidth, types.ArenaHeight, 1)

	// Confirm leaves the menu on the same frame
	g.Update(manager.KeyState{Confirm: true}, 0)
	if g.Phase() != manager.PhasePlaying {
		t.Fatalf("Expected confirm to start, got %v", g.Phase())
	}
	placeFood(g, types.Position{X: 10, Y: 10})

	frame := 16 * time.Millisecond
	steps := 0
	for i := 0; i < 9; i++ {
		if g.Update(manager.KeyState{}, frame) {
			steps++
		}
	}
	if steps != 0 {
		t.Fatalf("Expected no step before %v, got %d", types.MoveInterval, steps)
	}
	if p := g.Snapshot().Progress; p <= 0 || p >= 1 {
		t.Errorf("Expected partial progress, got %f", p)
	}

	if !g.Update(manager.KeyState{}, frame) {
		t.Fatal("Expected a step once the interval elapsed")
	}
	if g.Timer.Elapsed != 0 {
		t.Errorf("Expected timer reset after step, got %v", g.Timer.Elapsed)
	}
	// 160ms elapsed, the 10ms past the interval counts toward the next step
	if want := 10*frame - types.MoveInterval; g.accumulator != want {
		t.Errorf("Expected %v carried into the next interval, got %v", want, g.accumulator)
	}

	// A long stall still yields a single step
	before := g.Ticks
	g.Update(manager.KeyState{}, time.Second)
	if g.Ticks != before+1 {
		t.Errorf("Expected exactly one step for a long frame, got %d", g.Ticks-before)
	}
}

func TestUpdateKeepsFixedCadenceAt60FPS(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 10, Y: 10})

	frame := time.Second / 60
	steps := 0
	for i := 0; i < 600; i++ {
		if g.Update(manager.KeyState{}, frame) {
			steps++
		}
	}
	// 600 frames of 16.67ms is just under 10s, which holds 66 full intervals
	if steps != 66 {
		t.Errorf("Expected 66 steps in 10s at 60fps, got %d", steps)
	}
	if g.Ticks != steps {
		t.Errorf("Expected tick count %d, got %d", steps, g.Ticks)
	}
}

func TestFoodAndSelfCollisionOnSameStep(t *testing.T) {
	g := newStartedGame(t)

	// Heading down from (5,5) onto (5,4), which segment 4 holds after the shift
	setSnake(g, types.Down,
		types.Position{X: 5, Y: 5},
		types.Position{X: 6, Y: 5},
		types.Position{X: 6, Y: 4},
		types.Position{X: 5, Y: 4},
		types.Position{X: 4, Y: 4},
	)
	placeFood(g, types.Position{X: 5, Y: 4})
	g.DrainEvents()

	if !g.Tick() {
		t.Fatal("Expected the step to run")
	}

	snap := g.Snapshot()
	if snap.Score != 1 {
		t.Errorf("Expected the food to be scored before game over, got %d", snap.Score)
	}
	if len(snap.Snake) != 6 {
		t.Errorf("Expected growth to length 6, got %d", len(snap.Snake))
	}
	events := g.DrainEvents()
	if len(events) != 2 || events[0].Type != EventFoodEaten || events[1].Type != EventGrowth {
		t.Errorf("Expected [food_eaten growth], got %v", events)
	}
	if snap.Phase != manager.PhaseGameOver || !snap.GameOver {
		t.Errorf("Expected game over after the food pass, got %v", snap.Phase)
	}
}

func TestUpdateRejectsReversal(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 10, Y: 10})

	g.Update(manager.KeyState{Left: true}, types.MoveInterval)
	if head := g.Snapshot().Snake[0]; head != (types.Position{X: 4, Y: 3}) {
		t.Errorf("Expected reversal to be ignored and head at (4,3), got %v", head)
	}
}

func TestDoubleTurnWithinOneTick(t *testing.T) {
	g := newStartedGame(t)
	placeFood(g, types.Position{X: 15, Y: 15})

	g.Update(manager.KeyState{Up: true}, time.Millisecond)
	g.Update(manager.KeyState{Left: true}, time.Millisecond)
	if g.Input.Len() != 2 {
		t.Fatalf("Expected two queued turns, got %d", g.Input.Len())
	}

	g.Tick()
	g.Tick()
	snap := g.Snapshot()
	if snap.Snake[0] != (types.Position{X: 2, Y: 4}) {
		t.Errorf("Expected head at (2,4) after up then left, got %v", snap.Snake[0])
	}
	if snap.Direction != types.Left {
		t.Errorf("Expected heading left, got %v", snap.Direction)
	}
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() []Snapshot {
		g := NewGame(types.ArenaWidth, types.ArenaHeight, 99)
		g.Start()
		var out []Snapshot
		keys := []manager.KeyState{{}, {Up: true}, {}, {Left: true}, {}, {Down: true}, {Right: true}}
		for i := 0; i < 200; i++ {
			g.Update(keys[i%len(keys)], types.MoveInterval)
			if g.Phase() == manager.PhaseGameOver {
				g.Update(manager.KeyState{Confirm: true}, 0)
			}
			out = append(out, g.Snapshot())
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Score != b[i].Score || len(a[i].Snake) != len(b[i].Snake) {
			t.Fatalf("Frame %d diverged: %+v vs %+v", i, a[i], b[i])
		}
		for j := range a[i].Snake {
			if a[i].Snake[j] != b[i].Snake[j] {
				t.Fatalf("Frame %d segment %d diverged", i, j)
			}
		}
		for j := range a[i].Food {
			if a[i].Food[j] != b[i].Food[j] {
				t.Fatalf("Frame %d food diverged: %v vs %v", i, a[i].Food, b[i].Food)
			}
		}
	}
}

func TestSnapshotLerpAcrossWrap(t *testing.T) {
	snap := Snapshot{
		Snake:    []types.Position{{X: 0, Y: 7}},
		Previous: []types.Position{{X: 19, Y: 7}},
		Progress: 0.5,
		Width:    20,
		Height:   20,
	}
	x, y := snap.Lerp(0)
	if x != -0.5 || y != 7 {
		t.Errorf("Expected (-0.5, 7), got (%v, %v)", x, y)
	}

	snap.Progress = 2
	x, _ = snap.Lerp(0)
	if x != 0 {
		t.Errorf("Expected progress to clamp at the current cell, got %v", x)
	}

	if x, y := snap.Lerp(5); x != 0 || y != 0 {
		t.Errorf("Expected zero for an out-of-range segment, got (%v, %v)", x, y)
	}
}
