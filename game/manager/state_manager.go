package manager

import "snake-arena/game/entity"

// Phase is the top-level game mode
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Command is an external or rule-driven request to change phase
type Command int

const (
	CommandStart Command = iota
	CommandRestart
	CommandCollide
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandRestart:
		return "restart"
	case CommandCollide:
		return "collide"
	default:
		return "unknown"
	}
}

// GameState is the aggregate simulation state
type GameState struct {
	Snake    entity.Snake
	Score    int
	GameOver bool // mirrors Phase == PhaseGameOver
	Phase    Phase
}

type transition struct {
	from Phase
	cmd  Command
}

var transitions = map[transition]Phase{
	{PhaseMenu, CommandStart}:       PhasePlaying,
	{PhasePlaying, CommandCollide}:  PhaseGameOver,
	{PhaseGameOver, CommandRestart}: PhasePlaying,
}

type StateManager struct {
	state *GameState
}

func NewStateManager(state *GameState) *StateManager {
	return &StateManager{
		state: state,
	}
}

// Next returns the phase cmd would lead to from the current one
func (sm *StateManager) Next(cmd Command) (Phase, bool) {
	next, ok := transitions[transition{sm.state.Phase, cmd}]
	return next, ok
}

// Apply performs a transition. Commands that are invalid in the current phase are ignored.
func (sm *StateManager) Apply(cmd Command) bool {
	next, ok := sm.Next(cmd)
	if !ok {
		return false
	}
	sm.state.Phase = next
	sm.state.GameOver = next == PhaseGameOver
	return true
}

// IsPlaying reports whether movement, collision and growth may run
func (sm *StateManager) IsPlaying() bool {
	return sm.state.Phase == PhasePlaying
}

// ResetRound zeroes the score and game-over flag for a fresh round
func (sm *StateManager) ResetRound() {
	sm.state.Score = 0
	sm.state.GameOver = false
}

// AddScore increments the score by n
func (sm *StateManager) AddScore(n int) {
	sm.state.Score += n
}
