package manager

import "testing"

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from Phase
		cmd  Command
		want Phase
		ok   bool
	}{
		{PhaseMenu, CommandStart, PhasePlaying, true},
		{PhaseMenu, CommandRestart, PhaseMenu, false},
		{PhaseMenu, CommandCollide, PhaseMenu, false},
		{PhasePlaying, CommandCollide, PhaseGameOver, true},
		{PhasePlaying, CommandStart, PhasePlaying, false},
		{PhasePlaying, CommandRestart, PhasePlaying, false},
		{PhaseGameOver, CommandRestart, PhasePlaying, true},
		{PhaseGameOver, CommandStart, PhaseGameOver, false},
		{PhaseGameOver, CommandCollide, PhaseGameOver, false},
	}

	for _, tt := range tests {
		state := &GameState{Phase: tt.from}
		sm := NewStateManager(state)

		ok := sm.Apply(tt.cmd)
		if ok != tt.ok {
			t.Errorf("%v + %v: expected ok=%v, got %v", tt.from, tt.cmd, tt.ok, ok)
		}
		if state.Phase != tt.want {
			t.Errorf("%v + %v: expected phase %v, got %v", tt.from, tt.cmd, tt.want, state.Phase)
		}
		if state.GameOver != (state.Phase == PhaseGameOver) && tt.ok {
			t.Errorf("%v + %v: game-over flag out of sync with phase", tt.from, tt.cmd)
		}
	}
}

func TestResetRound(t *testing.T) {
	state := &GameState{Phase: PhaseGameOver, GameOver: true, Score: 12}
	sm := NewStateManager(state)

	sm.Apply(CommandRestart)
	sm.ResetRound()
	if state.Score != 0 || state.GameOver {
		t.Errorf("Expected clean round, got score=%d gameOver=%v", state.Score, state.GameOver)
	}
	if !sm.IsPlaying() {
		t.Error("Expected playing after restart")
	}

	sm.AddScore(1)
	sm.AddScore(1)
	if state.Score != 2 {
		t.Errorf("Expected score 2, got %d", state.Score)
	}
}
