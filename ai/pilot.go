package ai

import (
	"snake-arena/game"
	"snake-arena/game/manager"
)

type decision struct {
	state  State
	action Action
	score  int
}

// Pilot drives a game from snapshots, standing in for the keyboard.
// It decides once per grid step and optionally learns from the outcome.
type Pilot struct {
	Agent Agent
	Learn bool

	round    string
	tick     int
	held     manager.KeyState
	previous *decision
}

func NewPilot(agent Agent, learn bool) *Pilot {
	return &Pilot{
		Agent: agent,
		Learn: learn,
		tick:  -1,
	}
}

// Keys returns the key state for this frame. Outside of play it presses confirm.
func (p *Pilot) Keys(snap game.Snapshot) manager.KeyState {
	switch snap.Phase {
	case manager.PhasePlaying:
	case manager.PhaseGameOver:
		p.finishRound()
		return manager.KeyState{Confirm: true}
	default:
		return manager.KeyState{Confirm: true}
	}

	if snap.Round == p.round && snap.Tick == p.tick {
		return p.held
	}
	if snap.Round != p.round {
		p.previous = nil
	}
	p.round, p.tick = snap.Round, snap.Tick

	state, ok := Sense(snap)
	if !ok {
		return manager.KeyState{}
	}

	if p.Learn && p.previous != nil {
		ate := snap.Score > p.previous.score
		reward := Reward(p.previous.state, state, ate, false)
		p.Agent.Update(p.previous.state, p.previous.action, reward, state, false)
	}

	var action Action
	if p.Learn {
		action = p.Agent.GetAction(state)
	} else {
		action = p.Agent.BestAction(state)
	}
	p.previous = &decision{state: state, action: action, score: snap.Score}

	p.held = manager.KeyState{}
	if action != Straight {
		p.held.Press(action.Apply(snap.Direction))
	}
	return p.held
}

// finishRound records the fatal transition once per round
func (p *Pilot) finishRound() {
	if p.previous == nil {
		return
	}
	if p.Learn {
		p.Agent.Update(p.previous.state, p.previous.action, RewardDeath, p.previous.state, true)
	}
	p.Agent.EndRound()
	p.previous = nil
}
