package main

import (
	"log"
	"time"

	"snake-arena/ai"
	"snake-arena/game"
	"snake-arena/game/manager"
)

// Broadcaster receives frames in which something changed. The spectator server implements it.
type Broadcaster interface {
	Broadcast(snap game.Snapshot, events []game.Event)
}

// Session wires one game to its optional autopilot, round statistics and spectators.
// Both frontends drive it once per frame.
type Session struct {
	Game  *game.Game
	Pilot *ai.Pilot
	Stats *RoundStats

	broadcasters []Broadcaster
	lastPhase    manager.Phase
}

func NewSession(g *game.Game, pilot *ai.Pilot) *Session {
	return &Session{
		Game:      g,
		Pilot:     pilot,
		Stats:     NewRoundStats(),
		lastPhase: g.Phase(),
	}
}

// Reset swaps in a new game, keeping statistics, autopilot and broadcasters
func (s *Session) Reset(g *game.Game) {
	s.Game = g
	s.lastPhase = g.Phase()
}

// AddBroadcaster registers a frame sink
func (s *Session) AddBroadcaster(b Broadcaster) {
	s.broadcasters = append(s.broadcasters, b)
}

// Frame advances the game by dt using the given keys, or the autopilot's when one is set.
// It returns the new snapshot and the events emitted during the frame. Broadcasters only
// see frames with a step, a phase change or events.
func (s *Session) Frame(keys manager.KeyState, dt time.Duration) (game.Snapshot, []game.Event) {
	if s.Pilot != nil {
		pilotKeys := s.Pilot.Keys(s.Game.Snapshot())
		pilotKeys.Confirm = pilotKeys.Confirm || keys.Confirm
		keys = pilotKeys
	}

	stepped := s.Game.Update(keys, dt)

	changed := false
	if phase := s.Game.Phase(); phase != s.lastPhase {
		if phase == manager.PhaseGameOver {
			s.Stats.AddRound(s.Game.Score(), s.Game.Ticks)
			log.Printf("Round %s finished: score %d after %d ticks", s.Game.UUID, s.Game.Score(), s.Game.Ticks)
		}
		s.lastPhase = phase
		changed = true
	}

	snap := s.Game.Snapshot()
	events := s.Game.DrainEvents()
	if !stepped && !changed && len(events) == 0 {
		return snap, events
	}
	for _, b := range s.broadcasters {
		b.Broadcast(snap, events)
	}
	return snap, events
}
