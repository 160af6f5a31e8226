package main

import (
	"fmt"
	"log"

	"snake-arena/ai"
	"snake-arena/game"
	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// maxTicksPerRound ends a round that loops forever without eating or dying
const maxTicksPerRound = 5000

// Train runs episodes headless with a learning autopilot. Every frame is exactly one
// move interval, so each frame performs one grid step.
func Train(episodes int, seed uint64, agent ai.Agent) (*RoundStats, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("train: episodes must be positive, got %d", episodes)
	}

	g := game.NewGame(types.ArenaWidth, types.ArenaHeight, seed)
	session := NewSession(g, ai.NewPilot(agent, true))

	for episode := 0; episode < episodes; episode++ {
		// Leave the menu or the previous game over
		session.Frame(manager.KeyState{Confirm: true}, 0)

		for g.Phase() == manager.PhasePlaying {
			if g.Ticks >= maxTicksPerRound {
				log.Printf("Episode %d hit the tick limit with score %d", episode, g.Score())
				session.Stats.AddRound(g.Score(), g.Ticks)
				// A stuck round cannot be restarted from play, so swap in a fresh game
				g = game.NewGame(types.ArenaWidth, types.ArenaHeight, seed+uint64(episode)+1)
				session.Reset(g)
				break
			}
			session.Frame(manager.KeyState{}, types.MoveInterval)
		}

		if (episode+1)%100 == 0 {
			log.Printf("Episode %d: avg %.2f, best %d",
				episode+1, session.Stats.AverageScore(), session.Stats.MaxScore())
		}
	}
	return session.Stats, nil
}
