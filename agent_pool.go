package main

import (
	"fmt"
	"log"
	"sync"

	"snake-arena/ai"
)

// mutationRate is how far offspring values may drift from the best agent's
const mutationRate = 0.05

// AgentPool trains several agents concurrently. Each generation is bred from
// the best agent of the previous one.
type AgentPool struct {
	agents     []*ai.QLearning
	seed       uint64
	generation int
	mutex      sync.RWMutex
}

// NewAgentPool creates size agents, all inheriting from parent when one is given
func NewAgentPool(size int, seed uint64, parent *ai.QLearning) *AgentPool {
	pool := &AgentPool{
		agents: make([]*ai.QLearning, size),
		seed:   seed,
	}
	for i := range pool.agents {
		if parent != nil {
			pool.agents[i] = parent.Offspring(pool.agentSeed(i), mutationRate)
		} else {
			pool.agents[i] = ai.NewQLearning(pool.agentSeed(i))
		}
	}
	return pool
}

func (p *AgentPool) agentSeed(i int) uint64 {
	return p.seed + uint64(p.generation*len(p.agents)+i)
}

// GetAllAgents returns the current generation
func (p *AgentPool) GetAllAgents() []*ai.QLearning {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.agents
}

// RunGeneration trains every agent for episodes rounds in parallel and returns the best one
func (p *AgentPool) RunGeneration(episodes int) (*ai.QLearning, *RoundStats, error) {
	agents := p.GetAllAgents()
	results := make([]*RoundStats, len(agents))
	errs := make([]error, len(agents))

	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent *ai.QLearning) {
			defer wg.Done()
			results[i], errs[i] = Train(episodes, p.agentSeed(i), agent)
		}(i, agent)
	}
	wg.Wait()

	best := -1
	for i := range agents {
		if errs[i] != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agents[i].UUID, errs[i])
		}
		if best < 0 || results[i].AverageScore() > results[best].AverageScore() {
			best = i
		}
	}
	return agents[best], results[best], nil
}

// Evolve replaces the pool with offspring of best
func (p *AgentPool) Evolve(best *ai.QLearning) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.generation++
	next := make([]*ai.QLearning, len(p.agents))
	for i := range next {
		next[i] = best.Offspring(p.agentSeed(i), mutationRate)
	}
	p.agents = next
}

// TrainPool runs generations of parallel training and returns the overall best agent
func TrainPool(generations, episodes, size int, seed uint64, parent *ai.QLearning) (*ai.QLearning, *RoundStats, error) {
	if generations <= 0 || size <= 0 {
		return nil, nil, fmt.Errorf("train pool: need positive generations and size, got %d and %d", generations, size)
	}

	pool := NewAgentPool(size, seed, parent)
	var best *ai.QLearning
	var bestStats *RoundStats

	for gen := 0; gen < generations; gen++ {
		agent, stats, err := pool.RunGeneration(episodes)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Generation %d: best agent %s avg %.2f max %d", gen+1, agent.UUID, stats.AverageScore(), stats.MaxScore())

		if bestStats == nil || stats.AverageScore() >= bestStats.AverageScore() {
			best, bestStats = agent, stats
		}
		pool.Evolve(best)
	}
	return best, bestStats, nil
}
