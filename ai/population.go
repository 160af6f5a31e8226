package ai

import (
	"math"

	"golang.org/x/exp/rand"
)

// Offspring creates a new agent that inherits q's table with every value nudged by up to
// mutationRate of its magnitude
func (q *QLearning) Offspring(seed uint64, mutationRate float64) *QLearning {
	child := NewQLearning(seed)
	child.LearningRate = q.LearningRate
	child.Discount = q.Discount
	child.Epsilon = q.Epsilon

	rng := rand.New(rand.NewSource(seed))

	q.mu.RLock()
	defer q.mu.RUnlock()
	for key, actions := range q.QTable {
		child.QTable[key] = make(map[Action]float64, len(actions))
		for action, value := range actions {
			mutation := (rng.Float64()*2 - 1) * mutationRate * math.Abs(value)
			child.QTable[key][action] = value + mutation
		}
	}
	return child
}
