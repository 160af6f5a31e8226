package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"snake-arena/game/types"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Action is a turn relative to the current heading
type Action int

const (
	Straight Action = iota
	TurnLeft
	TurnRight
)

// Actions lists every action, in Q-table order
var Actions = [3]Action{Straight, TurnLeft, TurnRight}

// Apply returns the absolute heading after taking a from heading
func (a Action) Apply(heading types.Direction) types.Direction {
	switch a {
	case TurnLeft:
		return heading.TurnLeft()
	case TurnRight:
		return heading.TurnRight()
	default:
		return heading
	}
}

func (a Action) String() string {
	switch a {
	case Straight:
		return "straight"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "unknown"
	}
}

type State struct {
	FoodAhead    int     // -1 behind, 0 level, 1 ahead
	FoodSide     int     // -1 right, 0 level, 1 left
	FoodDistance int     // wrapped Manhattan distance, -1 when there is no food
	Dangers      [3]bool // body in the cell reached by each action
}

// Key is the Q-table key. Distance is left out so the table stays small.
func (s State) Key() string {
	return fmt.Sprintf("%d:%d:%d%d%d", s.FoodAhead, s.FoodSide,
		boolToInt(s.Dangers[0]), boolToInt(s.Dangers[1]), boolToInt(s.Dangers[2]))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Rewards
const (
	RewardFood   = 1.0
	RewardDeath  = -1.0
	RewardCloser = 0.5
	RewardAway   = -0.3
)

type QTable map[string]map[Action]float64

type QLearning struct {
	UUID         string
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	TotalReward  float64
	GamesPlayed  int

	mu  sync.RWMutex
	rng *rand.Rand
}

func NewQLearning(seed uint64) *QLearning {
	return &QLearning{
		UUID:         uuid.New().String(),
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Save writes the table as JSON, creating parent directories as needed
func (q *QLearning) Save(filename string) error {
	q.mu.RLock()
	data, err := json.MarshalIndent(q.QTable, "", "  ")
	q.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode q-table: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create q-table dir: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write q-table %s: %w", filename, err)
	}
	return nil
}

// Load replaces the table with the contents of filename
func (q *QLearning) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read q-table %s: %w", filename, err)
	}

	table := make(QTable)
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("decode q-table %s: %w", filename, err)
	}

	q.mu.Lock()
	q.QTable = table
	q.mu.Unlock()
	return nil
}

// GetAction picks an action epsilon-greedily
func (q *QLearning) GetAction(state State) Action {
	if q.rng.Float64() < q.Epsilon {
		return Actions[q.rng.Intn(len(Actions))]
	}
	return q.BestAction(state)
}

// BestAction returns the highest valued action. Unknown states prefer actions without danger.
func (q *QLearning) BestAction(state State) Action {
	q.mu.RLock()
	values, exists := q.QTable[state.Key()]
	q.mu.RUnlock()

	best := Straight
	bestValue := math.Inf(-1)
	for i, a := range Actions {
		v := values[a]
		if !exists && state.Dangers[i] {
			v = RewardDeath
		}
		if v > bestValue {
			best, bestValue = a, v
		}
	}
	return best
}

// Reward scores the transition from state to next
func Reward(state, next State, ate, died bool) float64 {
	switch {
	case died:
		return RewardDeath
	case ate:
		return RewardFood
	case state.FoodDistance < 0 || next.FoodDistance < 0:
		return 0
	case next.FoodDistance < state.FoodDistance:
		return RewardCloser
	case next.FoodDistance > state.FoodDistance:
		return RewardAway
	default:
		return 0
	}
}

// Update applies one Q-learning step. A terminal transition has no future value.
func (q *QLearning) Update(state State, action Action, reward float64, next State, terminal bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := state.Key()
	if _, exists := q.QTable[key]; !exists {
		q.QTable[key] = make(map[Action]float64, len(Actions))
	}

	maxNextQ := 0.0
	if !terminal {
		if values, exists := q.QTable[next.Key()]; exists {
			maxNextQ = math.Inf(-1)
			for _, a := range Actions {
				if values[a] > maxNextQ {
					maxNextQ = values[a]
				}
			}
		}
	}

	currentQ := q.QTable[key][action]
	q.QTable[key][action] = currentQ + q.LearningRate*(reward+q.Discount*maxNextQ-currentQ)
	q.TotalReward += reward
}

// EndRound counts a finished round
func (q *QLearning) EndRound() {
	q.mu.Lock()
	q.GamesPlayed++
	q.mu.Unlock()
}

// States returns the number of states in the table
func (q *QLearning) States() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.QTable)
}
