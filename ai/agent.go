package ai

import "fmt"

// Agent kinds accepted by NewAgent
const (
	KindQTable = "qtable"
	KindDQN    = "dqn"
)

// Agent picks relative actions from sensed states and learns from transitions
type Agent interface {
	// GetAction explores; BestAction exploits
	GetAction(state State) Action
	BestAction(state State) Action
	Update(state State, action Action, reward float64, next State, terminal bool)
	// EndRound is called once per finished round
	EndRound()
	Save(filename string) error
	Load(filename string) error
}

// NewAgent creates an agent of the given kind
func NewAgent(kind string, seed uint64) (Agent, error) {
	switch kind {
	case KindQTable:
		return NewQLearning(seed), nil
	case KindDQN:
		d, err := NewDQN(seed)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown agent %q", kind)
	}
}

// safeAction prefers going straight, then the first action without danger
func safeAction(state State) Action {
	for i, a := range Actions {
		if !state.Dangers[i] {
			return a
		}
	}
	return Straight
}
