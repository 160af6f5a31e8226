package ai

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const (
	DQNLearningRate  = 0.005
	DQNDiscount      = 0.95
	InitialEpsilon   = 1.0
	MinEpsilon       = 0.05
	EpsilonDecay     = 0.99 // per round
	BatchSize        = 32
	ReplayBufferSize = 5000
	HiddenLayerSize  = 16
	InputFeatures    = 10 // food ahead one-hot, food side one-hot, three danger flags, distance
	OutputActions    = 3
	GradientClip     = 5.0
	TargetSyncSteps  = 200
)

// Transition is one step of experience
type Transition struct {
	State  []float64
	Action Action
	Reward float64
	Next   []float64
	Done   bool
}

// ReplayBuffer is a fixed size ring of transitions
type ReplayBuffer struct {
	buffer   []Transition
	position int
	size     int
	rng      *rand.Rand
}

func NewReplayBuffer(maxSize int, rng *rand.Rand) *ReplayBuffer {
	return &ReplayBuffer{
		buffer: make([]Transition, maxSize),
		rng:    rng,
	}
}

// Add stores t, overwriting the oldest transition once full
func (b *ReplayBuffer) Add(t Transition) {
	b.buffer[b.position] = t
	b.position = (b.position + 1) % len(b.buffer)
	if b.size < len(b.buffer) {
		b.size++
	}
}

func (b *ReplayBuffer) Len() int {
	return b.size
}

// Sample draws n transitions with replacement
func (b *ReplayBuffer) Sample(n int) []Transition {
	batch := make([]Transition, n)
	for i := range batch {
		batch[i] = b.buffer[b.rng.Intn(b.size)]
	}
	return batch
}

// EncodeState turns a State into the network input
func EncodeState(s State) []float64 {
	x := make([]float64, InputFeatures)
	x[s.FoodAhead+1] = 1
	x[3+s.FoodSide+1] = 1
	for i, danger := range s.Dangers {
		if danger {
			x[6+i] = 1
		}
	}
	if s.FoodDistance >= 0 {
		x[9] = 1 / float64(1+s.FoodDistance)
	}
	return x
}

// network is a two layer perceptron over a fixed batch size. Training networks
// also carry a masked squared error loss and an Adam solver.
type network struct {
	g      *gorgonia.ExprGraph
	batch  int
	x      *gorgonia.Node
	w1, b1 *gorgonia.Node
	w2, b2 *gorgonia.Node
	q      *gorgonia.Node

	target *gorgonia.Node
	mask   *gorgonia.Node
	loss   *gorgonia.Node
	solver gorgonia.Solver

	vm gorgonia.VM
}

type parameters struct {
	W1, B1, W2, B2 []float64
}

// newParameters draws Glorot uniform weights and zero biases
func newParameters(rng *rand.Rand) parameters {
	glorot := func(fanIn, fanOut int) []float64 {
		limit := math.Sqrt(6 / float64(fanIn+fanOut))
		w := make([]float64, fanIn*fanOut)
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * limit
		}
		return w
	}
	return parameters{
		W1: glorot(InputFeatures, HiddenLayerSize),
		B1: make([]float64, HiddenLayerSize),
		W2: glorot(HiddenLayerSize, OutputActions),
		B2: make([]float64, OutputActions),
	}
}

func (p parameters) valid() bool {
	return len(p.W1) == InputFeatures*HiddenLayerSize &&
		len(p.B1) == HiddenLayerSize &&
		len(p.W2) == HiddenLayerSize*OutputActions &&
		len(p.B2) == OutputActions
}

func newNetwork(batch int, params parameters, train bool) (*network, error) {
	g := gorgonia.NewGraph()
	n := &network{g: g, batch: batch}

	matrix := func(name string, rows, cols int, data []float64) *gorgonia.Node {
		backing := make([]float64, len(data))
		copy(backing, data)
		return gorgonia.NewMatrix(g, tensor.Float64,
			gorgonia.WithShape(rows, cols),
			gorgonia.WithName(name),
			gorgonia.WithValue(tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))))
	}

	n.x = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, InputFeatures), gorgonia.WithName("x"))
	n.w1 = matrix("w1", InputFeatures, HiddenLayerSize, params.W1)
	n.b1 = matrix("b1", 1, HiddenLayerSize, params.B1)
	n.w2 = matrix("w2", HiddenLayerSize, OutputActions, params.W2)
	n.b2 = matrix("b2", 1, OutputActions, params.B2)

	ones := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(batch, 1),
		gorgonia.WithName("ones"),
		gorgonia.WithValue(tensor.Ones(tensor.Float64, batch, 1)))

	// Biases are spread over the batch with an outer product
	hidden := gorgonia.Must(gorgonia.Mul(n.x, n.w1))
	hidden = gorgonia.Must(gorgonia.Add(hidden, gorgonia.Must(gorgonia.Mul(ones, n.b1))))
	hidden = gorgonia.Must(gorgonia.Rectify(hidden))
	out := gorgonia.Must(gorgonia.Mul(hidden, n.w2))
	n.q = gorgonia.Must(gorgonia.Add(out, gorgonia.Must(gorgonia.Mul(ones, n.b2))))

	if !train {
		n.vm = gorgonia.NewTapeMachine(g)
		return n, nil
	}

	n.target = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, OutputActions), gorgonia.WithName("target"))
	n.mask = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, OutputActions), gorgonia.WithName("mask"))

	// Only the taken action contributes to the error
	diff := gorgonia.Must(gorgonia.HadamardProd(gorgonia.Must(gorgonia.Sub(n.q, n.target)), n.mask))
	n.loss = gorgonia.Must(gorgonia.Mean(gorgonia.Must(gorgonia.Square(diff))))

	learnables := n.learnables()
	if _, err := gorgonia.Grad(n.loss, learnables...); err != nil {
		return nil, fmt.Errorf("build gradients: %w", err)
	}
	n.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(learnables...))
	n.solver = gorgonia.NewAdamSolver(gorgonia.WithLearnRate(DQNLearningRate), gorgonia.WithClip(GradientClip))
	return n, nil
}

func (n *network) learnables() gorgonia.Nodes {
	return gorgonia.Nodes{n.w1, n.b1, n.w2, n.b2}
}

func (n *network) input(node *gorgonia.Node, cols int, data []float64) error {
	return gorgonia.Let(node, tensor.New(tensor.WithShape(n.batch, cols), tensor.WithBacking(data)))
}

// predict returns batch rows of action values for batch rows of input
func (n *network) predict(x []float64) ([]float64, error) {
	defer n.vm.Reset()
	if err := n.input(n.x, InputFeatures, x); err != nil {
		return nil, fmt.Errorf("set input: %w", err)
	}
	if err := n.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass: %w", err)
	}
	values, ok := n.q.Value().Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("unexpected output %T", n.q.Value().Data())
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// fit takes one solver step towards target on the masked entries and returns the loss
func (n *network) fit(x, target, mask []float64) (float64, error) {
	defer n.vm.Reset()
	if err := n.input(n.x, InputFeatures, x); err != nil {
		return 0, fmt.Errorf("set input: %w", err)
	}
	if err := n.input(n.target, OutputActions, target); err != nil {
		return 0, fmt.Errorf("set target: %w", err)
	}
	if err := n.input(n.mask, OutputActions, mask); err != nil {
		return 0, fmt.Errorf("set mask: %w", err)
	}
	if err := n.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("backward pass: %w", err)
	}

	var loss float64
	switch v := n.loss.Value().Data().(type) {
	case float64:
		loss = v
	case []float64:
		if len(v) > 0 {
			loss = v[0]
		}
	}

	if err := n.solver.Step(gorgonia.NodesToValueGrads(n.learnables())); err != nil {
		return 0, fmt.Errorf("solver step: %w", err)
	}
	return loss, nil
}

func (n *network) parameters() parameters {
	data := func(node *gorgonia.Node) []float64 {
		src := node.Value().Data().([]float64)
		dst := make([]float64, len(src))
		copy(dst, src)
		return dst
	}
	return parameters{W1: data(n.w1), B1: data(n.b1), W2: data(n.w2), B2: data(n.b2)}
}

// load overwrites the weights in place, leaving solver state untouched
func (n *network) load(p parameters) {
	copy(n.w1.Value().Data().([]float64), p.W1)
	copy(n.b1.Value().Data().([]float64), p.B1)
	copy(n.w2.Value().Data().([]float64), p.W2)
	copy(n.b2.Value().Data().([]float64), p.B2)
}

// DQN is a deep Q-network agent with experience replay and a target network.
// The online network trains on replayed batches, the policy network is a batch
// of one copy used to act, and the target network is refreshed every TargetSyncSteps.
type DQN struct {
	UUID        string
	Discount    float64
	Epsilon     float64
	GamesPlayed int
	Steps       int

	mu     sync.Mutex
	rng    *rand.Rand
	online *network
	policy *network
	target *network
	replay *ReplayBuffer
}

func NewDQN(seed uint64) (*DQN, error) {
	rng := rand.New(rand.NewSource(seed))
	params := newParameters(rng)

	online, err := newNetwork(BatchSize, params, true)
	if err != nil {
		return nil, fmt.Errorf("online network: %w", err)
	}
	policy, err := newNetwork(1, params, false)
	if err != nil {
		return nil, fmt.Errorf("policy network: %w", err)
	}
	target, err := newNetwork(BatchSize, params, false)
	if err != nil {
		return nil, fmt.Errorf("target network: %w", err)
	}

	return &DQN{
		UUID:     uuid.New().String(),
		Discount: DQNDiscount,
		Epsilon:  InitialEpsilon,
		rng:      rng,
		online:   online,
		policy:   policy,
		target:   target,
		replay:   NewReplayBuffer(ReplayBufferSize, rng),
	}, nil
}

// GetAction picks an action epsilon-greedily
func (d *DQN) GetAction(state State) Action {
	d.mu.Lock()
	explore := d.rng.Float64() < d.Epsilon
	var random Action
	if explore {
		random = Actions[d.rng.Intn(len(Actions))]
	}
	d.mu.Unlock()

	if explore {
		return random
	}
	return d.BestAction(state)
}

// BestAction returns the action with the highest predicted value
func (d *DQN) BestAction(state State) Action {
	d.mu.Lock()
	values, err := d.policy.predict(EncodeState(state))
	d.mu.Unlock()
	if err != nil {
		return safeAction(state)
	}
	return Actions[argmax(values)]
}

// Values returns the predicted value of each action in Actions order
func (d *DQN) Values(state State) ([]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.policy.predict(EncodeState(state))
}

// Update stores the transition and trains on a replayed batch once enough experience exists
func (d *DQN) Update(state State, action Action, reward float64, next State, terminal bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.replay.Add(Transition{
		State:  EncodeState(state),
		Action: action,
		Reward: reward,
		Next:   EncodeState(next),
		Done:   terminal,
	})
	d.Steps++

	if d.replay.Len() < BatchSize {
		return
	}
	if _, err := d.trainBatch(d.replay.Sample(BatchSize)); err != nil {
		return
	}
	if d.Steps%TargetSyncSteps == 0 {
		d.target.load(d.online.parameters())
	}
}

func (d *DQN) trainBatch(batch []Transition) (float64, error) {
	x := make([]float64, 0, len(batch)*InputFeatures)
	next := make([]float64, 0, len(batch)*InputFeatures)
	for _, t := range batch {
		x = append(x, t.State...)
		next = append(next, t.Next...)
	}

	nextValues, err := d.target.predict(next)
	if err != nil {
		return 0, err
	}

	target := make([]float64, len(batch)*OutputActions)
	mask := make([]float64, len(batch)*OutputActions)
	for i, t := range batch {
		y := t.Reward
		if !t.Done {
			row := nextValues[i*OutputActions : (i+1)*OutputActions]
			y += d.Discount * row[argmax(row)]
		}
		target[i*OutputActions+int(t.Action)] = y
		mask[i*OutputActions+int(t.Action)] = 1
	}

	loss, err := d.online.fit(x, target, mask)
	if err != nil {
		return 0, err
	}
	d.policy.load(d.online.parameters())
	return loss, nil
}

// EndRound counts the round and decays exploration
func (d *DQN) EndRound() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.GamesPlayed++
	d.Epsilon = math.Max(MinEpsilon, d.Epsilon*EpsilonDecay)
}

type dqnFile struct {
	Params      parameters
	Epsilon     float64
	GamesPlayed int
}

// Save writes the weights and exploration state as gob, creating parent directories as needed
func (d *DQN) Save(filename string) error {
	d.mu.Lock()
	file := dqnFile{Params: d.online.parameters(), Epsilon: d.Epsilon, GamesPlayed: d.GamesPlayed}
	d.mu.Unlock()

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create weights dir: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create weights %s: %w", filename, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(file); err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return nil
}

// Load replaces all three networks' weights with the contents of filename
func (d *DQN) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open weights %s: %w", filename, err)
	}
	defer f.Close()

	var file dqnFile
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return fmt.Errorf("decode weights %s: %w", filename, err)
	}
	if !file.Params.valid() {
		return fmt.Errorf("weights %s do not match a %dx%dx%d network", filename, InputFeatures, HiddenLayerSize, OutputActions)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.online.load(file.Params)
	d.policy.load(file.Params)
	d.target.load(file.Params)
	d.Epsilon = file.Epsilon
	d.GamesPlayed = file.GamesPlayed
	return nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
