package entity

import (
	"snake-arena/game/types"

	"github.com/mlange-42/ark/ecs"
)

// FoodRef pairs a food entity with the cell it occupies
type FoodRef struct {
	Entity ecs.Entity
	Pos    types.Position
}

// Registry owns every simulation entity: the snake head, its body segments and food.
// Entities are generational handles, so a despawned segment can never alias a new one.
type Registry struct {
	world *ecs.World

	headMapper    *ecs.Map3[types.Position, PreviousPosition, Head]
	segmentMapper *ecs.Map3[types.Position, PreviousPosition, Segment]
	foodMapper    *ecs.Map3[types.Position, PreviousPosition, Food]

	positions *ecs.Map[types.Position]
	previous  *ecs.Map[PreviousPosition]
	heads     *ecs.Map[Head]

	headFilter    *ecs.Filter1[Head]
	segmentFilter *ecs.Filter1[Segment]
	foodFilter    *ecs.Filter2[types.Position, Food]
}

func NewRegistry() *Registry {
	w := ecs.NewWorld()
	world := &w
	return &Registry{
		world:         world,
		headMapper:    ecs.NewMap3[types.Position, PreviousPosition, Head](world),
		segmentMapper: ecs.NewMap3[types.Position, PreviousPosition, Segment](world),
		foodMapper:    ecs.NewMap3[types.Position, PreviousPosition, Food](world),
		positions:     ecs.NewMap[types.Position](world),
		previous:      ecs.NewMap[PreviousPosition](world),
		heads:         ecs.NewMap[Head](world),
		headFilter:    ecs.NewFilter1[Head](world),
		segmentFilter: ecs.NewFilter1[Segment](world),
		foodFilter:    ecs.NewFilter2[types.Position, Food](world),
	}
}

// SpawnHead creates a head entity at pos facing dir
func (r *Registry) SpawnHead(pos types.Position, dir types.Direction) ecs.Entity {
	return r.headMapper.NewEntity(&pos, &PreviousPosition{Pos: pos}, &Head{Direction: dir})
}

// SpawnSegment creates a body segment at pos
func (r *Registry) SpawnSegment(pos types.Position) ecs.Entity {
	return r.segmentMapper.NewEntity(&pos, &PreviousPosition{Pos: pos}, &Segment{})
}

// SpawnFood creates a food entity at pos
func (r *Registry) SpawnFood(pos types.Position) ecs.Entity {
	return r.foodMapper.NewEntity(&pos, &PreviousPosition{Pos: pos}, &Food{})
}

// Despawn removes an entity. Stale handles are ignored.
func (r *Registry) Despawn(e ecs.Entity) {
	if !r.world.Alive(e) {
		return
	}
	r.world.RemoveEntity(e)
}

// Alive reports whether the handle still refers to a live entity
func (r *Registry) Alive(e ecs.Entity) bool {
	return r.world.Alive(e)
}

// Position returns the current cell of an entity
func (r *Registry) Position(e ecs.Entity) (types.Position, bool) {
	if !r.world.Alive(e) || !r.positions.Has(e) {
		return types.Position{}, false
	}
	return *r.positions.Get(e), true
}

// PreviousPosition returns the cell an entity held before the last move
func (r *Registry) PreviousPosition(e ecs.Entity) (types.Position, bool) {
	if !r.world.Alive(e) || !r.previous.Has(e) {
		return types.Position{}, false
	}
	return r.previous.Get(e).Pos, true
}

// Move records the current cell as previous and places the entity on pos
func (r *Registry) Move(e ecs.Entity, pos types.Position) bool {
	if !r.world.Alive(e) || !r.positions.Has(e) {
		return false
	}
	cur := r.positions.Get(e)
	if r.previous.Has(e) {
		r.previous.Get(e).Pos = *cur
	}
	*cur = pos
	return true
}

// Direction returns the heading of a head entity
func (r *Registry) Direction(e ecs.Entity) (types.Direction, bool) {
	if !r.world.Alive(e) || !r.heads.Has(e) {
		return types.Right, false
	}
	return r.heads.Get(e).Direction, true
}

// SetDirection changes the heading of a head entity
func (r *Registry) SetDirection(e ecs.Entity, dir types.Direction) bool {
	if !r.world.Alive(e) || !r.heads.Has(e) {
		return false
	}
	r.heads.Get(e).Direction = dir
	return true
}

// Foods returns every live food entity
func (r *Registry) Foods() []FoodRef {
	var foods []FoodRef
	query := r.foodFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		foods = append(foods, FoodRef{Entity: query.Entity(), Pos: *pos})
	}
	return foods
}

// Clear despawns the head, all segments and all food
func (r *Registry) Clear() {
	var doomed []ecs.Entity

	heads := r.headFilter.Query()
	for heads.Next() {
		doomed = append(doomed, heads.Entity())
	}
	segments := r.segmentFilter.Query()
	for segments.Next() {
		doomed = append(doomed, segments.Entity())
	}
	foods := r.foodFilter.Query()
	for foods.Next() {
		doomed = append(doomed, foods.Entity())
	}

	// Structural changes are only allowed once every query is closed
	for _, e := range doomed {
		r.world.RemoveEntity(e)
	}
}

// Count returns the number of live heads, segments and food entities
func (r *Registry) Count() (heads, segments, foods int) {
	hq := r.headFilter.Query()
	for hq.Next() {
		heads++
	}
	sq := r.segmentFilter.Query()
	for sq.Next() {
		segments++
	}
	fq := r.foodFilter.Query()
	for fq.Next() {
		foods++
	}
	return heads, segments, foods
}
