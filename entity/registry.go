package entity

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"

	"github.com/kamstrup/intmap"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/physics"
	"go.uber.org/zap"
)

// Registry owns the live entities of one space. It is not safe for
// concurrent use; spawning or destroying while the registry is locked or
// being iterated panics.
type Registry struct {
	log     *zap.Logger
	models  asset.Provider
	world   *physics.World
	process physics.TransformProcessor

	store    arena[*Entity]
	index    *intmap.Map[ID, int]
	deathRow []*Entity
	commands Commands
	rng      *rand.Rand

	iterating int
	locked    bool
	swept     int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSeed makes id allocation deterministic. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(r *Registry) {
		if seed != 0 {
			r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// WithTransformProcessor installs a hook on the motion state of every
// rigidbody spawned afterwards.
func WithTransformProcessor(p physics.TransformProcessor) Option {
	return func(r *Registry) { r.process = p }
}

// NewRegistry creates an empty registry resolving models through models and
// adding bodies to world.
func NewRegistry(models asset.Provider, world *physics.World, opts ...Option) *Registry {
	r := &Registry{
		log:    zap.NewNop(),
		models: models,
		world:  world,
		index:  intmap.New[ID, int](256),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Commands returns the buffer used to request changes while the registry
// is locked.
func (r *Registry) Commands() *Commands { return &r.commands }

// World returns the physics world bodies are added to.
func (r *Registry) World() *physics.World { return r.world }

// Lock forbids structural changes until Unlock.
func (r *Registry) Lock() { r.locked = true }

func (r *Registry) Unlock() { r.locked = false }

func (r *Registry) Locked() bool { return r.locked }

// Len returns the number of live entities.
func (r *Registry) Len() int { return r.store.len() }

// Swept returns how many entities were removed by ticks so far.
func (r *Registry) Swept() int64 { return r.swept }

func (r *Registry) checkMutable(op string) {
	if r.locked {
		panic(fmt.Sprintf("entity: %s called while the registry is locked", op))
	}
	if r.iterating > 0 {
		panic(fmt.Sprintf("entity: %s called while iterating the registry", op))
	}
}

// allocate draws ids until it finds one not in use.
func (r *Registry) allocate() ID {
	for {
		id := ID(r.rng.Int64N(math.MaxInt32))
		if _, taken := r.index.Get(id); !taken {
			return id
		}
	}
}

func (r *Registry) insert(e *Entity) {
	slot := r.store.insert(e)
	r.index.Put(e.id, slot)
}

// Spawn creates a plain entity showing the model declared at path. The
// entity's spawn hook runs before Spawn returns.
func (r *Registry) Spawn(path string, opts ...SpawnOption) (ID, error) {
	r.checkMutable("Spawn")
	model, err := r.models.ResolveModel(path)
	if err != nil {
		return Inactive, fmt.Errorf("entity: spawn %s: %w", path, err)
	}

	e := newEntity(r.allocate(), model, newSpawnConfig(opts))
	r.insert(e)
	if e.behavior != nil {
		e.behavior.Spawn(e, &r.commands)
	}
	r.log.Debug("spawned entity",
		zap.Int64("id", int64(e.id)),
		zap.String("model", path),
	)
	return e.id, nil
}

// SpawnRigidbody creates an entity backed by a physics body shaped after its
// model. The spawn hook runs first; the body is added to the world at the
// transform the entity has afterwards.
func (r *Registry) SpawnRigidbody(path string, info RigidbodyInfo, opts ...SpawnOption) (ID, error) {
	r.checkMutable("SpawnRigidbody")
	model, err := r.models.ResolveModel(path)
	if err != nil {
		return Inactive, fmt.Errorf("entity: spawn rigidbody %s: %w", path, err)
	}

	e := newEntity(r.allocate(), model, newSpawnConfig(opts))
	e.kind = KindRigidbody

	shape := physics.NewShape(info.Primitive, model.Dimensions(), model.Triangles, r.log)
	motion := physics.NewUniqueMotion(int64(e.id), e.transform, r.process)
	body := physics.NewBody(int64(e.id), info.Type, shape, info.Mass, motion, info.bodyOptions()...)
	e.rb = &Rigidbody{info: info, motion: motion, body: body}

	r.insert(e)
	if e.behavior != nil {
		e.behavior.Spawn(e, &r.commands)
	}
	r.world.AddBody(body)
	r.log.Debug("spawned rigidbody",
		zap.Int64("id", int64(e.id)),
		zap.String("model", path),
		zap.Stringer("type", info.Type),
		zap.Stringer("primitive", info.Primitive),
	)
	return e.id, nil
}

// Lookup returns the live entity with the given id.
func (r *Registry) Lookup(id ID) (*Entity, bool) {
	slot, ok := r.index.Get(id)
	if !ok {
		return nil, false
	}
	return r.store.get(slot)
}

// Exists reports whether id names a live entity.
func (r *Registry) Exists(id ID) bool {
	_, ok := r.index.Get(id)
	return ok
}

// LookupBody returns the entity owning b.
func (r *Registry) LookupBody(b *physics.Body) (*Entity, bool) {
	if b == nil || b.Owner() == physics.NoOwner {
		return nil, false
	}
	return r.Lookup(ID(b.Owner()))
}

// All yields every live entity. Spawning or destroying inside the loop
// panics.
func (r *Registry) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		r.iterating++
		defer func() { r.iterating-- }()
		for _, e := range r.store.iter() {
			if !yield(e) {
				return
			}
		}
	}
}

// Tick advances every entity by one frame:
//
//  1. queued health and transform edits are applied
//  2. each entity runs its life hook, or its death hook when its health is
//     <= 0, and joins the death row if its health is <= 0 afterwards
//  3. the death row is swept, removing bodies from the world first
//  4. queued spawns and deferred functions run
func (r *Registry) Tick() {
	r.checkMutable("Tick")
	r.commands.flushEdits(r)

	for e := range r.All() {
		if e.behavior != nil {
			if e.health > 0 {
				e.behavior.Life(e, &r.commands)
			} else {
				e.behavior.Death(e, &r.commands)
			}
		}
		// a life hook that drops health to zero skips the death hook
		if e.health <= 0 {
			r.deathRow = append(r.deathRow, e)
		}
	}

	if n := len(r.deathRow); n > 0 {
		for i, e := range r.deathRow {
			r.destroy(e)
			r.deathRow[i] = nil
		}
		r.deathRow = r.deathRow[:0]
		r.swept += int64(n)
		r.log.Debug("death row swept", zap.Int("count", n), zap.Int("live", r.Len()))
	}

	r.commands.flushSpawns(r)
}

// destroy removes the body, then releases the entity, then drops it from the
// active set.
func (r *Registry) destroy(e *Entity) {
	id := e.id
	slot, ok := r.index.Get(id)
	if !ok {
		panic(fmt.Sprintf("entity: destroying unknown entity %d", id))
	}
	if e.rb != nil && e.rb.body != nil && r.world.Contains(e.rb.body) {
		r.world.RemoveBody(e.rb.body)
	}
	e.release()
	r.store.remove(slot)
	r.index.Del(id)
}

// Clear destroys every entity without running death hooks and drops queued
// commands.
func (r *Registry) Clear() {
	r.checkMutable("Clear")
	live := make([]*Entity, 0, r.store.len())
	for _, e := range r.store.iter() {
		live = append(live, e)
	}
	for _, e := range live {
		r.destroy(e)
	}
	r.store.reset()
	r.index.Clear()
	r.commands.reset()
}

// Compact packs entity storage after large sweeps.
func (r *Registry) Compact() {
	r.checkMutable("Compact")
	if len(r.store.compact()) == 0 {
		return
	}
	for slot, e := range r.store.iter() {
		r.index.Put(e.id, slot)
	}
}
