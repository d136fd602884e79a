package entity_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cube = "models/cube.obj"

func newRegistry(opts ...entity.Option) (*entity.Registry, *physics.World) {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(cube, mgl32.Vec3{1, 1, 1}))
	world := physics.NewWorld()
	return entity.NewRegistry(models, world, opts...), world
}

func TestSpawn(t *testing.T) {
	r, _ := newRegistry()

	id, err := r.Spawn(cube, entity.WithPosition(mgl32.Vec3{1, 2, 3}))
	require.NoError(t, err)
	assert.NotEqual(t, entity.Inactive, id)
	assert.True(t, r.Exists(id))
	assert.Equal(t, 1, r.Len())

	e, ok := r.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, id, e.ID())
	assert.Equal(t, "cube", e.Name())
	assert.Equal(t, entity.KindPlain, e.Kind())
	assert.Equal(t, entity.DefaultHealth, e.Health())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Position())
	assert.Nil(t, e.Rigidbody())
	assert.Equal(t, asset.HandleOf(cube), e.RenderModel().Handle())
}

func TestSpawnUndeclaredModel(t *testing.T) {
	r, world := newRegistry()

	id, err := r.Spawn("models/missing.obj")
	assert.ErrorIs(t, err, asset.ErrNotDeclared)
	assert.Equal(t, entity.Inactive, id)

	id, err = r.SpawnRigidbody("models/missing.obj", entity.RigidbodyInfo{Mass: 1, Type: physics.Dynamic})
	assert.ErrorIs(t, err, asset.ErrNotDeclared)
	assert.Equal(t, entity.Inactive, id)

	assert.Zero(t, r.Len())
	assert.Zero(t, world.Len())
}

func TestIDsAreUnique(t *testing.T) {
	r, _ := newRegistry(entity.WithSeed(1))

	seen := make(map[entity.ID]bool)
	for i := 0; i < 2000; i++ {
		id, err := r.Spawn(cube)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %d", id)
		assert.GreaterOrEqual(t, int64(id), int64(0))
		assert.Less(t, int64(id), int64(math.MaxInt32))
		seen[id] = true
	}
	assert.Equal(t, 2000, r.Len())
}

func TestSeedIsDeterministic(t *testing.T) {
	a, _ := newRegistry(entity.WithSeed(42))
	b, _ := newRegistry(entity.WithSeed(42))

	for i := 0; i < 10; i++ {
		x, err := a.Spawn(cube)
		require.NoError(t, err)
		y, err := b.Spawn(cube)
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestTickSweepsMarkedEntities(t *testing.T) {
	r, _ := newRegistry()

	ids := make([]entity.ID, 300)
	for i := range ids {
		id, err := r.Spawn(cube, entity.WithPosition(mgl32.Vec3{float32(i), 0, 0}))
		require.NoError(t, err)
		ids[i] = id
	}

	var marked []*entity.Entity
	for i := 0; i < len(ids); i += 3 {
		e, _ := r.Lookup(ids[i])
		e.SetHealth(0)
		marked = append(marked, e)
	}

	r.Tick()
	assert.Equal(t, 200, r.Len())
	assert.Equal(t, int64(100), r.Swept())

	for i, id := range ids {
		if i%3 == 0 {
			assert.False(t, r.Exists(id))
			continue
		}
		e, ok := r.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, mgl32.Vec3{float32(i), 0, 0}, e.Position())
	}
	for _, e := range marked {
		assert.False(t, e.Alive())
		assert.Equal(t, entity.Inactive, e.ID())
		assert.Nil(t, e.Model())
	}
}

func TestTickRemovesBodies(t *testing.T) {
	r, world := newRegistry()

	id, err := r.SpawnRigidbody(cube, entity.RigidbodyInfo{
		Mass:      1,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
	})
	require.NoError(t, err)
	require.Equal(t, 1, world.Len())

	e, _ := r.Lookup(id)
	body := e.Rigidbody().Body()
	assert.Equal(t, int64(id), body.Owner())

	found, ok := r.LookupBody(body)
	require.True(t, ok)
	assert.Same(t, e, found)

	e.Hurt(5)
	r.Tick()

	assert.False(t, r.Exists(id))
	assert.Zero(t, world.Len())
	assert.False(t, body.InWorld())
	assert.Nil(t, e.Rigidbody().Body())

	_, ok = r.LookupBody(body)
	assert.False(t, ok)
}

func TestLifecycleHooks(t *testing.T) {
	r, _ := newRegistry()

	var events []string
	hooks := entity.Hooks{
		OnSpawn: func(e *entity.Entity, cmd *entity.Commands) {
			events = append(events, "spawn")
		},
		OnLife: func(e *entity.Entity, cmd *entity.Commands) {
			events = append(events, "life")
			cmd.Hurt(e.ID(), 0.5)
		},
		OnDeath: func(e *entity.Entity, cmd *entity.Commands) {
			events = append(events, "death")
		},
	}

	id, err := r.Spawn(cube, entity.WithBehavior(hooks))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r.Tick()
	}
	assert.Equal(t, []string{"spawn", "life", "life", "death"}, events)
	assert.False(t, r.Exists(id))

	r.Tick()
	assert.Len(t, events, 4)
}

func TestLifeHookThatEmptiesHealthSkipsDeath(t *testing.T) {
	r, _ := newRegistry()

	var events []string
	hooks := entity.Hooks{
		OnLife: func(e *entity.Entity, cmd *entity.Commands) {
			events = append(events, "life")
			e.Hurt(e.Health())
		},
		OnDeath: func(e *entity.Entity, cmd *entity.Commands) {
			events = append(events, "death")
		},
	}
	id, err := r.Spawn(cube, entity.WithBehavior(hooks))
	require.NoError(t, err)

	r.Tick()
	assert.Equal(t, []string{"life"}, events)
	assert.False(t, r.Exists(id))
	assert.Equal(t, int64(1), r.Swept())
}

func TestQueuedSpawnsRunAfterSweep(t *testing.T) {
	r, _ := newRegistry()

	var live []int
	hooks := entity.Hooks{
		OnDeath: func(e *entity.Entity, cmd *entity.Commands) {
			cmd.Spawn(cube, entity.WithName("child"))
			cmd.Defer(func(r *entity.Registry) {
				live = append(live, r.Len())
			})
		},
	}
	id, err := r.Spawn(cube, entity.WithBehavior(hooks), entity.WithHealth(0))
	require.NoError(t, err)

	r.Tick()
	assert.False(t, r.Exists(id))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []int{1}, live)

	for e := range r.All() {
		assert.Equal(t, "child", e.Name())
	}
}

func TestQueuedSpawnFailureIsDropped(t *testing.T) {
	r, _ := newRegistry()
	r.Commands().Spawn("models/missing.obj")
	r.Commands().SpawnRigidbody("models/missing.obj", entity.RigidbodyInfo{Type: physics.Static})

	assert.NotPanics(t, r.Tick)
	assert.Zero(t, r.Len())
	assert.Zero(t, r.Commands().Len())
}

func TestCommandsWhileLocked(t *testing.T) {
	r, _ := newRegistry()

	a, _ := r.Spawn(cube)
	b, _ := r.Spawn(cube)
	c, _ := r.Spawn(cube)

	r.Lock()
	cmd := r.Commands()
	cmd.Kill(a)
	cmd.Hurt(b, 0.25)
	cmd.Teleport(c, physics.At(mgl32.Vec3{0, 9, 0}))
	cmd.Kill(entity.ID(-42))
	assert.Equal(t, 4, cmd.Len())
	r.Unlock()

	r.Tick()
	assert.False(t, r.Exists(a))

	eb, _ := r.Lookup(b)
	assert.Equal(t, float32(0.75), eb.Health())

	ec, _ := r.Lookup(c)
	assert.Equal(t, mgl32.Vec3{0, 9, 0}, ec.Position())
	assert.Zero(t, cmd.Len())
}

func TestMutationGuards(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Spawn(cube)
	require.NoError(t, err)

	r.Lock()
	assert.True(t, r.Locked())
	assert.Panics(t, func() { r.Spawn(cube) })
	assert.Panics(t, func() {
		r.SpawnRigidbody(cube, entity.RigidbodyInfo{Type: physics.Static})
	})
	assert.Panics(t, r.Tick)
	assert.Panics(t, r.Clear)
	r.Unlock()

	assert.Panics(t, func() {
		for range r.All() {
			r.Spawn(cube)
		}
	})
	assert.NotPanics(t, func() { r.Spawn(cube) }, "iteration guard is released after a panic")

	hooks := entity.Hooks{OnLife: func(e *entity.Entity, cmd *entity.Commands) {
		r.Spawn(cube)
	}}
	_, err = r.Spawn(cube, entity.WithBehavior(hooks))
	require.NoError(t, err)
	assert.Panics(t, r.Tick)
}

func TestRigidbodyTransform(t *testing.T) {
	r, world := newRegistry()

	id, err := r.SpawnRigidbody(cube, entity.RigidbodyInfo{
		Mass:      2,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
		Tag:       3,
	}, entity.WithPosition(mgl32.Vec3{0, 10, 0}))
	require.NoError(t, err)

	e, _ := r.Lookup(id)
	rb := e.Rigidbody()
	assert.Equal(t, entity.KindRigidbody, e.Kind())
	assert.Equal(t, float32(2), rb.Mass())
	assert.Equal(t, physics.Tag(3), rb.Body().Tag())
	assert.Equal(t, physics.ShapeBox, rb.Body().Shape().Kind())
	assert.NotEqual(t, mgl32.Vec3{}, rb.Inertia())

	target := mgl32.Vec3{4, 5, 6}
	e.SetPosition(target)
	assert.Equal(t, target, e.Position())
	assert.Equal(t, target, rb.Body().Transform().Position)

	for i := 0; i < 30; i++ {
		world.Step(1.0 / 60.0)
	}
	assert.Less(t, e.Position().Y(), float32(5), "the entity follows its falling body")
	assert.Equal(t, rb.Body().MotionState().WorldTransform(), e.Transform())
}

func TestRigidbodySpawnHookPlacesBody(t *testing.T) {
	r, _ := newRegistry()

	hooks := entity.Hooks{OnSpawn: func(e *entity.Entity, cmd *entity.Commands) {
		e.SetPosition(mgl32.Vec3{0, 5, 0})
	}}
	id, err := r.SpawnRigidbody(cube, entity.RigidbodyInfo{Type: physics.Kinematic, Mass: 1}, entity.WithBehavior(hooks))
	require.NoError(t, err)

	e, _ := r.Lookup(id)
	body := e.Rigidbody().Body()
	assert.True(t, body.InWorld())
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, body.Transform().Position)
	assert.True(t, body.IsKinematic())
}

func TestStaticRigidbody(t *testing.T) {
	r, _ := newRegistry()

	id, err := r.SpawnRigidbody(cube, entity.RigidbodyInfo{Mass: 5, Type: physics.Static})
	require.NoError(t, err)

	e, _ := r.Lookup(id)
	rb := e.Rigidbody()
	assert.Zero(t, rb.Mass())
	assert.Equal(t, mgl32.Vec3{}, rb.Inertia())
	assert.True(t, rb.Body().IsStatic())
}

func TestBoundingSphere(t *testing.T) {
	r, _ := newRegistry()
	id, _ := r.Spawn(cube, entity.WithPosition(mgl32.Vec3{2, 0, 0}))
	e, _ := r.Lookup(id)

	center, radius := e.BoundingSphere()
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, center)
	assert.InDelta(t, math.Sqrt(3)/2, radius, 1e-6)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), e.WorldMatrix())
}

func TestClear(t *testing.T) {
	r, world := newRegistry()
	for i := 0; i < 5; i++ {
		_, err := r.SpawnRigidbody(cube, entity.RigidbodyInfo{Mass: 1, Type: physics.Dynamic})
		require.NoError(t, err)
	}
	r.Commands().Spawn(cube)

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Zero(t, world.Len())
	assert.Zero(t, r.Commands().Len())

	_, err := r.Spawn(cube)
	assert.NoError(t, err)
}

func TestCompact(t *testing.T) {
	r, _ := newRegistry()

	var kept []entity.ID
	for i := 0; i < 200; i++ {
		id, _ := r.Spawn(cube, entity.WithPosition(mgl32.Vec3{float32(i), 0, 0}))
		if i%10 == 0 {
			kept = append(kept, id)
			continue
		}
		e, _ := r.Lookup(id)
		e.SetHealth(0)
	}
	r.Tick()
	r.Compact()

	require.Equal(t, len(kept), r.Len())
	for i, id := range kept {
		e, ok := r.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, float32(i*10), e.Position().X())
	}
}
