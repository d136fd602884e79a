package space_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/config"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/space"
	"github.com/plus3/voxar/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	frame = 1.0 / 60.0
	crate = "models/crate.obj"
	slab  = "models/floor.obj"
)

func newSpace(t *testing.T, opts ...space.Option) (*space.Space, *asset.Catalog) {
	t.Helper()
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(crate, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(slab, mgl32.Vec3{20, 1, 20}))

	cfg := config.Default()
	cfg.Entities.Seed = 7

	s, err := space.New(space.Context{
		Log:    zaptest.NewLogger(t),
		Models: models,
		Config: cfg,
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, models
}

func spawnFloor(t *testing.T, s *space.Space) entity.ID {
	t.Helper()
	id, err := s.Entities().SpawnRigidbody(slab, entity.RigidbodyInfo{
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	}, entity.WithPosition(mgl32.Vec3{0, -0.5, 0}))
	require.NoError(t, err)
	return id
}

func TestNewRequiresModels(t *testing.T) {
	_, err := space.New(space.Context{Config: config.Default()})
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(crate, mgl32.Vec3{1, 1, 1}))

	t.Run("zero config uses defaults", func(t *testing.T) {
		s, err := space.New(space.Context{Models: models})
		require.NoError(t, err)
		t.Cleanup(s.Close)

		assert.Equal(t, physics.DefaultGravity, s.Physics().Gravity())
		assert.Equal(t, float32(67), s.Perspective().FOV)

		_, err = s.Entities().Spawn(crate, entity.WithPosition(mgl32.Vec3{-10, 2, 0}))
		require.NoError(t, err)
		require.NoError(t, s.Tick(frame))
		assert.Zero(t, s.BakedBatch().Len(), "behind the camera")
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		cfg := config.Default()
		cfg.Camera.Near, cfg.Camera.Far = 10, 1
		_, err := space.New(space.Context{Models: models, Config: cfg})
		assert.ErrorIs(t, err, config.ErrInvalid)

		cfg = config.Default()
		cfg.Camera.FOV = 0
		_, err = space.New(space.Context{Models: models, Config: cfg})
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestPhaseOrder(t *testing.T) {
	var seen []string
	s, _ := newSpace(t, space.WithPhaseObserver(func(phase string, f *space.Frame) {
		seen = append(seen, phase)
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Tick(frame))
	}

	order := []string{space.PhaseCamera, space.PhasePhysics, space.PhaseEntities, space.PhaseCull}
	require.Len(t, seen, 12)
	for i, name := range seen {
		assert.Equal(t, order[i%4], name)
	}

	stats := s.Stats().Scheduler
	assert.Equal(t, 4, stats.PhaseCount)
	assert.Equal(t, int64(12), stats.TotalExecutions)
	for i, p := range stats.Phases {
		assert.Equal(t, order[i], p.Name)
		assert.Equal(t, int64(3), p.ExecutionCount)
		assert.LessOrEqual(t, p.MinDuration, p.MaxDuration)
	}
	assert.Equal(t, uint64(3), s.Frame())
}

func TestStaticBodyStaysPut(t *testing.T) {
	s, _ := newSpace(t)

	id, err := s.Entities().SpawnRigidbody(crate, entity.RigidbodyInfo{
		Mass:      0,
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	})
	require.NoError(t, err)

	e, _ := s.Entities().Lookup(id)
	body := e.Rigidbody().Body()
	assert.Equal(t, mgl32.Vec3{}, body.LocalInertia())
	assert.True(t, body.IsStatic())

	before := e.Transform()
	for i := 0; i < 200; i++ {
		require.NoError(t, s.Tick(frame))
	}
	assert.Equal(t, before, e.Transform())
}

func TestDynamicBodySettles(t *testing.T) {
	s, _ := newSpace(t)
	spawnFloor(t, s)

	id, err := s.Entities().SpawnRigidbody(crate, entity.RigidbodyInfo{
		Mass:      1,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
	}, entity.WithPosition(mgl32.Vec3{0, 10, 0}))
	require.NoError(t, err)
	e, _ := s.Entities().Lookup(id)

	for i := 0; i < 600; i++ {
		require.NoError(t, s.Tick(frame))
	}
	settled := e.Position().Y()
	assert.InDelta(t, 0.5, settled, 0.05)

	for i := 0; i < 120; i++ {
		require.NoError(t, s.Tick(frame))
	}
	assert.InDelta(t, settled, e.Position().Y(), 1e-3)
}

func TestContactCommandsApplySameFrame(t *testing.T) {
	s, _ := newSpace(t)
	floor := spawnFloor(t, s)

	mine, err := s.Entities().SpawnRigidbody(crate, entity.RigidbodyInfo{
		Mass:      1,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
	}, entity.WithPosition(mgl32.Vec3{0, 0.49, 0}))
	require.NoError(t, err)

	var contacts int
	s.OnContact(func(c space.Contact, cmd *entity.Commands) {
		contacts++
		assert.True(t, s.Entities().Locked())
		assert.Panics(t, func() { s.Entities().Spawn(crate) })

		require.NotNil(t, c.EntityA)
		require.NotNil(t, c.EntityB)
		for _, e := range []*entity.Entity{c.EntityA, c.EntityB} {
			if e.ID() == mine {
				cmd.Kill(e.ID())
			}
		}
	}, nil)

	require.NoError(t, s.Tick(frame))
	assert.Equal(t, 1, contacts)
	assert.False(t, s.Entities().Exists(mine))
	assert.True(t, s.Entities().Exists(floor))
	assert.Equal(t, 1, s.Physics().Len())
	assert.False(t, s.Entities().Locked())
}

func TestCull(t *testing.T) {
	s, models := newSpace(t)

	ahead, err := s.Entities().Spawn(crate, entity.WithPosition(mgl32.Vec3{10, 2, 0}))
	require.NoError(t, err)
	_, err = s.Entities().Spawn(crate, entity.WithPosition(mgl32.Vec3{-10, 2, 0}))
	require.NoError(t, err)

	require.NoError(t, s.Tick(frame))
	batch := s.BakedBatch()
	require.Equal(t, 1, batch.Len())
	assert.Equal(t, ahead, batch.Items()[0].Source.(*entity.Entity).ID())

	raw := 0
	for range s.RawRenderables() {
		raw++
	}
	assert.Equal(t, 2, raw)

	// the camera looks along the horizon, so only chunks in front are kept
	s.SetTerrain(terrain.New(s.Physics(), models, terrain.WithGrid(2, 4, 4)))
	require.NoError(t, s.Tick(frame))
	assert.Equal(t, 3, s.BakedBatch().Len())
	assert.Len(t, s.BakedBatch().Groups(), 3)
	assert.Equal(t, 6, s.Stats().Render.Candidates)
}

func TestRaycast(t *testing.T) {
	s, _ := newSpace(t)

	_, ok := s.Raycast(100)
	assert.False(t, ok, "nothing to hit")

	id, err := s.Entities().SpawnRigidbody(crate, entity.RigidbodyInfo{
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	}, entity.WithPosition(mgl32.Vec3{10, 2, 0}))
	require.NoError(t, err)

	_, ok = s.Raycast(0)
	assert.False(t, ok)
	_, ok = s.Raycast(5)
	assert.False(t, ok, "out of reach")

	hit, ok := s.Raycast(100)
	require.True(t, ok)
	assert.InDelta(t, 9.5, hit.Point.X(), 1e-3)

	e, _, ok := s.Pick(100)
	require.True(t, ok)
	assert.Equal(t, id, e.ID())
}

func TestCameraLookingStraightDown(t *testing.T) {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(crate, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(slab, mgl32.Vec3{20, 1, 20}))

	cfg := config.Default()
	cfg.Camera.Position = [3]float32{0, 10, 0}
	cfg.Camera.Direction = [3]float32{0, -1, 0}
	s, err := space.New(space.Context{Log: zaptest.NewLogger(t), Models: models, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	floor := spawnFloor(t, s)
	_, err = s.Entities().Spawn(crate, entity.WithPosition(mgl32.Vec3{0, 50, 0}))
	require.NoError(t, err)

	require.NoError(t, s.Tick(frame))
	batch := s.BakedBatch()
	require.Equal(t, 1, batch.Len(), "the crate above the camera is culled")
	assert.Equal(t, floor, batch.Items()[0].Source.(*entity.Entity).ID())

	e, hit, ok := s.Pick(100)
	require.True(t, ok)
	assert.Equal(t, floor, e.ID())
	assert.InDelta(t, 0, hit.Point.Y(), 1e-3)
}

func TestResize(t *testing.T) {
	s, _ := newSpace(t)
	s.Resize(640, 480)
	w, h := s.Perspective().Viewport()
	assert.Equal(t, float32(640), w)
	assert.Equal(t, float32(480), h)
}

func TestClose(t *testing.T) {
	s, models := newSpace(t)
	spawnFloor(t, s)
	_, err := s.Entities().Spawn(crate, entity.WithPosition(mgl32.Vec3{10, 2, 0}))
	require.NoError(t, err)
	land := terrain.New(s.Physics(), models, terrain.WithGrid(1, 2, 1))
	s.SetTerrain(land)
	require.NoError(t, s.Tick(frame))
	batch := s.BakedBatch()
	require.NotZero(t, batch.Len())

	s.Close()
	assert.True(t, s.Closed())
	assert.True(t, s.Physics().Closed())
	assert.Zero(t, s.Entities().Len())
	assert.Zero(t, s.Physics().Len())
	assert.True(t, land.Released())
	assert.True(t, batch.Released())

	assert.ErrorIs(t, s.Tick(frame), space.ErrClosed)
	assert.ErrorIs(t, s.Run(context.Background(), time.Millisecond), space.ErrClosed)
	assert.NotPanics(t, s.Close)
}

func TestRun(t *testing.T) {
	s, _ := newSpace(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx, time.Millisecond))
	assert.Positive(t, s.Frame())
}

func TestStats(t *testing.T) {
	s, _ := newSpace(t)
	spawnFloor(t, s)
	require.NoError(t, s.Tick(1.0))

	stats := s.Stats()
	assert.Equal(t, s.ID().String(), stats.ID)
	assert.Equal(t, 1, stats.Entities)
	assert.Equal(t, 1, stats.Physics.Bodies)
	assert.Equal(t, int64(5), stats.Physics.SubSteps)
	assert.Positive(t, stats.Physics.DroppedTime)
}
