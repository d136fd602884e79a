// Package space runs one simulated world frame by frame: camera update,
// physics step, entity tick with the death row sweep, then culling and
// batch assembly.
package space

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/plus3/voxar/config"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/logging"
	"github.com/plus3/voxar/perspective"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/render"
	"github.com/plus3/voxar/terrain"
	"go.uber.org/zap"
)

// ErrClosed is returned by Tick and Run once the space was closed.
var ErrClosed = errors.New("space: closed")

// Stats is a snapshot of a space.
type Stats struct {
	ID        string
	Frame     uint64
	Entities  int
	Swept     int64
	Physics   physics.Stats
	Render    render.Stats
	Scheduler SchedulerStats
}

// Space owns the camera, the physics world, the entity registry and the
// frame batch of one world. It is not safe for concurrent use.
type Space struct {
	id  uuid.UUID
	log *zap.Logger
	ctx Context

	perspective *perspective.Perspective
	world       *physics.World
	entities    *entity.Registry
	baker       *render.Baker
	terrain     *terrain.Terrain

	sched  scheduler
	frame  uint64
	closed bool
}

// Option configures a Space.
type Option func(*Space)

// WithController attaches a camera controller.
func WithController(c perspective.Controller) Option {
	return func(s *Space) { s.perspective.SetController(c) }
}

// WithPhaseObserver calls fn after each phase of every tick.
func WithPhaseObserver(fn func(phase string, f *Frame)) Option {
	return func(s *Space) { s.sched.observe = fn }
}

// New builds a space from ctx. A zero Config means config.Default; any
// other config must pass Config.Validate.
func New(ctx Context, opts ...Option) (*Space, error) {
	if ctx.Models == nil {
		return nil, fmt.Errorf("space: context has no model provider")
	}
	if ctx.Config == (config.Config{}) {
		ctx.Config = config.Default()
	}
	if err := ctx.Config.Validate(); err != nil {
		return nil, fmt.Errorf("space: %w", err)
	}

	id := uuid.New()
	log := logging.OrNop(ctx.Log).With(zap.String("space_id", id.String()))
	cfg := ctx.Config

	s := &Space{
		id:  id,
		log: log,
		ctx: ctx,
		perspective: perspective.New(
			perspective.WithPosition(mgl32.Vec3(cfg.Camera.Position)),
			perspective.WithDirection(mgl32.Vec3(cfg.Camera.Direction)),
			perspective.WithFOV(cfg.Camera.FOV),
			perspective.WithClip(cfg.Camera.Near, cfg.Camera.Far),
			perspective.WithViewport(cfg.Camera.Width, cfg.Camera.Height),
		),
		world: physics.NewWorld(
			physics.WithGravity(mgl32.Vec3(cfg.Physics.Gravity)),
			physics.WithFixedTimeStep(cfg.Physics.FixedTimeStep),
			physics.WithMaxSubSteps(cfg.Physics.MaxSubSteps),
			physics.WithSolverIterations(cfg.Physics.SolverIterations),
			physics.WithDebugDraw(cfg.Physics.DebugDraw),
			physics.WithLogger(log.Named("physics")),
		),
		baker: render.NewBaker(),
	}
	s.entities = entity.NewRegistry(ctx.Models, s.world,
		entity.WithLogger(log.Named("entity")),
		entity.WithSeed(cfg.Entities.Seed),
	)

	s.sched.register(PhaseCamera, s.updateCamera)
	s.sched.register(PhasePhysics, s.stepPhysics)
	s.sched.register(PhaseEntities, s.tickEntities)
	s.sched.register(PhaseCull, s.cullAndBake)

	for _, opt := range opts {
		opt(s)
	}

	log.Info("space created",
		zap.Float64("fixed_time_step", s.world.FixedTimeStep()),
		zap.Int("max_sub_steps", s.world.MaxSubSteps()),
	)
	return s, nil
}

func (s *Space) updateCamera(f *Frame) {
	s.perspective.Tick(f.DeltaTime)
}

func (s *Space) stepPhysics(f *Frame) {
	s.entities.Lock()
	defer s.entities.Unlock()
	s.world.Step(f.DeltaTime)
}

func (s *Space) tickEntities(f *Frame) {
	s.entities.Tick()
}

func (s *Space) cullAndBake(f *Frame) {
	s.entities.Lock()
	defer s.entities.Unlock()

	var generic iter.Seq[render.Renderable]
	if s.terrain != nil {
		generic = s.terrain.Renderables()
	}
	s.baker.Bake(s.perspective.Frustum(), s.boundedEntities(), generic)
}

func (s *Space) boundedEntities() iter.Seq[render.Bounded] {
	return func(yield func(render.Bounded) bool) {
		for e := range s.entities.All() {
			if !yield(e) {
				return
			}
		}
	}
}

// Tick runs one frame.
func (s *Space) Tick(dt float64) error {
	if s.closed {
		return ErrClosed
	}
	s.frame++
	s.sched.once(&Frame{Number: s.frame, DeltaTime: dt})
	return nil
}

// Run ticks at interval until ctx is done or the space is closed.
func (s *Space) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Tick(dt); err != nil {
				return err
			}
		}
	}
}

// ID returns the unique id of this space.
func (s *Space) ID() uuid.UUID { return s.id }

// Logger returns the space logger.
func (s *Space) Logger() *zap.Logger { return s.log }

func (s *Space) Perspective() *perspective.Perspective { return s.perspective }

func (s *Space) Physics() *physics.World { return s.world }

func (s *Space) Entities() *entity.Registry { return s.entities }

// Frame returns the number of ticks run so far.
func (s *Space) Frame() uint64 { return s.frame }

// Resize forwards a viewport change to the camera.
func (s *Space) Resize(w, h int) {
	s.perspective.Resize(w, h)
}

// BakedBatch returns the batch assembled by the last tick.
func (s *Space) BakedBatch() *render.Batch { return s.baker.Batch() }

// RawRenderables yields every live entity, culled or not.
func (s *Space) RawRenderables() iter.Seq[*entity.Entity] { return s.entities.All() }

// Terrain returns the attached terrain or nil.
func (s *Space) Terrain() *terrain.Terrain { return s.terrain }

// SetTerrain attaches static geometry. A previous terrain is released.
func (s *Space) SetTerrain(t *terrain.Terrain) {
	if s.terrain != nil && s.terrain != t {
		s.terrain.Release()
	}
	s.terrain = t
}

// SetCollisionHandler registers a raw contact handler.
func (s *Space) SetCollisionHandler(h physics.CollisionHandler) {
	s.world.SetCollisionHandler(h)
}

// OnContact registers contact funcs that receive resolved entities. Either
// may be nil.
func (s *Space) OnContact(initial, during ContactFunc) {
	s.world.SetCollisionHandler(&contactHandler{
		entities: s.entities,
		initial:  initial,
		during:   during,
	})
}

// Raycast casts from the camera through the center of the viewport.
func (s *Space) Raycast(maxDistance float32) (physics.Hit, bool) {
	return physics.RaycastFrom(s.perspective, s.world, maxDistance)
}

// Pick is Raycast resolved to the entity that owns the hit body.
func (s *Space) Pick(maxDistance float32) (*entity.Entity, physics.Hit, bool) {
	hit, ok := s.Raycast(maxDistance)
	if !ok {
		return nil, hit, false
	}
	e, ok := s.entities.LookupBody(hit.Body)
	return e, hit, ok
}

// DebugDraw forwards physics wireframes to d when debug mode is on.
func (s *Space) DebugDraw(d physics.DebugDrawer) {
	s.world.DebugDraw(d)
}

func (s *Space) Stats() Stats {
	return Stats{
		ID:        s.id.String(),
		Frame:     s.frame,
		Entities:  s.entities.Len(),
		Swept:     s.entities.Swept(),
		Physics:   s.world.Stats(),
		Render:    s.baker.Stats(),
		Scheduler: s.sched.stats(),
	}
}

func (s *Space) Closed() bool { return s.closed }

// Close tears the space down: physics stops stepping, every entity and its
// body is destroyed, the terrain is released and the batch is dropped.
// Calling Close again does nothing.
func (s *Space) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.world.Close()
	s.entities.Unlock()
	s.entities.Clear()
	if s.terrain != nil {
		s.terrain.Release()
	}
	s.baker.Release()

	s.log.Info("space closed", zap.Uint64("frames", s.frame))
}
