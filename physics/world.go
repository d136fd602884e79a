// Package physics is a discrete rigid-body world stepped at a fixed rate.
//
// Bodies carry the id of the entity that owns them and nothing else; callers
// resolve ids through their own registry.
package physics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// Defaults for a new World.
const (
	DefaultFixedTimeStep    = 1.0 / 60.0
	DefaultMaxSubSteps      = 5
	DefaultSolverIterations = 10
)

// DefaultGravity is the gravity of a new World.
var DefaultGravity = mgl32.Vec3{0, -9.8, 0}

// CollisionHandler receives contact events for pairs that pass the callback
// filter. Handlers run inside Step and must not add or remove bodies.
//
// Once both bodies of a touching pair are asleep or immovable the pair gets
// no OnDuringContact calls, but it is still remembered as touching: when one
// of them wakes the pair resumes with OnDuringContact, not OnInitialContact.
type CollisionHandler interface {
	OnInitialContact(a, b *Body)
	OnDuringContact(a, b *Body)
}

// Stats reports world activity.
type Stats struct {
	Steps       int64
	SubSteps    int64
	DroppedTime float64
	Bodies      int
	Contacts    int
	Touching    int
	LastStep    time.Duration
}

type touchingPair struct {
	key  uint64
	a, b *Body
}

// World owns the bodies of one simulated space.
type World struct {
	log         *zap.Logger
	gravity     mgl32.Vec3
	fixed       float64
	maxSubSteps int
	iterations  int
	accumulator float64

	bodies     []*Body
	order      []*Body
	contacts   []contact
	nextHandle uint32

	handler   CollisionHandler
	touching  []touchingPair
	spare     []touchingPair
	touchPrev *intmap.Map[uint64, int]
	touchNext *intmap.Map[uint64, int]

	debug    bool
	stepping bool
	closed   bool
	stats    Stats
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithGravity sets the gravity vector.
func WithGravity(g mgl32.Vec3) WorldOption {
	return func(w *World) { w.gravity = g }
}

// WithFixedTimeStep sets the sub-step length in seconds.
func WithFixedTimeStep(dt float64) WorldOption {
	return func(w *World) {
		if dt > 0 {
			w.fixed = dt
		}
	}
}

// WithMaxSubSteps bounds the number of sub-steps per Step call.
func WithMaxSubSteps(n int) WorldOption {
	return func(w *World) {
		if n > 0 {
			w.maxSubSteps = n
		}
	}
}

// WithSolverIterations sets the velocity solver iteration count.
func WithSolverIterations(n int) WorldOption {
	return func(w *World) {
		if n > 0 {
			w.iterations = n
		}
	}
}

// WithLogger sets the world logger.
func WithLogger(log *zap.Logger) WorldOption {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithDebugDraw enables debug drawing from the start.
func WithDebugDraw(on bool) WorldOption {
	return func(w *World) { w.debug = on }
}

// NewWorld creates an empty world.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		log:         zap.NewNop(),
		gravity:     DefaultGravity,
		fixed:       DefaultFixedTimeStep,
		maxSubSteps: DefaultMaxSubSteps,
		iterations:  DefaultSolverIterations,
		touchPrev:   intmap.New[uint64, int](64),
		touchNext:   intmap.New[uint64, int](64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Gravity returns the gravity vector.
func (w *World) Gravity() mgl32.Vec3 { return w.gravity }

// SetGravity replaces the gravity vector and wakes every body.
func (w *World) SetGravity(g mgl32.Vec3) {
	w.gravity = g
	for _, b := range w.bodies {
		b.Activate()
	}
}

// FixedTimeStep returns the sub-step length in seconds.
func (w *World) FixedTimeStep() float64 { return w.fixed }

// MaxSubSteps returns the sub-step bound per Step.
func (w *World) MaxSubSteps() int { return w.maxSubSteps }

// SetCollisionHandler registers the contact handler. nil disables dispatch.
func (w *World) SetCollisionHandler(h CollisionHandler) {
	w.handler = h
}

// SetDebugMode toggles debug drawing.
func (w *World) SetDebugMode(on bool) { w.debug = on }

// DebugMode reports whether debug drawing is on.
func (w *World) DebugMode() bool { return w.debug }

// Len returns the number of bodies.
func (w *World) Len() int { return len(w.bodies) }

// Bodies returns the bodies in insertion order, with removals swapped in.
// The slice is owned by the world.
func (w *World) Bodies() []*Body { return w.bodies }

// Contains reports whether b was added to w and not removed since.
func (w *World) Contains(b *Body) bool {
	return b != nil && b.world == w
}

// Stats returns a snapshot of world activity.
func (w *World) Stats() Stats {
	s := w.stats
	s.Bodies = len(w.bodies)
	s.Touching = len(w.touching)
	return s
}

// Closed reports whether Close was called.
func (w *World) Closed() bool { return w.closed }

// Close stops the world from stepping. Bodies can still be removed.
func (w *World) Close() {
	w.closed = true
	w.accumulator = 0
}

// AddBody adds b to the world. Adding during a step or adding a body that
// already belongs to a world panics.
func (w *World) AddBody(b *Body) {
	if w.stepping {
		panic("physics: AddBody called during Step")
	}
	if b.world != nil {
		panic("physics: body already added to a world")
	}
	w.nextHandle++
	b.world = w
	b.index = len(w.bodies)
	b.handle = w.nextHandle
	b.refresh()
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes b from the world. Removing during a step or removing a
// body that was never added panics.
func (w *World) RemoveBody(b *Body) {
	if w.stepping {
		panic("physics: RemoveBody called during Step")
	}
	if b == nil || b.world != w {
		panic("physics: removing a body that is not in this world")
	}

	last := len(w.bodies) - 1
	moved := w.bodies[last]
	w.bodies[b.index] = moved
	moved.index = b.index
	w.bodies[last] = nil
	w.bodies = w.bodies[:last]

	b.world = nil
	b.index = -1

	kept := w.touching[:0]
	for _, p := range w.touching {
		if p.a == b || p.b == b {
			w.touchPrev.Del(p.key)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(w.touching); i++ {
		w.touching[i] = touchingPair{}
	}
	w.touching = kept
	for i, p := range w.touching {
		w.touchPrev.Put(p.key, i)
	}
}

// Step advances the world by dt seconds in fixed sub-steps and returns how
// many ran. At most MaxSubSteps run; time beyond that is dropped and counted
// in Stats.DroppedTime. Negative and non-finite deltas count as zero.
func (w *World) Step(dt float64) int {
	if w.closed {
		panic("physics: Step called on a closed world")
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	start := time.Now()
	total := w.accumulator + dt
	steps := math.Floor(total / w.fixed)
	rem := total - steps*w.fixed
	if rem < 0 || rem >= w.fixed {
		rem = 0
	}
	w.accumulator = rem

	n := w.maxSubSteps
	if steps < float64(n) {
		n = int(steps)
	} else if steps > float64(n) {
		dropped := total - rem - float64(n)*w.fixed
		w.stats.DroppedTime += dropped
		w.log.Debug("physics step clamped",
			zap.Float64("dt", dt),
			zap.Float64("sub_steps", steps),
			zap.Float64("dropped", dropped),
		)
	}

	w.stepping = true
	defer func() { w.stepping = false }()

	for i := 0; i < n; i++ {
		w.substep(float32(w.fixed))
	}

	w.stats.Steps++
	w.stats.SubSteps += int64(n)
	w.stats.LastStep = time.Since(start)
	return n
}

func (w *World) substep(dt float32) {
	for _, b := range w.bodies {
		switch {
		case b.IsKinematic():
			t := b.motion.WorldTransform().Normalized()
			b.linVel = t.Position.Sub(b.pose.Position).Mul(1 / dt)
			if t != b.pose {
				b.pose = t
				b.refresh()
			}
		case b.dynamic() && b.IsActive():
			b.linVel = b.linVel.Add(w.gravity.Mul(dt)).Mul(damping(b.linDamping, dt))
			b.angVel = b.angVel.Mul(damping(b.angDamping, dt))
		}
	}

	w.detect()
	w.solve()

	for _, b := range w.bodies {
		if b.dynamic() && b.IsActive() {
			integrate(b, dt)
		}
	}
	w.correct()

	for _, b := range w.bodies {
		if !b.dynamic() || !b.IsActive() {
			continue
		}
		b.refresh()
		updateSleep(b, dt)
		b.motion.SetWorldTransform(b.pose)
	}

	w.stats.Contacts = len(w.contacts)
	w.dispatch()
}

// detect runs a sort-and-sweep broadphase along X and the narrowphase on the
// surviving pairs.
func (w *World) detect() {
	w.contacts = w.contacts[:0]
	w.order = append(w.order[:0], w.bodies...)
	slices.SortFunc(w.order, func(x, y *Body) int {
		return cmp.Compare(x.aabbMin[0], y.aabbMin[0])
	})

	for i, a := range w.order {
		for _, b := range w.order[i+1:] {
			if b.aabbMin[0] > a.aabbMax[0] {
				break
			}
			if !a.moving() && !b.moving() {
				continue
			}
			if !a.dynamic() && !b.dynamic() {
				continue
			}
			if !aabbOverlap(a.aabbMin, a.aabbMax, b.aabbMin, b.aabbMax) {
				continue
			}

			pa, pb := a.proxy(), b.proxy()
			m, ok := collide(&pa, &pb)
			if !ok {
				continue
			}
			if a.activation == Sleeping {
				a.Activate()
			}
			if b.activation == Sleeping {
				b.Activate()
			}
			w.contacts = append(w.contacts, contact{a: a, b: b, manifoldPoint: m})
		}
	}
}

func pairKey(a, b *Body) uint64 {
	lo, hi := a.handle, b.handle
	if lo > hi {
		lo, hi = hi, lo
	}
	return uint64(lo)<<32 | uint64(hi)
}

// dispatch reports begin and persist events for filtered pairs. Pairs whose
// bodies both stopped moving keep their state until one of them wakes.
func (w *World) dispatch() {
	next := w.spare[:0]
	w.touchNext.Clear()

	for i := range w.contacts {
		a, b := w.contacts[i].a, w.contacts[i].b
		if a.cbFilter&b.cbFlag == 0 && b.cbFilter&a.cbFlag == 0 {
			continue
		}
		key := pairKey(a, b)
		if _, dup := w.touchNext.Get(key); dup {
			continue
		}
		w.touchNext.Put(key, len(next))
		next = append(next, touchingPair{key: key, a: a, b: b})

		if w.handler == nil {
			continue
		}
		if _, ok := w.touchPrev.Get(key); ok {
			w.handler.OnDuringContact(a, b)
		} else {
			w.handler.OnInitialContact(a, b)
		}
	}

	for _, p := range w.touching {
		if _, ok := w.touchNext.Get(p.key); ok {
			continue
		}
		if p.a.world == w && p.b.world == w && !p.a.moving() && !p.b.moving() {
			w.touchNext.Put(p.key, len(next))
			next = append(next, p)
		}
	}

	for i := range w.touching {
		w.touching[i] = touchingPair{}
	}
	w.spare = w.touching[:0]
	w.touching = next
	w.touchPrev, w.touchNext = w.touchNext, w.touchPrev
}
