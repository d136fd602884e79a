// Package entity holds the live entities of a space and their lifecycle.
package entity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/physics"
)

// ID identifies an entity within its registry.
type ID int64

// Inactive is the id of an entity that was never spawned or has been swept.
const Inactive ID = -1

// DefaultHealth is the health of a newly spawned entity.
const DefaultHealth float32 = 1

// Entity is a model placed in the world. Rigidbody entities read their
// transform back from the body's motion state.
type Entity struct {
	id       ID
	name     string
	kind     Kind
	health   float32
	model    *asset.Model
	behavior Viable

	transform physics.Transform
	center    mgl32.Vec3
	dims      mgl32.Vec3
	radius    float32

	rb *Rigidbody
}

func newEntity(id ID, model *asset.Model, cfg *spawnConfig) *Entity {
	dims := model.Dimensions()
	e := &Entity{
		id:        id,
		name:      cfg.name,
		health:    cfg.health,
		model:     model,
		behavior:  cfg.behavior,
		transform: cfg.transform.Normalized(),
		center:    model.Center(),
		dims:      dims,
		radius:    dims.Len() / 2,
	}
	if e.name == "" {
		e.name = model.Name
	}
	return e
}

func (e *Entity) ID() ID { return e.id }

func (e *Entity) Name() string { return e.name }

func (e *Entity) SetName(name string) { e.name = name }

func (e *Entity) Kind() Kind { return e.kind }

// Model returns the entity's model, nil once swept.
func (e *Entity) Model() *asset.Model { return e.model }

// RenderModel returns the model to draw.
func (e *Entity) RenderModel() *asset.Model { return e.model }

func (e *Entity) Behavior() Viable { return e.behavior }

// Rigidbody returns the physics half of a rigidbody entity, nil for plain
// entities.
func (e *Entity) Rigidbody() *Rigidbody { return e.rb }

// Alive reports whether the entity has not been swept yet.
func (e *Entity) Alive() bool { return e.id != Inactive }

func (e *Entity) Health() float32 { return e.health }

// SetHealth replaces the health. A value <= 0 marks the entity for the next
// sweep.
func (e *Entity) SetHealth(h float32) { e.health = h }

// Hurt subtracts amount from the health.
func (e *Entity) Hurt(amount float32) { e.health -= amount }

// Marked reports whether the entity will be swept on the next tick.
func (e *Entity) Marked() bool { return e.health <= 0 }

// Transform returns the world transform.
func (e *Entity) Transform() physics.Transform {
	if e.rb != nil && e.rb.body != nil {
		return e.rb.body.MotionState().WorldTransform()
	}
	return e.transform
}

func (e *Entity) Position() mgl32.Vec3 { return e.Transform().Position }

func (e *Entity) Rotation() mgl32.Quat { return e.Transform().Rotation }

// SetTransform moves the entity. For rigidbodies the body is teleported too.
func (e *Entity) SetTransform(t physics.Transform) {
	t = t.Normalized()
	e.transform = t
	if e.rb != nil && e.rb.body != nil {
		e.rb.body.SetTransform(t)
	}
}

func (e *Entity) SetPosition(p mgl32.Vec3) {
	t := e.Transform()
	t.Position = p
	e.SetTransform(t)
}

func (e *Entity) SetRotation(q mgl32.Quat) {
	t := e.Transform()
	t.Rotation = q
	e.SetTransform(t)
}

// WorldMatrix returns the model-to-world matrix.
func (e *Entity) WorldMatrix() mgl32.Mat4 {
	return e.Transform().Mat4()
}

// Dimensions returns the model extents.
func (e *Entity) Dimensions() mgl32.Vec3 { return e.dims }

// BoundingSphere returns a world space sphere enclosing the model.
func (e *Entity) BoundingSphere() (mgl32.Vec3, float32) {
	return e.Transform().Apply(e.center), e.radius
}

func (e *Entity) release() {
	e.id = Inactive
	e.model = nil
	e.behavior = nil
	if e.rb != nil {
		e.transform = e.Transform()
		e.rb.body = nil
	}
}

type spawnConfig struct {
	name      string
	health    float32
	transform physics.Transform
	behavior  Viable
}

func newSpawnConfig(opts []SpawnOption) *spawnConfig {
	cfg := &spawnConfig{
		health:    DefaultHealth,
		transform: physics.Identity(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// SpawnOption configures a spawned entity.
type SpawnOption func(*spawnConfig)

// WithName overrides the name taken from the model.
func WithName(name string) SpawnOption {
	return func(c *spawnConfig) { c.name = name }
}

// WithHealth sets the starting health.
func WithHealth(h float32) SpawnOption {
	return func(c *spawnConfig) { c.health = h }
}

// WithPosition places the entity at p.
func WithPosition(p mgl32.Vec3) SpawnOption {
	return func(c *spawnConfig) { c.transform.Position = p }
}

// WithTransform sets the full starting transform.
func WithTransform(t physics.Transform) SpawnOption {
	return func(c *spawnConfig) { c.transform = t }
}

// WithBehavior attaches lifecycle hooks.
func WithBehavior(v Viable) SpawnOption {
	return func(c *spawnConfig) { c.behavior = v }
}
