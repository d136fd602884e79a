package entity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/physics"
)

// RigidbodyInfo describes the body built for a rigidbody entity.
type RigidbodyInfo struct {
	Mass      float32
	Primitive physics.Primitive
	Type      physics.BodyType
	Tag       physics.Tag

	// Friction and Restitution keep the physics defaults when zero.
	Friction    float32
	Restitution float32
}

func (info RigidbodyInfo) bodyOptions() []physics.BodyOption {
	opts := []physics.BodyOption{physics.WithTag(info.Tag)}
	if info.Friction > 0 {
		opts = append(opts, physics.WithFriction(info.Friction))
	}
	if info.Restitution > 0 {
		opts = append(opts, physics.WithRestitution(info.Restitution))
	}
	return opts
}

// Rigidbody is the physics half of a rigidbody entity.
type Rigidbody struct {
	info   RigidbodyInfo
	motion *physics.UniqueMotion
	body   *physics.Body
}

// Body returns the physics body, nil once the entity was swept.
func (r *Rigidbody) Body() *physics.Body { return r.body }

func (r *Rigidbody) Info() RigidbodyInfo { return r.info }

func (r *Rigidbody) Mass() float32 {
	if r.body == nil {
		return r.info.Mass
	}
	return r.body.Mass()
}

func (r *Rigidbody) Type() physics.BodyType { return r.info.Type }

func (r *Rigidbody) Primitive() physics.Primitive { return r.info.Primitive }

func (r *Rigidbody) Tag() physics.Tag { return r.info.Tag }

// Inertia returns the local inertia derived from mass and shape.
func (r *Rigidbody) Inertia() mgl32.Vec3 {
	if r.body == nil {
		return mgl32.Vec3{}
	}
	return r.body.LocalInertia()
}

// SetProcessor replaces the hook run on every motion state write.
func (r *Rigidbody) SetProcessor(p physics.TransformProcessor) {
	r.motion.SetProcessor(p)
}
