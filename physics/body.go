package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NoOwner tags bodies that do not belong to an entity.
const NoOwner int64 = -1

// BodyType is the simulation policy applied to a body.
type BodyType uint8

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

func (t BodyType) String() string {
	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// CollisionFlags describe how the solver treats a body.
type CollisionFlags uint16

const (
	CFStaticObject           CollisionFlags = 1 << 0
	CFKinematicObject        CollisionFlags = 1 << 1
	CFCustomMaterialCallback CollisionFlags = 1 << 3
)

// CallbackFlag groups bodies for contact callback filtering.
type CallbackFlag uint16

const (
	KinematicFlag CallbackFlag = 1 << 1
	StaticFlag    CallbackFlag = 1 << 2
	DynamicFlag   CallbackFlag = 1 << 3
)

// ActivationState tracks whether a body takes part in the simulation.
type ActivationState uint8

const (
	Active ActivationState = iota
	Sleeping
	DisableDeactivation
)

// Tag classifies a body for gameplay contact handling.
type Tag uint16

const TagNone Tag = 0

const (
	defaultFriction = 0.5
	sleepLinear     = 0.15
	sleepAngular    = 0.2
	sleepTime       = 1.0
)

// Body is a rigid body owned by a World. It refers to its entity only by id.
type Body struct {
	owner int64
	tag   Tag
	kind  BodyType
	shape Shape

	motion MotionState
	pose   Transform

	linVel mgl32.Vec3
	angVel mgl32.Vec3

	mass         float32
	invMass      float32
	localInertia mgl32.Vec3
	invInertia   mgl32.Vec3
	invInertiaW  mgl32.Mat3

	flags      CollisionFlags
	cbFlag     CallbackFlag
	cbFilter   CallbackFlag
	activation ActivationState
	idleTime   float32

	friction    float32
	restitution float32
	linDamping  float32
	angDamping  float32

	aabbMin  mgl32.Vec3
	aabbMax  mgl32.Vec3
	meshW    [][3]mgl32.Vec3
	meshPose Transform

	world  *World
	index  int
	handle uint32
}

// BodyOption configures a body at construction.
type BodyOption func(*Body)

// WithTag sets the classification tag.
func WithTag(tag Tag) BodyOption {
	return func(b *Body) { b.tag = tag }
}

// WithFriction sets the friction coefficient.
func WithFriction(f float32) BodyOption {
	return func(b *Body) { b.friction = f }
}

// WithRestitution sets the bounciness in [0, 1].
func WithRestitution(r float32) BodyOption {
	return func(b *Body) { b.restitution = r }
}

// WithDamping sets linear and angular damping per second.
func WithDamping(linear, angular float32) BodyOption {
	return func(b *Body) {
		b.linDamping = linear
		b.angDamping = angular
	}
}

// NewBody builds a body and applies the policy for kind. The initial pose is
// read from motion. owner is the id of the entity the body belongs to.
func NewBody(owner int64, kind BodyType, shape Shape, mass float32, motion MotionState, opts ...BodyOption) *Body {
	b := &Body{
		owner:      owner,
		kind:       kind,
		shape:      shape,
		motion:     motion,
		friction:   defaultFriction,
		angDamping: 0.05,
		index:      -1,
	}
	for _, opt := range opts {
		opt(b)
	}

	switch kind {
	case Static:
		b.mass = 0
		b.flags |= CFStaticObject
		b.cbFlag = StaticFlag
		b.cbFilter = DynamicFlag
	case Kinematic:
		b.mass = max(mass, 0)
		b.flags |= CFKinematicObject
		b.activation = DisableDeactivation
		b.cbFlag = KinematicFlag
		b.cbFilter = DynamicFlag
	default:
		b.mass = max(mass, 0)
		b.flags |= CFCustomMaterialCallback
		b.cbFlag = DynamicFlag
		b.cbFilter = StaticFlag | KinematicFlag
	}

	b.localInertia = shape.LocalInertia(b.mass)
	if kind == Dynamic && b.mass > 0 && shape.kind != ShapeTriMesh {
		b.invMass = 1 / b.mass
		for i := 0; i < 3; i++ {
			if b.localInertia[i] > 0 {
				b.invInertia[i] = 1 / b.localInertia[i]
			}
		}
	}

	b.pose = motion.WorldTransform().Normalized()
	b.refresh()
	return b
}

// Owner returns the id of the owning entity, or NoOwner.
func (b *Body) Owner() int64 { return b.owner }

// Tag returns the classification tag.
func (b *Body) Tag() Tag { return b.tag }

// Type returns the body type the body was built with.
func (b *Body) Type() BodyType { return b.kind }

// Shape returns the collision shape.
func (b *Body) Shape() Shape { return b.shape }

// MotionState returns the body's motion state.
func (b *Body) MotionState() MotionState { return b.motion }

// Mass returns the mass.
func (b *Body) Mass() float32 { return b.mass }

// InvMass returns the inverse mass used by the solver. Zero means immovable.
func (b *Body) InvMass() float32 { return b.invMass }

// LocalInertia returns the diagonal local inertia.
func (b *Body) LocalInertia() mgl32.Vec3 { return b.localInertia }

// Flags returns the collision flags.
func (b *Body) Flags() CollisionFlags { return b.flags }

// CallbackFlag returns the group this body belongs to for contact callbacks.
func (b *Body) CallbackFlag() CallbackFlag { return b.cbFlag }

// CallbackFilter returns the groups this body reports contacts with.
func (b *Body) CallbackFilter() CallbackFlag { return b.cbFilter }

// ActivationState returns the current activation state.
func (b *Body) ActivationState() ActivationState { return b.activation }

// IsStatic reports whether the body is flagged immovable.
func (b *Body) IsStatic() bool { return b.flags&CFStaticObject != 0 }

// IsKinematic reports whether the body is moved programmatically.
func (b *Body) IsKinematic() bool { return b.flags&CFKinematicObject != 0 }

// IsActive reports whether the body is awake.
func (b *Body) IsActive() bool { return b.activation != Sleeping }

// InWorld reports whether the body is currently added to a world.
func (b *Body) InWorld() bool { return b.world != nil }

// Activate wakes a sleeping body.
func (b *Body) Activate() {
	if b.activation == Sleeping {
		b.activation = Active
	}
	b.idleTime = 0
}

// Transform returns the body's current pose.
func (b *Body) Transform() Transform { return b.pose }

// SetTransform moves the body and its motion state to t and wakes it.
func (b *Body) SetTransform(t Transform) {
	t = t.Normalized()
	b.pose = t
	b.motion.SetWorldTransform(t)
	b.refresh()
	b.Activate()
}

// LinearVelocity returns the linear velocity.
func (b *Body) LinearVelocity() mgl32.Vec3 { return b.linVel }

// SetLinearVelocity sets the linear velocity and wakes the body.
func (b *Body) SetLinearVelocity(v mgl32.Vec3) {
	b.linVel = v
	b.Activate()
}

// AngularVelocity returns the angular velocity.
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angVel }

// SetAngularVelocity sets the angular velocity and wakes the body.
func (b *Body) SetAngularVelocity(v mgl32.Vec3) {
	b.angVel = v
	b.Activate()
}

// ApplyCentralImpulse changes linear momentum by impulse.
func (b *Body) ApplyCentralImpulse(impulse mgl32.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
	b.Activate()
}

// ApplyImpulse applies impulse at rel, an offset from the center of mass.
func (b *Body) ApplyImpulse(impulse, rel mgl32.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.invInertiaW.Mul3x1(rel.Cross(impulse)))
	b.Activate()
}

// AABB returns the world bounds computed at the last pose change.
func (b *Body) AABB() (mgl32.Vec3, mgl32.Vec3) {
	return b.aabbMin, b.aabbMax
}

func (b *Body) dynamic() bool {
	return b.invMass > 0
}

// moving bodies drive contact generation
func (b *Body) moving() bool {
	return (b.dynamic() && b.activation != Sleeping) || b.IsKinematic()
}

func (b *Body) velocityAt(p mgl32.Vec3) mgl32.Vec3 {
	return b.linVel.Add(b.angVel.Cross(p.Sub(b.pose.Position)))
}

func (b *Body) refresh() {
	b.aabbMin, b.aabbMax = b.shape.AABB(b.pose)
	r := b.pose.rotation().Mat4().Mat3()
	b.invInertiaW = r.Mul3(mgl32.Diag3(b.invInertia)).Mul3(r.Transpose())
	if b.shape.kind == ShapeTriMesh && (b.meshW == nil || b.meshPose != b.pose) {
		if b.meshW == nil {
			b.meshW = make([][3]mgl32.Vec3, len(b.shape.tris))
		}
		for i, t := range b.shape.tris {
			b.meshW[i] = [3]mgl32.Vec3{b.pose.Apply(t[0]), b.pose.Apply(t[1]), b.pose.Apply(t[2])}
		}
		b.meshPose = b.pose
	}
}
