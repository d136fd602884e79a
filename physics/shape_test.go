package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewShape(t *testing.T) {
	dims := mgl32.Vec3{2, 4, 2}
	tests := []struct {
		primitive physics.Primitive
		kind      physics.ShapeKind
		half      mgl32.Vec3
		radius    float32
		height    float32
	}{
		{physics.Cuboid, physics.ShapeBox, mgl32.Vec3{1, 2, 1}, 0, 0},
		{physics.Sphere, physics.ShapeSphere, mgl32.Vec3{1, 1, 1}, 1, 0},
		{physics.Cone, physics.ShapeCone, mgl32.Vec3{1, 2, 1}, 1, 4},
		{physics.Capsule, physics.ShapeCapsule, mgl32.Vec3{1, 2, 1}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.primitive.String(), func(t *testing.T) {
			s := physics.NewShape(tt.primitive, dims, nil, zap.NewNop())
			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, tt.half, s.HalfExtents())
			assert.Equal(t, tt.radius, s.Radius())
			assert.Equal(t, tt.height, s.Height())
		})
	}

	t.Run("mesh", func(t *testing.T) {
		tris := [][3]mgl32.Vec3{{{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}}}
		s := physics.NewShape(physics.Mesh, dims, tris, zap.NewNop())
		assert.Equal(t, physics.ShapeTriMesh, s.Kind())
		assert.Len(t, s.Triangles(), 1)
		assert.Equal(t, mgl32.Vec3{}, s.LocalInertia(10))
	})
}

func TestNewShapeFallback(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	s := physics.NewShape(physics.Primitive(42), mgl32.Vec3{2, 2, 2}, nil, log)
	assert.Equal(t, physics.ShapeCylinder, s.Kind())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "primitive(42)", logs.All()[0].ContextMap()["primitive"])

	s = physics.NewShape(physics.Mesh, mgl32.Vec3{2, 2, 2}, nil, log)
	assert.Equal(t, physics.ShapeCylinder, s.Kind())
	assert.Equal(t, 2, logs.Len())
}

func TestParsePrimitive(t *testing.T) {
	p, err := physics.ParsePrimitive("CAPSULE")
	require.NoError(t, err)
	assert.Equal(t, physics.Capsule, p)

	_, err = physics.ParsePrimitive("teapot")
	assert.ErrorIs(t, err, physics.ErrUnknownPrimitive)
}

func TestLocalInertia(t *testing.T) {
	box := physics.NewBox(mgl32.Vec3{0.5, 0.5, 0.5})
	assert.Equal(t, mgl32.Vec3{}, box.LocalInertia(0))
	assert.Equal(t, mgl32.Vec3{}, box.LocalInertia(-3))

	i := box.LocalInertia(6)
	assert.InDelta(t, 1.0, i.X(), 1e-6)
	assert.InDelta(t, 1.0, i.Y(), 1e-6)
	assert.InDelta(t, 1.0, i.Z(), 1e-6)

	sphere := physics.NewSphere(1).LocalInertia(5)
	assert.InDelta(t, 2.0, sphere.X(), 1e-6)
}

func TestBodyTypePolicy(t *testing.T) {
	shape := physics.NewBox(mgl32.Vec3{0.5, 0.5, 0.5})
	tests := []struct {
		kind       physics.BodyType
		mass       float32
		flags      physics.CollisionFlags
		flag       physics.CallbackFlag
		filter     physics.CallbackFlag
		activation physics.ActivationState
		immovable  bool
	}{
		{physics.Static, 5, physics.CFStaticObject, physics.StaticFlag, physics.DynamicFlag, physics.Active, true},
		{physics.Kinematic, 5, physics.CFKinematicObject, physics.KinematicFlag, physics.DynamicFlag, physics.DisableDeactivation, true},
		{physics.Dynamic, 5, physics.CFCustomMaterialCallback, physics.DynamicFlag, physics.StaticFlag | physics.KinematicFlag, physics.Active, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			b := physics.NewBody(1, tt.kind, shape, tt.mass, physics.NewUniqueMotion(1, physics.Identity(), nil), physics.WithTag(3))
			assert.Equal(t, tt.flags, b.Flags())
			assert.Equal(t, tt.flag, b.CallbackFlag())
			assert.Equal(t, tt.filter, b.CallbackFilter())
			assert.Equal(t, tt.activation, b.ActivationState())
			assert.Equal(t, tt.immovable, b.InvMass() == 0)
			assert.Equal(t, physics.Tag(3), b.Tag())
			assert.Equal(t, int64(1), b.Owner())
		})
	}

	static := physics.NewBody(1, physics.Static, shape, 5, physics.NewUniqueMotion(1, physics.Identity(), nil))
	assert.Equal(t, float32(0), static.Mass())
	assert.Equal(t, mgl32.Vec3{}, static.LocalInertia())
}

func TestShapeAABB(t *testing.T) {
	box := physics.NewBox(mgl32.Vec3{1, 2, 3})
	rot := physics.Transform{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
	}
	lo, hi := box.AABB(rot)
	assert.InDelta(t, 7, lo.X(), 1e-5)
	assert.InDelta(t, 13, hi.X(), 1e-5)
	assert.InDelta(t, -1, lo.Z(), 1e-5)
	assert.InDelta(t, 2, hi.Y(), 1e-5)
}
