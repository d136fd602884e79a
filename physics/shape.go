package physics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrUnknownPrimitive is returned when parsing a primitive name that does not exist.
var ErrUnknownPrimitive = errors.New("physics: unknown collision primitive")

// Primitive is the collision primitive requested for a rigidbody.
type Primitive uint8

const (
	Cuboid Primitive = iota
	Sphere
	Cone
	Capsule
	Mesh
)

var primitiveNames = [...]string{
	Cuboid:  "cuboid",
	Sphere:  "sphere",
	Cone:    "cone",
	Capsule: "capsule",
	Mesh:    "mesh",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("primitive(%d)", uint8(p))
}

// ParsePrimitive maps a case-insensitive name to a Primitive.
func ParsePrimitive(name string) (Primitive, error) {
	for i, n := range primitiveNames {
		if strings.EqualFold(n, name) {
			return Primitive(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPrimitive, name)
}

// ShapeKind identifies the concrete collision shape.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCone
	ShapeCapsule
	ShapeCylinder
	ShapeTriMesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCone:
		return "cone"
	case ShapeCapsule:
		return "capsule"
	case ShapeCylinder:
		return "cylinder"
	case ShapeTriMesh:
		return "trimesh"
	}
	return "unknown"
}

// Shape is a collision shape centered on its body's origin. Cones and
// cylinders collide as their bounding box.
type Shape struct {
	kind   ShapeKind
	half   mgl32.Vec3
	radius float32
	height float32
	tris   [][3]mgl32.Vec3
}

// NewBox returns a box with the given half extents.
func NewBox(half mgl32.Vec3) Shape {
	return Shape{kind: ShapeBox, half: half}
}

// NewSphere returns a sphere of radius r.
func NewSphere(r float32) Shape {
	return Shape{kind: ShapeSphere, radius: r, half: mgl32.Vec3{r, r, r}}
}

// NewCone returns a Y-up cone with base radius r and height h.
func NewCone(r, h float32) Shape {
	return Shape{kind: ShapeCone, radius: r, height: h, half: mgl32.Vec3{r, h / 2, r}}
}

// NewCapsule returns a Y-up capsule. h is the distance between the cap centers.
func NewCapsule(r, h float32) Shape {
	return Shape{kind: ShapeCapsule, radius: r, height: h, half: mgl32.Vec3{r, h/2 + r, r}}
}

// NewCylinder returns a Y-up cylinder with the given half extents.
func NewCylinder(half mgl32.Vec3) Shape {
	return Shape{kind: ShapeCylinder, radius: half[0], height: half[1] * 2, half: half}
}

// NewTriMesh returns a static triangle mesh shape.
func NewTriMesh(tris [][3]mgl32.Vec3) Shape {
	s := Shape{kind: ShapeTriMesh, tris: tris}
	if len(tris) > 0 {
		lo, hi := tris[0][0], tris[0][0]
		for _, t := range tris {
			for _, v := range t {
				for i := 0; i < 3; i++ {
					lo[i] = min(lo[i], v[i])
					hi[i] = max(hi[i], v[i])
				}
			}
		}
		// mesh half extents measured from the body origin
		for i := 0; i < 3; i++ {
			s.half[i] = max(abs(lo[i]), abs(hi[i]))
		}
	}
	return s
}

// NewShape builds the shape for primitive p sized to model dimensions dims.
// Unknown primitives, and meshes without triangles, fall back to a cylinder
// and log a warning.
func NewShape(p Primitive, dims mgl32.Vec3, tris [][3]mgl32.Vec3, log *zap.Logger) Shape {
	half := dims.Mul(0.5)
	switch p {
	case Cuboid:
		return NewBox(half)
	case Sphere:
		return NewSphere(dims[0] / 2)
	case Cone:
		return NewCone(dims[0]/2, dims[1])
	case Capsule:
		return NewCapsule(dims[0]/2, dims[1]/2)
	case Mesh:
		if len(tris) > 0 {
			return NewTriMesh(tris)
		}
	}
	if log != nil {
		log.Warn("unsupported collision primitive, substituting cylinder",
			zap.Stringer("primitive", p),
			zap.Int("triangles", len(tris)),
		)
	}
	return NewCylinder(half)
}

// Kind returns the concrete shape kind.
func (s Shape) Kind() ShapeKind { return s.kind }

// HalfExtents returns the half extents of the shape's local bounding box.
func (s Shape) HalfExtents() mgl32.Vec3 { return s.half }

// Radius returns the sphere, capsule, cone or cylinder radius.
func (s Shape) Radius() float32 { return s.radius }

// Height returns the cone height, cylinder height or capsule segment length.
func (s Shape) Height() float32 { return s.height }

// Triangles returns the mesh triangles in body space.
func (s Shape) Triangles() [][3]mgl32.Vec3 { return s.tris }

// LocalInertia returns the diagonal inertia tensor for mass. It is zero when
// mass <= 0 and always zero for meshes.
func (s Shape) LocalInertia(mass float32) mgl32.Vec3 {
	if mass <= 0 {
		return mgl32.Vec3{}
	}
	switch s.kind {
	case ShapeSphere:
		i := 0.4 * mass * s.radius * s.radius
		return mgl32.Vec3{i, i, i}
	case ShapeCylinder:
		r2, h2 := s.radius*s.radius, s.height*s.height
		side := mass * (3*r2 + h2) / 12
		return mgl32.Vec3{side, mass * r2 / 2, side}
	case ShapeCone:
		r2, h2 := s.radius*s.radius, s.height*s.height
		side := mass * (3*r2/20 + 3*h2/80)
		return mgl32.Vec3{side, 3 * mass * r2 / 10, side}
	case ShapeTriMesh:
		return mgl32.Vec3{}
	}
	// boxes and capsules use the box around their extents
	l := s.half.Mul(2)
	return mgl32.Vec3{
		mass / 12 * (l[1]*l[1] + l[2]*l[2]),
		mass / 12 * (l[0]*l[0] + l[2]*l[2]),
		mass / 12 * (l[0]*l[0] + l[1]*l[1]),
	}
}

// AABB returns the world bounds of the shape under t.
func (s Shape) AABB(t Transform) (mgl32.Vec3, mgl32.Vec3) {
	switch s.kind {
	case ShapeSphere:
		r := mgl32.Vec3{s.radius, s.radius, s.radius}
		return t.Position.Sub(r), t.Position.Add(r)
	case ShapeTriMesh:
		if len(s.tris) == 0 {
			return t.Position, t.Position
		}
		lo := t.Apply(s.tris[0][0])
		hi := lo
		for _, tri := range s.tris {
			for _, v := range tri {
				w := t.Apply(v)
				for i := 0; i < 3; i++ {
					lo[i] = min(lo[i], w[i])
					hi[i] = max(hi[i], w[i])
				}
			}
		}
		return lo, hi
	}
	axes := t.Axes()
	var ext mgl32.Vec3
	for i := 0; i < 3; i++ {
		ext[i] = abs(axes[0][i])*s.half[0] + abs(axes[1][i])*s.half[1] + abs(axes[2][i])*s.half[2]
	}
	return t.Position.Sub(ext), t.Position.Add(ext)
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
