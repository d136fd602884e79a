package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DebugDrawer receives wireframe lines in world space.
type DebugDrawer interface {
	DrawLine(from, to mgl32.Vec3, color mgl32.Vec3)
}

// Debug colors by body state.
var (
	ColorStatic    = mgl32.Vec3{0.6, 0.6, 0.6}
	ColorKinematic = mgl32.Vec3{0.3, 0.5, 1}
	ColorActive    = mgl32.Vec3{0.2, 1, 0.2}
	ColorSleeping  = mgl32.Vec3{1, 0.8, 0.2}
)

const circleSegments = 16

// DebugDraw emits the wireframe of every body to d. It does nothing unless
// debug mode is on.
func (w *World) DebugDraw(d DebugDrawer) {
	if !w.debug || d == nil {
		return
	}
	for _, b := range w.bodies {
		drawBody(d, b, bodyColor(b))
	}
}

func bodyColor(b *Body) mgl32.Vec3 {
	switch {
	case b.IsStatic():
		return ColorStatic
	case b.IsKinematic():
		return ColorKinematic
	case !b.IsActive():
		return ColorSleeping
	}
	return ColorActive
}

func drawBody(d DebugDrawer, b *Body, color mgl32.Vec3) {
	t := b.pose
	s := b.shape
	switch s.kind {
	case ShapeSphere:
		for axis := 0; axis < 3; axis++ {
			drawCircle(d, t, mgl32.Vec3{}, s.radius, axis, color)
		}
	case ShapeCapsule:
		h := s.height / 2
		for _, y := range [2]float32{-h, h} {
			c := mgl32.Vec3{0, y, 0}
			for axis := 0; axis < 3; axis++ {
				drawCircle(d, t, c, s.radius, axis, color)
			}
		}
		drawSides(d, t, s.radius, -h, h, s.radius, color)
	case ShapeCylinder:
		h := s.half[1]
		drawCircle(d, t, mgl32.Vec3{0, -h, 0}, s.radius, 1, color)
		drawCircle(d, t, mgl32.Vec3{0, h, 0}, s.radius, 1, color)
		drawSides(d, t, s.radius, -h, h, s.radius, color)
	case ShapeCone:
		h := s.height / 2
		drawCircle(d, t, mgl32.Vec3{0, -h, 0}, s.radius, 1, color)
		drawSides(d, t, s.radius, -h, h, 0, color)
	case ShapeTriMesh:
		for _, tri := range b.meshW {
			d.DrawLine(tri[0], tri[1], color)
			d.DrawLine(tri[1], tri[2], color)
			d.DrawLine(tri[2], tri[0], color)
		}
	default:
		p := b.proxy()
		c := boxCorners(&p)
		for i := 0; i < 8; i++ {
			for k := 0; k < 3; k++ {
				if j := i | 1<<k; j != i {
					d.DrawLine(c[i], c[j], color)
				}
			}
		}
	}
}

// drawCircle draws a circle around center in the plane orthogonal to axis.
func drawCircle(d DebugDrawer, t Transform, center mgl32.Vec3, r float32, axis int, color mgl32.Vec3) {
	u, v := (axis+1)%3, (axis+2)%3
	point := func(i int) mgl32.Vec3 {
		a := 2 * math.Pi * float64(i) / circleSegments
		p := center
		p[u] += r * float32(math.Cos(a))
		p[v] += r * float32(math.Sin(a))
		return t.Apply(p)
	}
	prev := point(0)
	for i := 1; i <= circleSegments; i++ {
		next := point(i)
		d.DrawLine(prev, next, color)
		prev = next
	}
}

func drawSides(d DebugDrawer, t Transform, bottom, y0, y1, top float32, color mgl32.Vec3) {
	for _, dir := range [4]mgl32.Vec2{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		from := mgl32.Vec3{dir[0] * bottom, y0, dir[1] * bottom}
		to := mgl32.Vec3{dir[0] * top, y1, dir[1] * top}
		d.DrawLine(t.Apply(from), t.Apply(to), color)
	}
}
