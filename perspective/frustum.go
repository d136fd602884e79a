package perspective

import "github.com/go-gl/mathgl/mgl32"

// Plane is n·p + d = 0 with n pointing into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Frustum is the visible volume of a camera.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the six planes of a combined view-projection matrix.
func NewFrustum(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	raw := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}

	var f Frustum
	for i, v := range raw {
		n := v.Vec3()
		l := n.Len()
		if l == 0 {
			continue
		}
		f.Planes[i] = Plane{Normal: n.Mul(1 / l), D: v[3] / l}
	}
	return f
}

// PointIn reports whether p is inside the frustum.
func (f *Frustum) PointIn(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// SphereIn reports whether a sphere is at least partly inside the frustum.
func (f *Frustum) SphereIn(center mgl32.Vec3, radius float32) bool {
	for _, pl := range f.Planes {
		if pl.Distance(center) < -radius {
			return false
		}
	}
	return true
}

// BoundsIn reports whether an axis-aligned box is at least partly inside
// the frustum.
func (f *Frustum) BoundsIn(lo, hi mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		// the corner furthest along the plane normal
		p := lo
		for i := 0; i < 3; i++ {
			if pl.Normal[i] >= 0 {
				p[i] = hi[i]
			}
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
