package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit is the closest intersection found by a raycast.
type Hit struct {
	Body     *Body
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Fraction float32
}

// RaySource produces pick rays through viewport coordinates.
type RaySource interface {
	PickRay(x, y float32) (origin, direction mgl32.Vec3)
	Viewport() (width, height float32)
}

// RaycastFrom casts a ray from src through the center of its viewport.
// maxDistance <= 0 never hits.
func RaycastFrom(src RaySource, w *World, maxDistance float32) (Hit, bool) {
	if maxDistance <= 0 {
		return Hit{}, false
	}
	vw, vh := src.Viewport()
	origin, dir := src.PickRay(vw/2, vh/2)
	if !finite(origin) || !finite(dir) || dir.LenSqr() == 0 {
		return Hit{}, false
	}
	return w.Raycast(origin, origin.Add(dir.Normalize().Mul(maxDistance)))
}

// Raycast returns the closest body hit on the segment from..to. Segments
// with non-finite ends never hit.
func (w *World) Raycast(from, to mgl32.Vec3) (Hit, bool) {
	if !finite(from) || !finite(to) {
		return Hit{}, false
	}
	d := to.Sub(from)
	if d.LenSqr() == 0 {
		return Hit{}, false
	}

	best := Hit{Fraction: 1}
	found := false
	for _, b := range w.bodies {
		if !rayAABB(from, d, b.aabbMin, b.aabbMax, best.Fraction) {
			continue
		}
		t, n, ok := rayBody(from, d, b)
		if !ok || t > best.Fraction {
			continue
		}
		if found && t == best.Fraction {
			continue
		}
		best = Hit{Body: b, Point: from.Add(d.Mul(t)), Normal: n, Fraction: t}
		found = true
	}
	if !found {
		return Hit{}, false
	}
	return best, true
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

func rayBody(o, d mgl32.Vec3, b *Body) (float32, mgl32.Vec3, bool) {
	p := b.proxy()
	switch p.kind {
	case proxySphere:
		return raySphere(o, d, p.center, p.radius)
	case proxyCapsule:
		return rayCapsule(o, d, &p)
	case proxyMesh:
		return rayMesh(o, d, &p)
	}
	return rayBox(o, d, &p)
}

func raySphere(o, d, c mgl32.Vec3, r float32) (float32, mgl32.Vec3, bool) {
	m := o.Sub(c)
	a := d.Dot(d)
	b := m.Dot(d)
	cc := m.Dot(m) - r*r
	if cc > 0 && b > 0 {
		return 0, mgl32.Vec3{}, false
	}
	disc := b*b - a*cc
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	t := (-b - sqrt(disc)) / a
	if t > 1 {
		return 0, mgl32.Vec3{}, false
	}
	t = max(t, 0)
	n := o.Add(d.Mul(t)).Sub(c)
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}
	return t, n, true
}

func rayBox(o, d mgl32.Vec3, box *proxy) (float32, mgl32.Vec3, bool) {
	rel := o.Sub(box.center)
	tmin, tmax := float32(0), float32(1)
	axis, sign := -1, float32(0)
	for i := 0; i < 3; i++ {
		lo := rel.Dot(box.axes[i])
		ld := d.Dot(box.axes[i])
		if abs(ld) < 1e-9 {
			if lo < -box.half[i] || lo > box.half[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t1 := (-box.half[i] - lo) / ld
		t2 := (box.half[i] - lo) / ld
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, i, s
		}
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if axis < 0 {
		// origin inside the box
		return 0, d.Normalize().Mul(-1), true
	}
	return tmin, box.axes[axis].Mul(sign), true
}

// rayCapsule bisects towards the first point of the segment within radius
// of the capsule axis. Distance to a convex set is convex along a line, so
// it is monotonic before the closest approach.
func rayCapsule(o, d mgl32.Vec3, c *proxy) (float32, mgl32.Vec3, bool) {
	s, q := closestSegmentSegment(o, o.Add(d), c.p0, c.p1)
	if s.Sub(q).LenSqr() > c.radius*c.radius {
		return 0, mgl32.Vec3{}, false
	}
	r2 := c.radius * c.radius
	inside := func(t float32) bool {
		p := o.Add(d.Mul(t))
		return p.Sub(closestOnSegment(p, c.p0, c.p1)).LenSqr() <= r2
	}

	hi := projectFraction(o, d, s)
	if inside(0) {
		hi = 0
	}
	lo := float32(0)
	for i := 0; i < 24 && hi > 0; i++ {
		mid := (lo + hi) / 2
		if inside(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	p := o.Add(d.Mul(hi))
	n := p.Sub(closestOnSegment(p, c.p0, c.p1))
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}
	return hi, n, true
}

func projectFraction(o, d, p mgl32.Vec3) float32 {
	l2 := d.LenSqr()
	if l2 == 0 {
		return 0
	}
	return mgl32.Clamp(p.Sub(o).Dot(d)/l2, 0, 1)
}

func rayMesh(o, d mgl32.Vec3, mesh *proxy) (float32, mgl32.Vec3, bool) {
	best := float32(math.MaxFloat32)
	var n mgl32.Vec3
	for _, tri := range mesh.tris {
		if t, ok := rayTriangle(o, d, tri); ok && t < best {
			best = t
			n = triangleNormal(tri)
			if n.Dot(d) > 0 {
				n = n.Mul(-1)
			}
		}
	}
	if best > 1 {
		return 0, mgl32.Vec3{}, false
	}
	return best, n, true
}

// rayTriangle is the Möller-Trumbore test restricted to t in [0, 1].
func rayTriangle(o, d mgl32.Vec3, tri [3]mgl32.Vec3) (float32, bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	p := d.Cross(e2)
	det := e1.Dot(p)
	if abs(det) < 1e-9 {
		return 0, false
	}
	inv := 1 / det
	s := o.Sub(tri[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := d.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

func rayAABB(o, d, lo, hi mgl32.Vec3, limit float32) bool {
	tmin, tmax := float32(0), limit
	for i := 0; i < 3; i++ {
		if abs(d[i]) < 1e-9 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (lo[i] - o[i]) * inv
		t2 := (hi[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}
