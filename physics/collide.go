package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type proxyKind uint8

const (
	proxySphere proxyKind = iota
	proxyCapsule
	proxyBox
	proxyMesh
)

// proxy is the world-space collision volume of a body for one sub-step.
type proxy struct {
	kind    proxyKind
	center  mgl32.Vec3
	axes    [3]mgl32.Vec3
	half    mgl32.Vec3
	radius  float32
	p0, p1  mgl32.Vec3
	tris    [][3]mgl32.Vec3
	aabbMin mgl32.Vec3
	aabbMax mgl32.Vec3
}

func (b *Body) proxy() proxy {
	p := proxy{
		center:  b.pose.Position,
		aabbMin: b.aabbMin,
		aabbMax: b.aabbMax,
	}
	switch b.shape.kind {
	case ShapeSphere:
		p.kind = proxySphere
		p.radius = b.shape.radius
	case ShapeCapsule:
		p.kind = proxyCapsule
		p.radius = b.shape.radius
		up := b.pose.rotation().Rotate(mgl32.Vec3{0, b.shape.height / 2, 0})
		p.p0 = p.center.Sub(up)
		p.p1 = p.center.Add(up)
	case ShapeTriMesh:
		p.kind = proxyMesh
		p.tris = b.meshW
	default:
		p.kind = proxyBox
		p.axes = b.pose.Axes()
		p.half = b.shape.half
	}
	return p
}

// manifoldPoint is a single contact. normal points from the second proxy
// towards the first.
type manifoldPoint struct {
	normal mgl32.Vec3
	point  mgl32.Vec3
	depth  float32
}

func collide(pa, pb *proxy) (manifoldPoint, bool) {
	if pa.kind > pb.kind {
		m, ok := collide(pb, pa)
		m.normal = m.normal.Mul(-1)
		return m, ok
	}

	switch pa.kind {
	case proxySphere:
		switch pb.kind {
		case proxySphere:
			return sphereSphere(pa.center, pa.radius, pb.center, pb.radius)
		case proxyCapsule:
			q := closestOnSegment(pa.center, pb.p0, pb.p1)
			return sphereSphere(pa.center, pa.radius, q, pb.radius)
		case proxyBox:
			return sphereBox(pa.center, pa.radius, pb)
		case proxyMesh:
			return sphereMesh(pa.center, pa.radius, pa.aabbMin, pa.aabbMax, pb)
		}
	case proxyCapsule:
		switch pb.kind {
		case proxyCapsule:
			s, t := closestSegmentSegment(pa.p0, pa.p1, pb.p0, pb.p1)
			return sphereSphere(s, pa.radius, t, pb.radius)
		case proxyBox:
			return sphereBox(segmentNearBox(pa.p0, pa.p1, pb), pa.radius, pb)
		case proxyMesh:
			return capsuleMesh(pa, pb)
		}
	case proxyBox:
		switch pb.kind {
		case proxyBox:
			return boxBox(pa, pb)
		case proxyMesh:
			return boxMesh(pa, pb)
		}
	}
	return manifoldPoint{}, false
}

var worldUp = mgl32.Vec3{0, 1, 0}

func sphereSphere(ca mgl32.Vec3, ra float32, cb mgl32.Vec3, rb float32) (manifoldPoint, bool) {
	d := ca.Sub(cb)
	rs := ra + rb
	dist2 := d.LenSqr()
	if dist2 >= rs*rs {
		return manifoldPoint{}, false
	}
	dist := sqrt(dist2)
	n := worldUp
	if dist > 1e-6 {
		n = d.Mul(1 / dist)
	}
	depth := rs - dist
	return manifoldPoint{
		normal: n,
		point:  cb.Add(n.Mul(rb - depth/2)),
		depth:  depth,
	}, true
}

func sphereBox(c mgl32.Vec3, r float32, box *proxy) (manifoldPoint, bool) {
	local := c.Sub(box.center)
	closest := box.center
	var l [3]float32
	for i := 0; i < 3; i++ {
		l[i] = local.Dot(box.axes[i])
		closest = closest.Add(box.axes[i].Mul(mgl32.Clamp(l[i], -box.half[i], box.half[i])))
	}

	d := c.Sub(closest)
	dist2 := d.LenSqr()
	if dist2 > r*r {
		return manifoldPoint{}, false
	}
	if dist2 > 1e-10 {
		dist := sqrt(dist2)
		return manifoldPoint{normal: d.Mul(1 / dist), point: closest, depth: r - dist}, true
	}

	// center inside the box: leave through the nearest face
	axis := 0
	best := float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		if gap := box.half[i] - abs(l[i]); gap < best {
			best, axis = gap, i
		}
	}
	n := box.axes[axis]
	if l[axis] < 0 {
		n = n.Mul(-1)
	}
	return manifoldPoint{normal: n, point: c, depth: r + best}, true
}

func sphereMesh(c mgl32.Vec3, r float32, lo, hi mgl32.Vec3, mesh *proxy) (manifoldPoint, bool) {
	var (
		best  manifoldPoint
		found bool
	)
	for _, t := range mesh.tris {
		if !triangleOverlapsAABB(t, lo, hi) {
			continue
		}
		q := closestOnTriangle(c, t[0], t[1], t[2])
		d := c.Sub(q)
		dist2 := d.LenSqr()
		if dist2 > r*r {
			continue
		}
		var m manifoldPoint
		if dist2 > 1e-10 {
			dist := sqrt(dist2)
			m = manifoldPoint{normal: d.Mul(1 / dist), point: q, depth: r - dist}
		} else {
			m = manifoldPoint{normal: triangleNormal(t), point: q, depth: r}
		}
		if !found || m.depth > best.depth {
			best, found = m, true
		}
	}
	return best, found
}

func capsuleMesh(capsule, mesh *proxy) (manifoldPoint, bool) {
	var (
		best  manifoldPoint
		found bool
	)
	for _, t := range mesh.tris {
		if !triangleOverlapsAABB(t, capsule.aabbMin, capsule.aabbMax) {
			continue
		}
		q := segmentNearTriangle(capsule.p0, capsule.p1, t)
		m, ok := sphereMesh(q, capsule.radius, capsule.aabbMin, capsule.aabbMax, &proxy{tris: [][3]mgl32.Vec3{t}})
		if ok && (!found || m.depth > best.depth) {
			best, found = m, true
		}
	}
	return best, found
}

// boxBox runs the separating axis test between two oriented boxes.
func boxBox(a, b *proxy) (manifoldPoint, bool) {
	l := b.center.Sub(a.center)

	faceDepth := float32(math.MaxFloat32)
	var faceNormal mgl32.Vec3
	for i := 0; i < 3; i++ {
		for _, axis := range [2]mgl32.Vec3{a.axes[i], b.axes[i]} {
			overlap, hit := boxOverlap(a, b, axis, l)
			if !hit {
				return manifoldPoint{}, false
			}
			if overlap < faceDepth {
				faceDepth, faceNormal = overlap, axis
			}
		}
	}

	edgeDepth := float32(math.MaxFloat32)
	var edgeNormal mgl32.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := a.axes[i].Cross(b.axes[j])
			if cross.LenSqr() < 1e-4 {
				continue
			}
			axis := cross.Normalize()
			overlap, hit := boxOverlap(a, b, axis, l)
			if !hit {
				return manifoldPoint{}, false
			}
			if overlap < edgeDepth {
				edgeDepth, edgeNormal = overlap, axis
			}
		}
	}

	depth, n := faceDepth, faceNormal
	if edgeDepth < 0.95*faceDepth-0.01 {
		depth, n = edgeDepth, edgeNormal
	}
	// point from b to a
	if l.Dot(n) > 0 {
		n = n.Mul(-1)
	}

	return manifoldPoint{normal: n, point: boxContactPoint(a, b), depth: depth}, true
}

func boxOverlap(a, b *proxy, axis, l mgl32.Vec3) (float32, bool) {
	var pa, pb float32
	for i := 0; i < 3; i++ {
		pa += abs(a.axes[i].Dot(axis)) * a.half[i]
		pb += abs(b.axes[i].Dot(axis)) * b.half[i]
	}
	overlap := pa + pb - abs(l.Dot(axis))
	return overlap, overlap > 0
}

func boxContactPoint(a, b *proxy) mgl32.Vec3 {
	var (
		sum mgl32.Vec3
		n   int
	)
	for _, p := range boxCorners(a) {
		if pointInBox(p, b) {
			sum = sum.Add(p)
			n++
		}
	}
	for _, p := range boxCorners(b) {
		if pointInBox(p, a) {
			sum = sum.Add(p)
			n++
		}
	}
	if n == 0 {
		return a.center.Add(b.center).Mul(0.5)
	}
	return sum.Mul(1 / float32(n))
}

func boxCorners(b *proxy) [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		p := b.center
		for k := 0; k < 3; k++ {
			e := b.axes[k].Mul(b.half[k])
			if i&(1<<k) != 0 {
				p = p.Add(e)
			} else {
				p = p.Sub(e)
			}
		}
		out[i] = p
	}
	return out
}

func pointInBox(p mgl32.Vec3, b *proxy) bool {
	d := p.Sub(b.center)
	for i := 0; i < 3; i++ {
		if abs(d.Dot(b.axes[i])) > b.half[i]+0.01 {
			return false
		}
	}
	return true
}

func boxMesh(box, mesh *proxy) (manifoldPoint, bool) {
	var (
		best  manifoldPoint
		found bool
	)
	for _, t := range mesh.tris {
		if !triangleOverlapsAABB(t, box.aabbMin, box.aabbMax) {
			continue
		}
		m, ok := boxTriangle(box, t)
		if ok && (!found || m.depth > best.depth) {
			best, found = m, true
		}
	}
	return best, found
}

// boxTriangle tests the 13 separating axes between a box and a triangle.
func boxTriangle(box *proxy, t [3]mgl32.Vec3) (manifoldPoint, bool) {
	c := box.center
	v := [3]mgl32.Vec3{t[0].Sub(c), t[1].Sub(c), t[2].Sub(c)}
	e := [3]mgl32.Vec3{v[1].Sub(v[0]), v[2].Sub(v[1]), v[0].Sub(v[2])}

	face := e[0].Cross(e[1])
	if face.LenSqr() < 1e-12 {
		return manifoldPoint{}, false
	}

	var (
		score = float32(math.MaxFloat32)
		depth float32
		n     mgl32.Vec3
	)
	test := func(axis mgl32.Vec3, weight float32) bool {
		l2 := axis.LenSqr()
		if l2 < 1e-8 {
			return true
		}
		axis = axis.Mul(1 / sqrt(l2))

		d0, d1, d2 := v[0].Dot(axis), v[1].Dot(axis), v[2].Dot(axis)
		tmin, tmax := min(d0, d1, d2), max(d0, d1, d2)
		r := abs(box.axes[0].Dot(axis))*box.half[0] +
			abs(box.axes[1].Dot(axis))*box.half[1] +
			abs(box.axes[2].Dot(axis))*box.half[2]
		if tmin > r || tmax < -r {
			return false
		}

		up, down := tmax+r, r-tmin
		d, dir := up, axis
		if down < up {
			d, dir = down, axis.Mul(-1)
		}
		if d*weight < score {
			score, depth, n = d*weight, d, dir
		}
		return true
	}

	if !test(face, 1) {
		return manifoldPoint{}, false
	}
	for i := 0; i < 3; i++ {
		if !test(box.axes[i], 1) {
			return manifoldPoint{}, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(box.axes[i].Cross(e[j]), 1.05) {
				return manifoldPoint{}, false
			}
		}
	}

	support := max(v[0].Dot(n), v[1].Dot(n), v[2].Dot(n))
	var (
		sum   mgl32.Vec3
		count int
	)
	for _, k := range boxCorners(&proxy{axes: box.axes, half: box.half}) {
		if k.Dot(n) < support+0.01 {
			sum = sum.Add(k)
			count++
		}
	}
	point := c
	if count > 0 {
		point = c.Add(sum.Mul(1 / float32(count)))
	}
	return manifoldPoint{normal: n, point: point, depth: depth}, true
}

func closestOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	l2 := ab.LenSqr()
	if l2 < 1e-12 {
		return a
	}
	t := mgl32.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mul(t))
}

func closestSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	const eps = 1e-9
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e, f := d1.Dot(d1), d2.Dot(d2), d2.Dot(r)

	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = mgl32.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = mgl32.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			if denom := a*e - b*b; denom != 0 {
				s = mgl32.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl32.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl32.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func closestOnBox(p mgl32.Vec3, box *proxy) mgl32.Vec3 {
	d := p.Sub(box.center)
	q := box.center
	for i := 0; i < 3; i++ {
		q = q.Add(box.axes[i].Mul(mgl32.Clamp(d.Dot(box.axes[i]), -box.half[i], box.half[i])))
	}
	return q
}

// segmentNearBox alternates projections between the segment and the box,
// which converges to the closest segment point for convex volumes.
func segmentNearBox(p0, p1 mgl32.Vec3, box *proxy) mgl32.Vec3 {
	q := p0.Add(p1).Mul(0.5)
	for i := 0; i < 6; i++ {
		q = closestOnSegment(closestOnBox(q, box), p0, p1)
	}
	return q
}

func segmentNearTriangle(p0, p1 mgl32.Vec3, t [3]mgl32.Vec3) mgl32.Vec3 {
	q := p0.Add(p1).Mul(0.5)
	for i := 0; i < 6; i++ {
		q = closestOnSegment(closestOnTriangle(q, t[0], t[1], t[2]), p0, p1)
	}
	return q
}

func closestOnTriangle(p, a, b, c mgl32.Vec3) mgl32.Vec3 {
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	return a.Add(ab.Mul(vb * denom)).Add(ac.Mul(vc * denom))
}

func triangleNormal(t [3]mgl32.Vec3) mgl32.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if n.LenSqr() < 1e-12 {
		return worldUp
	}
	return n.Normalize()
}

func triangleOverlapsAABB(t [3]mgl32.Vec3, lo, hi mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if min(t[0][i], t[1][i], t[2][i]) > hi[i] || max(t[0][i], t[1][i], t[2][i]) < lo[i] {
			return false
		}
	}
	return true
}

func aabbOverlap(aMin, aMax, bMin, bMax mgl32.Vec3) bool {
	return aMin[0] <= bMax[0] && aMax[0] >= bMin[0] &&
		aMin[1] <= bMax[1] && aMax[1] >= bMin[1] &&
		aMin[2] <= bMax[2] && aMax[2] >= bMin[2]
}

func sqrt(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
