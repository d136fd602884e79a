package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	restitutionThreshold = 1.0
	penetrationSlop      = 0.01
	correctionPercent    = 0.6
)

type contact struct {
	a, b *Body
	manifoldPoint

	rA, rB   mgl32.Vec3
	t1, t2   mgl32.Vec3
	massN    float32
	massT1   float32
	massT2   float32
	bias     float32
	friction float32

	accN, accT1, accT2 float32
}

func effectiveMass(b *Body, r, dir mgl32.Vec3) float32 {
	if b.invMass == 0 {
		return 0
	}
	rn := r.Cross(dir)
	return b.invMass + b.invInertiaW.Mul3x1(rn).Cross(r).Dot(dir)
}

func inverse(k float32) float32 {
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func tangents(n mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	var t mgl32.Vec3
	if abs(n[0]) > 0.57 {
		t = mgl32.Vec3{n[1], -n[0], 0}.Normalize()
	} else {
		t = mgl32.Vec3{0, n[2], -n[1]}.Normalize()
	}
	return t, n.Cross(t)
}

func (c *contact) prepare() {
	c.rA = c.point.Sub(c.a.pose.Position)
	c.rB = c.point.Sub(c.b.pose.Position)
	c.t1, c.t2 = tangents(c.normal)

	c.massN = inverse(effectiveMass(c.a, c.rA, c.normal) + effectiveMass(c.b, c.rB, c.normal))
	c.massT1 = inverse(effectiveMass(c.a, c.rA, c.t1) + effectiveMass(c.b, c.rB, c.t1))
	c.massT2 = inverse(effectiveMass(c.a, c.rA, c.t2) + effectiveMass(c.b, c.rB, c.t2))
	c.friction = float32(math.Sqrt(float64(c.a.friction * c.b.friction)))

	vn := c.relativeVelocity().Dot(c.normal)
	c.bias = 0
	if vn < -restitutionThreshold {
		c.bias = -max(c.a.restitution, c.b.restitution) * vn
	}
	c.accN, c.accT1, c.accT2 = 0, 0, 0
}

func (c *contact) relativeVelocity() mgl32.Vec3 {
	return c.a.velocityAt(c.point).Sub(c.b.velocityAt(c.point))
}

func (c *contact) apply(p mgl32.Vec3) {
	if c.a.invMass > 0 {
		c.a.linVel = c.a.linVel.Add(p.Mul(c.a.invMass))
		c.a.angVel = c.a.angVel.Add(c.a.invInertiaW.Mul3x1(c.rA.Cross(p)))
	}
	if c.b.invMass > 0 {
		c.b.linVel = c.b.linVel.Sub(p.Mul(c.b.invMass))
		c.b.angVel = c.b.angVel.Sub(c.b.invInertiaW.Mul3x1(c.rB.Cross(p)))
	}
}

func (c *contact) solve() {
	vn := c.relativeVelocity().Dot(c.normal)
	lambda := c.massN * (c.bias - vn)
	acc := max(c.accN+lambda, 0)
	lambda = acc - c.accN
	c.accN = acc
	c.apply(c.normal.Mul(lambda))

	limit := c.friction * c.accN
	c.accT1 = c.solveTangent(c.t1, c.massT1, c.accT1, limit)
	c.accT2 = c.solveTangent(c.t2, c.massT2, c.accT2, limit)
}

func (c *contact) solveTangent(t mgl32.Vec3, mass, acc, limit float32) float32 {
	vt := c.relativeVelocity().Dot(t)
	lambda := -mass * vt
	next := mgl32.Clamp(acc+lambda, -limit, limit)
	c.apply(t.Mul(next - acc))
	return next
}

func (w *World) solve() {
	for i := range w.contacts {
		w.contacts[i].prepare()
	}
	for it := 0; it < w.iterations; it++ {
		for i := range w.contacts {
			w.contacts[i].solve()
		}
	}
}

// correct pushes penetrating bodies apart along the contact normal.
func (w *World) correct() {
	for i := range w.contacts {
		c := &w.contacts[i]
		k := c.a.invMass + c.b.invMass
		if k == 0 {
			continue
		}
		push := max(c.depth-penetrationSlop, 0) * correctionPercent / k
		if push == 0 {
			continue
		}
		if c.a.invMass > 0 {
			c.a.pose.Position = c.a.pose.Position.Add(c.normal.Mul(push * c.a.invMass))
		}
		if c.b.invMass > 0 {
			c.b.pose.Position = c.b.pose.Position.Sub(c.normal.Mul(push * c.b.invMass))
		}
	}
}

func integrate(b *Body, dt float32) {
	b.pose.Position = b.pose.Position.Add(b.linVel.Mul(dt))
	if b.angVel.LenSqr() > 0 {
		spin := mgl32.Quat{W: 0, V: b.angVel.Mul(0.5 * dt)}
		b.pose.Rotation = b.pose.Rotation.Add(spin.Mul(b.pose.Rotation)).Normalize()
	}
}

func damping(d, dt float32) float32 {
	d = mgl32.Clamp(d, 0, 1)
	return float32(math.Pow(float64(1-d), float64(dt)))
}

func updateSleep(b *Body, dt float32) {
	if b.activation != Active {
		return
	}
	if b.linVel.Len() < sleepLinear && b.angVel.Len() < sleepAngular {
		b.idleTime += dt
		if b.idleTime > sleepTime {
			b.activation = Sleeping
			b.linVel = mgl32.Vec3{}
			b.angVel = mgl32.Vec3{}
		}
		return
	}
	b.idleTime = 0
}
