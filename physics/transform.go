package physics

import "github.com/go-gl/mathgl/mgl32"

// Transform is a rigid world transform.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Identity returns the transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// At returns an unrotated transform at position p.
func At(p mgl32.Vec3) Transform {
	return Transform{Position: p, Rotation: mgl32.QuatIdent()}
}

// Normalized returns t with a unit rotation. The zero quaternion maps to identity.
func (t Transform) Normalized() Transform {
	t.Rotation = t.rotation()
	return t
}

func (t Transform) rotation() mgl32.Quat {
	if t.Rotation == (mgl32.Quat{}) {
		return mgl32.QuatIdent()
	}
	return t.Rotation.Normalize()
}

// Mat4 returns the transform as a column-major matrix.
func (t Transform) Mat4() mgl32.Mat4 {
	p := t.Position
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(t.rotation().Mat4())
}

// Apply maps a local point into world space.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.rotation().Rotate(p).Add(t.Position)
}

// ApplyInverse maps a world point into local space.
func (t Transform) ApplyInverse(p mgl32.Vec3) mgl32.Vec3 {
	return t.rotation().Conjugate().Rotate(p.Sub(t.Position))
}

// Axes returns the local basis vectors in world space.
func (t Transform) Axes() [3]mgl32.Vec3 {
	m := t.rotation().Mat4()
	return [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}
