// Package perspective is the camera a space renders and culls through.
package perspective

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Controller drives a perspective once per tick.
type Controller interface {
	Control(p *Perspective, dt float64)
}

// Perspective is a perspective-projection camera.
type Perspective struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Up        mgl32.Vec3
	FOV       float32
	Near      float32
	Far       float32

	width  float32
	height float32

	view       mgl32.Mat4
	projection mgl32.Mat4
	combined   mgl32.Mat4
	frustum    Frustum
	controller Controller
}

// Option configures a Perspective.
type Option func(*Perspective)

// WithPosition sets the camera position.
func WithPosition(p mgl32.Vec3) Option {
	return func(c *Perspective) { c.Position = p }
}

// WithDirection sets the look direction.
func WithDirection(d mgl32.Vec3) Option {
	return func(c *Perspective) {
		if d.LenSqr() > 0 {
			c.Direction = d.Normalize()
		}
	}
}

// WithFOV sets the vertical field of view in degrees.
func WithFOV(deg float32) Option {
	return func(c *Perspective) { c.FOV = deg }
}

// WithClip sets the near and far clip distances.
func WithClip(near, far float32) Option {
	return func(c *Perspective) {
		c.Near = near
		c.Far = far
	}
}

// WithViewport sets the viewport size in pixels.
func WithViewport(w, h int) Option {
	return func(c *Perspective) {
		c.width = float32(max(w, 1))
		c.height = float32(max(h, 1))
	}
}

// New returns a camera at (0, 2, 0) looking down +X with a 67 degree field
// of view, updated and ready to use.
func New(opts ...Option) *Perspective {
	p := &Perspective{
		Position:  mgl32.Vec3{0, 2, 0},
		Direction: mgl32.Vec3{1, 0, 0},
		Up:        mgl32.Vec3{0, 1, 0},
		FOV:       67,
		Near:      0.1,
		Far:       200,
		width:     1280,
		height:    720,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Update()
	return p
}

// SetController attaches the controller run by Tick. nil detaches it.
func (p *Perspective) SetController(c Controller) {
	p.controller = c
}

// Controller returns the attached controller.
func (p *Perspective) Controller() Controller {
	return p.controller
}

// Tick runs the controller and recomputes the matrices.
func (p *Perspective) Tick(dt float64) {
	if p.controller != nil {
		p.controller.Control(p, dt)
	}
	p.Update()
}

// Update recomputes view, projection, combined matrices and the frustum.
func (p *Perspective) Update() {
	dir := p.Direction
	if dir.LenSqr() == 0 {
		dir = mgl32.Vec3{1, 0, 0}
	}
	dir = dir.Normalize()
	p.view = mgl32.LookAtV(p.Position, p.Position.Add(dir), viewUp(dir, p.Up))
	p.projection = mgl32.Perspective(mgl32.DegToRad(p.FOV), p.width/p.height, p.Near, p.Far)
	p.combined = p.projection.Mul4(p.view)
	p.frustum = NewFrustum(p.combined)
}

// viewUp returns up, or a substitute axis when dir runs along up and the
// view basis would degenerate.
func viewUp(dir, up mgl32.Vec3) mgl32.Vec3 {
	if up.LenSqr() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	up = up.Normalize()
	if dir.Cross(up).LenSqr() > parallelEpsilon {
		return up
	}
	for _, alt := range [2]mgl32.Vec3{{0, 0, -1}, {1, 0, 0}} {
		if dir.Cross(alt).LenSqr() > parallelEpsilon {
			return alt
		}
	}
	return up
}

const parallelEpsilon = 1e-6

// Resize updates the viewport and the projection.
func (p *Perspective) Resize(w, h int) {
	p.width = float32(max(w, 1))
	p.height = float32(max(h, 1))
	p.Update()
}

// SetRenderDistance moves the far plane.
func (p *Perspective) SetRenderDistance(far float32) {
	p.Far = far
	p.Update()
}

// LookAt points the camera at target.
func (p *Perspective) LookAt(target mgl32.Vec3) {
	d := target.Sub(p.Position)
	if d.LenSqr() > 0 {
		p.Direction = d.Normalize()
	}
}

// Viewport returns the viewport size in pixels.
func (p *Perspective) Viewport() (float32, float32) {
	return p.width, p.height
}

// View returns the view matrix.
func (p *Perspective) View() mgl32.Mat4 { return p.view }

// Projection returns the projection matrix.
func (p *Perspective) Projection() mgl32.Mat4 { return p.projection }

// Combined returns projection * view.
func (p *Perspective) Combined() mgl32.Mat4 { return p.combined }

// Frustum returns the frustum from the last Update.
func (p *Perspective) Frustum() *Frustum { return &p.frustum }

// PickRay returns a ray from the near plane through viewport pixel (x, y),
// with y growing downwards.
func (p *Perspective) PickRay(x, y float32) (mgl32.Vec3, mgl32.Vec3) {
	inv := p.combined.Inv()
	nx := 2*x/p.width - 1
	ny := 1 - 2*y/p.height

	near := unproject(inv, mgl32.Vec4{nx, ny, -1, 1})
	far := unproject(inv, mgl32.Vec4{nx, ny, 1, 1})
	return near, far.Sub(near).Normalize()
}

// Project maps a world point to viewport pixels. ok is false behind the camera.
func (p *Perspective) Project(v mgl32.Vec3) (x, y float32, ok bool) {
	clip := p.combined.Mul4x1(v.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return (ndc[0] + 1) / 2 * p.width, (1 - ndc[1]) / 2 * p.height, true
}

func unproject(inv mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	v := inv.Mul4x1(ndc)
	return v.Vec3().Mul(1 / v[3])
}
