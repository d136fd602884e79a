package perspective

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Action is a movement input understood by FreeController.
type Action uint8

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	Sprint
)

// Input is polled by controllers. Device polling happens elsewhere.
type Input interface {
	Pressed(a Action) bool
	MouseDelta() (dx, dy float32)
}

// FreeController is a fly camera with smoothed movement and mouse look.
type FreeController struct {
	Input       Input
	Speed       float32
	SprintBoost float32
	Sensitivity float32
	Smoothing   float32
	PitchLimit  float32

	yaw, pitch float32
	target     mgl32.Vec3
	ready      bool
}

// NewFreeController returns a controller with default tuning.
func NewFreeController(in Input) *FreeController {
	return &FreeController{
		Input:       in,
		Speed:       10,
		SprintBoost: 3,
		Sensitivity: 0.2,
		Smoothing:   12,
		PitchLimit:  88,
	}
}

// Target returns the position the camera is moving towards.
func (c *FreeController) Target() mgl32.Vec3 {
	return c.target
}

// Control implements Controller.
func (c *FreeController) Control(p *Perspective, dt float64) {
	if !c.ready {
		c.target = p.Position
		d := p.Direction
		c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(d[2]), float64(d[0]))))
		c.pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(d[1], -1, 1)))))
		c.ready = true
	}
	if c.Input == nil {
		return
	}

	dx, dy := c.Input.MouseDelta()
	c.yaw += dx * c.Sensitivity
	c.pitch = mgl32.Clamp(c.pitch-dy*c.Sensitivity, -c.PitchLimit, c.PitchLimit)

	yaw, pitch := float64(mgl32.DegToRad(c.yaw)), float64(mgl32.DegToRad(c.pitch))
	p.Direction = mgl32.Vec3{
		float32(math.Cos(pitch) * math.Cos(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Sin(yaw)),
	}.Normalize()

	right := p.Direction.Cross(p.Up).Normalize()
	var move mgl32.Vec3
	if c.Input.Pressed(MoveForward) {
		move = move.Add(p.Direction)
	}
	if c.Input.Pressed(MoveBackward) {
		move = move.Sub(p.Direction)
	}
	if c.Input.Pressed(MoveRight) {
		move = move.Add(right)
	}
	if c.Input.Pressed(MoveLeft) {
		move = move.Sub(right)
	}
	if c.Input.Pressed(MoveUp) {
		move = move.Add(p.Up)
	}
	if c.Input.Pressed(MoveDown) {
		move = move.Sub(p.Up)
	}

	if move.LenSqr() > 0 {
		speed := c.Speed
		if c.Input.Pressed(Sprint) {
			speed *= c.SprintBoost
		}
		c.target = c.target.Add(move.Normalize().Mul(speed * float32(dt)))
	}

	blend := float32(1 - math.Exp(-float64(c.Smoothing)*dt))
	p.Position = p.Position.Add(c.target.Sub(p.Position).Mul(blend))
}
