package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/voxar/debugui"
	"github.com/plus3/voxar/perspective"
)

var bindings = map[perspective.Action][]ebiten.Key{
	perspective.MoveForward:  {ebiten.KeyW, ebiten.KeyArrowUp},
	perspective.MoveBackward: {ebiten.KeyS, ebiten.KeyArrowDown},
	perspective.MoveLeft:     {ebiten.KeyA, ebiten.KeyArrowLeft},
	perspective.MoveRight:    {ebiten.KeyD, ebiten.KeyArrowRight},
	perspective.MoveUp:       {ebiten.KeySpace},
	perspective.MoveDown:     {ebiten.KeyC},
	perspective.Sprint:       {ebiten.KeyShiftLeft},
}

// input polls ebiten once per update for the camera controller. Mouse look
// is active while the right button is held.
type input struct {
	keys     map[perspective.Action]bool
	lastX    int
	lastY    int
	dx, dy   float32
	dragging bool

	prevLeft bool
	clicked  bool
	prevKeys map[ebiten.Key]bool
	tapped   map[ebiten.Key]bool
}

func newInput() *input {
	return &input{
		keys:     make(map[perspective.Action]bool),
		prevKeys: make(map[ebiten.Key]bool),
		tapped:   make(map[ebiten.Key]bool),
	}
}

// poll must run before the space tick so the controller sees this frame.
func (in *input) poll() {
	keyboard := !debugui.WantCaptureKeyboard()
	for action, keys := range bindings {
		in.keys[action] = false
		if !keyboard {
			continue
		}
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				in.keys[action] = true
				break
			}
		}
	}

	for _, k := range []ebiten.Key{ebiten.KeyF1, ebiten.KeyF3, ebiten.KeyE, ebiten.KeyB, ebiten.KeyN} {
		down := keyboard && ebiten.IsKeyPressed(k)
		in.tapped[k] = down && !in.prevKeys[k]
		in.prevKeys[k] = down
	}

	mouse := !debugui.WantCaptureMouse()
	mx, my := ebiten.CursorPosition()
	look := mouse && ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	in.dx, in.dy = 0, 0
	if look && in.dragging {
		in.dx = float32(mx - in.lastX)
		in.dy = float32(my - in.lastY)
	}
	in.dragging = look
	in.lastX, in.lastY = mx, my

	left := mouse && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	in.clicked = left && !in.prevLeft
	in.prevLeft = left
}

func (in *input) Pressed(a perspective.Action) bool {
	return in.keys[a]
}

func (in *input) MouseDelta() (float32, float32) {
	return in.dx, in.dy
}

// Tapped reports whether k went down this frame.
func (in *input) Tapped(k ebiten.Key) bool {
	return in.tapped[k]
}

// Clicked returns the cursor position when the left button went down this
// frame.
func (in *input) Clicked() (x, y int, ok bool) {
	return in.lastX, in.lastY, in.clicked
}
