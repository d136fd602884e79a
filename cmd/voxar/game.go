package main

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	debugui_ebiten "github.com/plus3/voxar/debugui/ebiten"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/perspective"
	"github.com/plus3/voxar/space"
)

const (
	pickDistance = 100
	clickDamage  = 0.34
)

var palette = []color.RGBA{
	{255, 179, 186, 255},
	{179, 229, 252, 255},
	{255, 223, 186, 255},
	{186, 255, 201, 255},
	{255, 200, 221, 255},
	{186, 225, 255, 255},
	{255, 255, 186, 255},
	{217, 186, 255, 255},
}

type Game struct {
	space        *space.Space
	input        *input
	imguiBackend *debugui_ebiten.ImguiBackend
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.input.poll()
	if g.input.Tapped(ebiten.KeyF1) {
		g.imguiBackend.Overlay.Toggle()
	}
	if g.input.Tapped(ebiten.KeyF3) {
		w := g.space.Physics()
		w.SetDebugMode(!w.DebugMode())
	}
	g.handleActions()

	if err := g.space.Tick(1.0 / 60.0); err != nil {
		return err
	}
	g.imguiBackend.Frame(g.space)
	return nil
}

func (g *Game) handleActions() {
	cmd := g.space.Entities().Commands()
	p := g.space.Perspective()

	if x, y, ok := g.input.Clicked(); ok {
		origin, dir := p.PickRay(float32(x), float32(y))
		if hit, ok := g.space.Physics().Raycast(origin, origin.Add(dir.Mul(pickDistance))); ok {
			if e, ok := g.space.Entities().LookupBody(hit.Body); ok {
				cmd.Hurt(e.ID(), clickDamage)
				g.imguiBackend.Overlay.Selection.ID = e.ID()
			}
		}
	}
	if g.input.Tapped(ebiten.KeyE) {
		if e, _, ok := g.space.Pick(pickDistance); ok {
			cmd.Kill(e.ID())
		}
	}

	ahead := p.Position.Add(p.Direction.Mul(4))
	if g.input.Tapped(ebiten.KeyN) {
		cmd.SpawnRigidbody(crateModel, crateBody, entity.WithPosition(ahead))
	}
	if g.input.Tapped(ebiten.KeyB) {
		cmd.SpawnRigidbody(ballModel, ballBody, entity.WithPosition(ahead), entity.WithBehavior(throw(p.Direction.Mul(12))))
	}
}

// throw launches a body along v as soon as it enters the world.
func throw(v mgl32.Vec3) entity.Viable {
	return entity.Hooks{
		OnSpawn: func(e *entity.Entity, cmd *entity.Commands) {
			cmd.Defer(func(*entity.Registry) {
				if rb := e.Rigidbody(); rb != nil && e.Alive() {
					rb.Body().ApplyCentralImpulse(v.Mul(rb.Mass()))
				}
			})
		},
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{245, 245, 240, 255})

	p := g.space.Perspective()
	for _, group := range g.space.BakedBatch().Groups() {
		clr := palette[uint64(group.Handle)%uint64(len(palette))]
		for _, item := range group.Items {
			drawModel(screen, p, item.World, group.Model.Triangles, clr)
		}
	}

	g.space.DebugDraw(&lineDrawer{screen: screen, p: p})

	w, h := p.Viewport()
	vector.StrokeLine(screen, w/2-6, h/2, w/2+6, h/2, 1, color.RGBA{40, 40, 40, 255}, false)
	vector.StrokeLine(screen, w/2, h/2-6, w/2, h/2+6, 1, color.RGBA{40, 40, 40, 255}, false)

	g.imguiBackend.DrawOverlay(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imguiBackend.Layout(outsideWidth, outsideHeight)
	g.space.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func drawModel(screen *ebiten.Image, p *perspective.Perspective, world mgl32.Mat4, tris [][3]mgl32.Vec3, clr color.RGBA) {
	dark := color.RGBA{clr.R / 2, clr.G / 2, clr.B / 2, 255}
	for _, tri := range tris {
		var pts [3]mgl32.Vec3
		for i, v := range tri {
			pts[i] = mgl32.TransformCoordinate(v, world)
		}
		for i := 0; i < 3; i++ {
			strokeWorld(screen, p, pts[i], pts[(i+1)%3], dark)
		}
	}
}

func strokeWorld(screen *ebiten.Image, p *perspective.Perspective, from, to mgl32.Vec3, clr color.Color) {
	x0, y0, ok0 := p.Project(from)
	x1, y1, ok1 := p.Project(to)
	if !ok0 || !ok1 {
		return
	}
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, clr, true)
}

// lineDrawer renders physics debug lines onto the screen.
type lineDrawer struct {
	screen *ebiten.Image
	p      *perspective.Perspective
}

func (d *lineDrawer) DrawLine(from, to, c mgl32.Vec3) {
	clr := color.RGBA{uint8(c[0] * 255), uint8(c[1] * 255), uint8(c[2] * 255), 255}
	strokeWorld(d.screen, d.p, from, to, clr)
}
