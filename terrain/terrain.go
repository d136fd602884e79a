// Package terrain builds static heightfield geometry as a grid of chunks.
// Each chunk is a renderable model and a static mesh body.
package terrain

import (
	"fmt"
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/render"
	"go.uber.org/zap"
)

// HeightFunc returns the ground height at a world position.
type HeightFunc func(x, z float64) float64

// Flat is a constant height.
func Flat(h float64) HeightFunc {
	return func(x, z float64) float64 { return h }
}

// Waves is a pair of crossed sine waves.
func Waves(amplitude, wavelength float64) HeightFunc {
	k := 2 * math.Pi / wavelength
	return func(x, z float64) float64 {
		return amplitude * (math.Sin(x*k) + math.Cos(z*k)) / 2
	}
}

// Registrar stores generated models so they resolve like loaded ones.
type Registrar interface {
	Add(m *asset.Model)
	Remove(path string)
}

// Chunk is one square of terrain.
type Chunk struct {
	X, Z   int
	origin mgl32.Vec3
	model  *asset.Model
	body   *physics.Body
}

func (c *Chunk) RenderModel() *asset.Model { return c.model }

func (c *Chunk) WorldMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(c.origin[0], c.origin[1], c.origin[2])
}

// Origin returns the world position of the chunk's low corner.
func (c *Chunk) Origin() mgl32.Vec3 { return c.origin }

// Body returns the chunk's static body, nil after Release.
func (c *Chunk) Body() *physics.Body { return c.body }

// Terrain is a Size x Size grid of chunks centered on Center.
type Terrain struct {
	Size     int
	Cells    int
	CellSize float32
	Center   mgl32.Vec3
	Height   HeightFunc
	Name     string

	log      *zap.Logger
	world    *physics.World
	models   Registrar
	chunks   []*Chunk
	released bool
}

// Option configures a Terrain.
type Option func(*Terrain)

// WithGrid sets the chunk count per side, the cells per chunk side and the
// cell edge length.
func WithGrid(size, cells int, cellSize float32) Option {
	return func(t *Terrain) {
		t.Size = max(size, 1)
		t.Cells = max(cells, 1)
		if cellSize > 0 {
			t.CellSize = cellSize
		}
	}
}

func WithHeight(h HeightFunc) Option {
	return func(t *Terrain) { t.Height = h }
}

func WithCenter(c mgl32.Vec3) Option {
	return func(t *Terrain) { t.Center = c }
}

// WithName prefixes generated model paths. Spaces sharing a catalog need
// distinct names.
func WithName(name string) Option {
	return func(t *Terrain) { t.Name = name }
}

func WithLogger(log *zap.Logger) Option {
	return func(t *Terrain) {
		if log != nil {
			t.log = log
		}
	}
}

// New generates every chunk, registers its model with models and adds its
// body to world.
func New(world *physics.World, models Registrar, opts ...Option) *Terrain {
	t := &Terrain{
		Size:     4,
		Cells:    16,
		CellSize: 1,
		Height:   Flat(0),
		Name:     "terrain",
		log:      zap.NewNop(),
		world:    world,
		models:   models,
	}
	for _, opt := range opts {
		opt(t)
	}

	extent := t.chunkExtent() * float32(t.Size)
	low := t.Center.Sub(mgl32.Vec3{extent / 2, 0, extent / 2})
	for z := 0; z < t.Size; z++ {
		for x := 0; x < t.Size; x++ {
			origin := low.Add(mgl32.Vec3{float32(x) * t.chunkExtent(), 0, float32(z) * t.chunkExtent()})
			t.chunks = append(t.chunks, t.build(x, z, origin))
		}
	}

	t.log.Info("terrain generated",
		zap.Int("chunks", len(t.chunks)),
		zap.Float32("extent", extent),
	)
	return t
}

func (t *Terrain) chunkExtent() float32 {
	return float32(t.Cells) * t.CellSize
}

func (t *Terrain) build(cx, cz int, origin mgl32.Vec3) *Chunk {
	n := t.Cells + 1
	verts := make([]mgl32.Vec3, 0, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			lx, lz := float32(i)*t.CellSize, float32(j)*t.CellSize
			h := t.Height(float64(origin[0]+lx), float64(origin[2]+lz))
			verts = append(verts, mgl32.Vec3{lx, float32(h) - origin[1], lz})
		}
	}

	tris := make([]asset.Triangle, 0, t.Cells*t.Cells*2)
	for j := 0; j < t.Cells; j++ {
		for i := 0; i < t.Cells; i++ {
			a := verts[j*n+i]
			b := verts[j*n+i+1]
			c := verts[(j+1)*n+i]
			d := verts[(j+1)*n+i+1]
			tris = append(tris, asset.Triangle{a, c, b}, asset.Triangle{b, c, d})
		}
	}

	model := asset.NewModel(fmt.Sprintf("%s/chunk_%d_%d", t.Name, cx, cz), tris)
	t.models.Add(model)

	shape := physics.NewShape(physics.Mesh, model.Dimensions(), model.Triangles, t.log)
	motion := physics.NewUniqueMotion(physics.NoOwner, physics.At(origin), nil)
	body := physics.NewBody(physics.NoOwner, physics.Static, shape, 0, motion)
	t.world.AddBody(body)

	return &Chunk{X: cx, Z: cz, origin: origin, model: model, body: body}
}

// Chunks returns the generated chunks in row order.
func (t *Terrain) Chunks() []*Chunk { return t.chunks }

// Renderables yields every chunk.
func (t *Terrain) Renderables() iter.Seq[render.Renderable] {
	return func(yield func(render.Renderable) bool) {
		for _, c := range t.chunks {
			if !yield(c) {
				return
			}
		}
	}
}

// HeightAt samples the height function.
func (t *Terrain) HeightAt(x, z float64) float64 {
	return t.Height(x, z)
}

// Released reports whether Release was called.
func (t *Terrain) Released() bool { return t.released }

// Release removes every chunk body from the world and its model from the
// registrar. It is safe to call twice.
func (t *Terrain) Release() {
	if t.released {
		return
	}
	for _, c := range t.chunks {
		if c.body != nil && t.world.Contains(c.body) {
			t.world.RemoveBody(c.body)
		}
		c.body = nil
		t.models.Remove(c.model.Path)
	}
	t.chunks = nil
	t.released = true
	t.log.Debug("terrain released")
}
