package render_test

import (
	"cmp"
	"iter"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/perspective"
	"github.com/plus3/voxar/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	crate  = asset.NewBoxModel("crate.obj", mgl32.Vec3{1, 1, 1})
	barrel = asset.NewBoxModel("barrel.obj", mgl32.Vec3{1, 2, 1})
)

type ball struct {
	model  *asset.Model
	at     mgl32.Vec3
	radius float32
}

func (b *ball) RenderModel() *asset.Model { return b.model }

func (b *ball) WorldMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(b.at[0], b.at[1], b.at[2])
}

func (b *ball) BoundingSphere() (mgl32.Vec3, float32) { return b.at, b.radius }

type prop struct {
	model *asset.Model
	world mgl32.Mat4
}

func (p *prop) RenderModel() *asset.Model { return p.model }

func (p *prop) WorldMatrix() mgl32.Mat4 { return p.world }

func bounded(items ...*ball) iter.Seq[render.Bounded] {
	return func(yield func(render.Bounded) bool) {
		for _, b := range items {
			if !yield(b) {
				return
			}
		}
	}
}

func generic(items ...*prop) iter.Seq[render.Renderable] {
	return func(yield func(render.Renderable) bool) {
		for _, p := range items {
			if !yield(p) {
				return
			}
		}
	}
}

func camera() *perspective.Perspective {
	return perspective.New(perspective.WithPosition(mgl32.Vec3{}), perspective.WithClip(0.1, 100))
}

func sources(b *render.Batch) []render.Renderable {
	var out []render.Renderable
	for _, it := range b.Items() {
		out = append(out, it.Source)
	}
	return out
}

func TestBakeSpheres(t *testing.T) {
	cam := camera()
	ahead := &ball{model: crate, at: mgl32.Vec3{10, 0, 0}, radius: 1}
	behind := &ball{model: crate, at: mgl32.Vec3{-10, 0, 0}, radius: 1}
	straddling := &ball{model: crate, at: mgl32.Vec3{100.5, 0, 0}, radius: 1}
	beyond := &ball{model: crate, at: mgl32.Vec3{150, 0, 0}, radius: 1}
	swept := &ball{at: mgl32.Vec3{10, 0, 0}, radius: 1}

	bk := render.NewBaker()
	batch := bk.Bake(cam.Frustum(), bounded(ahead, behind, straddling, beyond, swept), nil)

	assert.ElementsMatch(t, []render.Renderable{ahead, straddling}, sources(batch))
	stats := bk.Stats()
	assert.Equal(t, 4, stats.Candidates)
	assert.Equal(t, 2, stats.Culled)
	assert.Equal(t, 2, stats.Baked)
}

func TestBakeIsConservative(t *testing.T) {
	cam := camera()
	f := cam.Frustum()

	// spheres fully inside are always kept, fully outside never
	for x := float32(1); x < 90; x += 7 {
		for _, y := range []float32{-3, 0, 3} {
			in := &ball{model: crate, at: mgl32.Vec3{x + 5, y, 0}, radius: 0.5}
			out := &ball{model: crate, at: mgl32.Vec3{-x, y, 0}, radius: 0.5}
			batch := render.NewBaker().Bake(f, bounded(in, out), nil)
			require.Equal(t, []render.Renderable{in}, sources(batch), "x=%v y=%v", x, y)
		}
	}
}

func TestBakeGenericBounds(t *testing.T) {
	cam := camera()
	ahead := &prop{model: crate, world: mgl32.Translate3D(10, 0, 0)}
	behind := &prop{model: crate, world: mgl32.Translate3D(-10, 0, 0)}

	// a long plank behind the camera reaches into view only while it lies
	// along the view axis
	plank := asset.NewBoxModel("plank.obj", mgl32.Vec3{30, 0.2, 0.2})
	straight := &prop{model: plank, world: mgl32.Translate3D(-10, 0, 0)}
	turned := &prop{
		model: plank,
		world: mgl32.Translate3D(-10, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-90))),
	}

	lo, hi := render.WorldBounds(turned)
	assert.InDelta(t, -10.1, lo.X(), 1e-3)
	assert.InDelta(t, -9.9, hi.X(), 1e-3)
	assert.InDelta(t, -15, lo.Z(), 1e-3)
	assert.InDelta(t, 15, hi.Z(), 1e-3)

	batch := render.NewBaker().Bake(cam.Frustum(), nil, generic(ahead, behind, straight, turned))
	assert.ElementsMatch(t, []render.Renderable{ahead, straight}, sources(batch))
}

func TestBatchGroups(t *testing.T) {
	cam := camera()
	var balls []*ball
	for i := 0; i < 6; i++ {
		m := crate
		if i%2 == 1 {
			m = barrel
		}
		balls = append(balls, &ball{model: m, at: mgl32.Vec3{float32(5 + i), 0, 0}, radius: 1})
	}
	props := []*prop{{model: crate, world: mgl32.Translate3D(20, 0, 0)}}

	bk := render.NewBaker()
	batch := bk.Bake(cam.Frustum(), bounded(balls...), generic(props...))
	require.Equal(t, 7, batch.Len())
	assert.Equal(t, uint64(1), batch.Frame())

	groups := batch.Groups()
	require.Len(t, groups, 2)
	assert.True(t, slices.IsSortedFunc(groups, func(a, b render.Group) int {
		return cmp.Compare(a.Handle, b.Handle)
	}))
	counts := map[asset.Handle]int{}
	for _, g := range groups {
		for _, it := range g.Items {
			assert.Equal(t, g.Handle, it.Model.Handle())
		}
		counts[g.Handle] = len(g.Items)
	}
	assert.Equal(t, 4, counts[crate.Handle()])
	assert.Equal(t, 3, counts[barrel.Handle()])
	assert.Equal(t, 2, bk.Stats().Groups)
}

func TestBatchIsRebuiltEachFrame(t *testing.T) {
	cam := camera()
	b := &ball{model: crate, at: mgl32.Vec3{10, 0, 0}, radius: 1}

	bk := render.NewBaker()
	batch := bk.Bake(cam.Frustum(), bounded(b), nil)
	require.Equal(t, 1, batch.Len())

	b.at = mgl32.Vec3{-10, 0, 0}
	batch = bk.Bake(cam.Frustum(), bounded(b), nil)
	assert.Zero(t, batch.Len())
	assert.Equal(t, uint64(2), batch.Frame())
	assert.Same(t, batch, bk.Batch())

	bk.Release()
	assert.True(t, batch.Released())
	assert.Nil(t, batch.Items())

	b.at = mgl32.Vec3{10, 0, 0}
	batch = bk.Bake(cam.Frustum(), bounded(b), nil)
	assert.False(t, batch.Released())
	assert.Equal(t, 1, batch.Len())
}
