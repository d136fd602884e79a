// Package render culls renderables against the camera frustum and bakes the
// survivors into a per-frame batch grouped by model.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
)

// Renderable is anything drawn with a model and a world matrix.
type Renderable interface {
	RenderModel() *asset.Model
	WorldMatrix() mgl32.Mat4
}

// Bounded renderables carry a precomputed world space bounding sphere.
type Bounded interface {
	Renderable
	BoundingSphere() (center mgl32.Vec3, radius float32)
}

// WorldBounds returns the world space axis-aligned box around r's model
// bounds. All eight corners are transformed, so rotated models stay
// enclosed.
func WorldBounds(r Renderable) (mgl32.Vec3, mgl32.Vec3) {
	model := r.RenderModel()
	lo, hi := model.Bounds()
	m := r.WorldMatrix()

	var wlo, whi mgl32.Vec3
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		w := mgl32.TransformCoordinate(c, m)
		if i == 0 {
			wlo, whi = w, w
			continue
		}
		for k := 0; k < 3; k++ {
			wlo[k] = min(wlo[k], w[k])
			whi[k] = max(whi[k], w[k])
		}
	}
	return wlo, whi
}
