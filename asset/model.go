// Package asset declares, loads and resolves the models a space is built from.
package asset

import (
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle identifies a model by the hash of its path.
type Handle uint64

// HandleOf returns the handle for a model path.
func HandleOf(path string) Handle {
	return Handle(xxhash.Sum64String(path))
}

// Triangle is a face in model-local space.
type Triangle = [3]mgl32.Vec3

// Model is loaded geometry and its local bounds.
type Model struct {
	Name      string
	Path      string
	Triangles []Triangle

	handle Handle
	min    mgl32.Vec3
	max    mgl32.Vec3
}

// NewModel builds a model from triangles and computes its bounds.
func NewModel(path string, triangles []Triangle) *Model {
	m := &Model{
		Name:      nameOf(path),
		Path:      path,
		Triangles: triangles,
		handle:    HandleOf(path),
	}
	m.computeBounds()
	return m
}

// NewBoxModel builds an axis-aligned box model centered on the origin.
func NewBoxModel(path string, dims mgl32.Vec3) *Model {
	h := dims.Mul(0.5)
	v := [8]mgl32.Vec3{
		{-h[0], -h[1], -h[2]}, {h[0], -h[1], -h[2]}, {h[0], h[1], -h[2]}, {-h[0], h[1], -h[2]},
		{-h[0], -h[1], h[2]}, {h[0], -h[1], h[2]}, {h[0], h[1], h[2]}, {-h[0], h[1], h[2]},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // -z
		{4, 5, 6}, {4, 6, 7}, // +z
		{0, 1, 5}, {0, 5, 4}, // -y
		{3, 7, 6}, {3, 6, 2}, // +y
		{0, 4, 7}, {0, 7, 3}, // -x
		{1, 2, 6}, {1, 6, 5}, // +x
	}
	tris := make([]Triangle, 0, len(faces))
	for _, f := range faces {
		tris = append(tris, Triangle{v[f[0]], v[f[1]], v[f[2]]})
	}
	return NewModel(path, tris)
}

func (m *Model) computeBounds() {
	if len(m.Triangles) == 0 {
		m.min, m.max = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	m.min = m.Triangles[0][0]
	m.max = m.Triangles[0][0]
	for _, tri := range m.Triangles {
		for _, v := range tri {
			for i := 0; i < 3; i++ {
				m.min[i] = min(m.min[i], v[i])
				m.max[i] = max(m.max[i], v[i])
			}
		}
	}
}

// Handle returns the model's handle.
func (m *Model) Handle() Handle {
	return m.handle
}

// Bounds returns the local axis-aligned bounds.
func (m *Model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return m.min, m.max
}

// Dimensions returns the size of the local bounds.
func (m *Model) Dimensions() mgl32.Vec3 {
	return m.max.Sub(m.min)
}

// Center returns the center of the local bounds.
func (m *Model) Center() mgl32.Vec3 {
	return m.min.Add(m.max).Mul(0.5)
}

func nameOf(path string) string {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	return name
}
