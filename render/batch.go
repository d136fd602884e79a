package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
)

// Item is one baked draw.
type Item struct {
	Model  *asset.Model
	World  mgl32.Mat4
	Source Renderable
}

// Group is a run of items sharing a model.
type Group struct {
	Handle asset.Handle
	Model  *asset.Model
	Items  []Item
}

// Batch is the set of draws for one frame. It is rebuilt from scratch on
// every bake and owned by the Baker that produced it.
type Batch struct {
	frame    uint64
	items    []Item
	groups   []Group
	released bool
}

// Items returns the baked draws sorted by model handle.
func (b *Batch) Items() []Item { return b.items }

// Groups returns the draws grouped by model, in handle order.
func (b *Batch) Groups() []Group { return b.groups }

func (b *Batch) Len() int { return len(b.items) }

// Frame returns the bake counter the batch was built at.
func (b *Batch) Frame() uint64 { return b.frame }

// Released reports whether Release was called since the last bake.
func (b *Batch) Released() bool { return b.released }

// Release drops every item and the backing storage.
func (b *Batch) Release() {
	clear(b.items)
	b.items = nil
	b.groups = nil
	b.released = true
}

func (b *Batch) reset(frame uint64) {
	clear(b.items)
	b.items = b.items[:0]
	b.groups = b.groups[:0]
	b.frame = frame
	b.released = false
}

func (b *Batch) group() {
	for start := 0; start < len(b.items); {
		m := b.items[start].Model
		end := start + 1
		for end < len(b.items) && b.items[end].Model.Handle() == m.Handle() {
			end++
		}
		b.groups = append(b.groups, Group{
			Handle: m.Handle(),
			Model:  m,
			Items:  b.items[start:end:end],
		})
		start = end
	}
}
