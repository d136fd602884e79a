package render

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/plus3/voxar/perspective"
)

// Stats describes the last bake.
type Stats struct {
	Frame      uint64
	Candidates int
	Culled     int
	Baked      int
	Groups     int
	Duration   time.Duration
}

// Baker culls renderables and assembles the frame batch. It only reads
// transforms.
type Baker struct {
	batch Batch
	frame uint64
	stats Stats
}

func NewBaker() *Baker {
	return &Baker{}
}

// Bake resets the batch and fills it with every renderable that is at least
// partly inside the frustum. Bounded items use their bounding sphere, generic
// items the box around their transformed model bounds. Items without a model
// are skipped.
func (bk *Baker) Bake(frustum *perspective.Frustum, bounded iter.Seq[Bounded], generic iter.Seq[Renderable]) *Batch {
	start := time.Now()
	bk.frame++
	bk.batch.reset(bk.frame)
	stats := Stats{Frame: bk.frame}

	if bounded != nil {
		for r := range bounded {
			model := r.RenderModel()
			if model == nil {
				continue
			}
			stats.Candidates++
			center, radius := r.BoundingSphere()
			if !frustum.SphereIn(center, radius) {
				stats.Culled++
				continue
			}
			bk.batch.items = append(bk.batch.items, Item{Model: model, World: r.WorldMatrix(), Source: r})
		}
	}

	if generic != nil {
		for r := range generic {
			model := r.RenderModel()
			if model == nil {
				continue
			}
			stats.Candidates++
			if !frustum.BoundsIn(WorldBounds(r)) {
				stats.Culled++
				continue
			}
			bk.batch.items = append(bk.batch.items, Item{Model: model, World: r.WorldMatrix(), Source: r})
		}
	}

	slices.SortStableFunc(bk.batch.items, func(a, b Item) int {
		return cmp.Compare(a.Model.Handle(), b.Model.Handle())
	})
	bk.batch.group()

	stats.Baked = len(bk.batch.items)
	stats.Groups = len(bk.batch.groups)
	stats.Duration = time.Since(start)
	bk.stats = stats
	return &bk.batch
}

// Batch returns the most recent batch.
func (bk *Baker) Batch() *Batch { return &bk.batch }

func (bk *Baker) Stats() Stats { return bk.stats }

// Release frees the batch storage.
func (bk *Baker) Release() { bk.batch.Release() }
