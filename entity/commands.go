package entity

import (
	"github.com/plus3/voxar/physics"
	"go.uber.org/zap"
)

// Commands buffers changes requested while the registry cannot be mutated,
// from lifecycle hooks or from contact callbacks during a physics step.
//
// Edits (Hurt, Kill, Teleport) are applied at the start of the next tick,
// before the life pass. Spawns and deferred functions run after that tick's
// sweep.
type Commands struct {
	hurts     []hurtCommand
	kills     []ID
	teleports []teleportCommand
	spawns    []spawnCommand
	defers    []func(r *Registry)
}

type hurtCommand struct {
	entity ID
	amount float32
}

type teleportCommand struct {
	entity    ID
	transform physics.Transform
}

type spawnCommand struct {
	path      string
	rigidbody *RigidbodyInfo
	opts      []SpawnOption
}

// Hurt queues a health decrease.
func (c *Commands) Hurt(id ID, amount float32) {
	c.hurts = append(c.hurts, hurtCommand{entity: id, amount: amount})
}

// Kill queues setting the health to zero.
func (c *Commands) Kill(id ID) {
	c.kills = append(c.kills, id)
}

// Teleport queues a transform change.
func (c *Commands) Teleport(id ID, t physics.Transform) {
	c.teleports = append(c.teleports, teleportCommand{entity: id, transform: t})
}

// Spawn queues a plain entity spawn.
func (c *Commands) Spawn(path string, opts ...SpawnOption) {
	c.spawns = append(c.spawns, spawnCommand{path: path, opts: opts})
}

// SpawnRigidbody queues a rigidbody entity spawn.
func (c *Commands) SpawnRigidbody(path string, info RigidbodyInfo, opts ...SpawnOption) {
	c.spawns = append(c.spawns, spawnCommand{path: path, rigidbody: &info, opts: opts})
}

// Defer queues fn to run with the registry unlocked after the next sweep.
func (c *Commands) Defer(fn func(r *Registry)) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.hurts) + len(c.kills) + len(c.teleports) + len(c.spawns) + len(c.defers)
}

// flushEdits applies health and transform edits. Edits naming entities that
// no longer exist are dropped.
func (c *Commands) flushEdits(r *Registry) {
	for _, id := range c.kills {
		if e, ok := r.Lookup(id); ok {
			e.health = 0
		}
	}
	for _, cmd := range c.hurts {
		if e, ok := r.Lookup(cmd.entity); ok {
			e.Hurt(cmd.amount)
		}
	}
	for _, cmd := range c.teleports {
		if e, ok := r.Lookup(cmd.entity); ok && !e.Marked() {
			e.SetTransform(cmd.transform)
		}
	}

	c.kills = c.kills[:0]
	c.hurts = c.hurts[:0]
	c.teleports = c.teleports[:0]
}

// flushSpawns runs queued spawns and deferred functions. Anything they queue
// waits for the next tick.
func (c *Commands) flushSpawns(r *Registry) {
	spawns, defers := c.spawns, c.defers
	c.spawns, c.defers = nil, nil

	for _, cmd := range spawns {
		var err error
		if cmd.rigidbody != nil {
			_, err = r.SpawnRigidbody(cmd.path, *cmd.rigidbody, cmd.opts...)
		} else {
			_, err = r.Spawn(cmd.path, cmd.opts...)
		}
		if err != nil {
			r.log.Error("queued spawn failed", zap.String("model", cmd.path), zap.Error(err))
		}
	}
	for _, fn := range defers {
		fn(r)
	}
}

func (c *Commands) reset() {
	*c = Commands{}
}
