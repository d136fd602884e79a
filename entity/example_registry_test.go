package entity_test

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
)

// ExampleRegistry_Tick shows the death row. Entities whose health drops to
// zero run their death hook on the next tick and are removed together with
// their physics bodies.
func ExampleRegistry_Tick() {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel("crate.obj", mgl32.Vec3{1, 1, 1}))
	world := physics.NewWorld()
	registry := entity.NewRegistry(models, world)

	mortal := entity.Hooks{
		OnDeath: func(e *entity.Entity, cmd *entity.Commands) {
			fmt.Printf("%s is gone\n", e.Name())
		},
	}

	crate, _ := registry.SpawnRigidbody("crate.obj", entity.RigidbodyInfo{
		Mass:      1,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
	}, entity.WithBehavior(mortal))
	registry.Spawn("crate.obj", entity.WithName("decor"))

	fmt.Printf("entities=%d bodies=%d\n", registry.Len(), world.Len())

	registry.Commands().Kill(crate)
	registry.Tick()

	fmt.Printf("entities=%d bodies=%d\n", registry.Len(), world.Len())

	// Output:
	// entities=2 bodies=1
	// crate is gone
	// entities=1 bodies=0
}

// ExampleCommands shows how contact handlers queue changes while the
// registry is locked for a physics step.
func ExampleCommands() {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel("mine.obj", mgl32.Vec3{1, 1, 1}))
	registry := entity.NewRegistry(models, physics.NewWorld())

	mine, _ := registry.Spawn("mine.obj")

	registry.Lock()
	registry.Commands().Hurt(mine, 0.4)
	registry.Commands().Spawn("mine.obj", entity.WithName("debris"))
	registry.Unlock()

	registry.Tick()

	e, _ := registry.Lookup(mine)
	fmt.Printf("health=%.1f entities=%d\n", e.Health(), registry.Len())

	// Output:
	// health=0.6 entities=2
}
