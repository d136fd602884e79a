package space_test

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/config"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/space"
)

// ExampleSpace drops a crate onto a static floor and runs the frame
// pipeline until it lands. Every tick runs the camera, physics, entity and
// cull phases in that order.
func ExampleSpace() {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel("crate.obj", mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel("floor.obj", mgl32.Vec3{20, 1, 20}))

	cfg := config.Default()
	cfg.Camera.Position = [3]float32{-10, 3, 0}

	s, err := space.New(space.Context{Models: models, Config: cfg})
	if err != nil {
		panic(err)
	}
	defer s.Close()

	s.Entities().SpawnRigidbody("floor.obj", entity.RigidbodyInfo{
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	}, entity.WithPosition(mgl32.Vec3{0, -0.5, 0}))

	id, _ := s.Entities().SpawnRigidbody("crate.obj", entity.RigidbodyInfo{
		Mass:      1,
		Primitive: physics.Cuboid,
		Type:      physics.Dynamic,
	}, entity.WithPosition(mgl32.Vec3{0, 5, 0}))

	var landed bool
	s.OnContact(func(c space.Contact, cmd *entity.Commands) {
		landed = true
	}, nil)

	for i := 0; i < 600; i++ {
		s.Tick(1.0 / 60.0)
	}

	crate, _ := s.Entities().Lookup(id)
	fmt.Printf("landed=%v height=%.1f\n", landed, crate.Position().Y())
	fmt.Printf("bodies=%d baked=%d\n", s.Physics().Len(), s.BakedBatch().Len())

	// Output:
	// landed=true height=0.5
	// bodies=2 baked=2
}
