package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/config"
	debugui_ebiten "github.com/plus3/voxar/debugui/ebiten"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/logging"
	"github.com/plus3/voxar/perspective"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/space"
	"github.com/plus3/voxar/terrain"
	"go.uber.org/zap"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720

	crateModel = "voxar/crate"
	ballModel  = "voxar/ball"
	floorModel = "voxar/floor"
)

func main() {
	configPath := flag.String("config", "", "Optional space configuration file.")
	modelPath := flag.String("model", "", "Optional OBJ file placed as a static prop.")
	cpuProfile := flag.Bool("profile", false, "Write a CPU profile to the working directory.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Camera.Width, cfg.Camera.Height = ScreenWidth, ScreenHeight

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("Voxar")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(crateModel, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(ballModel, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(floorModel, mgl32.Vec3{20, 1, 20}))
	if *modelPath != "" {
		models.Declare(*modelPath)
	}
	if err := models.Load(context.Background()); err != nil {
		log.Fatal("loading models", zap.Error(err))
	}

	input := newInput()
	s, err := space.New(
		space.Context{Log: log, Models: models, Config: cfg},
		space.WithController(perspective.NewFreeController(input)),
	)
	if err != nil {
		log.Fatal("creating space", zap.Error(err))
	}
	defer s.Close()

	if err := populate(s, models, *modelPath); err != nil {
		log.Fatal("populating space", zap.Error(err))
	}

	game := &Game{
		space:        s,
		input:        input,
		imguiBackend: debugui_ebiten.NewImguiBackend("Voxar", ScreenWidth, ScreenHeight),
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal("running game", zap.Error(err))
	}
}

func populate(s *space.Space, models *asset.Catalog, prop string) error {
	reg := s.Entities()
	if _, err := reg.SpawnRigidbody(floorModel, entity.RigidbodyInfo{
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	}, entity.WithName("floor"), entity.WithPosition(mgl32.Vec3{10, -0.5, 0})); err != nil {
		return err
	}

	s.SetTerrain(terrain.New(s.Physics(), models,
		terrain.WithGrid(4, 8, 2),
		terrain.WithHeight(terrain.Waves(0.6, 12)),
		terrain.WithCenter(mgl32.Vec3{10, -2, 40}),
		terrain.WithLogger(s.Logger().Named("terrain")),
	))

	for i := 0; i < 16; i++ {
		at := mgl32.Vec3{6 + float32(i%4)*2, 4 + float32(i/4)*1.5, -3 + float32(i%3)*2}
		if _, err := reg.SpawnRigidbody(crateModel, crateBody, entity.WithPosition(at)); err != nil {
			return err
		}
	}

	if prop != "" {
		if _, err := reg.SpawnRigidbody(prop, entity.RigidbodyInfo{
			Primitive: physics.Mesh,
			Type:      physics.Static,
		}, entity.WithName("prop"), entity.WithPosition(mgl32.Vec3{14, 0, 6})); err != nil {
			return err
		}
	}
	s.Perspective().LookAt(mgl32.Vec3{10, 0, 0})
	return nil
}

var (
	crateBody = entity.RigidbodyInfo{Mass: 1, Primitive: physics.Cuboid, Type: physics.Dynamic}
	ballBody  = entity.RigidbodyInfo{Mass: 1, Primitive: physics.Sphere, Type: physics.Dynamic, Restitution: 0.4}
)
