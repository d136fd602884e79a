package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/config"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/logging"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/space"
	"github.com/plus3/voxar/terrain"
	"go.uber.org/zap"
)

const (
	crateModel = "stress/crate"
	ballModel  = "stress/ball"
	floorModel = "stress/floor"
)

// mortal loses health over time and asks for a replacement when it dies,
// keeping the population steady.
type mortal struct {
	decay float32
	rng   *rand.Rand
}

func (m *mortal) Spawn(e *entity.Entity, cmd *entity.Commands) {}

func (m *mortal) Life(e *entity.Entity, cmd *entity.Commands) {
	e.Hurt(m.decay)
	if e.Marked() {
		spawnFalling(cmd, m.rng, m)
	}
}

func (m *mortal) Death(e *entity.Entity, cmd *entity.Commands) {
	spawnFalling(cmd, m.rng, m)
}

func spawnFalling(cmd *entity.Commands, rng *rand.Rand, behavior entity.Viable) {
	path, prim := crateModel, physics.Cuboid
	if rng.IntN(2) == 0 {
		path, prim = ballModel, physics.Sphere
	}
	at := mgl32.Vec3{rng.Float32()*60 - 30, 5 + rng.Float32()*20, rng.Float32()*60 - 30}
	cmd.SpawnRigidbody(path, entity.RigidbodyInfo{
		Mass:      1,
		Primitive: prim,
		Type:      physics.Dynamic,
	}, entity.WithPosition(at), entity.WithHealth(0.5+rng.Float32()), entity.WithBehavior(behavior))
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 1000, "The number of rigidbody entities kept alive.")
	configPath := flag.String("config", "", "Optional space configuration file.")
	profileMode := flag.String("profile", "", "Profile to record: cpu, mem or empty for none.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
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

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	log.Info("starting space stress test", zap.Int("entities", *entityCount), zap.Duration("duration", *duration))

	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel(crateModel, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(ballModel, mgl32.Vec3{1, 1, 1}))
	models.Add(asset.NewBoxModel(floorModel, mgl32.Vec3{80, 1, 80}))

	s, err := space.New(space.Context{Log: log, Models: models, Config: cfg})
	if err != nil {
		log.Fatal("creating space", zap.Error(err))
	}
	defer s.Close()

	s.SetTerrain(terrain.New(s.Physics(), models,
		terrain.WithGrid(4, 8, 2),
		terrain.WithHeight(terrain.Waves(1, 24)),
		terrain.WithCenter(mgl32.Vec3{0, -4, 120}),
		terrain.WithLogger(log.Named("terrain")),
	))
	if _, err := s.Entities().SpawnRigidbody(floorModel, entity.RigidbodyInfo{
		Primitive: physics.Cuboid,
		Type:      physics.Static,
	}, entity.WithPosition(mgl32.Vec3{0, -0.5, 0})); err != nil {
		log.Fatal("spawning floor", zap.Error(err))
	}

	var contacts int64
	s.OnContact(func(c space.Contact, cmd *entity.Commands) {
		contacts++
	}, nil)

	rng := rand.New(rand.NewPCG(cfg.Entities.Seed, 1))
	behavior := &mortal{decay: 1.0 / 120, rng: rng}
	for i := 0; i < *entityCount; i++ {
		spawnFalling(s.Entities().Commands(), rng, behavior)
	}
	if err := s.Tick(0); err != nil {
		log.Fatal("first tick", zap.Error(err))
	}
	log.Info("population complete", zap.Int("live", s.Entities().Len()))

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			updateStart := time.Now()
			if err := s.Tick(cfg.Physics.FixedTimeStep); err != nil {
				log.Fatal("tick", zap.Error(err))
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.Contacts = contacts
	report.Space = s.Stats()
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("generating report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}
