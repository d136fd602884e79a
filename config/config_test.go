package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/voxar/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, [3]float32{0, -9.8, 0}, cfg.Physics.Gravity)
	assert.InDelta(t, 1.0/60.0, cfg.Physics.FixedTimeStep, 1e-9)
	assert.Equal(t, 5, cfg.Physics.MaxSubSteps)
	assert.Equal(t, float32(67), cfg.Camera.FOV)
	assert.Equal(t, float32(200), cfg.Camera.Far)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
	assert.ErrorIs(t, config.Config{}.Validate(), config.ErrInvalid)

	cfg := config.Default()
	cfg.Camera.Far = cfg.Camera.Near
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.Physics.MaxSubSteps = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}

func TestParse(t *testing.T) {
	t.Run("partial document keeps defaults", func(t *testing.T) {
		cfg, err := config.Parse([]byte(`
physics:
  max_sub_steps: 8
  debug_draw: true
camera:
  fov: 90
`))
		require.NoError(t, err)

		assert.Equal(t, 8, cfg.Physics.MaxSubSteps)
		assert.True(t, cfg.Physics.DebugDraw)
		assert.Equal(t, float32(90), cfg.Camera.FOV)
		assert.Equal(t, [3]float32{0, -9.8, 0}, cfg.Physics.Gravity)
		assert.Equal(t, float32(0.1), cfg.Camera.Near)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := config.Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("schema violations", func(t *testing.T) {
		cases := map[string]string{
			"negative sub steps": "physics:\n  max_sub_steps: 0\n",
			"short gravity":      "physics:\n  gravity: [0, -9.8]\n",
			"unknown section":    "renderer:\n  shadows: true\n",
			"bad log level":      "log:\n  level: loud\n",
			"zero fov":           "camera:\n  fov: 0\n",
			"far before near":    "camera:\n  near: 10\n  far: 5\n",
			"near equals far":    "camera:\n  near: 5\n  far: 5\n",
		}
		for name, doc := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := config.Parse([]byte(doc))
				assert.ErrorIs(t, err, config.ErrInvalid)
			})
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := config.Parse([]byte("physics: [unterminated"))
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "space.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities:\n  seed: 42\nlog:\n  level: debug\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Entities.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
