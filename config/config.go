// Package config loads and validates space configuration documents.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a document does not satisfy the space schema.
var ErrInvalid = errors.New("config: invalid document")

//go:embed schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("voxar://config/schema.json", schemaSource)

// Config is the full configuration of a simulated space.
type Config struct {
	Physics  Physics  `yaml:"physics"`
	Camera   Camera   `yaml:"camera"`
	Entities Entities `yaml:"entities"`
	Log      Log      `yaml:"log"`
}

// Physics configures the rigid-body world.
type Physics struct {
	Gravity          [3]float32 `yaml:"gravity"`
	FixedTimeStep    float64    `yaml:"fixed_time_step"`
	MaxSubSteps      int        `yaml:"max_sub_steps"`
	SolverIterations int        `yaml:"solver_iterations"`
	DebugDraw        bool       `yaml:"debug_draw"`
}

// Camera configures the perspective owned by a space.
type Camera struct {
	FOV       float32    `yaml:"fov"`
	Near      float32    `yaml:"near"`
	Far       float32    `yaml:"far"`
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
	Position  [3]float32 `yaml:"position"`
	Direction [3]float32 `yaml:"direction"`
}

// Entities configures the entity registry.
type Entities struct {
	// Seed for identifier allocation. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`
}

// Log configures the structured logger.
type Log struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Default returns the configuration used when no document is supplied.
func Default() Config {
	return Config{
		Physics: Physics{
			Gravity:          [3]float32{0, -9.8, 0},
			FixedTimeStep:    1.0 / 60.0,
			MaxSubSteps:      5,
			SolverIterations: 10,
		},
		Camera: Camera{
			FOV:       67,
			Near:      0.1,
			Far:       200,
			Width:     1280,
			Height:    720,
			Position:  [3]float32{0, 2, 0},
			Direction: [3]float32{1, 0, 0},
		},
		Log: Log{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads the YAML document at path on top of Default.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw against the schema and decodes it on top of Default.
// Keys missing from raw keep their default values.
func Parse(raw []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc == nil {
		return Default(), nil
	}

	// the schema validator only understands JSON-decoded values
	encoded, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(generic); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the constraints a space needs that the schema cannot
// express, and the field ranges for configs built in code.
func (c Config) Validate() error {
	switch cam := c.Camera; {
	case cam.FOV <= 0 || cam.FOV >= 180:
		return fmt.Errorf("%w: camera fov %v outside (0, 180)", ErrInvalid, cam.FOV)
	case cam.Near <= 0:
		return fmt.Errorf("%w: camera near %v must be positive", ErrInvalid, cam.Near)
	case cam.Far <= cam.Near:
		return fmt.Errorf("%w: camera far %v must exceed near %v", ErrInvalid, cam.Far, cam.Near)
	case cam.Width < 1 || cam.Height < 1:
		return fmt.Errorf("%w: camera viewport %dx%d", ErrInvalid, cam.Width, cam.Height)
	}
	switch ph := c.Physics; {
	case ph.FixedTimeStep <= 0 || ph.FixedTimeStep > 1:
		return fmt.Errorf("%w: physics fixed_time_step %v outside (0, 1]", ErrInvalid, ph.FixedTimeStep)
	case ph.MaxSubSteps < 1:
		return fmt.Errorf("%w: physics max_sub_steps %d", ErrInvalid, ph.MaxSubSteps)
	case ph.SolverIterations < 1:
		return fmt.Errorf("%w: physics solver_iterations %d", ErrInvalid, ph.SolverIterations)
	}
	return nil
}
