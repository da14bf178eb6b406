// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/collision"
	"github.com/pthm-cable/salvo/material"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Environment     EnvironmentConfig          `yaml:"environment"`
	Batch           BatchConfig                `yaml:"batch"`
	Simulation      SimulationConfig           `yaml:"simulation"`
	Telemetry       TelemetryConfig            `yaml:"telemetry"`
	Materials       map[string]material.Params `yaml:"materials"`
	DefaultMaterial string                     `yaml:"default_material"` // applied to unmapped surfaces ("" = none)
	Weapons         []ballistics.BulletParams  `yaml:"weapons"`
	Scene           SceneConfig                `yaml:"scene"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML-friendly vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec converts to r3.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// EnvironmentConfig holds the physical settings.
type EnvironmentConfig struct {
	GravityEnabled       bool    `yaml:"gravity_enabled"`
	Gravity              Vec3    `yaml:"gravity"`
	AirResistanceEnabled bool    `yaml:"air_resistance_enabled"`
	AirDensity           float64 `yaml:"air_density"` // kg/m³
	Wind                 Vec3    `yaml:"wind"`
	SpinEnabled          bool    `yaml:"spin_enabled"`
	AirViscosity         float64 `yaml:"air_viscosity"`
	MaxDeltaTime         float64 `yaml:"max_delta_time"` // longest sub-step, seconds
	Scale                float64 `yaml:"scale"`          // scene units per meter
	SelfHitEpsilon       float64 `yaml:"self_hit_epsilon"`
	SurfaceOffset        float64 `yaml:"surface_offset"`
	PenetrationProbe     float64 `yaml:"penetration_probe"`
	ContactEpsilon       float64 `yaml:"contact_epsilon"`
}

// BatchConfig holds batch sizing.
type BatchConfig struct {
	Capacity int `yaml:"capacity"`
	Grain    int `yaml:"grain"`
	Workers  int `yaml:"workers"` // 0 = GOMAXPROCS
}

// SimulationConfig holds run parameters for the headless runner.
type SimulationConfig struct {
	Seed             uint64  `yaml:"seed"`
	FrameRate        float64 `yaml:"frame_rate"`
	Frames           int     `yaml:"frames"`
	KeepEmptyBatches int     `yaml:"keep_empty_batches"`
	DisposeInterval  int     `yaml:"dispose_interval"` // frames between DisposeUnusedBatches
}

// TelemetryConfig holds stats and perf reporting settings.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // frames per logged window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// SceneConfig describes the headless test range.
type SceneConfig struct {
	Boxes    []BoxConfig     `yaml:"boxes"`
	Emitters []EmitterConfig `yaml:"emitters"`
}

// BoxConfig is an axis-aligned collider.
type BoxConfig struct {
	Min     Vec3   `yaml:"min"`
	Max     Vec3   `yaml:"max"`
	Layer   uint32 `yaml:"layer"`
	Surface string `yaml:"surface"`
}

// EmitterConfig fires a weapon at a fixed rate.
type EmitterConfig struct {
	Weapon    string  `yaml:"weapon"`
	Origin    Vec3    `yaml:"origin"`
	Direction Vec3    `yaml:"direction"`
	Rate      float64 `yaml:"rate"` // rounds per second
	Cone      float64 `yaml:"cone"` // half-angle in radians
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FrameDelta  float64        // 1 / Simulation.FrameRate
	WeaponIndex map[string]int // name -> index into Weapons
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config and checks
// cross references.
func (c *Config) computeDerived() error {
	if c.Simulation.FrameRate <= 0 {
		c.Simulation.FrameRate = 60
	}
	c.Derived.FrameDelta = 1 / c.Simulation.FrameRate

	c.Derived.WeaponIndex = make(map[string]int, len(c.Weapons))
	for i := range c.Weapons {
		w := &c.Weapons[i]
		w.Prepare()
		c.Derived.WeaponIndex[w.Name] = i
	}

	if c.DefaultMaterial != "" {
		if _, ok := c.Materials[c.DefaultMaterial]; !ok {
			return fmt.Errorf("default material %q is not defined", c.DefaultMaterial)
		}
	}
	for i, e := range c.Scene.Emitters {
		if _, ok := c.Derived.WeaponIndex[e.Weapon]; !ok {
			return fmt.Errorf("emitter %d: unknown weapon %q", i, e.Weapon)
		}
	}
	return nil
}

// Env converts the environment section.
func (c *Config) Env() ballistics.Environment {
	e := c.Environment
	return ballistics.Environment{
		GravityEnabled:       e.GravityEnabled,
		Gravity:              e.Gravity.Vec(),
		AirResistanceEnabled: e.AirResistanceEnabled,
		AirDensity:           e.AirDensity,
		Wind:                 e.Wind.Vec(),
		SpinEnabled:          e.SpinEnabled,
		AirViscosity:         e.AirViscosity,
		MaxDeltaTime:         e.MaxDeltaTime,
		Scale:                e.Scale,
		SelfHitEpsilon:       e.SelfHitEpsilon,
		SurfaceOffset:        e.SurfaceOffset,
		PenetrationProbe:     e.PenetrationProbe,
		ContactEpsilon:       e.ContactEpsilon,
	}
}

// Registry builds the material registry.
func (c *Config) Registry() *material.Registry {
	reg := material.NewRegistry()
	for name, p := range c.Materials {
		m := material.NewStandard(name, p)
		reg.Register(collision.Surface(name), m)
		if name == c.DefaultMaterial {
			reg.SetDefault(m)
		}
	}
	return reg
}

// Weapon returns the named bullet params.
func (c *Config) Weapon(name string) (*ballistics.BulletParams, bool) {
	i, ok := c.Derived.WeaponIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Weapons[i], true
}

// BuildScene creates the colliders described by the scene section.
func (c *Config) BuildScene() *collision.Scene {
	scene := collision.NewScene()
	for _, b := range c.Scene.Boxes {
		scene.Add(collision.NewBox(b.Min.Vec(), b.Max.Vec(), b.Layer, collision.Surface(b.Surface)))
	}
	return scene
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
