// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// EnvPrefix is prepended to every environment override, e.g.
// SPACEFLIGHT_SHIP_THRUSTPOWER or SPACEFLIGHT_SIMULATION_ASTEROIDCOUNT.
const EnvPrefix = "SPACEFLIGHT"

// Render modes
const (
	RenderTerminal = "terminal"
	RenderEngo     = "engo"
	RenderHeadless = "headless"
)

// Config contains the full tuning of a flight
type Config struct {
	// Seed drives every random draw; 0 derives one from the clock
	Seed     uint64 `mapstructure:"seed"`
	LogLevel string `mapstructure:"loglevel"`

	Simulation SimulationConfig      `mapstructure:"simulation"`
	Ship       ShipConfig            `mapstructure:"ship"`
	Camera     CameraConfig          `mapstructure:"camera"`
	Collision  CollisionConfig       `mapstructure:"collision"`
	Planets    []entity.PlanetParams `mapstructure:"planets"`
	Nebulas    []entity.NebulaParams `mapstructure:"nebulas"`
	Recorder   RecorderConfig        `mapstructure:"recorder"`
	Telemetry  TelemetryConfig       `mapstructure:"telemetry"`
	Render     RenderConfig          `mapstructure:"render"`
}

// SimulationConfig contains scene population and stepping settings
type SimulationConfig struct {
	GravityConstant float64 `mapstructure:"gravityconstant"`
	AsteroidCount   int     `mapstructure:"asteroidcount"`
	StarCount       int     `mapstructure:"starcount"`
	MaxParticles    int     `mapstructure:"maxparticles"`
	// MaxFrameDelta caps wall-clock dt in seconds; 0 disables the cap
	MaxFrameDelta float64 `mapstructure:"maxframedelta"`
	TrailEnabled  bool    `mapstructure:"trailenabled"`
}

// ShipConfig contains the flight model constants
type ShipConfig struct {
	Mass           float64 `mapstructure:"mass"`
	ThrustPower    float64 `mapstructure:"thrustpower"`
	RotationPower  float64 `mapstructure:"rotationpower"`
	LinearDamping  float64 `mapstructure:"lineardamping"`
	AngularDamping float64 `mapstructure:"angulardamping"`
	Health         float64 `mapstructure:"health"`
	Energy         float64 `mapstructure:"energy"`
	Shield         float64 `mapstructure:"shield"`
}

// Params converts the ship settings into physics parameters
func (s ShipConfig) Params() physics.ShipParams {
	return physics.ShipParams{
		Mass:           s.Mass,
		ThrustPower:    s.ThrustPower,
		RotationPower:  s.RotationPower,
		LinearDamping:  s.LinearDamping,
		AngularDamping: s.AngularDamping,
		Health:         s.Health,
		Energy:         s.Energy,
		Shield:         s.Shield,
	}
}

// CameraConfig contains chase camera settings
type CameraConfig struct {
	InitialPosition physics.Vector3 `mapstructure:"initialposition"`
	FollowOffset    physics.Vector3 `mapstructure:"followoffset"`
	Smoothing       float64         `mapstructure:"smoothing"`
	RollFactor      float64         `mapstructure:"rollfactor"`
}

// CollisionConfig contains ship-asteroid collision response settings
type CollisionConfig struct {
	ShipRadius    float64 `mapstructure:"shipradius"`
	DamageFactor  float64 `mapstructure:"damagefactor"`
	ShakeFactor   float64 `mapstructure:"shakefactor"`
	ShakeDuration float64 `mapstructure:"shakeduration"`
	// BroadPhase indexes asteroids in a quadtree before the exact test
	BroadPhase bool `mapstructure:"broadphase"`
}

// RecorderConfig contains flight recorder settings
type RecorderConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	DSN            string        `mapstructure:"dsn"`
	SampleInterval float64       `mapstructure:"sampleinterval"` // seconds of game time
	BatchSize      int           `mapstructure:"batchsize"`
	FlushInterval  time.Duration `mapstructure:"flushinterval"`

	// BreakerFailures consecutive failed flushes suspend writes for
	// BreakerTimeout; 0 never suspends
	BreakerFailures int           `mapstructure:"breakerfailures"`
	BreakerTimeout  time.Duration `mapstructure:"breakertimeout"`
}

// TelemetryConfig contains metric settings
type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	MeterName string `mapstructure:"metername"`
}

// RenderConfig contains presentation settings
type RenderConfig struct {
	Mode      string `mapstructure:"mode"`
	Title     string `mapstructure:"title"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	TargetFPS int    `mapstructure:"targetfps"`
	// Scale is world units per terminal cell in the top-down view
	Scale float64 `mapstructure:"scale"`
}

// DefaultConfig returns the reference tuning
func DefaultConfig() *Config {
	ship := physics.DefaultShipParams()
	return &Config{
		Seed:     0,
		LogLevel: "INFO",
		Simulation: SimulationConfig{
			GravityConstant: 1.0,
			AsteroidCount:   150,
			StarCount:       4000,
			MaxParticles:    10000,
			MaxFrameDelta:   0,
			TrailEnabled:    true,
		},
		Ship: ShipConfig{
			Mass:           ship.Mass,
			ThrustPower:    ship.ThrustPower,
			RotationPower:  ship.RotationPower,
			LinearDamping:  ship.LinearDamping,
			AngularDamping: ship.AngularDamping,
			Health:         ship.Health,
			Energy:         ship.Energy,
			Shield:         ship.Shield,
		},
		Camera: CameraConfig{
			InitialPosition: physics.Vector3{0, 3, -8},
			FollowOffset:    physics.Vector3{0, 1, -3},
			Smoothing:       5.0,
			RollFactor:      0.3,
		},
		Collision: CollisionConfig{
			ShipRadius:    0.8,
			DamageFactor:  10,
			ShakeFactor:   0.5,
			ShakeDuration: 0.5,
			BroadPhase:    false,
		},
		Planets: entity.DefaultPlanets(),
		Nebulas: entity.DefaultNebulas(),
		Recorder: RecorderConfig{
			Enabled:         false,
			DSN:             "spaceflight.db",
			SampleInterval:  1.0,
			BatchSize:       64,
			FlushInterval:   5 * time.Second,
			BreakerFailures: 3,
			BreakerTimeout:  30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Enabled:   true,
			MeterName: "github.com/opd-ai/go-spaceflight",
		},
		Render: RenderConfig{
			Mode:      RenderTerminal,
			Title:     "Spaceflight",
			Width:     1200,
			Height:    800,
			TargetFPS: 60,
			Scale:     2.0,
		},
	}
}

// Load reads configuration from defaults, an optional file and
// SPACEFLIGHT_* environment variables, in increasing precedence. The file
// format follows its extension (yaml, json, toml). An empty path skips the file.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg, zeroFields); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path in the format implied by its extension
func Save(cfg *Config, path string) error {
	var settings map[string]interface{}
	if err := mapstructure.Decode(cfg, &settings); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every scalar key so AutomaticEnv can see it.
// Planet and nebula lists come from the pre-populated struct instead.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("seed", d.Seed)
	v.SetDefault("loglevel", d.LogLevel)

	v.SetDefault("simulation.gravityconstant", d.Simulation.GravityConstant)
	v.SetDefault("simulation.asteroidcount", d.Simulation.AsteroidCount)
	v.SetDefault("simulation.starcount", d.Simulation.StarCount)
	v.SetDefault("simulation.maxparticles", d.Simulation.MaxParticles)
	v.SetDefault("simulation.maxframedelta", d.Simulation.MaxFrameDelta)
	v.SetDefault("simulation.trailenabled", d.Simulation.TrailEnabled)

	v.SetDefault("ship.mass", d.Ship.Mass)
	v.SetDefault("ship.thrustpower", d.Ship.ThrustPower)
	v.SetDefault("ship.rotationpower", d.Ship.RotationPower)
	v.SetDefault("ship.lineardamping", d.Ship.LinearDamping)
	v.SetDefault("ship.angulardamping", d.Ship.AngularDamping)
	v.SetDefault("ship.health", d.Ship.Health)
	v.SetDefault("ship.energy", d.Ship.Energy)
	v.SetDefault("ship.shield", d.Ship.Shield)

	v.SetDefault("camera.smoothing", d.Camera.Smoothing)
	v.SetDefault("camera.rollfactor", d.Camera.RollFactor)

	v.SetDefault("collision.shipradius", d.Collision.ShipRadius)
	v.SetDefault("collision.damagefactor", d.Collision.DamageFactor)
	v.SetDefault("collision.shakefactor", d.Collision.ShakeFactor)
	v.SetDefault("collision.shakeduration", d.Collision.ShakeDuration)
	v.SetDefault("collision.broadphase", d.Collision.BroadPhase)

	v.SetDefault("recorder.enabled", d.Recorder.Enabled)
	v.SetDefault("recorder.dsn", d.Recorder.DSN)
	v.SetDefault("recorder.sampleinterval", d.Recorder.SampleInterval)
	v.SetDefault("recorder.batchsize", d.Recorder.BatchSize)
	v.SetDefault("recorder.flushinterval", d.Recorder.FlushInterval)
	v.SetDefault("recorder.breakerfailures", d.Recorder.BreakerFailures)
	v.SetDefault("recorder.breakertimeout", d.Recorder.BreakerTimeout)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.metername", d.Telemetry.MeterName)

	v.SetDefault("render.mode", d.Render.Mode)
	v.SetDefault("render.title", d.Render.Title)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.height", d.Render.Height)
	v.SetDefault("render.targetfps", d.Render.TargetFPS)
	v.SetDefault("render.scale", d.Render.Scale)
}

// zeroFields replaces list settings wholesale instead of merging them
// element-wise into the defaults.
func zeroFields(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Simulation.GravityConstant >= 0, "simulation.gravityconstant must be non-negative, got %v", c.Simulation.GravityConstant)
	check(c.Simulation.AsteroidCount >= 0, "simulation.asteroidcount must be non-negative, got %d", c.Simulation.AsteroidCount)
	check(c.Simulation.StarCount >= 0, "simulation.starcount must be non-negative, got %d", c.Simulation.StarCount)
	check(c.Simulation.MaxParticles >= 0, "simulation.maxparticles must be non-negative, got %d", c.Simulation.MaxParticles)
	check(c.Simulation.MaxFrameDelta >= 0, "simulation.maxframedelta must be non-negative, got %v", c.Simulation.MaxFrameDelta)

	check(c.Ship.Mass > 0, "ship.mass must be positive, got %v", c.Ship.Mass)
	check(c.Ship.ThrustPower >= 0, "ship.thrustpower must be non-negative, got %v", c.Ship.ThrustPower)
	check(c.Ship.RotationPower >= 0, "ship.rotationpower must be non-negative, got %v", c.Ship.RotationPower)
	check(c.Ship.LinearDamping > 0 && c.Ship.LinearDamping <= 1, "ship.lineardamping must be in (0,1], got %v", c.Ship.LinearDamping)
	check(c.Ship.AngularDamping > 0 && c.Ship.AngularDamping <= 1, "ship.angulardamping must be in (0,1], got %v", c.Ship.AngularDamping)
	check(c.Ship.Health > 0 && c.Ship.Health <= physics.MaxHealth, "ship.health must be in (0,%v], got %v", physics.MaxHealth, c.Ship.Health)

	check(c.Camera.Smoothing >= 0, "camera.smoothing must be non-negative, got %v", c.Camera.Smoothing)

	check(c.Collision.ShipRadius >= 0, "collision.shipradius must be non-negative, got %v", c.Collision.ShipRadius)
	check(c.Collision.DamageFactor >= 0, "collision.damagefactor must be non-negative, got %v", c.Collision.DamageFactor)
	check(c.Collision.ShakeDuration >= 0, "collision.shakeduration must be non-negative, got %v", c.Collision.ShakeDuration)

	for i, p := range c.Planets {
		check(p.Radius > 0, "planets[%d].radius must be positive, got %v", i, p.Radius)
		check(p.Mass >= 0, "planets[%d].mass must be non-negative, got %v", i, p.Mass)
	}
	for i, n := range c.Nebulas {
		check(n.Size > 0, "nebulas[%d].size must be positive, got %v", i, n.Size)
	}

	if c.Recorder.Enabled {
		check(c.Recorder.DSN != "", "recorder.dsn is required when the recorder is enabled")
		check(c.Recorder.SampleInterval > 0, "recorder.sampleinterval must be positive, got %v", c.Recorder.SampleInterval)
		check(c.Recorder.BatchSize > 0, "recorder.batchsize must be positive, got %d", c.Recorder.BatchSize)
		check(c.Recorder.BreakerFailures >= 0, "recorder.breakerfailures must be non-negative, got %d", c.Recorder.BreakerFailures)
	}

	switch c.Render.Mode {
	case RenderTerminal, RenderEngo, RenderHeadless:
	default:
		errs = append(errs, fmt.Errorf("render.mode must be one of %s, %s, %s; got %q", RenderTerminal, RenderEngo, RenderHeadless, c.Render.Mode))
	}
	check(c.Render.TargetFPS > 0, "render.targetfps must be positive, got %d", c.Render.TargetFPS)
	check(c.Render.Scale > 0, "render.scale must be positive, got %v", c.Render.Scale)

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("loglevel must be DEBUG, INFO, WARN or ERROR; got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}
