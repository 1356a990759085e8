package engine

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Camera is a chase camera derived from the ship every frame. It is not
// authoritative state; renderers read it to place the viewpoint.
type Camera struct {
	Position physics.Vector3
	Target   physics.Vector3
	Roll     float64

	ShakeIntensity float64
	ShakeTimer     float64

	// FollowOffset is ship-local and rotated by the ship's yaw
	FollowOffset physics.Vector3
	Smoothing    float64
	RollFactor   float64

	rng *rand.Rand
}

// NewCamera creates a camera at the configured start position looking at the origin
func NewCamera(cfg config.CameraConfig, rng *rand.Rand) *Camera {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Camera{
		Position:     cfg.InitialPosition,
		FollowOffset: cfg.FollowOffset,
		Smoothing:    cfg.Smoothing,
		RollFactor:   cfg.RollFactor,
		rng:          rng,
	}
}

// Shake starts a shake of the given strength, replacing any running one
func (c *Camera) Shake(intensity, duration float64) {
	c.ShakeIntensity = intensity
	c.ShakeTimer = duration
}

// Shaking reports whether a shake is in progress
func (c *Camera) Shaking() bool {
	return c.ShakeTimer > 0
}

// Follow eases the camera toward its chase position behind the ship and
// applies any active shake as X/Y jitter.
func (c *Camera) Follow(ship *physics.ShipBody, dt float64) {
	c.Target = ship.Position

	desired := ship.Position.Add(physics.RotateYaw(c.FollowOffset, ship.Rotation[1]))
	blend := math.Min(1, c.Smoothing*dt)
	c.Position = c.Position.Add(desired.Sub(c.Position).Mul(blend))

	if c.ShakeTimer > 0 {
		c.ShakeTimer = math.Max(0, c.ShakeTimer-dt)
		c.Position[0] += c.jitter() * c.ShakeIntensity
		c.Position[1] += c.jitter() * c.ShakeIntensity
	}

	c.Roll = ship.Rotation[2] * c.RollFactor
}

func (c *Camera) jitter() float64 {
	return c.rng.Float64()*2 - 1
}
