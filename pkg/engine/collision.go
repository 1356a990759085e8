package engine

import (
	"math"
	"slices"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/particle"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

const quadTreeCapacity = 10

// Hit describes the collision response applied in one frame
type Hit struct {
	Index       int
	AsteroidID  uint64
	Position    physics.Vector3 // ship position at impact
	Size        float64
	Material    entity.MaterialKind
	Damage      float64
	HealthAfter float64
	Destroyed   bool
	Spawned     int
}

// CollisionSystem tests the ship against every asteroid once per frame.
// The first overlapping asteroid in field order wins; no further asteroids
// are considered that frame.
type CollisionSystem struct {
	ShipRadius    float64
	DamageFactor  float64
	ShakeFactor   float64
	ShakeDuration float64

	// BroadPhase narrows the scan with a planar quadtree. The result is
	// identical to the linear scan.
	BroadPhase bool

	index      *physics.QuadTree
	candidates []int
}

// NewCollisionSystem creates a collision system from configuration
func NewCollisionSystem(cfg config.CollisionConfig) *CollisionSystem {
	return &CollisionSystem{
		ShipRadius:    cfg.ShipRadius,
		DamageFactor:  cfg.DamageFactor,
		ShakeFactor:   cfg.ShakeFactor,
		ShakeDuration: cfg.ShakeDuration,
		BroadPhase:    cfg.BroadPhase,
	}
}

// Detect returns the index of the first asteroid overlapping the ship
func (c *CollisionSystem) Detect(ship *physics.ShipBody, field *entity.AsteroidField) (int, bool) {
	hull := physics.Sphere{Center: ship.Position, Radius: c.ShipRadius}
	asteroids := field.Asteroids()

	if !c.BroadPhase {
		for i := range asteroids {
			if hull.Collides(asteroids[i].Collider()) {
				return i, true
			}
		}
		return -1, false
	}

	for _, i := range c.query(ship.Position, asteroids) {
		if hull.Collides(asteroids[i].Collider()) {
			return i, true
		}
	}
	return -1, false
}

// query rebuilds the index and returns candidate indices in ascending order
func (c *CollisionSystem) query(shipPos physics.Vector3, asteroids []entity.Asteroid) []int {
	if len(asteroids) == 0 {
		return nil
	}

	minX, maxX := shipPos[0], shipPos[0]
	minZ, maxZ := shipPos[2], shipPos[2]
	maxSize := 0.0
	for i := range asteroids {
		p := asteroids[i].Position
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minZ, maxZ = math.Min(minZ, p[2]), math.Max(maxZ, p[2])
		maxSize = math.Max(maxSize, asteroids[i].Size)
	}

	bounds := physics.Rect{
		CenterX: (minX + maxX) / 2,
		CenterZ: (minZ + maxZ) / 2,
		Width:   maxX - minX + 2,
		Depth:   maxZ - minZ + 2,
	}
	if c.index == nil {
		c.index = physics.NewQuadTree(bounds, quadTreeCapacity)
	} else {
		c.index.Clear()
		c.index.Boundary = bounds
	}
	for i := range asteroids {
		c.index.Insert(asteroids[i].Position, i)
	}

	area := physics.RectAround(shipPos, c.ShipRadius+maxSize)
	c.candidates = c.index.Query(area, c.candidates[:0])
	slices.Sort(c.candidates)
	return c.candidates
}

// CheckAndRespond detects the first collision and applies the response:
// an explosion at the ship scaled by the asteroid size, a camera shake and
// hull damage, in that order.
func (c *CollisionSystem) CheckAndRespond(ship *physics.ShipBody, field *entity.AsteroidField, particles *particle.System, cam *Camera) (Hit, bool) {
	i, ok := c.Detect(ship, field)
	if !ok {
		return Hit{}, false
	}
	a := field.At(i)

	hit := Hit{
		Index:      i,
		AsteroidID: a.ID(),
		Position:   ship.Position,
		Size:       a.Size,
		Material:   a.Material,
		Damage:     a.Size * c.DamageFactor,
	}

	hit.Spawned = particles.SpawnExplosion(ship.Position, a.Size)
	if cam != nil {
		cam.Shake(a.Size*c.ShakeFactor, c.ShakeDuration)
	}
	hit.Destroyed = ship.ApplyDamage(hit.Damage)
	hit.HealthAfter = ship.Health
	return hit, true
}
