// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
	"github.com/opd-ai/go-spaceflight/pkg/render"
)

// spriteSink is the part of common.RenderSystem the renderer drives
type spriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// sprite is one drawn entity
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// draw layers, back to front
const (
	layerStars float32 = iota
	layerNebulas
	layerPlanets
	layerAsteroids
	layerParticles
	layerShip
	layerHUD
)

// EngoRenderer mirrors simulation snapshots into engo sprites
type EngoRenderer struct {
	sink   spriteSink
	assets *AssetManager

	ship      *sprite
	asteroids map[uint64]*sprite
	planets   map[uint64]*sprite
	rings     map[uint64]*sprite
	nebulas   map[uint64]*sprite
	particles []*sprite
	stars     []*sprite

	seen map[uint64]bool
}

// NewEngoRenderer creates a renderer adding its sprites to sink
func NewEngoRenderer(sink spriteSink, assets *AssetManager) *EngoRenderer {
	if assets == nil {
		assets = NewAssetManager()
	}
	return &EngoRenderer{
		sink:      sink,
		assets:    assets,
		asteroids: make(map[uint64]*sprite),
		planets:   make(map[uint64]*sprite),
		rings:     make(map[uint64]*sprite),
		nebulas:   make(map[uint64]*sprite),
		seen:      make(map[uint64]bool),
	}
}

// Render implements render.Renderer
func (r *EngoRenderer) Render(snap *engine.Snapshot) error {
	if snap == nil {
		return nil
	}
	r.renderStars(snap.Stars)
	r.renderNebulas(snap.Nebulas)
	r.renderPlanets(snap.Planets)
	r.renderAsteroids(snap.Asteroids)
	r.renderParticles(snap)
	r.renderShip(snap.Ship)
	return nil
}

// Close removes every sprite
func (r *EngoRenderer) Close() error {
	if r.ship != nil {
		r.sink.Remove(r.ship.BasicEntity)
		r.ship = nil
	}
	for _, m := range []map[uint64]*sprite{r.asteroids, r.planets, r.rings, r.nebulas} {
		for id, s := range m {
			r.sink.Remove(s.BasicEntity)
			delete(m, id)
		}
	}
	for _, s := range append(r.particles, r.stars...) {
		r.sink.Remove(s.BasicEntity)
	}
	r.particles = nil
	r.stars = nil
	return nil
}

// newSprite creates a sprite and registers it with the sink
func (r *EngoRenderer) newSprite(kind SpriteKind, layer float32) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.Drawable = r.assets.GetSprite(kind)
	s.Color = color.White
	s.SetZIndex(layer)
	r.sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

// place centres a sprite of the given world diameter on pos
func place(s *sprite, pos physics.Vector3, diameter float64, textureSize float32) {
	px := float32(diameter * PixelsPerUnit)
	center := WorldToPixels(pos)
	s.Width = px
	s.Height = px
	s.Position = engo.Point{X: center.X - px/2, Y: center.Y - px/2}
	if textureSize > 0 {
		s.Scale = engo.Point{X: px / textureSize, Y: px / textureSize}
	}
}

// syncKeyed creates, updates and prunes sprites keyed by entity ID
func (r *EngoRenderer) syncKeyed(sprites map[uint64]*sprite, ids []uint64, kind SpriteKind, layer float32, update func(i int, s *sprite)) {
	clear(r.seen)
	for i, id := range ids {
		s, ok := sprites[id]
		if !ok {
			s = r.newSprite(kind, layer)
			sprites[id] = s
		}
		update(i, s)
		r.seen[id] = true
	}
	for id, s := range sprites {
		if !r.seen[id] {
			r.sink.Remove(s.BasicEntity)
			delete(sprites, id)
		}
	}
}

// syncPool grows a sprite pool to n and hides the surplus
func (r *EngoRenderer) syncPool(pool []*sprite, n int, kind SpriteKind, layer float32, update func(i int, s *sprite)) []*sprite {
	for len(pool) < n {
		pool = append(pool, r.newSprite(kind, layer))
	}
	for i, s := range pool {
		if i < n {
			s.Hidden = false
			update(i, s)
		} else {
			s.Hidden = true
		}
	}
	return pool
}

func (r *EngoRenderer) renderStars(stars []entity.Star) {
	r.stars = r.syncPool(r.stars, len(stars), SpriteStar, layerStars, func(i int, s *sprite) {
		star := stars[i]
		place(s, star.Position, math.Max(star.Size, 0.05), starSpriteSize)
		s.Color = tint(star.Color, star.CurrentBrightness)
	})
}

func (r *EngoRenderer) renderNebulas(nebulas []engine.NebulaState) {
	ids := make([]uint64, len(nebulas))
	for i, n := range nebulas {
		ids[i] = n.ID
	}
	r.syncKeyed(r.nebulas, ids, SpriteNebula, layerNebulas, func(i int, s *sprite) {
		n := nebulas[i]
		place(s, n.Position, 2*n.Size*n.Pulse, bodySpriteSize)
		s.Rotation = float32(n.Rotation)
		s.Color = translucent(n.Color, n.Density*0.5)
	})
}

func (r *EngoRenderer) renderPlanets(planets []engine.PlanetState) {
	ids := make([]uint64, len(planets))
	var ringed []uint64
	for i, p := range planets {
		ids[i] = p.ID
		if p.HasRings {
			ringed = append(ringed, p.ID)
		}
	}
	r.syncKeyed(r.planets, ids, SpritePlanet, layerPlanets, func(i int, s *sprite) {
		p := planets[i]
		place(s, p.Position, 2*p.Radius, bodySpriteSize)
		s.Rotation = float32(p.Rotation)
		s.Color = tint(p.Color, 1)
	})

	byID := make(map[uint64]engine.PlanetState, len(planets))
	for _, p := range planets {
		byID[p.ID] = p
	}
	r.syncKeyed(r.rings, ringed, SpriteRing, layerPlanets, func(i int, s *sprite) {
		p := byID[ringed[i]]
		place(s, p.Position, 3.2*p.Radius, bodySpriteSize)
		s.Color = translucent(p.Color, 0.6)
	})
}

func (r *EngoRenderer) renderAsteroids(asteroids []engine.AsteroidState) {
	ids := make([]uint64, len(asteroids))
	for i, a := range asteroids {
		ids[i] = a.ID
	}
	r.syncKeyed(r.asteroids, ids, SpriteAsteroid, layerAsteroids, func(i int, s *sprite) {
		a := asteroids[i]
		place(s, a.Position, 2*a.Size, bodySpriteSize/2)
		s.Rotation = float32(a.Rotation[1])
		s.Color = tint(a.Material.Diffuse(), 1)
	})
}

func (r *EngoRenderer) renderParticles(snap *engine.Snapshot) {
	particles := snap.Particles
	r.particles = r.syncPool(r.particles, len(particles), SpriteParticle, layerParticles, func(i int, s *sprite) {
		p := particles[i]
		place(s, p.Position, math.Max(p.Size, 0.05), particleSpriteSize)
		s.Color = translucent(p.Color, p.Alpha())
	})
}

func (r *EngoRenderer) renderShip(ship engine.ShipState) {
	if r.ship == nil {
		r.ship = r.newSprite(SpriteShip, layerShip)
	}
	place(r.ship, ship.Position, 1.6, shipSpriteSize)
	r.ship.Rotation = float32(ship.Rotation[1])
	r.ship.Color = shipColor(ship)
}

// shipColor blends the hull toward red while the damage flash is lit and
// toward cyan with engine glow
func shipColor(ship engine.ShipState) color.Color {
	glow := physics.Clamp(ship.EngineGlow, 0, 1)
	flash := physics.Clamp(ship.DamageFlash, 0, 1)
	hull := physics.Vector3{0.8, 0.8 + 0.2*glow, 0.9 + 0.1*glow}
	red := physics.Vector3{1, 0.2, 0.2}
	return tint(hull.Mul(1-flash).Add(red.Mul(flash)), 1)
}

// tint converts an RGB colour in [0,1] scaled by intensity
func tint(c physics.Vector3, intensity float64) color.NRGBA {
	k := physics.Clamp(intensity, 0, 1)
	return color.NRGBA{R: channel(c[0] * k), G: channel(c[1] * k), B: channel(c[2] * k), A: 255}
}

// translucent converts an RGB colour in [0,1] with alpha
func translucent(c physics.Vector3, alpha float64) color.NRGBA {
	out := tint(c, 1)
	out.A = channel(alpha)
	return out
}

func channel(v float64) uint8 {
	return uint8(math.Round(physics.Clamp(v, 0, 1) * 255))
}

var _ render.Renderer = (*EngoRenderer)(nil)
