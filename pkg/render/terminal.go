package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// cell is one character position in the frame buffer
type cell struct {
	ch    rune
	style tcell.Style
}

var blankCell = cell{ch: ' ', style: tcell.StyleDefault}

// TerminalRenderer draws a top-down view of the scene into a tcell screen.
// The X/Z plane is projected onto the terminal with -Z pointing up; altitude
// is dropped.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]cell
	scale     float64
	centerPos physics.Vector3
	screen    tcell.Screen
}

// NewTerminalRenderer creates a new terminal renderer with the specified dimensions
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	r := &TerminalRenderer{scale: scale}
	r.Resize(width, height)
	return r
}

// NewScreenRenderer creates a renderer sized to and presenting on screen
func NewScreenRenderer(screen tcell.Screen, scale float64) *TerminalRenderer {
	r := &TerminalRenderer{scale: scale}
	r.Attach(screen)
	return r
}

// Attach sets the screen frames are presented on and adopts its size
func (r *TerminalRenderer) Attach(screen tcell.Screen) {
	r.screen = screen
	if screen != nil {
		w, h := screen.Size()
		r.Resize(w, h)
	}
}

// Resize reallocates the frame buffer
func (r *TerminalRenderer) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	buffer := make([][]cell, height)
	for i := range buffer {
		buffer[i] = make([]cell, width)
	}
	r.width = width
	r.height = height
	r.buffer = buffer
	r.Clear()
}

// Size returns the buffer dimensions in cells
func (r *TerminalRenderer) Size() (int, int) {
	return r.width, r.height
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector3) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector3) (int, int) {
	screenX := int(math.Floor((pos[0]-r.centerPos[0])/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos[2]-r.centerPos[2])/r.scale + float64(r.height)/2))
	return screenX, screenY
}

func (r *TerminalRenderer) set(x, y int, ch rune, style tcell.Style) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = cell{ch: ch, style: style}
	}
}

// plot draws a glyph at a world position
func (r *TerminalRenderer) plot(pos physics.Vector3, ch rune, style tcell.Style) {
	x, y := r.worldToScreen(pos)
	r.set(x, y, ch, style)
}

// disc fills every cell within radius world units of pos
func (r *TerminalRenderer) disc(pos physics.Vector3, radius float64, ch rune, style tcell.Style) {
	cx, cy := r.worldToScreen(pos)
	rc := int(radius / r.scale)
	if rc <= 0 {
		r.set(cx, cy, ch, style)
		return
	}
	rc = min(rc, max(r.width, r.height))
	for dy := -rc; dy <= rc; dy++ {
		for dx := -rc; dx <= rc; dx++ {
			if dx*dx+dy*dy <= rc*rc {
				r.set(cx+dx, cy+dy, ch, style)
			}
		}
	}
}

// Clear blanks the frame buffer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = blankCell
		}
	}
}

// Render implements Renderer
func (r *TerminalRenderer) Render(snap *engine.Snapshot) error {
	if snap == nil {
		return nil
	}
	r.Clear()
	r.SetCenter(snap.Ship.Position)

	r.RenderStars(snap.Stars)
	for _, n := range snap.Nebulas {
		r.RenderNebula(n)
	}
	for _, p := range snap.Planets {
		r.RenderPlanet(p)
	}
	for _, a := range snap.Asteroids {
		r.RenderAsteroid(a)
	}
	for _, p := range snap.Particles {
		r.RenderParticle(p.Position, p.Color, p.Alpha(), p.Size)
	}
	r.RenderShip(snap.Ship)
	r.RenderHUD(snap)

	return r.Present()
}

// RenderStars draws the background stars
func (r *TerminalRenderer) RenderStars(stars []entity.Star) {
	for _, s := range stars {
		ch := '.'
		if s.CurrentBrightness > 0.8 {
			ch = '+'
		}
		r.plot(s.Position, ch, styleFor(s.Color, s.CurrentBrightness))
	}
}

// RenderNebula draws a nebula as a faint disc
func (r *TerminalRenderer) RenderNebula(n engine.NebulaState) {
	r.disc(n.Position, n.Size, '░', styleFor(n.Color, n.Density*n.Pulse))
}

// RenderPlanet draws a planet disc, ringed planets marked at the rim
func (r *TerminalRenderer) RenderPlanet(p engine.PlanetState) {
	style := styleFor(p.Color, 1)
	r.disc(p.Position, p.Radius, 'O', style)
	if p.HasRings {
		ring := p.Radius * 1.6
		r.plot(p.Position.Add(physics.Vector3{-ring, 0, 0}), '(', style)
		r.plot(p.Position.Add(physics.Vector3{ring, 0, 0}), ')', style)
	}
}

var materialGlyphs = [...]rune{'#', '*', '%'}

// RenderAsteroid draws an asteroid with a glyph per material
func (r *TerminalRenderer) RenderAsteroid(a engine.AsteroidState) {
	ch := materialGlyphs[entity.Rock]
	if a.Material >= 0 && int(a.Material) < len(materialGlyphs) {
		ch = materialGlyphs[a.Material]
	}
	r.disc(a.Position, a.Size, ch, styleFor(a.Material.Diffuse(), 1))
}

// RenderParticle draws one particle dimmed by its remaining life
func (r *TerminalRenderer) RenderParticle(pos, color physics.Vector3, alpha, size float64) {
	ch := '.'
	if size >= 0.4 {
		ch = 'o'
	}
	r.plot(pos, ch, styleFor(color, alpha))
}

var headingGlyphs = [...]rune{'^', '>', 'v', '<'}

// RenderShip draws the ship as an arrow along its yaw
func (r *TerminalRenderer) RenderShip(ship engine.ShipState) {
	r.plot(ship.Position, headingGlyph(ship.Rotation[1]), shipStyle(ship))
}

// RenderHUD writes the status line on the top row
func (r *TerminalRenderer) RenderHUD(snap *engine.Snapshot) {
	line := fmt.Sprintf("HP %3.0f  SPD %6.2f  T %7.1fs  HITS %d  P %d  %s",
		snap.Ship.Health,
		snap.Ship.Velocity.Len(),
		snap.GameTime,
		snap.Collisions,
		len(snap.Particles),
		snap.Ship.State,
	)
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	x := 0
	for _, ch := range line {
		r.set(x, 0, ch, style)
		x++
	}
}

// Present copies the frame buffer to the attached screen, if any
func (r *TerminalRenderer) Present() error {
	if r.screen == nil {
		return nil
	}
	for y := range r.buffer {
		for x, c := range r.buffer[y] {
			r.screen.SetContent(x, y, c.ch, nil, c.style)
		}
	}
	r.screen.Show()
	return nil
}

// String returns the frame buffer as text, one line per row
func (r *TerminalRenderer) String() string {
	var b strings.Builder
	for y := range r.buffer {
		for _, c := range r.buffer[y] {
			b.WriteRune(c.ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Close releases the attached screen
func (r *TerminalRenderer) Close() error {
	if r.screen != nil {
		r.screen.Fini()
		r.screen = nil
	}
	return nil
}

// headingGlyph picks an arrow for a yaw in degrees. Yaw 0 faces -Z, which
// is up on screen.
func headingGlyph(yaw float64) rune {
	quadrant := int(math.Round(physics.WrapDegrees(yaw)/90)) % len(headingGlyphs)
	return headingGlyphs[quadrant]
}

func shipStyle(ship engine.ShipState) tcell.Style {
	if ship.DamageFlash > 0.5 {
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	glow := physics.Clamp(ship.EngineGlow, 0, 1)
	return styleFor(physics.Vector3{0.6 + 0.4*glow, 0.8 + 0.2*glow, 1}, 1).Bold(true)
}

// styleFor converts an RGB colour in [0,1] scaled by intensity
func styleFor(color physics.Vector3, intensity float64) tcell.Style {
	return tcell.StyleDefault.Foreground(rgb(color.Mul(physics.Clamp(intensity, 0, 1))))
}

func rgb(c physics.Vector3) tcell.Color {
	channel := func(v float64) int32 {
		return int32(math.Round(physics.Clamp(v, 0, 1) * 255))
	}
	return tcell.NewRGBColor(channel(c[0]), channel(c[1]), channel(c[2]))
}

var _ Renderer = (*TerminalRenderer)(nil)
