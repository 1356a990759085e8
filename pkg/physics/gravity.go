// pkg/physics/gravity.go
package physics

import "math"

// MassSource is a point mass registered with a GravityField. It is never
// modified or removed once registered.
type MassSource struct {
	Position Vector3
	Mass     float64
}

// GravityField sums point-mass attraction from every registered source.
// The constant is a tuning factor folded into mass units, not a real G.
// Not safe for concurrent mutation; the director owns it.
type GravityField struct {
	constant float64
	sources  []MassSource
}

// NewGravityField creates an empty field. A constant of 0 disables gravity;
// a negative or NaN constant falls back to 1.
func NewGravityField(constant float64) *GravityField {
	if constant < 0 || math.IsNaN(constant) {
		constant = 1
	}
	return &GravityField{constant: constant}
}

// AddSource appends a mass source. Duplicates are allowed and order is irrelevant.
func (g *GravityField) AddSource(position Vector3, mass float64) {
	g.sources = append(g.sources, MassSource{Position: position, Mass: mass})
}

// Sources returns a copy of the registered sources
func (g *GravityField) Sources() []MassSource {
	out := make([]MassSource, len(g.sources))
	copy(out, g.sources)
	return out
}

// Constant returns the tuning constant applied to every contribution
func (g *GravityField) Constant() float64 {
	return g.constant
}

// AccelerationAt returns the net pull on a body of bodyMass at point.
// Each source contributes constant*mass*bodyMass/distance² along the unit
// displacement toward the source. Sources at zero distance are skipped.
func (g *GravityField) AccelerationAt(point Vector3, bodyMass float64) Vector3 {
	var total Vector3
	for _, src := range g.sources {
		displacement := src.Position.Sub(point)
		distance := displacement.Len()
		if distance <= 0 {
			continue
		}
		magnitude := g.constant * src.Mass * bodyMass / (distance * distance)
		total = total.Add(displacement.Mul(magnitude / distance))
	}
	return total
}
