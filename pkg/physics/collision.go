// pkg/physics/collision.go
package physics

// Sphere represents a spherical collision shape
type Sphere struct {
	Center Vector3
	Radius float64
}

// Collides checks if two spheres are overlapping. Touching is not a hit.
func (s Sphere) Collides(other Sphere) bool {
	return Distance(s.Center, other.Center) < s.Radius+other.Radius
}

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided     bool
	Normal       Vector3
	Penetration  float64
	ContactPoint Vector3
}

// CheckCollision performs detailed collision detection between two spheres.
// Concentric spheres collide with a zero normal.
func CheckCollision(a, b Sphere) CollisionResult {
	normal := b.Center.Sub(a.Center)
	distance := normal.Len()

	if distance >= a.Radius+b.Radius {
		return CollisionResult{Collided: false}
	}

	penetration := a.Radius + b.Radius - distance

	normal = SafeNormalize(normal)
	contactPoint := a.Center.Add(normal.Mul(a.Radius))

	return CollisionResult{
		Collided:     true,
		Normal:       normal,
		Penetration:  penetration,
		ContactPoint: contactPoint,
	}
}

const maxQuadTreeDepth = 8

// QuadTree indexes points on the X/Z plane. Items are caller-defined
// integer handles, typically slice indices.
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	Points    []Vector3
	Items     []int
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree

	depth int
}

// Rect is an axis-aligned area on the X/Z plane
type Rect struct {
	CenterX float64
	CenterZ float64
	Width   float64
	Depth   float64
}

// Contains reports whether the X/Z projection of point lies inside r
func (r Rect) Contains(point Vector3) bool {
	return point[0] >= r.CenterX-r.Width/2 &&
		point[0] < r.CenterX+r.Width/2 &&
		point[2] >= r.CenterZ-r.Depth/2 &&
		point[2] < r.CenterZ+r.Depth/2
}

// RectAround returns the square of half-size extent centred on point
func RectAround(point Vector3, extent float64) Rect {
	return Rect{CenterX: point[0], CenterZ: point[2], Width: extent * 2, Depth: extent * 2}
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector3, 0, capacity),
		Items:    make([]int, 0, capacity),
	}
}

// Insert stores item at point. Returns false if point is outside the boundary.
func (qt *QuadTree) Insert(point Vector3, item int) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	// Leaves at max depth absorb overflow so coincident points terminate
	if (len(qt.Points) < qt.Capacity || qt.depth >= maxQuadTreeDepth) && !qt.Divided {
		qt.Points = append(qt.Points, point)
		qt.Items = append(qt.Items, item)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	return qt.NorthWest.Insert(point, item) ||
		qt.NorthEast.Insert(point, item) ||
		qt.SouthWest.Insert(point, item) ||
		qt.SouthEast.Insert(point, item)
}

// Subdivide splits the quadtree into four quadrants
func (qt *QuadTree) Subdivide() {
	x := qt.Boundary.CenterX
	z := qt.Boundary.CenterZ
	w := qt.Boundary.Width / 2
	d := qt.Boundary.Depth / 2

	nw := Rect{CenterX: x - w/2, CenterZ: z + d/2, Width: w, Depth: d}
	ne := Rect{CenterX: x + w/2, CenterZ: z + d/2, Width: w, Depth: d}
	sw := Rect{CenterX: x - w/2, CenterZ: z - d/2, Width: w, Depth: d}
	se := Rect{CenterX: x + w/2, CenterZ: z - d/2, Width: w, Depth: d}

	qt.NorthWest = qt.child(nw)
	qt.NorthEast = qt.child(ne)
	qt.SouthWest = qt.child(sw)
	qt.SouthEast = qt.child(se)
	qt.Divided = true
}

func (qt *QuadTree) child(r Rect) *QuadTree {
	c := NewQuadTree(r, qt.Capacity)
	c.depth = qt.depth + 1
	return c
}

// Query appends to dst every item whose point lies inside area
func (qt *QuadTree) Query(area Rect, dst []int) []int {
	if !qt.intersects(area) {
		return dst
	}

	for i, point := range qt.Points {
		if area.Contains(point) {
			dst = append(dst, qt.Items[i])
		}
	}

	if !qt.Divided {
		return dst
	}

	dst = qt.NorthWest.Query(area, dst)
	dst = qt.NorthEast.Query(area, dst)
	dst = qt.SouthWest.Query(area, dst)
	dst = qt.SouthEast.Query(area, dst)
	return dst
}

// Clear drops all points and children, keeping the boundary
func (qt *QuadTree) Clear() {
	qt.Points = qt.Points[:0]
	qt.Items = qt.Items[:0]
	qt.Divided = false
	qt.NorthWest = nil
	qt.NorthEast = nil
	qt.SouthWest = nil
	qt.SouthEast = nil
}

// Len returns the number of stored points
func (qt *QuadTree) Len() int {
	n := len(qt.Points)
	if qt.Divided {
		n += qt.NorthWest.Len() + qt.NorthEast.Len() + qt.SouthWest.Len() + qt.SouthEast.Len()
	}
	return n
}

func (qt *QuadTree) intersects(area Rect) bool {
	return !(area.CenterX-area.Width/2 > qt.Boundary.CenterX+qt.Boundary.Width/2 ||
		area.CenterX+area.Width/2 < qt.Boundary.CenterX-qt.Boundary.Width/2 ||
		area.CenterZ-area.Depth/2 > qt.Boundary.CenterZ+qt.Boundary.Depth/2 ||
		area.CenterZ+area.Depth/2 < qt.Boundary.CenterZ-qt.Boundary.Depth/2)
}
