// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is the value type used for positions, velocities, accelerations,
// colours and Euler rotations (in degrees).
type Vector3 = mgl64.Vec3

// Vec3 builds a Vector3 from its components
func Vec3(x, y, z float64) Vector3 {
	return Vector3{x, y, z}
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Vector3) float64 {
	return a.Sub(b).Len()
}

// IsZero reports whether every component of v is exactly zero
func IsZero(v Vector3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// IsFinite reports whether every component of v is a finite number
func IsFinite(v Vector3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SafeNormalize returns a unit vector in the same direction as v.
// Degenerate input (zero length or non-finite) yields the zero vector.
func SafeNormalize(v Vector3) Vector3 {
	length := v.Len()
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return Vector3{}
	}
	return v.Mul(1 / length)
}

// RotateYaw rotates the X/Z plane components of v by yaw degrees.
// Y passes through unchanged.
func RotateYaw(v Vector3, yawDegrees float64) Vector3 {
	rad := mgl64.DegToRad(yawDegrees)
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Vector3{
		v[0]*cos - v[2]*sin,
		v[1],
		v[0]*sin + v[2]*cos,
	}
}

// WrapDegrees normalizes an angle into [0,360)
func WrapDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// WrapEuler wraps every component of an Euler rotation into [0,360)
func WrapEuler(r Vector3) Vector3 {
	return Vector3{WrapDegrees(r[0]), WrapDegrees(r[1]), WrapDegrees(r[2])}
}

// Clamp limits v to the closed interval [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
