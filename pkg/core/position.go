// pkg/core/position.go
package core

import "math"

// Position3D represents a 3D coordinate in the session's world frame.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of p and o.
func (p Position3D) Add(o Position3D) Position3D {
	return Position3D{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns the component-wise difference p - o.
func (p Position3D) Sub(o Position3D) Position3D {
	return Position3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Magnitude returns the Euclidean length of p treated as a vector.
func (p Position3D) Magnitude() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Distance returns the Euclidean distance between p and o.
func (p Position3D) Distance(o Position3D) float64 {
	return p.Sub(o).Magnitude()
}

// IsFinite reports whether all components are finite (no NaN or Inf).
// Poses from a live tracking source are expected to be finite; callers
// must reject anything else before it reaches storage.
func (p Position3D) IsFinite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
