// Package geom is the small 3D math kernel used by the engine: vectors,
// 3x3 matrices and rotors.
package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// equalEpsilonSq is the squared distance under which two vectors are equal.
const equalEpsilonSq = 1e-9

// Vec3 is a point or a free vector. Operations return new values.
type Vec3 mgl64.Vec3

// V is convenience constructor for Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// X returns the x component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the y component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the z component.
func (v Vec3) Z() float64 { return v[2] }

// Mgl returns v as a mathgl vector.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3(mgl64.Vec3(v).Add(mgl64.Vec3(o)))
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3(mgl64.Vec3(v).Sub(mgl64.Vec3(o)))
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3(mgl64.Vec3(v).Mul(s))
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return mgl64.Vec3(v).Dot(mgl64.Vec3(o))
}

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3(mgl64.Vec3(v).Cross(mgl64.Vec3(o)))
}

// Len returns the magnitude of v.
func (v Vec3) Len() float64 {
	return mgl64.Vec3(v).Len()
}

// LenSq returns the squared magnitude of v.
func (v Vec3) LenSq() float64 {
	return mgl64.Vec3(v).LenSqr()
}

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Equal reports whether v and o are closer than the squared distance 1e-9.
func (v Vec3) Equal(o Vec3) bool {
	return v.Sub(o).LenSq() < equalEpsilonSq
}

// Dist returns the distance between two points.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Lerp linearly interpolates between v and o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Min returns the component-wise minimum.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{min(v[0], o[0]), min(v[1], o[1]), min(v[2], o[2])}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{max(v[0], o[0]), max(v[1], o[1]), max(v[2], o[2])}
}

// Centroid returns the average of points. It returns the zero vector for an empty slice.
func Centroid(points []Vec3) Vec3 {
	var sum Vec3
	if len(points) == 0 {
		return sum
	}
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}
