package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotor is a unit rotor: the scalar A and the bivector parts B (e12), C (e23)
// and D (e31). It is equivalent to the quaternion (A, -C, -D, -B).
type Rotor struct {
	A, B, C, D float64
}

// RotorIdent returns the identity rotor.
func RotorIdent() Rotor {
	return Rotor{A: 1}
}

// NewRotor builds a rotor from explicit components.
func NewRotor(a, b, c, d float64) Rotor {
	return Rotor{a, b, c, d}
}

// RotorFromAxisAngle returns the rotor turning by angle radians about axis
// (right-handed). The axis is normalized; a zero axis gives the identity.
func RotorFromAxisAngle(axis Vec3, angle float64) Rotor {
	if axis.IsZero() {
		return RotorIdent()
	}
	u := axis.Unit()
	s, c := math.Sincos(angle / 2)
	return Rotor{
		A: c,
		B: -s * u[2],
		C: -s * u[0],
		D: -s * u[1],
	}
}

func rotorFromQuat(q mgl64.Quat) Rotor {
	return Rotor{A: q.W, B: -q.V[2], C: -q.V[0], D: -q.V[1]}
}

// Quat returns the quaternion form of r.
func (r Rotor) Quat() mgl64.Quat {
	return mgl64.Quat{W: r.A, V: mgl64.Vec3{-r.C, -r.D, -r.B}}
}

func (r Rotor) String() string {
	return fmt.Sprintf("Rotor(%g, %g, %g, %g)", r.A, r.B, r.C, r.D)
}

// Rotate applies the sandwich product r p r⁻¹ to p.
func (r Rotor) Rotate(p Vec3) Vec3 {
	return Vec3(r.Quat().Rotate(mgl64.Vec3(p)))
}

// ApplyRotor returns the rotor that first rotates by r and then by s.
func (r Rotor) ApplyRotor(s Rotor) Rotor {
	return rotorFromQuat(s.Quat().Mul(r.Quat()))
}

// Inverse negates the bivector part. Valid only for unit rotors.
func (r Rotor) Inverse() Rotor {
	return Rotor{r.A, -r.B, -r.C, -r.D}
}

// Len returns the rotor magnitude.
func (r Rotor) Len() float64 {
	return r.Quat().Len()
}

// Normalize rescales r to unit magnitude.
func (r Rotor) Normalize() Rotor {
	return rotorFromQuat(r.Quat().Normalize())
}

// ApproxEqual reports whether r and o describe the same orientation.
func (r Rotor) ApproxEqual(o Rotor, threshold float64) bool {
	return r.Quat().OrientationEqualThreshold(o.Quat(), threshold)
}

// Mat3 returns the rotation matrix of r.
func (r Rotor) Mat3() Mat3 {
	return Mat3(r.Quat().Mat4().Mat3())
}
