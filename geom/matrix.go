package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat3 is a column-major 3x3 matrix used for inertia tensors and Jacobians.
type Mat3 mgl64.Mat3

// Ident3 returns the identity matrix.
func Ident3() Mat3 {
	return Mat3(mgl64.Ident3())
}

// Diag3 returns a diagonal matrix.
func Diag3(d Vec3) Mat3 {
	return Mat3(mgl64.Diag3(mgl64.Vec3(d)))
}

// Mat3FromRows builds a matrix from its rows.
func Mat3FromRows(r0, r1, r2 Vec3) Mat3 {
	return Mat3(mgl64.Mat3FromRows(mgl64.Vec3(r0), mgl64.Vec3(r1), mgl64.Vec3(r2)))
}

// Skew returns the cross-product matrix of v, so that Skew(v).MulVec(u) == v.Cross(u).
func Skew(v Vec3) Mat3 {
	return Mat3FromRows(
		Vec3{0, -v[2], v[1]},
		Vec3{v[2], 0, -v[0]},
		Vec3{-v[1], v[0], 0},
	)
}

func (m Mat3) String() string {
	return fmt.Sprintf("[%v %v %v]", m.Row(0), m.Row(1), m.Row(2))
}

// At returns the element at row, col.
func (m Mat3) At(row, col int) float64 {
	return mgl64.Mat3(m).At(row, col)
}

// Row returns a row of m.
func (m Mat3) Row(row int) Vec3 {
	return Vec3(mgl64.Mat3(m).Row(row))
}

// Diag returns the main diagonal.
func (m Mat3) Diag() Vec3 {
	return Vec3(mgl64.Mat3(m).Diag())
}

// Add returns m + o.
func (m Mat3) Add(o Mat3) Mat3 {
	return Mat3(mgl64.Mat3(m).Add(mgl64.Mat3(o)))
}

// Sub returns m - o.
func (m Mat3) Sub(o Mat3) Mat3 {
	return Mat3(mgl64.Mat3(m).Sub(mgl64.Mat3(o)))
}

// Scale returns m * s.
func (m Mat3) Scale(s float64) Mat3 {
	return Mat3(mgl64.Mat3(m).Mul(s))
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3(mgl64.Mat3(m).Mul3x1(mgl64.Vec3(v)))
}

// Mul3 returns m * o.
func (m Mat3) Mul3(o Mat3) Mat3 {
	return Mat3(mgl64.Mat3(m).Mul3(mgl64.Mat3(o)))
}

// Transpose returns the transpose of m.
func (m Mat3) Transpose() Mat3 {
	return Mat3(mgl64.Mat3(m).Transpose())
}

// Det returns the determinant.
func (m Mat3) Det() float64 {
	return mgl64.Mat3(m).Det()
}

// singularDet is the determinant magnitude below which a matrix is treated
// as singular.
const singularDet = 1e-20

// Inv returns the adjugate inverse of m.
//
// A singular matrix (|det| below 1e-20) yields the zero matrix. Callers must
// supply non-singular tensors; the result is not an error.
func (m Mat3) Inv() Mat3 {
	if m.IsSingular() {
		return Mat3{}
	}
	return Mat3(mgl64.Mat3(m).Inv())
}

// IsSingular reports whether Inv would return the zero matrix.
func (m Mat3) IsSingular() bool {
	return math.Abs(m.Det()) < singularDet
}

// ApproxEqual compares element-wise with the given threshold.
func (m Mat3) ApproxEqual(o Mat3, threshold float64) bool {
	return mgl64.Mat3(m).ApproxEqualThreshold(mgl64.Mat3(o), threshold)
}

// NewtonStep performs one Newton iteration x - J⁻¹·f.
func NewtonStep(x, f Vec3, jacobian Mat3) Vec3 {
	return x.Sub(jacobian.Inv().MulVec(f))
}
