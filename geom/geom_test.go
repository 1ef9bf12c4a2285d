package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecAddNegIsZero(t *testing.T) {
	for _, v := range []Vec3{{1, 2, 3}, {-4.5, 0, 1e6}, {1e-7, -3e-8, 2}} {
		assert.True(t, v.Add(v.Neg()).Equal(Vec3{}))
	}
}

func TestVecEqualTolerance(t *testing.T) {
	a := V(1, 2, 3)
	assert.True(t, a.Equal(V(1, 2, 3+1e-5)))
	assert.False(t, a.Equal(V(1, 2, 3+1e-4)))
	assert.False(t, V(1e-12, 0, 0).IsZero())
}

func TestVecUnitOfZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Unit())
	assert.InDelta(t, 1, V(3, 4, 12).Unit().Len(), 1e-12)
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Vec3{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0}})
	assert.True(t, c.Equal(V(1, 1, 0)))
	assert.Equal(t, Vec3{}, Centroid(nil))
}

func TestSkewIsCross(t *testing.T) {
	a, b := V(1, -2, 0.5), V(3, 4, -1)
	assert.True(t, Skew(a).MulVec(b).Equal(a.Cross(b)))
}

func TestMatInverse(t *testing.T) {
	m := Mat3FromRows(V(4, 1, 0), V(1, 3, 0.5), V(0, 0.5, 2))
	assert.True(t, m.Mul3(m.Inv()).ApproxEqual(Ident3(), 1e-9))
	assert.Equal(t, Mat3{}, Mat3{}.Inv())
	assert.True(t, Mat3{}.IsSingular())
}

func TestMatInverseSingularThreshold(t *testing.T) {
	tiny := Diag3(V(1e-7, 1e-7, 1e-7))
	assert.True(t, tiny.IsSingular(), "det %g", tiny.Det())
	assert.Equal(t, Mat3{}, tiny.Inv())

	small := Diag3(V(1e-6, 1e-6, 1e-6))
	assert.False(t, small.IsSingular(), "det %g", small.Det())
	assert.True(t, small.Inv().ApproxEqual(Diag3(V(1e6, 1e6, 1e6)), 1e-3))
	assert.True(t, small.Mul3(small.Inv()).ApproxEqual(Ident3(), 1e-9))
}

func TestMatRowMajorView(t *testing.T) {
	m := Mat3FromRows(V(1, 2, 3), V(4, 5, 6), V(7, 8, 9))
	assert.Equal(t, 2.0, m.At(0, 1))
	assert.Equal(t, 4.0, m.At(1, 0))
	assert.True(t, m.MulVec(V(1, 0, 0)).Equal(V(1, 4, 7)))
}

func TestNewtonStepSolvesLinearSystem(t *testing.T) {
	j := Mat3FromRows(V(2, 0, 0), V(0, 4, 1), V(0, 1, 3))
	target := V(1, 2, 3)
	x := Vec3{}
	// f(x) = Jx - b is linear, one step lands on the root.
	x = NewtonStep(x, j.MulVec(x).Sub(target), j)
	assert.True(t, j.MulVec(x).Equal(target))
}

func TestRotorIsometry(t *testing.T) {
	axes := []Vec3{{0, 1, 0}, {1, 1, 0}, {0.3, -0.2, 0.9}}
	points := []Vec3{{1, 0, 0}, {2, -3, 5}, {0.1, 0.1, -7}}
	for _, axis := range axes {
		for _, angle := range []float64{0.1, 1, math.Pi, 5} {
			r := RotorFromAxisAngle(axis, angle)
			assert.InDelta(t, 1, r.Len(), 1e-12)
			for _, p := range points {
				assert.InDelta(t, p.Len(), r.Rotate(p).Len(), 1e-9)
			}
		}
	}
}

func TestRotorRightHanded(t *testing.T) {
	r := RotorFromAxisAngle(V(0, 0, 1), math.Pi/2)
	assert.True(t, r.Rotate(V(1, 0, 0)).Equal(V(0, 1, 0)))
	r = RotorFromAxisAngle(V(0, 1, 0), math.Pi/2)
	assert.True(t, r.Rotate(V(0, 0, 1)).Equal(V(1, 0, 0)))
}

func TestRotorComposition(t *testing.T) {
	r := RotorFromAxisAngle(V(1, 2, 3), 0.7)
	s := RotorFromAxisAngle(V(-1, 0, 2), 2.1)
	for _, p := range []Vec3{{1, 0, 0}, {0.5, -2, 4}} {
		want := s.Rotate(r.Rotate(p))
		assert.True(t, r.ApplyRotor(s).Rotate(p).Equal(want))
	}
}

func TestRotorInverse(t *testing.T) {
	r := RotorFromAxisAngle(V(0.2, 1, -0.4), 1.3)
	p := V(3, -1, 2)
	assert.True(t, r.Inverse().Rotate(r.Rotate(p)).Equal(p))
	assert.True(t, r.ApplyRotor(r.Inverse()).ApproxEqual(RotorIdent(), 1e-9))
}

func TestRotorZeroAxis(t *testing.T) {
	require.Equal(t, RotorIdent(), RotorFromAxisAngle(Vec3{}, 3))
}
