package rigid

import (
	"math"

	"github.com/setanarut/rigid/geom"
)

// Polyhedral mass properties after B. Mirtich, "Fast and Accurate
// Computation of Polyhedral Mass Properties" (1996). Faces must wind
// counter-clockwise around their outward normal.

type projectionIntegrals struct {
	p1, pa, pb, paa, pab, pbb, paaa, paab, pabb, pbbb float64
}

type faceIntegrals struct {
	fa, fb, fc, faa, fbb, fcc, faaa, fbbb, fccc, faab, fbbc, fcca float64
}

// massProperties holds density-1 results: volume, center of mass and the
// inertia tensor about the center of mass.
type massProperties struct {
	volume  float64
	com     geom.Vec3
	inertia geom.Mat3
}

func projectFace(s *Surface, a, b int) projectionIntegrals {
	var p projectionIntegrals
	n := s.Len()
	for i := range n {
		v0, v1 := s.Point(i), s.Point(i+1)
		a0, b0 := v0[a], v0[b]
		a1, b1 := v1[a], v1[b]
		da, db := a1-a0, b1-b0

		a02, b02 := a0*a0, b0*b0
		a03, b03 := a02*a0, b02*b0
		a04, b04 := a03*a0, b03*b0
		a12, b12 := a1*a1, b1*b1
		a13, b13 := a12*a1, b12*b1

		c1 := a1 + a0
		ca := a1*c1 + a02
		caa := a1*ca + a03
		caaa := a1*caa + a04
		cb := b1*(b1+b0) + b02
		cbb := b1*cb + b03
		cbbb := b1*cbb + b04
		cab := 3*a12 + 2*a1*a0 + a02
		kab := a12 + 2*a1*a0 + 3*a02
		caab := a0*cab + 4*a13
		kaab := a1*kab + 4*a03
		cabb := 4*b13 + 3*b12*b0 + 2*b1*b02 + b03
		kabb := b13 + 2*b12*b0 + 3*b1*b02 + 4*b03

		p.p1 += db * c1
		p.pa += db * ca
		p.paa += db * caa
		p.paaa += db * caaa
		p.pb += da * cb
		p.pbb += da * cbb
		p.pbbb += da * cbbb
		p.pab += db * (b1*cab + b0*kab)
		p.paab += db * (b1*caab + b0*kaab)
		p.pabb += da * (a1*cabb + a0*kabb)
	}
	p.p1 /= 2
	p.pa /= 6
	p.paa /= 12
	p.paaa /= 20
	p.pb /= -6
	p.pbb /= -12
	p.pbbb /= -20
	p.pab /= 24
	p.paab /= 60
	p.pabb /= -60
	return p
}

func integrateFace(s *Surface, n geom.Vec3, w float64, a, b, c int) faceIntegrals {
	p := projectFace(s, a, b)
	na, nb := n[a], n[b]
	k1 := 1 / n[c]
	k2 := k1 * k1
	k3 := k2 * k1
	k4 := k3 * k1

	var f faceIntegrals
	f.fa = k1 * p.pa
	f.fb = k1 * p.pb
	f.fc = -k2 * (na*p.pa + nb*p.pb + w*p.p1)
	f.faa = k1 * p.paa
	f.fbb = k1 * p.pbb
	f.fcc = k3 * (na*na*p.paa + 2*na*nb*p.pab + nb*nb*p.pbb +
		w*(2*(na*p.pa+nb*p.pb)+w*p.p1))
	f.faaa = k1 * p.paaa
	f.fbbb = k1 * p.pbbb
	f.fccc = -k4 * (na*na*na*p.paaa + 3*na*na*nb*p.paab + 3*na*nb*nb*p.pabb + nb*nb*nb*p.pbbb +
		3*w*(na*na*p.paa+2*na*nb*p.pab+nb*nb*p.pbb) +
		w*w*(3*(na*p.pa+nb*p.pb)+w*p.p1))
	f.faab = k1 * p.paab
	f.fbbc = -k2 * (na*p.pabb + nb*p.pbbb + w*p.pbb)
	f.fcca = k3 * (na*na*p.paaa + 2*na*nb*p.paab + nb*nb*p.pabb +
		w*(2*(na*p.paa+nb*p.pab)+w*p.pa))
	return f
}

// computeMassProperties integrates over every surface, interior walls
// included, since they close the hull.
func computeMassProperties(surfaces []*Surface) massProperties {
	var t0 float64
	var t1, t2, tp geom.Vec3

	for _, s := range surfaces {
		n := s.Normal()
		w := -n.Dot(s.Point(0))

		c := 0
		if math.Abs(n[1]) > math.Abs(n[c]) {
			c = 1
		}
		if math.Abs(n[2]) > math.Abs(n[c]) {
			c = 2
		}
		a := (c + 1) % 3
		b := (a + 1) % 3

		f := integrateFace(s, n, w, a, b, c)

		if a == 0 {
			t0 += n[0] * f.fa
		} else if b == 0 {
			t0 += n[0] * f.fb
		} else {
			t0 += n[0] * f.fc
		}
		t1[a] += n[a] * f.faa
		t1[b] += n[b] * f.fbb
		t1[c] += n[c] * f.fcc
		t2[a] += n[a] * f.faaa
		t2[b] += n[b] * f.fbbb
		t2[c] += n[c] * f.fccc
		tp[a] += n[a] * f.faab
		tp[b] += n[b] * f.fbbc
		tp[c] += n[c] * f.fcca
	}
	t1 = t1.Scale(0.5)
	t2 = t2.Scale(1.0 / 3.0)
	tp = tp.Scale(0.5)

	r := t1.Scale(1 / t0)
	m := t0

	ixx := t2[1] + t2[2] - m*(r[1]*r[1]+r[2]*r[2])
	iyy := t2[2] + t2[0] - m*(r[2]*r[2]+r[0]*r[0])
	izz := t2[0] + t2[1] - m*(r[0]*r[0]+r[1]*r[1])
	ixy := -tp[0] + m*r[0]*r[1]
	iyz := -tp[1] + m*r[1]*r[2]
	izx := -tp[2] + m*r[2]*r[0]

	return massProperties{
		volume: t0,
		com:    r,
		inertia: geom.Mat3FromRows(
			geom.V(ixx, ixy, izx),
			geom.V(ixy, iyy, iyz),
			geom.V(izx, iyz, izz),
		),
	}
}

// parallelAxis returns the tensor about a point displaced by d from the
// center of mass of a body with the given mass and central tensor.
func parallelAxis(inertia geom.Mat3, mass float64, d geom.Vec3) geom.Mat3 {
	dd := d.Dot(d)
	outer := geom.Mat3FromRows(d.Scale(d[0]), d.Scale(d[1]), d.Scale(d[2]))
	return inertia.Add(geom.Ident3().Scale(dd).Sub(outer).Scale(mass))
}
