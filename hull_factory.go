package rigid

import (
	"fmt"

	"github.com/setanarut/rigid/geom"
)

// BoxFace selects faces of a box hull.
type BoxFace uint8

const (
	FaceMinX BoxFace = 1 << iota
	FaceMaxX
	FaceMinY
	FaceMaxY
	FaceMinZ
	FaceMaxZ
)

// NewHullFromFaces builds a hull from point rings. Each ring is oriented
// outward using the direction from the centroid of all rings to the ring
// centroid, which is valid for convex input.
//
// Parameters:
//   - faces: the point rings, one per face.
//   - interior: optional flags marking faces as internal walls; may be nil.
func NewHullFromFaces(faces [][]geom.Vec3, interior []bool) (*ConvexHull, error) {
	var all []geom.Vec3
	for _, f := range faces {
		all = append(all, f...)
	}
	center := geom.Centroid(all)

	surfaces := make([]*Surface, len(faces))
	for i, f := range faces {
		hint := geom.Centroid(f).Sub(center)
		s, err := NewSurface(f, hint, i < len(interior) && interior[i])
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		surfaces[i] = s
	}
	return NewHull(surfaces...)
}

// NewBoxHull returns an axis-aligned box hull filling bb. Faces selected by
// interior are internal walls.
func NewBoxHull(bb BB, interior BoxFace) (*ConvexHull, error) {
	lo, hi := bb.Min, bb.Max
	corner := func(x, y, z int) geom.Vec3 {
		c := lo
		if x == 1 {
			c[0] = hi[0]
		}
		if y == 1 {
			c[1] = hi[1]
		}
		if z == 1 {
			c[2] = hi[2]
		}
		return c
	}
	faces := []struct {
		ring []geom.Vec3
		hint geom.Vec3
		face BoxFace
	}{
		{[]geom.Vec3{corner(0, 0, 0), corner(0, 0, 1), corner(0, 1, 1), corner(0, 1, 0)}, geom.V(-1, 0, 0), FaceMinX},
		{[]geom.Vec3{corner(1, 0, 0), corner(1, 1, 0), corner(1, 1, 1), corner(1, 0, 1)}, geom.V(1, 0, 0), FaceMaxX},
		{[]geom.Vec3{corner(0, 0, 0), corner(1, 0, 0), corner(1, 0, 1), corner(0, 0, 1)}, geom.V(0, -1, 0), FaceMinY},
		{[]geom.Vec3{corner(0, 1, 0), corner(0, 1, 1), corner(1, 1, 1), corner(1, 1, 0)}, geom.V(0, 1, 0), FaceMaxY},
		{[]geom.Vec3{corner(0, 0, 0), corner(0, 1, 0), corner(1, 1, 0), corner(1, 0, 0)}, geom.V(0, 0, -1), FaceMinZ},
		{[]geom.Vec3{corner(0, 0, 1), corner(1, 0, 1), corner(1, 1, 1), corner(0, 1, 1)}, geom.V(0, 0, 1), FaceMaxZ},
	}
	surfaces := make([]*Surface, len(faces))
	for i, f := range faces {
		s, err := NewSurface(f.ring, f.hint, interior&f.face != 0)
		if err != nil {
			return nil, err
		}
		surfaces[i] = s
	}
	return NewHull(surfaces...)
}

// NewPrismHull extrudes the convex polygon base along extrude.
func NewPrismHull(base []geom.Vec3, extrude geom.Vec3) (*ConvexHull, error) {
	if len(base) < 3 {
		return nil, fmt.Errorf("%w: base has %d points", ErrDegenerateSurface, len(base))
	}
	n := len(base)
	top := make([]geom.Vec3, n)
	for i, p := range base {
		top[i] = p.Add(extrude)
	}
	faces := [][]geom.Vec3{base, top}
	for i := range n {
		j := (i + 1) % n
		faces = append(faces, []geom.Vec3{base[i], base[j], top[j], top[i]})
	}
	return NewHullFromFaces(faces, nil)
}

// NewBoxBody builds a single-box body; def.Hulls is ignored.
func NewBoxBody(bb BB, def BodyDef) (*Body, error) {
	h, err := NewBoxHull(bb, 0)
	if err != nil {
		return nil, err
	}
	def.Hulls = []*ConvexHull{h}
	return NewBody(def)
}
