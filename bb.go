package rigid

import (
	"fmt"

	"github.com/setanarut/rigid/geom"
)

// BB is an axis-aligned 3D bounding box.
type BB struct {
	Min, Max geom.Vec3
}

// NewBB is convenience constructor for BB structs.
func NewBB(min, max geom.Vec3) BB {
	return BB{Min: min, Max: max}
}

func (bb BB) String() string {
	return fmt.Sprintf("%v %v", bb.Min, bb.Max)
}

// NewBBForExtents constructs a BB centered on a point with the given half sizes.
func NewBBForExtents(c, half geom.Vec3) BB {
	return BB{Min: c.Sub(half), Max: c.Add(half)}
}

// NewBBForSphere constructs a BB for a sphere with the given position and radius.
func NewBBForSphere(p geom.Vec3, r float64) BB {
	return NewBBForExtents(p, geom.V(r, r, r))
}

// NewBBForPoints returns the smallest BB holding every point.
func NewBBForPoints(points []geom.Vec3) BB {
	if len(points) == 0 {
		return BB{}
	}
	bb := BB{points[0], points[0]}
	for _, p := range points[1:] {
		bb = bb.Expand(p)
	}
	return bb
}

// Intersects returns true if a and b intersect.
func (bb BB) Intersects(b BB) bool {
	for i := range 3 {
		if bb.Min[i] > b.Max[i] || b.Min[i] > bb.Max[i] {
			return false
		}
	}
	return true
}

// Contains returns true if other lies completely within bb.
func (bb BB) Contains(other BB) bool {
	for i := range 3 {
		if bb.Min[i] > other.Min[i] || bb.Max[i] < other.Max[i] {
			return false
		}
	}
	return true
}

// ContainsVect returns true if bb contains p.
func (bb BB) ContainsVect(p geom.Vec3) bool {
	for i := range 3 {
		if p[i] < bb.Min[i] || p[i] > bb.Max[i] {
			return false
		}
	}
	return true
}

// Merge returns a bounding box that holds both bounding boxes.
func (bb BB) Merge(b BB) BB {
	return BB{bb.Min.Min(b.Min), bb.Max.Max(b.Max)}
}

// Expand returns a bounding box that holds both bb and p.
func (bb BB) Expand(p geom.Vec3) BB {
	return BB{bb.Min.Min(p), bb.Max.Max(p)}
}

// Center returns the center of a bounding box.
func (bb BB) Center() geom.Vec3 {
	return bb.Min.Lerp(bb.Max, 0.5)
}

// HalfExtents returns half the box dimensions.
func (bb BB) HalfExtents() geom.Vec3 {
	return bb.Max.Sub(bb.Min).Scale(0.5)
}

// Volume returns the volume of the bounding box.
func (bb BB) Volume() float64 {
	d := bb.Max.Sub(bb.Min)
	return d[0] * d[1] * d[2]
}

// Offset returns a bounding box offseted by v.
func (bb BB) Offset(v geom.Vec3) BB {
	return BB{bb.Min.Add(v), bb.Max.Add(v)}
}

// ClampVect clamps a vector to bounding box.
func (bb BB) ClampVect(p geom.Vec3) geom.Vec3 {
	return geom.V(
		clamp(p[0], bb.Min[0], bb.Max[0]),
		clamp(p[1], bb.Min[1], bb.Max[1]),
		clamp(p[2], bb.Min[2], bb.Max[2]),
	)
}
