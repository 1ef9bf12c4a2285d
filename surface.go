package rigid

import (
	"fmt"
	"slices"

	"github.com/setanarut/rigid/geom"
)

// Surface is a planar convex face of a hull. Its points are a ring of
// indices into the point storage of whoever owns it: the surface itself
// until a hull adopts it, then the hull, then the body arena.
type Surface struct {
	pool      []geom.Vec3
	idx       []int
	invLength []float64
	interior  bool
	hull      *ConvexHull
}

// NewSurface copies points into a new surface. The ring is reversed when
// its winding disagrees with normalHint so that Normal always points along
// the hint. Interior surfaces are internal walls between hulls of one body.
func NewSurface(points []geom.Vec3, normalHint geom.Vec3, interior bool) (*Surface, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateSurface, len(points))
	}
	s := &Surface{
		pool:     slices.Clone(points),
		idx:      make([]int, len(points)),
		interior: interior,
	}
	for i := range s.idx {
		s.idx[i] = i
	}
	n := s.rawNormal()
	if n.LenSq() == 0 {
		return nil, ErrDegenerateSurface
	}
	if n.Dot(normalHint) < 0 {
		slices.Reverse(s.pool)
	}
	s.invLength = make([]float64, len(points))
	for i := range s.idx {
		s.invLength[i] = 1 / s.Point(i+1).Dist(s.Point(i))
	}
	return s, nil
}

// rawNormal is (p1-p0)×(p2-p1).
func (s *Surface) rawNormal() geom.Vec3 {
	p0, p1, p2 := s.Point(0), s.Point(1), s.Point(2)
	return p1.Sub(p0).Cross(p2.Sub(p1))
}

// Len returns the number of points in the ring.
func (s *Surface) Len() int {
	return len(s.idx)
}

// Point returns ring point i. The index wraps.
func (s *Surface) Point(i int) geom.Vec3 {
	return s.pool[s.idx[i%len(s.idx)]]
}

// Points returns a copy of the ring in current world coordinates.
func (s *Surface) Points() []geom.Vec3 {
	out := make([]geom.Vec3, len(s.idx))
	for i, j := range s.idx {
		out[i] = s.pool[j]
	}
	return out
}

// Normal returns the outward unit normal of the current points.
func (s *Surface) Normal() geom.Vec3 {
	return s.rawNormal().Unit()
}

// InvEdgeLength returns 1/|p(i+1)-p(i)|, or -1 when i is out of range.
func (s *Surface) InvEdgeLength(i int) float64 {
	if i < 0 || i >= len(s.invLength) {
		return -1
	}
	return s.invLength[i]
}

func (s *Surface) owned() bool {
	return s.hull != nil
}

// Hull returns the hull the surface belongs to, or nil.
func (s *Surface) Hull() *ConvexHull {
	return s.hull
}

// Interior reports whether the surface is an internal wall.
func (s *Surface) Interior() bool {
	return s.interior
}

// Centroid returns the average of the ring points.
func (s *Surface) Centroid() geom.Vec3 {
	return geom.Centroid(s.Points())
}

// clone returns a copy of s reading from pool.
func (s *Surface) clone(pool []geom.Vec3) *Surface {
	return &Surface{
		pool:      pool,
		idx:       slices.Clone(s.idx),
		invLength: slices.Clone(s.invLength),
		interior:  s.interior,
	}
}
