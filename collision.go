package rigid

import (
	"fmt"
	"math"

	"github.com/setanarut/rigid/geom"
	"github.com/setanarut/vec"
)

// manifoldEpsilon is the distance a support point may lie outside a face
// edge and still count as inside the face.
const manifoldEpsilon = 1e-9

// Result is the outcome of a narrow-phase test: NoCollision, Separating or
// *Contact.
type Result interface {
	result()
}

// NoCollision means no admissible contact was found, though no separating
// axis was found either.
type NoCollision struct{}

// Separating carries an axis on which the two hulls do not overlap.
type Separating struct {
	Axis geom.Vec3
}

// ContactKind tells which test produced a contact.
type ContactKind uint8

const (
	KindFace ContactKind = iota
	KindEdge
)

func (k ContactKind) String() string {
	switch k {
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	default:
		return fmt.Sprintf("ContactKind(%d)", k)
	}
}

// Contact is an overlapping hull pair. Normal points from the collidee
// toward the collider; Depth is the overlap along Normal. Point is the
// centroid of Manifold.
type Contact struct {
	Kind     ContactKind
	Normal   geom.Vec3
	Point    geom.Vec3
	Depth    float64
	Collidee *ConvexHull
	Collider *ConvexHull

	// Manifold holds the support points for a face contact, or the edge
	// crossings on the collidee for an edge contact.
	Manifold []geom.Vec3
}

func (NoCollision) result() {}
func (Separating) result()  {}
func (*Contact) result()    {}

func (c *Contact) String() string {
	return fmt.Sprintf("%v contact n=%v p=%v depth=%.4g", c.Kind, c.Normal, c.Point, c.Depth)
}

// FaceContact runs the face-normal separating axis test with h as collidee.
// Face normals whose cosine with an already tested normal exceeds
// dedupCosine are skipped. The smallest overlap wins. Its manifold is every
// penetrating collider point lying over the face of h best aligned with the
// contact normal. When none lie over that face the result is NoCollision.
func (h *ConvexHull) FaceContact(collider *ConvexHull, dedupCosine float64) Result {
	hpts, cpts := h.Vertices(), collider.Vertices()
	tested := make([]geom.Vec3, 0, len(h.surfaces))
	best := Contact{Kind: KindFace, Depth: infinity, Collidee: h, Collider: collider}

	for _, s := range h.surfaces {
		if s.interior {
			continue
		}
		n := s.Normal()
		if isTestedAxis(tested, n, dedupCosine) {
			continue
		}
		tested = append(tested, n)

		hMin, hMax := project(hpts, n)
		cMin, cMax := project(cpts, n)
		if hMax < cMin || cMax < hMin {
			return Separating{Axis: n}
		}
		depth, axis := hMax-cMin, n
		if d := cMax - hMin; d < depth {
			depth, axis = d, n.Neg()
		}
		if depth < best.Depth {
			best.Depth = depth
			best.Normal = axis
		}
	}
	if best.Depth == infinity {
		return NoCollision{}
	}

	face := h.alignedSurface(best.Normal)
	if face == nil {
		return NoCollision{}
	}
	lo, _ := project(cpts, best.Normal)
	reach := lo + math.Max(supportTolerance, best.Depth)
	for _, p := range cpts {
		if p.Dot(best.Normal) <= reach && insideFace(face, p) {
			best.Manifold = append(best.Manifold, p)
		}
	}
	if len(best.Manifold) == 0 {
		return NoCollision{}
	}
	best.Point = geom.Centroid(best.Manifold)
	return &best
}

// EdgeContact runs the edge-edge separating axis test with h as collidee.
// Axes are cross products of exterior edge pairs. A pair is a candidate
// only when both edges support their hull along the axis and cross within
// both segments; the crossing is taken on the edge of h. The smallest
// overlap wins and every crossing found along the winning axis forms the
// manifold. With no candidate the result is NoCollision.
func (h *ConvexHull) EdgeContact(collider *ConvexHull) Result {
	hpts, cpts := h.Vertices(), collider.Vertices()
	best := Contact{Kind: KindEdge, Depth: infinity, Collidee: h, Collider: collider}
	var crossings []edgeCrossing

	for _, e1 := range h.edges {
		if e1.interior {
			continue
		}
		a1, b1 := h.pool[e1.a], h.pool[e1.b]
		d1 := b1.Sub(a1).Scale(e1.invLen)
		for _, e2 := range collider.edges {
			if e2.interior {
				continue
			}
			a2, b2 := collider.pool[e2.a], collider.pool[e2.b]
			n := d1.Cross(b2.Sub(a2).Scale(e2.invLen))
			if n.LenSq() < parallelEpsilon {
				continue
			}
			n = n.Unit()

			hMin, hMax := project(hpts, n)
			cMin, cMax := project(cpts, n)
			if hMax < cMin || cMax < hMin {
				return Separating{Axis: n}
			}
			depth, axis, top, bottom := hMax-cMin, n, hMax, cMin
			if d := cMax - hMin; d < depth {
				depth, axis, top, bottom = d, n.Neg(), -hMin, -cMax
			}
			if math.Min(a1.Dot(axis), b1.Dot(axis)) < top-supportTolerance ||
				math.Max(a2.Dot(axis), b2.Dot(axis)) > bottom+supportTolerance {
				continue
			}
			p, ok := crossEdges(a1, d1, 1/e1.invLen, a2, b2, axis)
			if !ok {
				continue
			}
			crossings = append(crossings, edgeCrossing{axis: axis, point: p})
			if depth < best.Depth {
				best.Depth, best.Normal = depth, axis
			}
		}
	}
	if len(crossings) == 0 {
		return NoCollision{}
	}
	for _, c := range crossings {
		if c.axis.Dot(best.Normal) >= 1-manifoldEpsilon {
			best.Manifold = append(best.Manifold, c.point)
		}
	}
	best.Point = geom.Centroid(best.Manifold)
	return &best
}

type edgeCrossing struct {
	axis, point geom.Vec3
}

func isTestedAxis(tested []geom.Vec3, n geom.Vec3, dedupCosine float64) bool {
	for _, t := range tested {
		if t.Dot(n) > dedupCosine {
			return true
		}
	}
	return false
}

// alignedSurface returns the exterior surface whose normal is closest to n.
func (h *ConvexHull) alignedSurface(n geom.Vec3) *Surface {
	var face *Surface
	bestDot := -infinity
	for _, s := range h.surfaces {
		if s.interior {
			continue
		}
		if d := s.Normal().Dot(n); d > bestDot {
			bestDot, face = d, s
		}
	}
	return face
}

// insideFace projects p onto the plane of s and tests it against every
// edge of the ring, which winds counter-clockwise in the plane basis.
func insideFace(s *Surface, p geom.Vec3) bool {
	origin := s.Point(0)
	u := s.Point(1).Sub(origin).Unit()
	w := s.Normal().Cross(u)
	flat := func(q geom.Vec3) vec.Vec2 {
		d := q.Sub(origin)
		return vec.Vec2{X: d.Dot(u), Y: d.Dot(w)}
	}
	pt := flat(p)
	prev := flat(origin)
	for i := 1; i <= s.Len(); i++ {
		cur := flat(s.Point(i))
		dist := cur.Sub(prev).Cross(pt.Sub(prev)) * s.InvEdgeLength(i-1)
		if dist < -manifoldEpsilon {
			return false
		}
		prev = cur
	}
	return true
}

// crossEdges intersects segment a2-b2 with the segment starting at a1 with
// unit direction d1 and length len1, both projected along n. It returns the
// crossing on the first segment.
func crossEdges(a1, d1 geom.Vec3, len1 float64, a2, b2, n geom.Vec3) (geom.Vec3, bool) {
	side := d1.Cross(n)
	flat := func(q geom.Vec3) vec.Vec2 {
		d := q.Sub(a1)
		return vec.Vec2{X: d.Dot(d1), Y: d.Dot(side)}
	}
	q0, q1 := flat(a2), flat(b2)
	dy := q0.Y - q1.Y
	if dy == 0 {
		return geom.Vec3{}, false
	}
	t := q0.Y / dy
	if t < 0 || t > 1 {
		return geom.Vec3{}, false
	}
	x := q0.Add(q1.Sub(q0).Scale(t)).X
	if x < 0 || x > len1 {
		return geom.Vec3{}, false
	}
	return a1.Add(d1.Scale(x)), true
}

// asContact unwraps a result. separating is true only for Separating.
func asContact(r Result) (c *Contact, separating bool) {
	switch r := r.(type) {
	case *Contact:
		return r, false
	case Separating:
		return nil, true
	case NoCollision:
		return nil, false
	default:
		panic(fmt.Sprintf("rigid: unknown result %T", r))
	}
}

// collideHulls runs both face tests and the edge test on one hull pair.
// Any separating axis rejects the pair. The shallower face contact wins
// unless the edge contact is strictly shallower.
func collideHulls(a, b *ConvexHull, dedupCosine float64) *Contact {
	faceA, sep := asContact(a.FaceContact(b, dedupCosine))
	if sep {
		return nil
	}
	faceB, sep := asContact(b.FaceContact(a, dedupCosine))
	if sep {
		return nil
	}
	edge, sep := asContact(a.EdgeContact(b))
	if sep {
		return nil
	}

	face := faceA
	if face == nil || (faceB != nil && faceB.Depth < face.Depth) {
		face = faceB
	}
	if edge != nil && (face == nil || edge.Depth < face.Depth) {
		return edge
	}
	return face
}

// collideBodies returns the deepest contact over every hull pair of a and
// b whose bounding spheres overlap, or nil.
func collideBodies(a, b *Body, dedupCosine float64) *Contact {
	var best *Contact
	for _, ha := range a.hulls {
		for _, hb := range b.hulls {
			if !ha.InCollisionRange(hb) {
				continue
			}
			c := collideHulls(ha, hb, dedupCosine)
			if c != nil && (best == nil || c.Depth > best.Depth) {
				best = c
			}
		}
	}
	return best
}
