package rigid

import (
	"fmt"
	"math"

	"github.com/setanarut/rigid/geom"
)

// edge joins two hull points. It is interior when every surface touching it
// is interior.
type edge struct {
	a, b     int
	invLen   float64
	interior bool
}

// ConvexHull is one convex polyhedron piece of a body.
type ConvexHull struct {
	surfaces []*Surface
	// The deduplicated points followed by the center of mass. Once a body
	// adopts the hull this is a view into the body arena.
	pool   []geom.Vec3
	count  int
	edges  []edge
	volume float64
	// density-1 tensor about the center of mass, in the construction frame
	unitInertia geom.Mat3
	density     float64
	radius      float64
	owner       *Body
}

// NewHull builds a hull from surfaces forming a closed convex polyhedron.
// The hull takes ownership of the surfaces. Mass properties are computed
// once here with density 1; a body rescales them with its own density.
//
// Degenerate (zero volume) input produces NaN properties.
func NewHull(surfaces ...*Surface) (*ConvexHull, error) {
	if len(surfaces) < 4 {
		return nil, fmt.Errorf("%w: got %d surfaces", ErrDegenerateHull, len(surfaces))
	}
	var points []geom.Vec3
	rings := make([][]int, len(surfaces))
	for si, s := range surfaces {
		if s.owned() {
			return nil, ErrSurfaceOwned
		}
		ring := make([]int, s.Len())
		for i := range ring {
			p := s.Point(i)
			j := indexOfPoint(points, p)
			if j < 0 {
				j = len(points)
				points = append(points, p)
			}
			ring[i] = j
		}
		rings[si] = ring
	}

	h := &ConvexHull{
		surfaces: surfaces,
		count:    len(points),
		pool:     append(points, geom.Vec3{}),
		density:  1,
	}
	for si, s := range surfaces {
		s.idx = rings[si]
		s.pool = h.pool
		s.hull = h
	}
	h.buildEdges()
	h.updateMassProperties()
	return h, nil
}

// updateMassProperties computes volume, unit-density tensor, centroid and
// radius from the current vertex positions.
func (h *ConvexHull) updateMassProperties() {
	props := computeMassProperties(h.surfaces)
	h.volume = props.volume
	h.unitInertia = props.inertia
	h.pool[h.count] = props.com
	h.radius = 0
	for _, p := range h.Vertices() {
		h.radius = math.Max(h.radius, p.Dist(props.com))
	}
}

func indexOfPoint(points []geom.Vec3, p geom.Vec3) int {
	for i, q := range points {
		if q.Equal(p) {
			return i
		}
	}
	return -1
}

func (h *ConvexHull) buildEdges() {
	seen := map[[2]int]int{}
	for _, s := range h.surfaces {
		for i := range s.Len() {
			a, b := s.idx[i], s.idx[(i+1)%s.Len()]
			key := [2]int{min(a, b), max(a, b)}
			if k, ok := seen[key]; ok {
				h.edges[k].interior = h.edges[k].interior && s.interior
				continue
			}
			seen[key] = len(h.edges)
			h.edges = append(h.edges, edge{a: a, b: b, invLen: s.InvEdgeLength(i), interior: s.interior})
		}
	}
}

// bind points the hull and its surfaces at new storage of len count+1.
func (h *ConvexHull) bind(pool []geom.Vec3) {
	h.pool = pool
	for _, s := range h.surfaces {
		s.pool = pool
	}
}

// Clone returns an unowned deep copy of h at its current world position.
// Its tensor is recomputed in the world frame, so a clone of a rotated hull
// builds a body with the inertia of its current pose.
func (h *ConvexHull) Clone() *ConvexHull {
	pool := make([]geom.Vec3, len(h.pool))
	copy(pool, h.pool)
	c := h.cloneInto(pool)
	c.updateMassProperties()
	return c
}

func (h *ConvexHull) cloneInto(pool []geom.Vec3) *ConvexHull {
	c := &ConvexHull{
		pool:        pool,
		count:       h.count,
		edges:       append([]edge(nil), h.edges...),
		volume:      h.volume,
		unitInertia: h.unitInertia,
		density:     h.density,
		radius:      h.radius,
	}
	c.surfaces = make([]*Surface, len(h.surfaces))
	for i, s := range h.surfaces {
		c.surfaces[i] = s.clone(pool)
		c.surfaces[i].hull = c
	}
	return c
}

// Body returns the owning body, or nil.
func (h *ConvexHull) Body() *Body {
	return h.owner
}

// Surfaces returns the faces of the hull.
func (h *ConvexHull) Surfaces() []*Surface {
	return h.surfaces
}

// Vertices returns the deduplicated points in world coordinates.
// The slice aliases hull storage and must not be modified.
func (h *ConvexHull) Vertices() []geom.Vec3 {
	return h.pool[:h.count:h.count]
}

// EdgeCount returns the number of deduplicated edges.
func (h *ConvexHull) EdgeCount() int {
	return len(h.edges)
}

// CenterOfMass returns the hull center of mass in world coordinates.
func (h *ConvexHull) CenterOfMass() geom.Vec3 {
	return h.pool[h.count]
}

// Volume returns the enclosed volume.
func (h *ConvexHull) Volume() float64 {
	return h.volume
}

// Density returns the density used for Mass and Inertia.
func (h *ConvexHull) Density() float64 {
	return h.density
}

// Mass returns density times volume.
func (h *ConvexHull) Mass() float64 {
	return h.density * h.volume
}

// Inertia returns the tensor about the hull center of mass.
func (h *ConvexHull) Inertia() geom.Mat3 {
	return h.unitInertia.Scale(h.density)
}

// Radius returns the maximum distance from the center of mass to a point.
func (h *ConvexHull) Radius() float64 {
	return h.radius
}

func (h *ConvexHull) setDensity(density float64) {
	if density < 0 {
		panic("rigid: negative density")
	}
	h.density = density
}

// InCollisionRange reports whether the bounding spheres of h and other overlap.
func (h *ConvexHull) InCollisionRange(other *ConvexHull) bool {
	r := h.radius + other.radius
	return h.CenterOfMass().Sub(other.CenterOfMass()).LenSq() <= r*r
}

// ContainsPoint reports whether p is on the inner side of every face.
func (h *ConvexHull) ContainsPoint(p geom.Vec3) bool {
	for _, s := range h.surfaces {
		if s.Normal().Dot(p.Sub(s.Point(0))) > 0 {
			return false
		}
	}
	return true
}
