package rigid

import (
	"slices"

	"github.com/setanarut/rigid/geom"
)

// SpatialIndexer is the broad phase. It is rebuilt from scratch every step
// and yields groups of bodies; only bodies sharing a group are tested
// against each other.
type SpatialIndexer interface {
	// Rebuild discards any previous state and indexes bodies.
	Rebuild(bodies []*Body)

	// EachGroup calls f for every group of at least two bodies.
	EachGroup(f func(group []*Body))
}

// OctreeIndex groups bodies by the leaves of an octree.
type OctreeIndex struct {
	Origin      geom.Vec3
	Size        float64
	MinCellSize float64
	root        *OctreeNode
}

// NewOctreeIndex returns an octree covering the cube of the given size
// centered on center.
func NewOctreeIndex(center geom.Vec3, size, minCellSize float64) *OctreeIndex {
	h := size / 2
	return &OctreeIndex{
		Origin:      center.Sub(geom.V(h, h, h)),
		Size:        size,
		MinCellSize: minCellSize,
	}
}

// Rebuild builds and expands a new tree.
func (o *OctreeIndex) Rebuild(bodies []*Body) {
	o.root = NewOctreeNode(o.Origin, o.Size, o.MinCellSize, slices.Clone(bodies))
	o.root.Expand()
}

// EachGroup visits the bodies of every collision leaf.
func (o *OctreeIndex) EachGroup(f func(group []*Body)) {
	if o.root == nil {
		return
	}
	for _, leaf := range o.root.CollisionLeaves() {
		f(leaf.bodies)
	}
}

// Root returns the tree of the last Rebuild, or nil.
func (o *OctreeIndex) Root() *OctreeNode {
	return o.root
}

// BruteForceIndex puts every body in one group.
type BruteForceIndex struct {
	bodies []*Body
}

// Rebuild remembers bodies.
func (b *BruteForceIndex) Rebuild(bodies []*Body) {
	b.bodies = bodies
}

// EachGroup visits all bodies as one group.
func (b *BruteForceIndex) EachGroup(f func(group []*Body)) {
	if len(b.bodies) >= 2 {
		f(b.bodies)
	}
}
