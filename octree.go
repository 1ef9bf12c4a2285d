package rigid

import (
	"fmt"

	"github.com/setanarut/rigid/geom"
)

// OctreeNode is one cubic cell of the broad-phase octree. The whole tree
// is rebuilt every step.
type OctreeNode struct {
	origin   geom.Vec3 // min corner
	size     float64
	minSize  float64
	bodies   []*Body
	children [8]*OctreeNode
	leaf     bool
	expanded bool
}

// NewOctreeNode returns an unexpanded cell with min corner origin.
func NewOctreeNode(origin geom.Vec3, size, minSize float64, bodies []*Body) *OctreeNode {
	return &OctreeNode{
		origin:  origin,
		size:    size,
		minSize: minSize,
		bodies:  bodies,
	}
}

func (n *OctreeNode) String() string {
	return fmt.Sprintf("Octree %v size %g, %d bodies", n.origin, n.size, len(n.bodies))
}

// Origin returns the min corner.
func (n *OctreeNode) Origin() geom.Vec3 {
	return n.origin
}

// Size returns the edge length of the cell.
func (n *OctreeNode) Size() float64 {
	return n.size
}

// Bounds returns the cell as a box.
func (n *OctreeNode) Bounds() BB {
	return NewBB(n.origin, n.origin.Add(geom.V(n.size, n.size, n.size)))
}

// Bodies returns the bodies assigned to the cell.
func (n *OctreeNode) Bodies() []*Body {
	return n.bodies
}

// IsLeaf reports whether the node stopped subdividing.
func (n *OctreeNode) IsLeaf() bool {
	return n.leaf
}

// Children returns the allocated children.
func (n *OctreeNode) Children() []*OctreeNode {
	var out []*OctreeNode
	for _, c := range n.children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Expand subdivides the node once and recursively expands its children.
// A node is a leaf when its size reached the minimum or it holds at most
// one body. A body goes to every child octant its extent overlaps.
func (n *OctreeNode) Expand() {
	if n.expanded {
		return
	}
	n.expanded = true
	if n.size <= n.minSize || len(n.bodies) <= 1 {
		n.leaf = true
		return
	}

	half := n.size / 2
	mid := n.origin.Add(geom.V(half, half, half))
	for _, body := range n.bodies {
		center, ext := bodyExtent(body)
		var pos, neg [3]bool
		for axis := range 3 {
			pos[axis] = center[axis]+ext[axis] > mid[axis]
			neg[axis] = center[axis]-ext[axis] < mid[axis]
		}
		for octant := range 8 {
			var offset geom.Vec3
			inside := true
			for axis := range 3 {
				if octant&(1<<axis) != 0 {
					inside = inside && pos[axis]
					offset[axis] = half
				} else {
					inside = inside && neg[axis]
				}
			}
			if !inside {
				continue
			}
			if n.children[octant] == nil {
				n.children[octant] = NewOctreeNode(n.origin.Add(offset), half, n.minSize, nil)
			}
			child := n.children[octant]
			child.bodies = append(child.bodies, body)
		}
	}
	for _, c := range n.children {
		if c != nil {
			c.Expand()
		}
	}
	n.leaf = len(n.Children()) == 0
}

// bodyExtent is the bounding sphere of a dynamic body or the cached box of
// a fixed one, as center and half extents.
func bodyExtent(body *Body) (center, half geom.Vec3) {
	if body.fixed {
		return body.bounds.Center(), body.bounds.HalfExtents()
	}
	r := body.radius
	return body.com, geom.V(r, r, r)
}

// CollisionLeaves returns every leaf holding at least two bodies.
func (n *OctreeNode) CollisionLeaves() []*OctreeNode {
	var out []*OctreeNode
	n.walk(func(node *OctreeNode) {
		if node.leaf && len(node.bodies) >= 2 {
			out = append(out, node)
		}
	})
	return out
}

// AllNodes returns every node of the tree, depth first.
func (n *OctreeNode) AllNodes() []*OctreeNode {
	var out []*OctreeNode
	n.walk(func(node *OctreeNode) {
		out = append(out, node)
	})
	return out
}

func (n *OctreeNode) walk(f func(*OctreeNode)) {
	f(n)
	for _, c := range n.children {
		if c != nil {
			c.walk(f)
		}
	}
}
