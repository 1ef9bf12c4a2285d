package rigid

import "github.com/setanarut/rigid/geom"

// Draw flags
const (
	DrawHulls = 1 << iota
	DrawOctreeCells
	DrawContactPoints
)

const contactDotSize = 4

// FColor is an RGBA color.
type FColor struct {
	R, G, B, A float32
}

// Drawer is implemented by debug renderers.
type Drawer interface {
	DrawSegment(a, b geom.Vec3, color FColor)
	DrawPoint(p geom.Vec3, size float64, color FColor)

	Flags() uint
	HullColor(body *Body) FColor
	OctreeColor() FColor
	ContactColor() FColor
}

// DrawBody draws the exterior edges of every hull of body.
func DrawBody(body *Body, drawer Drawer) {
	color := drawer.HullColor(body)
	for _, h := range body.hulls {
		for _, e := range h.edges {
			if e.interior {
				continue
			}
			drawer.DrawSegment(h.pool[e.a], h.pool[e.b], color)
		}
	}
}

// DrawOctree draws the cells of every node under root.
func DrawOctree(root *OctreeNode, drawer Drawer) {
	if root == nil {
		return
	}
	color := drawer.OctreeColor()
	for _, node := range root.AllNodes() {
		drawBox(node.Bounds(), color, drawer)
	}
}

func drawBox(bb BB, color FColor, drawer Drawer) {
	var c [8]geom.Vec3
	for i := range c {
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				c[i][axis] = bb.Max[axis]
			} else {
				c[i][axis] = bb.Min[axis]
			}
		}
	}
	for i := range c {
		for axis := range 3 {
			if j := i | 1<<axis; j != i {
				drawer.DrawSegment(c[i], c[j], color)
			}
		}
	}
}

// DrawEngine draws what the drawer flags select.
func DrawEngine(e *Engine, drawer Drawer) {
	flags := drawer.Flags()
	if flags&DrawHulls != 0 {
		e.EachBody(func(body *Body) {
			DrawBody(body, drawer)
		})
	}
	if flags&DrawOctreeCells != 0 {
		DrawOctree(e.OctreeRoot(), drawer)
	}
	if flags&DrawContactPoints != 0 {
		color := drawer.ContactColor()
		for _, arb := range e.lastContacts {
			drawer.DrawPoint(arb.Point, contactDotSize, color)
		}
	}
}
