package rigid

import (
	"math"

	"github.com/setanarut/rigid/geom"
)

// Arbiter records how one contact was resolved during a step.
type Arbiter struct {
	Contact
	Collidee, Collider *Body

	// Resolved is false when the bodies were already separating at the
	// contact point and only positional correction ran.
	Resolved        bool
	Restitution     float64
	NormalImpulse   float64
	FrictionImpulse float64
}

func newArbiter(c *Contact) *Arbiter {
	return &Arbiter{
		Contact:  *c,
		Collidee: c.Collidee.owner,
		Collider: c.Collider.owner,
	}
}

// resolve applies impulses when the contact is closing, then pushes the
// bodies apart.
func (arb *Arbiter) resolve(e *Engine) {
	clde, cldr := arb.Collidee, arb.Collider
	switch arb.Kind {
	case KindFace:
		if cldr.IsPointNotExiting(clde, arb.Normal, arb.Point) {
			arb.Restitution = clde.restitution
			if arb.normalVelocity() < e.restingThreshold() {
				arb.Restitution = 0
			}
			arb.applyImpulses(e.Iterations)
		}
	case KindEdge:
		if !clde.IsPointNotExiting(cldr, arb.Normal, arb.Point) {
			arb.Restitution = (clde.restitution + cldr.restitution) / 2
			arb.applyImpulses(e.Iterations)
		}
	}
	pushBodiesApart(clde, cldr, arb.Normal, arb.Depth+e.PushSlop)
}

// relativeVelocity is the collidee velocity relative to the collider at the
// contact point.
func (arb *Arbiter) relativeVelocity() geom.Vec3 {
	return arb.Collidee.VelocityAt(arb.Point).Sub(arb.Collider.VelocityAt(arb.Point))
}

// normalVelocity is the closing speed along the normal.
func (arb *Arbiter) normalVelocity() float64 {
	return arb.Normal.Dot(arb.relativeVelocity())
}

// manifoldPoint carries the accumulated impulses of one manifold point.
type manifoldPoint struct {
	p, r1, r2 geom.Vec3
	nMass     float64
	bounce    float64
	jnAcc     float64
	jtAcc     geom.Vec3
}

// applyImpulses applies the restitution impulse along the normal and the
// Coulomb-capped friction impulse against the tangential velocity at the
// contact point, then spreads them over the manifold and refines them for
// the given number of sweeps. The collider receives the positive impulse.
func (arb *Arbiter) applyImpulses(iterations int) {
	a, b := arb.Collidee, arb.Collider
	n, p := arb.Normal, arb.Point
	points := arb.manifoldPoints()

	ra, rb := p.Sub(a.com), p.Sub(b.com)
	vr := arb.relativeVelocity()
	vn := n.Dot(vr)
	jn := math.Abs(-(arb.Restitution + 1) * vn / kScalar(a, b, ra, rb, n))
	applyImpulses(a, b, n.Scale(jn), p)

	var jt geom.Vec3
	tangent := vr.Sub(n.Scale(vn))
	if tangent.LenSq() > parallelEpsilon {
		k := tangent.Unit()
		mag := math.Abs(k.Dot(vr) / kScalar(a, b, ra, rb, k))
		jt = k.Scale(math.Min(mag, jn*a.friction))
		applyImpulses(a, b, jt, p)
	}

	share := 1 / float64(len(points))
	for i := range points {
		points[i].jnAcc = jn * share
		points[i].jtAcc = jt.Scale(share)
	}
	for range iterations {
		for i := range points {
			arb.applyPointImpulse(&points[i])
		}
	}

	arb.NormalImpulse, arb.FrictionImpulse = 0, 0
	for _, con := range points {
		arb.NormalImpulse += con.jnAcc
		arb.FrictionImpulse += con.jtAcc.Len()
	}
	arb.Resolved = true
	a.recordCollision(b, arb.NormalImpulse)
	b.recordCollision(a, arb.NormalImpulse)
}

// manifoldPoints prepares the manifold for refinement. Bounce targets are
// taken from the velocities before any impulse.
func (arb *Arbiter) manifoldPoints() []manifoldPoint {
	a, b := arb.Collidee, arb.Collider
	n := arb.Normal
	manifold := arb.Manifold
	if len(manifold) == 0 {
		manifold = []geom.Vec3{arb.Point}
	}
	points := make([]manifoldPoint, len(manifold))
	for i, p := range manifold {
		con := &points[i]
		con.p = p
		con.r1, con.r2 = p.Sub(a.com), p.Sub(b.com)
		con.nMass = 1 / kScalar(a, b, con.r1, con.r2, n)
		vn := n.Dot(a.VelocityAt(p).Sub(b.VelocityAt(p)))
		con.bounce = arb.Restitution * math.Max(vn, 0)
	}
	return points
}

// applyPointImpulse drives the closing speed at one point toward its bounce
// target. The accumulated normal impulse never goes negative and the
// accumulated friction stays inside the Coulomb cone.
func (arb *Arbiter) applyPointImpulse(con *manifoldPoint) {
	a, b := arb.Collidee, arb.Collider
	n := arb.Normal

	vr := a.VelocityAt(con.p).Sub(b.VelocityAt(con.p))
	jn := (n.Dot(vr) + con.bounce) * con.nMass
	jnOld := con.jnAcc
	con.jnAcc = math.Max(jnOld+jn, 0)
	applyImpulses(a, b, n.Scale(con.jnAcc-jnOld), con.p)

	vr = a.VelocityAt(con.p).Sub(b.VelocityAt(con.p))
	tangent := vr.Sub(n.Scale(n.Dot(vr)))
	jtOld := con.jtAcc
	acc := jtOld
	if tangent.LenSq() > parallelEpsilon {
		k := tangent.Unit()
		acc = acc.Add(k.Scale(tangent.Len() / kScalar(a, b, con.r1, con.r2, k)))
	}
	if jtMax := a.friction * con.jnAcc; acc.Len() > jtMax {
		acc = acc.Scale(jtMax / acc.Len())
	}
	con.jtAcc = acc
	applyImpulses(a, b, acc.Sub(jtOld), con.p)
}

// applyImpulses gives j to b and -j to a at p.
func applyImpulses(a, b *Body, j, p geom.Vec3) {
	b.ApplyImpulseAtPoint(j, p)
	a.ApplyImpulseAtPoint(j.Neg(), p)
}

// pushBodiesApart separates the bodies by push along n, split by inverse
// mass. Fixed bodies do not move.
func pushBodiesApart(collidee, collider *Body, n geom.Vec3, push float64) {
	var dCollider float64
	if !collider.fixed {
		dCollider = push / (1 + collider.mass*collidee.massInverse)
		collider.Translate(n.Scale(dCollider))
	}
	if !collidee.fixed {
		collidee.Translate(n.Scale(dCollider - push))
	}
}
