package rigid

import (
	"fmt"
	"math"

	"github.com/setanarut/rigid/geom"
)

// BodyDef describes a body to build with NewBody.
type BodyDef struct {
	// Hulls become exclusively owned by the body.
	Hulls []*ConvexHull
	// Density of every hull. Zero means 1.
	Density     float64
	Friction    float64
	Restitution float64
	// Fixed bodies have zero inverse mass and are never integrated or displaced.
	Fixed bool
	// CenterOfMass overrides the mass-weighted center of the hulls.
	CenterOfMass *geom.Vec3
	// TrackHistory enables the collision history log.
	TrackHistory bool
	UserData     any
}

// Body is a rigid union of convex hulls.
type Body struct {
	// UserData is an object that this body is associated with.
	UserData any

	id     BodyID
	engine *Engine
	hulls  []*ConvexHull

	// arena holds the world-space points of every hull, each hull's block
	// ending with its center of mass. local is the parallel body-frame
	// snapshot relative to the center of mass.
	arena []geom.Vec3
	local []geom.Vec3

	mass, massInverse       float64
	inertia, inertiaInverse geom.Mat3 // body frame
	com                     geom.Vec3
	velocity                geom.Vec3
	angularVelocity         geom.Vec3
	orientation             geom.Rotor
	radius                  float64
	bounds                  BB // fixed bodies only
	friction, restitution   float64
	fixed                   bool

	tested       idSet
	noCollide    idSet
	trackHistory bool
	history      []CollisionInfo
}

// NewBody adopts the hulls of def and aggregates their mass properties.
func NewBody(def BodyDef) (*Body, error) {
	if len(def.Hulls) == 0 {
		return nil, ErrNoHulls
	}
	density := def.Density
	if density == 0 {
		density = 1
	}
	if density < 0 {
		return nil, fmt.Errorf("rigid: negative density %g", density)
	}

	seen := make(map[*ConvexHull]bool, len(def.Hulls))
	total := 0
	for _, h := range def.Hulls {
		if h.owner != nil || seen[h] {
			return nil, ErrHullOwned
		}
		seen[h] = true
		total += len(h.pool)
	}

	body := &Body{
		UserData:     def.UserData,
		id:           NilID,
		hulls:        def.Hulls,
		arena:        make([]geom.Vec3, 0, total),
		orientation:  geom.RotorIdent(),
		friction:     def.Friction,
		restitution:  def.Restitution,
		fixed:        def.Fixed,
		trackHistory: def.TrackHistory,
	}
	offsets := make([]int, len(def.Hulls))
	for i, h := range def.Hulls {
		offsets[i] = len(body.arena)
		body.arena = append(body.arena, h.pool...)
	}
	for i, h := range def.Hulls {
		lo, hi := offsets[i], offsets[i]+len(h.pool)
		h.bind(body.arena[lo:hi:hi])
		h.owner = body
		h.setDensity(density)
	}

	body.accumulateMass(def.CenterOfMass)

	body.local = make([]geom.Vec3, len(body.arena))
	for i, p := range body.arena {
		body.local[i] = p.Sub(body.com)
	}
	for _, h := range body.hulls {
		for _, p := range h.Vertices() {
			body.radius = math.Max(body.radius, p.Dist(body.com))
		}
	}
	if body.fixed {
		body.bounds = body.pointBounds()
	}
	return body, nil
}

// accumulateMass sums hull masses and parallel-axis corrected tensors, then
// inverts once.
func (body *Body) accumulateMass(custom *geom.Vec3) {
	body.mass = 0
	var weighted geom.Vec3
	for _, h := range body.hulls {
		m := h.Mass()
		body.mass += m
		weighted = weighted.Add(h.CenterOfMass().Scale(m))
	}
	if custom != nil {
		body.com = *custom
	} else {
		body.com = weighted.Scale(1 / body.mass)
	}

	body.inertia = geom.Mat3{}
	for _, h := range body.hulls {
		body.inertia = body.inertia.Add(parallelAxis(h.Inertia(), h.Mass(), h.CenterOfMass().Sub(body.com)))
	}

	if body.fixed {
		body.massInverse = 0
		body.inertiaInverse = geom.Mat3{}
		return
	}
	body.massInverse = 1 / body.mass
	body.inertiaInverse = body.inertia.Inv()
}

func (body *Body) pointBounds() BB {
	bb := NewBBForPoints(body.hulls[0].Vertices())
	for _, h := range body.hulls[1:] {
		bb = bb.Merge(NewBBForPoints(h.Vertices()))
	}
	return bb
}

// Clone returns a deep copy of body that belongs to no engine. History and
// the tested list are not copied.
func (body *Body) Clone() *Body {
	c := *body
	c.id = NilID
	c.engine = nil
	c.tested = nil
	c.history = nil
	c.noCollide = nil
	for id := range body.noCollide {
		c.noCollide.add(id)
	}
	c.arena = append([]geom.Vec3(nil), body.arena...)
	c.local = append([]geom.Vec3(nil), body.local...)
	c.hulls = make([]*ConvexHull, len(body.hulls))
	off := 0
	for i, h := range body.hulls {
		n := len(h.pool)
		c.hulls[i] = h.cloneInto(c.arena[off : off+n : off+n])
		c.hulls[i].owner = &c
		off += n
	}
	return &c
}

func (body *Body) String() string {
	return fmt.Sprint("Body ", body.id, ", Hulls ", len(body.hulls))
}

// ID returns the id assigned by the engine, or NilID.
func (body *Body) ID() BodyID {
	return body.id
}

// Hulls returns the hulls owned by body.
func (body *Body) Hulls() []*ConvexHull {
	return body.hulls
}

// Points returns a copy of every transformed point, hull centers included.
func (body *Body) Points() []geom.Vec3 {
	return append([]geom.Vec3(nil), body.arena...)
}

// Mass returns mass of the body
func (body *Body) Mass() float64 {
	return body.mass
}

// InverseMass returns zero for fixed bodies.
func (body *Body) InverseMass() float64 {
	return body.massInverse
}

// Inertia returns the inertia tensor in the body frame.
func (body *Body) Inertia() geom.Mat3 {
	return body.inertia
}

// InverseInertia returns the inverse tensor in the body frame.
func (body *Body) InverseInertia() geom.Mat3 {
	return body.inertiaInverse
}

// WorldInertia returns the inertia tensor rotated into world space.
func (body *Body) WorldInertia() geom.Mat3 {
	r := body.orientation.Mat3()
	return r.Mul3(body.inertia).Mul3(r.Transpose())
}

// CenterOfMass returns the world position of the center of mass.
func (body *Body) CenterOfMass() geom.Vec3 {
	return body.com
}

// Velocity returns linear velocity of the body
func (body *Body) Velocity() geom.Vec3 {
	return body.velocity
}

// SetVelocity sets linear velocity of the body
func (body *Body) SetVelocity(v geom.Vec3) {
	body.velocity = v
}

// AngularVelocity returns the world angular velocity of the body.
func (body *Body) AngularVelocity() geom.Vec3 {
	return body.angularVelocity
}

// SetAngularVelocity sets the world angular velocity of the body.
func (body *Body) SetAngularVelocity(w geom.Vec3) {
	body.angularVelocity = w
}

// Orientation returns the rotation from the body frame to world space.
func (body *Body) Orientation() geom.Rotor {
	return body.orientation
}

// Transform returns what a renderer needs: orientation and center of mass.
func (body *Body) Transform() (geom.Rotor, geom.Vec3) {
	return body.orientation, body.com
}

// Friction returns the friction coefficient.
func (body *Body) Friction() float64 {
	return body.friction
}

// SetFriction sets the friction coefficient.
func (body *Body) SetFriction(f float64) {
	body.friction = f
}

// Restitution returns the restitution coefficient.
func (body *Body) Restitution() float64 {
	return body.restitution
}

// SetRestitution sets the restitution coefficient.
func (body *Body) SetRestitution(e float64) {
	body.restitution = e
}

// Fixed reports whether the body is static.
func (body *Body) Fixed() bool {
	return body.fixed
}

// Radius returns the maximum distance from the center of mass to a point.
func (body *Body) Radius() float64 {
	return body.radius
}

// Bounds returns the cached box of a fixed body, or the box around the
// bounding sphere of a dynamic one.
func (body *Body) Bounds() BB {
	if body.fixed {
		return body.bounds
	}
	return NewBBForSphere(body.com, body.radius)
}

// Translate moves the body by v.
func (body *Body) Translate(v geom.Vec3) {
	body.com = body.com.Add(v)
	for i := range body.arena {
		body.arena[i] = body.arena[i].Add(v)
	}
	if body.fixed {
		body.bounds = body.bounds.Offset(v)
	}
}

// SetPosition moves the center of mass to p.
func (body *Body) SetPosition(p geom.Vec3) {
	body.Translate(p.Sub(body.com))
}

// SetOrientation rebuilds every point from the body-frame snapshot.
func (body *Body) SetOrientation(r geom.Rotor) {
	body.orientation = r
	for i, p := range body.local {
		body.arena[i] = body.com.Add(r.Rotate(p))
	}
	if body.fixed {
		body.bounds = body.pointBounds()
	}
}

// MoveInTime integrates position and orientation over dt. Fixed bodies do
// not move.
func (body *Body) MoveInTime(dt float64) {
	if body.fixed {
		return
	}
	delta := body.velocity.Scale(dt)
	if body.angularVelocity.IsZero() {
		body.Translate(delta)
		return
	}
	body.com = body.com.Add(delta)
	body.angularVelocity = body.gyroAccel(dt)
	w := body.angularVelocity
	step := geom.RotorFromAxisAngle(w, w.Len()*dt)
	body.SetOrientation(body.orientation.ApplyRotor(step).Normalize())
}

// gyroAccel returns the angular velocity after one damped Newton step of
// I(w2-w1) + w2×(I·w2)·dt = 0, solved in the body frame.
func (body *Body) gyroAccel(dt float64) geom.Vec3 {
	r := body.orientation
	inertia := body.inertia
	w1 := r.Inverse().Rotate(body.angularVelocity)
	w2 := w1

	iw2 := inertia.MulVec(w2)
	f := inertia.MulVec(w2.Sub(w1)).Add(w2.Cross(iw2).Scale(dt))
	j := inertia.Add(geom.Skew(w2).Mul3(inertia).Sub(geom.Skew(iw2)).Scale(dt))
	w2 = geom.NewtonStep(w2, f, j)

	return r.Rotate(w2)
}

// ApplyImpulse applies an impulse at the center of mass.
func (body *Body) ApplyImpulse(j geom.Vec3) {
	if body.fixed {
		return
	}
	body.velocity = body.velocity.Add(j.Scale(body.massInverse))
}

// ApplyImpulseAtPoint applies impulse j at world point p.
func (body *Body) ApplyImpulseAtPoint(j, p geom.Vec3) {
	if body.fixed {
		return
	}
	body.velocity = body.velocity.Add(j.Scale(body.massInverse))
	torque := p.Sub(body.com).Cross(j)
	body.angularVelocity = body.angularVelocity.Add(torque.Scale(body.InverseInertiaOfAxis(torque)))
}

// InverseInertiaOfAxis returns 1/(a·I·a) for the unit body-frame form a of
// the world axis. It is zero for fixed bodies and for axes without a
// positive moment, the zero axis included.
func (body *Body) InverseInertiaOfAxis(axis geom.Vec3) float64 {
	if body.fixed || axis.IsZero() {
		return 0
	}
	a := body.orientation.Inverse().Rotate(axis.Unit())
	moment := a.Dot(body.inertia.MulVec(a))
	if moment <= 0 {
		return 0
	}
	return 1 / moment
}

// VelocityAt returns the velocity of the world point p moving with body.
func (body *Body) VelocityAt(p geom.Vec3) geom.Vec3 {
	return body.velocity.Add(body.angularVelocity.Cross(p.Sub(body.com)))
}

// IsPointNotExiting reports whether, at p, body moves against n relative to other.
func (body *Body) IsPointNotExiting(other *Body, n, p geom.Vec3) bool {
	return body.VelocityAt(p).Sub(other.VelocityAt(p)).Dot(n) < 0
}

// InCollisionRange reports whether the bounding spheres of the bodies overlap.
func (body *Body) InCollisionRange(other *Body) bool {
	r := body.radius + other.radius
	return body.com.Sub(other.com).LenSq() <= r*r
}

// ContainsPoint reports whether p lies inside any hull.
func (body *Body) ContainsPoint(p geom.Vec3) bool {
	for _, h := range body.hulls {
		if h.ContainsPoint(p) {
			return true
		}
	}
	return false
}

// AddTestedAgainst marks other as tested this step.
func (body *Body) AddTestedAgainst(other *Body) {
	body.tested.add(other.id)
}

// IsTestedAgainst reports whether other was tested this step.
func (body *Body) IsTestedAgainst(other *Body) bool {
	return body.tested.has(other.id)
}

// ClearTested empties the per-step tested list.
func (body *Body) ClearTested() {
	body.tested.clear()
}

// AddNoCollide excludes other from collisions with body.
func (body *Body) AddNoCollide(other *Body) {
	body.noCollide.add(other.id)
}

// RemoveNoCollide undoes AddNoCollide.
func (body *Body) RemoveNoCollide(other *Body) {
	delete(body.noCollide, other.id)
}

// IsNoCollide reports whether other is on the no-collide list.
func (body *Body) IsNoCollide(other *Body) bool {
	return body.noCollide.has(other.id)
}

// TrackHistory reports whether collisions are logged.
func (body *Body) TrackHistory() bool {
	return body.trackHistory
}

// SetTrackHistory turns the collision log on or off.
func (body *Body) SetTrackHistory(on bool) {
	body.trackHistory = on
}

// History returns the logged collisions, oldest first.
func (body *Body) History() []CollisionInfo {
	return body.history
}

// ClearHistory empties the collision log. Slices returned by History
// before the call are left untouched.
func (body *Body) ClearHistory() {
	body.history = nil
}

func (body *Body) recordCollision(other *Body, impulse float64) {
	if body.trackHistory {
		body.history = append(body.history, CollisionInfo{Other: other.id, Impulse: impulse})
	}
}
