package rigid

import (
	"math"

	"github.com/setanarut/rigid/geom"
)

// Mover turns control input into impulses on a body. Rates are angular
// accelerations in rad/s² and thrusts linear accelerations, both scaled by
// the mult argument of each control, typically in [-1, 1].
//
// Local axes: x is forward, y is up, z is right. Roll turns about x, yaw
// about y and pitch about z.
type Mover struct {
	Body *Body

	RollRate, PitchRate, YawRate          float64
	ForwardThrust, SideThrust, LiftThrust float64
	LinearDamping, AngularDamping         float64

	rollI, pitchI, yawI float64
}

// NewMover wraps body and measures its principal inertias.
func NewMover(body *Body) *Mover {
	m := &Mover{Body: body}
	m.FindInertia()
	return m
}

// FindInertia recomputes the inertia about the local axes. Call it after
// changing the body's hulls or orientation.
func (m *Mover) FindInertia() {
	m.rollI = m.inertiaOf(geom.V(1, 0, 0))
	m.yawI = m.inertiaOf(geom.V(0, 1, 0))
	m.pitchI = m.inertiaOf(geom.V(0, 0, 1))
}

func (m *Mover) inertiaOf(local geom.Vec3) float64 {
	inv := m.Body.InverseInertiaOfAxis(m.Body.orientation.Rotate(local))
	if inv == 0 {
		return 0
	}
	return 1 / inv
}

// Dir returns the forward direction in world space.
func (m *Mover) Dir() geom.Vec3 {
	return m.Body.orientation.Rotate(geom.V(1, 0, 0))
}

// Pos returns the center of mass.
func (m *Mover) Pos() geom.Vec3 {
	return m.Body.com
}

// DampenMotion removes the fraction min(1,dt)·damping of each velocity.
func (m *Mover) DampenMotion(dt float64) {
	t := math.Min(1, dt)
	b := m.Body
	b.velocity = b.velocity.Scale(1 - clamp(t*m.LinearDamping, 0, 1))
	b.angularVelocity = b.angularVelocity.Scale(1 - clamp(t*m.AngularDamping, 0, 1))
}

// Roll spins the body about its forward axis.
func (m *Mover) Roll(mult, dt float64) {
	m.couple(geom.V(0, 1, 0), geom.V(0, 0, 1), mult*m.RollRate*dt*m.rollI)
}

// Yaw spins the body about its up axis.
func (m *Mover) Yaw(mult, dt float64) {
	m.couple(geom.V(0, 0, 1), geom.V(1, 0, 0), mult*m.YawRate*dt*m.yawI)
}

// Pitch spins the body about its right axis.
func (m *Mover) Pitch(mult, dt float64) {
	m.couple(geom.V(1, 0, 0), geom.V(0, 1, 0), mult*m.PitchRate*dt*m.pitchI)
}

// couple applies opposite impulses at ±lever so that the angular impulse
// lever×dir·angular is pure rotation.
func (m *Mover) couple(lever, dir geom.Vec3, angular float64) {
	b := m.Body
	r := b.orientation
	arm := r.Rotate(lever)
	j := r.Rotate(dir).Scale(angular / 2)
	b.ApplyImpulseAtPoint(j, b.com.Add(arm))
	b.ApplyImpulseAtPoint(j.Neg(), b.com.Sub(arm))
}

// AccelForward pushes the body along its forward axis.
func (m *Mover) AccelForward(mult, dt float64) {
	m.thrust(geom.V(1, 0, 0), mult*m.ForwardThrust*dt)
}

// AccelDrift pushes the body sideways, toward its left.
func (m *Mover) AccelDrift(mult, dt float64) {
	m.thrust(geom.V(0, 0, -1), mult*m.SideThrust*dt)
}

// AccelLift pushes the body along its up axis.
func (m *Mover) AccelLift(mult, dt float64) {
	m.thrust(geom.V(0, 1, 0), mult*m.LiftThrust*dt)
}

func (m *Mover) thrust(local geom.Vec3, dv float64) {
	b := m.Body
	b.ApplyImpulse(b.orientation.Rotate(local).Scale(dv * b.mass))
}
