package rigid

import (
	"math"
	"testing"

	"github.com/setanarut/rigid/geom"
	"github.com/stretchr/testify/assert"
)

func TestMoverThrust(t *testing.T) {
	body := unitBox(t, geom.V(-0.5, -0.5, -0.5), BodyDef{Density: 4})
	body.SetOrientation(geom.RotorFromAxisAngle(geom.V(0, 1, 0), math.Pi/2))
	m := NewMover(body)
	m.ForwardThrust, m.SideThrust, m.LiftThrust = 2, 3, 5

	// forward x turned a quarter about y points along -z
	assert.True(t, m.Dir().Equal(geom.V(0, 0, -1)), "dir %v", m.Dir())

	m.AccelForward(1, 0.5)
	assert.True(t, body.Velocity().Equal(geom.V(0, 0, -1)), "got %v", body.Velocity())

	body.SetVelocity(geom.Vec3{})
	m.AccelDrift(1, 1)
	assert.True(t, body.Velocity().Equal(geom.V(-3, 0, 0)), "got %v", body.Velocity())

	body.SetVelocity(geom.Vec3{})
	m.AccelLift(-1, 1)
	assert.True(t, body.Velocity().Equal(geom.V(0, -5, 0)))
	assert.Equal(t, body.CenterOfMass(), m.Pos())
}

func TestMoverTurnsArePureRotation(t *testing.T) {
	body := unitBox(t, geom.V(-1, -0.25, -0.5), BodyDef{
		CenterOfMass: &geom.Vec3{},
	})
	m := NewMover(body)
	m.RollRate, m.YawRate, m.PitchRate = 1, 2, 3

	m.Roll(1, 0.5)
	assert.True(t, body.Velocity().IsZero() || body.Velocity().Len() < 1e-12)
	assert.True(t, body.AngularVelocity().Equal(geom.V(0.5, 0, 0)), "roll %v", body.AngularVelocity())

	body.SetAngularVelocity(geom.Vec3{})
	m.Yaw(1, 0.5)
	assert.True(t, body.AngularVelocity().Equal(geom.V(0, 1, 0)), "yaw %v", body.AngularVelocity())

	body.SetAngularVelocity(geom.Vec3{})
	m.Pitch(-1, 0.5)
	assert.True(t, body.AngularVelocity().Equal(geom.V(0, 0, -1.5)), "pitch %v", body.AngularVelocity())
	assert.Less(t, body.Velocity().Len(), 1e-12)
}

func TestMoverDampen(t *testing.T) {
	body := unitBox(t, geom.V(0, 0, 0), BodyDef{})
	m := NewMover(body)
	m.LinearDamping, m.AngularDamping = 0.5, 3

	body.SetVelocity(geom.V(2, 0, 0))
	body.SetAngularVelocity(geom.V(0, 1, 0))
	m.DampenMotion(5)
	assert.True(t, body.Velocity().Equal(geom.V(1, 0, 0)))
	assert.True(t, body.AngularVelocity().IsZero())
}
