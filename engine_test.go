package rigid

import (
	"math"
	"testing"

	"github.com/setanarut/rigid/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func addFloor(t *testing.T, e *Engine, def BodyDef) *Body {
	t.Helper()
	def.Fixed = true
	floor, err := NewBoxBody(NewBB(geom.V(-10, -2, -10), geom.V(10, 0, 10)), def)
	require.NoError(t, err)
	_, err = e.AddBody(floor)
	require.NoError(t, err)
	return floor
}

func TestNewEngineOptions(t *testing.T) {
	_, err := NewEngine(WithTimestep(0))
	assert.ErrorIs(t, err, ErrInvalidTimestep)
	_, err = NewEngine(WithPushSlop(-1))
	assert.Error(t, err)
	_, err = NewEngine(WithRestingFactor(0))
	assert.Error(t, err)
	_, err = NewEngine(WithOctree(geom.Vec3{}, 0, 1))
	assert.Error(t, err)

	e := newTestEngine(t, WithTimestep(0.01), WithGravity(geom.V(0, -1, 0)), WithoutOctree())
	assert.Equal(t, 0.01, e.Timestep())
	assert.Equal(t, geom.V(0, -1, 0), e.Gravity)
	assert.False(t, e.OctreeEnabled())
	assert.Nil(t, e.OctreeRoot())

	assert.ErrorIs(t, e.SetTimestep(-1), ErrInvalidTimestep)
	assert.Equal(t, 0.01, e.Timestep())

	_, err = NewEngine(WithIterations(-1))
	assert.Error(t, err)
	_, err = NewEngine(WithFaceDedupCosine(1.5))
	assert.Error(t, err)
	assert.Equal(t, DefaultIterations, newTestEngine(t).Iterations)
	assert.Zero(t, newTestEngine(t, WithIterations(0)).Iterations)
}

func TestNilLoggerDiscards(t *testing.T) {
	e := newTestEngine(t, WithLogger(nil))
	require.NotNil(t, e.Logger)
	addFloor(t, e, BodyDef{})
	box := unitBox(t, geom.V(-0.5, -0.1, -0.5), BodyDef{})
	_, err := e.AddBody(box)
	require.NoError(t, err)

	assert.NotPanics(t, func() { e.Step() })
	assert.Error(t, e.SetTimestep(0))
}

func TestUpdateAccumulator(t *testing.T) {
	e := newTestEngine(t, WithTimestep(0.25), WithMaxBuffer(1))

	assert.Zero(t, e.Update(0))
	assert.Zero(t, e.Update(-1))
	assert.Equal(t, 0, e.Update(0.125))
	assert.Equal(t, 1, e.Update(0.125))
	// capped at MaxBuffer
	assert.Equal(t, 4, e.Update(10))
	assert.Equal(t, uint64(5), e.StepCount())

	// the cap never drops below one step
	e.MaxBuffer = 0.1
	assert.Equal(t, 1, e.Update(10))
}

func TestBodyBookkeeping(t *testing.T) {
	e := newTestEngine(t, WithIDAllocator(&SequentialAllocator{}))
	a := unitBox(t, geom.V(0, 0, 0), BodyDef{})
	b := unitBox(t, geom.V(5, 0, 0), BodyDef{})

	idA, err := e.AddBody(a)
	require.NoError(t, err)
	idB, err := e.AddBody(b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, idA, a.ID())

	_, err = e.AddBody(a)
	assert.ErrorIs(t, err, ErrBodyInUse)

	got, ok := e.BodyByID(idB)
	assert.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 2, e.BodyCount())

	require.NoError(t, e.RemoveBody(a))
	assert.False(t, e.ContainsBody(a))
	assert.ErrorIs(t, e.RemoveBody(a), ErrBodyNotFound)
	assert.Equal(t, []*Body{b}, e.Bodies())

	other := newTestEngine(t)
	_, err = other.AddBody(a)
	require.NoError(t, err)
	assert.ErrorIs(t, e.RemoveBody(a), ErrBodyNotFound)

	e.RemoveAllBodies()
	assert.Zero(t, e.BodyCount())
	assert.False(t, e.ContainsBody(b))
}

func TestFreeFall(t *testing.T) {
	e := newTestEngine(t, WithTimestep(0.1), WithGravity(geom.V(0, -10, 0)))
	body := unitBox(t, geom.V(0, 10, 0), BodyDef{})
	_, err := e.AddBody(body)
	require.NoError(t, err)

	for range 10 {
		e.Step()
	}
	assert.InDelta(t, -10, body.Velocity().Y(), 1e-9)
	// semi-implicit Euler: sum of k*0.1*0.1 for k = 1..10
	assert.InDelta(t, 10.5-5.5, body.CenterOfMass().Y(), 1e-9)
}

func TestFixedPairIsSkipped(t *testing.T) {
	e := newTestEngine(t)
	a := unitBox(t, geom.V(0, 0, 0), BodyDef{Fixed: true})
	b := unitBox(t, geom.V(0.5, 0, 0), BodyDef{Fixed: true})
	_, _ = e.AddBody(a)
	_, _ = e.AddBody(b)

	assert.Nil(t, e.DetectAndResolve(a, b))
	assert.True(t, a.CenterOfMass().Equal(geom.V(0.5, 0.5, 0.5)))
	assert.True(t, b.CenterOfMass().Equal(geom.V(1, 0.5, 0.5)))
}

func TestDetectAndResolveOnce(t *testing.T) {
	e := newTestEngine(t)
	a := unitBox(t, geom.V(0, 0, 0), BodyDef{})
	b := unitBox(t, geom.V(0.9, 0, 0), BodyDef{})
	_, _ = e.AddBody(a)
	_, _ = e.AddBody(b)

	arb := e.DetectAndResolve(a, b)
	require.NotNil(t, arb)
	assert.Equal(t, KindFace, arb.Kind)
	assert.False(t, arb.Resolved, "bodies at rest are not closing")
	// pushed apart by depth plus slop, split evenly
	gap := b.CenterOfMass().X() - a.CenterOfMass().X()
	assert.InDelta(t, 1+e.PushSlop, gap, 1e-9)

	assert.Nil(t, e.DetectAndResolve(a, b), "already tested")
}

func TestNoCollidePassesThrough(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	floor := addFloor(t, e, BodyDef{})
	box := unitBox(t, geom.V(-0.5, 0.1, -0.5), BodyDef{})
	_, err := e.AddBody(box)
	require.NoError(t, err)
	box.AddNoCollide(floor)
	assert.True(t, box.IsNoCollide(floor))

	for range 60 {
		e.Step()
	}
	assert.Less(t, box.CenterOfMass().Y(), -1.0)
	assert.Empty(t, e.LastContacts())

	box.RemoveNoCollide(floor)
	assert.False(t, box.IsNoCollide(floor))
}

func TestBoxComesToRest(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{"octree", nil},
		{"brute force", []Option{WithoutOctree()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			counter := &StepCounter{}
			opts := append([]Option{WithGravity(geom.V(0, -10, 0)), WithMetrics(counter)}, tc.opts...)
			e := newTestEngine(t, opts...)
			floor := addFloor(t, e, BodyDef{Friction: 0.5})
			box := unitBox(t, geom.V(-0.5, 0.5, -0.5), BodyDef{TrackHistory: true})
			_, err := e.AddBody(box)
			require.NoError(t, err)

			for range 300 {
				e.Step()
			}

			assert.Less(t, box.Velocity().Len(), 1e-3, "velocity %v", box.Velocity())
			assert.Less(t, box.AngularVelocity().Len(), 1e-3)
			bottom := box.CenterOfMass().Y() - 0.5
			assert.Greater(t, bottom, -0.01, "penetration")
			assert.Less(t, bottom, 0.01)
			assert.True(t, floor.CenterOfMass().Equal(geom.V(0, -1, 0)))

			require.NotEmpty(t, box.History())
			assert.Equal(t, floor.ID(), box.History()[0].Other)
			assert.Empty(t, floor.History())
			box.ClearHistory()
			assert.Empty(t, box.History())

			assert.Equal(t, 300, counter.Steps)
			assert.Equal(t, 2, counter.Last.Bodies)
			assert.Positive(t, counter.Total.Resolved)
		})
	}
}

func TestRestitutionBounce(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	addFloor(t, e, BodyDef{Restitution: 1})
	box := unitBox(t, geom.V(-0.5, 0.05, -0.5), BodyDef{})
	_, err := e.AddBody(box)
	require.NoError(t, err)
	box.SetVelocity(geom.V(0, -10, 0))

	e.Step()
	require.Len(t, e.LastContacts(), 1)
	arb := e.LastContacts()[0]
	assert.True(t, arb.Resolved)
	assert.Equal(t, 1.0, arb.Restitution)
	assert.Greater(t, box.Velocity().Y(), 5.0)
}

func TestRestingContactDropsRestitution(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	addFloor(t, e, BodyDef{Restitution: 1})
	box := unitBox(t, geom.V(-0.5, 0.001, -0.5), BodyDef{})
	_, err := e.AddBody(box)
	require.NoError(t, err)
	box.SetVelocity(geom.V(0, -1, 0))

	e.Step()
	require.Len(t, e.LastContacts(), 1)
	assert.Zero(t, e.LastContacts()[0].Restitution)
	assert.InDelta(t, 0, box.Velocity().Y(), 1e-9)
}

func addBox(t *testing.T, e *Engine, min, max geom.Vec3, def BodyDef) *Body {
	t.Helper()
	body, err := NewBoxBody(NewBB(min, max), def)
	require.NoError(t, err)
	_, err = e.AddBody(body)
	require.NoError(t, err)
	return body
}

func TestEdgeContactResolves(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	lower := addBox(t, e, geom.V(-2, -0.5, -0.25), geom.V(2, 0, 0.25), BodyDef{Fixed: true, Restitution: 0.2})
	upper := addBox(t, e, geom.V(-0.25, -0.1, -2), geom.V(0.25, 0.4, 2), BodyDef{Restitution: 0.6})
	upper.SetVelocity(geom.V(0, -1, 0))

	arb := e.DetectAndResolve(lower, upper)
	require.NotNil(t, arb)
	assert.Equal(t, KindEdge, arb.Kind)
	assert.Len(t, arb.Manifold, 4)
	assert.True(t, arb.Resolved)
	// edge contacts average the two restitutions
	assert.InDelta(t, 0.4, arb.Restitution, 1e-12)
	assert.InDelta(t, 1.4, arb.NormalImpulse, 1e-9)
	assert.InDelta(t, 0.4, upper.Velocity().Y(), 1e-9)
	assert.Less(t, upper.AngularVelocity().Len(), 1e-9)
	assert.InDelta(t, 0.15+0.1+e.PushSlop, upper.CenterOfMass().Y(), 1e-9)
}

func TestCrossedBarsComeToRest(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	addBox(t, e, geom.V(-2, -0.5, -0.25), geom.V(2, 0, 0.25), BodyDef{Fixed: true})
	upper := addBox(t, e, geom.V(-0.25, 0.5, -2), geom.V(0.25, 1, 2), BodyDef{})

	for range 600 {
		e.Step()
	}

	require.NotEmpty(t, e.LastContacts())
	assert.Equal(t, KindEdge, e.LastContacts()[0].Kind)
	assert.InDelta(t, 0, upper.CenterOfMass().X(), 1e-3)
	assert.InDelta(t, 0.251, upper.CenterOfMass().Y(), 1e-3)
	assert.InDelta(t, 0, upper.CenterOfMass().Z(), 1e-3)
	assert.Less(t, upper.Velocity().Len(), 1e-3, "velocity %v", upper.Velocity())
	assert.Less(t, upper.AngularVelocity().Len(), 1e-3)
}

func TestTiltedBoxSettlesOnFace(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
	addFloor(t, e, BodyDef{Friction: 0.5})
	box := unitBox(t, geom.V(-0.5, 1.5, -0.5), BodyDef{})
	_, err := e.AddBody(box)
	require.NoError(t, err)
	box.SetOrientation(geom.RotorFromAxisAngle(geom.V(1, 0, 1), 0.6))

	for range 900 {
		e.Step()
	}

	assert.Less(t, box.Velocity().Len(), 1e-3, "velocity %v", box.Velocity())
	assert.Less(t, box.AngularVelocity().Len(), 1e-3, "spin %v", box.AngularVelocity())
	com := box.CenterOfMass()
	assert.Greater(t, com.Y(), 0.49)
	assert.Less(t, com.Y(), 0.51)
	assert.Less(t, math.Hypot(com.X(), com.Z()), 1.0)
}

func TestFrictionIsCappedByNormalImpulse(t *testing.T) {
	for _, mu := range []float64{0.2, 10} {
		e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)))
		floor := addFloor(t, e, BodyDef{Friction: mu})
		box := addBox(t, e, geom.V(-0.5, -0.01, -0.5), geom.V(0.5, 0.99, 0.5), BodyDef{})
		box.SetVelocity(geom.V(5, -1, 0))

		arb := e.DetectAndResolve(floor, box)
		require.NotNil(t, arb, "mu %g", mu)
		require.True(t, arb.Resolved)
		assert.Equal(t, KindFace, arb.Kind)
		assert.LessOrEqual(t, arb.FrictionImpulse, mu*arb.NormalImpulse+1e-9)

		if mu < 1 {
			// sliding: friction saturates the Coulomb cap
			assert.InDelta(t, 1, arb.NormalImpulse, 1e-6)
			assert.InDelta(t, mu*arb.NormalImpulse, arb.FrictionImpulse, 1e-9)
			assert.InDelta(t, 5-mu*arb.NormalImpulse, box.Velocity().X(), 1e-6)
			assert.Less(t, box.AngularVelocity().Len(), 1e-6)
		} else {
			assert.Less(t, arb.FrictionImpulse, mu*arb.NormalImpulse)
			assert.Less(t, box.Velocity().X(), 5.0)
		}
	}
}

func TestStackStaysUpright(t *testing.T) {
	e := newTestEngine(t, WithGravity(geom.V(0, -10, 0)), WithoutOctree())
	addFloor(t, e, BodyDef{Friction: 0.5})
	var boxes []*Body
	for i := range 3 {
		y := float64(i) + 0.01*float64(i+1)
		box := unitBox(t, geom.V(-0.5, y, -0.5), BodyDef{Friction: 0.5})
		_, err := e.AddBody(box)
		require.NoError(t, err)
		boxes = append(boxes, box)
	}

	heights := func() []float64 {
		var hs []float64
		for _, b := range boxes {
			hs = append(hs, b.CenterOfMass().Y())
		}
		return hs
	}
	for range 500 {
		e.Step()
	}
	before := heights()
	for range 100 {
		e.Step()
	}
	after := heights()

	for i, b := range boxes {
		com := b.CenterOfMass()
		assert.InDelta(t, 0, com.X(), 1e-3, "box %d", i)
		assert.InDelta(t, 0, com.Z(), 1e-3, "box %d", i)
		assert.Less(t, b.AngularVelocity().Len(), 1e-3, "box %d", i)
		assert.InDelta(t, before[i], after[i], 0.02, "box %d drifted", i)
		if i > 0 {
			gap := after[i] - after[i-1]
			assert.Greater(t, gap, 0.95, "box %d sank into the one below", i)
			assert.Less(t, gap, 1.05)
		}
	}
	assert.Greater(t, after[0], 0.45)
	assert.Less(t, after[0], 0.52)
}

func TestDebugInfo(t *testing.T) {
	e := newTestEngine(t)
	addFloor(t, e, BodyDef{})
	assert.Contains(t, DebugInfo(e), "Bodies: 1 (1 fixed)")
}
