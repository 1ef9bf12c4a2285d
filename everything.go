package rigid

import (
	"errors"
	"fmt"
	"math"

	"github.com/setanarut/rigid/geom"
)

const (
	infinity float64 = math.MaxFloat64

	// parallelEpsilon is the squared cross-product length under which two
	// edges are treated as parallel.
	parallelEpsilon float64 = 1e-12

	// supportTolerance is how far from its hull's extreme projection an edge
	// may lie and still support an edge contact. It is also the least reach
	// of a face manifold.
	supportTolerance float64 = 1e-3
)

// Engine defaults
const (
	DefaultTimestep        float64 = 1.0 / 60.0
	DefaultMaxBuffer       float64 = 0.1
	DefaultPushSlop        float64 = 1e-3
	DefaultRestingFactor   float64 = 2.25
	DefaultFaceDedupCosine float64 = 0.99
	DefaultIterations      int     = 10
	DefaultOctreeSize      float64 = 1000
	DefaultOctreeMinCell   float64 = 20
)

// DefaultGravity is the gravity of a new Engine.
var DefaultGravity = geom.V(0, -9.81, 0)

var (
	ErrDegenerateSurface = errors.New("rigid: surface needs at least 3 non-collinear points")
	ErrSurfaceOwned      = errors.New("rigid: surface already belongs to a hull")
	ErrDegenerateHull    = errors.New("rigid: hull needs at least 4 surfaces")
	ErrNoHulls           = errors.New("rigid: body needs at least one hull")
	ErrHullOwned         = errors.New("rigid: hull already belongs to a body")
	ErrBodyInUse         = errors.New("rigid: body already added to an engine")
	ErrBodyNotFound      = errors.New("rigid: body not found")
	ErrInvalidTimestep   = errors.New("rigid: timestep must be positive")
)

// CollisionInfo is one entry of a body's collision history.
type CollisionInfo struct {
	Other   BodyID
	Impulse float64
}

func (info CollisionInfo) String() string {
	return fmt.Sprintf("hit %v (%.4g)", info.Other, info.Impulse)
}

// DebugInfo returns a short summary of engine state
func DebugInfo(e *Engine) string {
	var ke float64
	fixed := 0
	for _, body := range e.bodies {
		if body.fixed {
			fixed++
			continue
		}
		w := body.angularVelocity
		ke += body.mass*body.velocity.LenSq() + w.Dot(body.WorldInertia().MulVec(w))
	}
	return fmt.Sprintf(`Bodies: %d (%d fixed) - Contacts: %d
Timestep: %g, Octree: %v
KE: %e`, len(e.bodies), fixed, len(e.lastContacts), e.timestep, e.octreeEnabled, ke/2)
}

// kScalarBody returns the inverse effective mass of body at arm r along n.
func kScalarBody(body *Body, r, n geom.Vec3) float64 {
	rcn := r.Cross(n)
	return body.massInverse + rcn.LenSq()*body.InverseInertiaOfAxis(rcn)
}

func kScalar(a, b *Body, r1, r2, n geom.Vec3) float64 {
	return kScalarBody(a, r1, n) + kScalarBody(b, r2, n)
}

func clamp(f, min, max float64) float64 {
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

// project returns the extent of points along axis.
func project(points []geom.Vec3, axis geom.Vec3) (lo, hi float64) {
	lo, hi = infinity, -infinity
	for _, p := range points {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
