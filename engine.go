package rigid

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/setanarut/rigid/geom"
)

// Engine owns the bodies and advances them in fixed steps.
type Engine struct {
	// Gravity is applied to every non-fixed body each step.
	Gravity geom.Vec3

	// PushSlop is added to the penetration depth when bodies are pushed apart.
	PushSlop float64

	// RestingFactor sets the resting-contact threshold |Gravity|/RestingFactor.
	// Face contacts closing slower than that get zero restitution.
	RestingFactor float64

	// FaceDedupCosine is the cosine above which two face normals count as the
	// same separating axis.
	FaceDedupCosine float64

	// MaxBuffer caps the time Update may catch up in one call. The cap never
	// drops below one timestep.
	MaxBuffer float64

	// Iterations is the number of impulse refinement sweeps over each
	// contact manifold. Zero applies the single impulse at the contact point.
	Iterations int

	Logger *slog.Logger

	timestep      float64
	buffer        float64
	octreeEnabled bool
	octree        *OctreeIndex
	bruteForce    BruteForceIndex
	bodies        []*Body
	ids           IDAllocator
	metrics       Metrics
	lastContacts  []*Arbiter
	stamp         uint64
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTimestep sets the fixed step in seconds.
func WithTimestep(dt float64) Option {
	return func(e *Engine) error {
		return e.SetTimestep(dt)
	}
}

// WithGravity sets the gravity vector.
func WithGravity(g geom.Vec3) Option {
	return func(e *Engine) error {
		e.Gravity = g
		return nil
	}
}

// WithOctree enables the octree broad phase over the cube of the given size
// centered on center.
func WithOctree(center geom.Vec3, size, minCellSize float64) Option {
	return func(e *Engine) error {
		return e.SetOctree(center, size, minCellSize)
	}
}

// WithoutOctree makes the broad phase test every pair.
func WithoutOctree() Option {
	return func(e *Engine) error {
		e.DisableOctree()
		return nil
	}
}

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			l = discardLogger()
		}
		e.Logger = l
		return nil
	}
}

// WithIterations sets Engine.Iterations.
func WithIterations(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("rigid: negative iteration count %d", n)
		}
		e.Iterations = n
		return nil
	}
}

// WithMetrics sets the step statistics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) error {
		e.metrics = m
		return nil
	}
}

// WithIDAllocator sets the body id allocator.
func WithIDAllocator(a IDAllocator) Option {
	return func(e *Engine) error {
		e.ids = a
		return nil
	}
}

// WithPushSlop sets Engine.PushSlop.
func WithPushSlop(slop float64) Option {
	return func(e *Engine) error {
		if slop < 0 {
			return fmt.Errorf("rigid: negative push slop %g", slop)
		}
		e.PushSlop = slop
		return nil
	}
}

// WithRestingFactor sets Engine.RestingFactor.
func WithRestingFactor(f float64) Option {
	return func(e *Engine) error {
		if f <= 0 {
			return fmt.Errorf("rigid: resting factor must be positive, got %g", f)
		}
		e.RestingFactor = f
		return nil
	}
}

// WithFaceDedupCosine sets Engine.FaceDedupCosine, a cosine in [-1, 1].
func WithFaceDedupCosine(c float64) Option {
	return func(e *Engine) error {
		if !(c >= -1 && c <= 1) {
			return fmt.Errorf("rigid: face dedup cosine %g outside [-1, 1]", c)
		}
		e.FaceDedupCosine = c
		return nil
	}
}

// WithMaxBuffer sets Engine.MaxBuffer.
func WithMaxBuffer(seconds float64) Option {
	return func(e *Engine) error {
		e.MaxBuffer = seconds
		return nil
	}
}

// NewEngine allocates and initializes an Engine
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		Gravity:         DefaultGravity,
		PushSlop:        DefaultPushSlop,
		RestingFactor:   DefaultRestingFactor,
		FaceDedupCosine: DefaultFaceDedupCosine,
		MaxBuffer:       DefaultMaxBuffer,
		Iterations:      DefaultIterations,
		Logger:          discardLogger(),
		timestep:        DefaultTimestep,
		octreeEnabled:   true,
		octree:          NewOctreeIndex(geom.Vec3{}, DefaultOctreeSize, DefaultOctreeMinCell),
		ids:             UUIDAllocator{},
		metrics:         NopMetrics{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Timestep returns the fixed step in seconds.
func (e *Engine) Timestep() float64 {
	return e.timestep
}

// SetTimestep sets the fixed step. Non-positive values are rejected.
func (e *Engine) SetTimestep(dt float64) error {
	if !(dt > 0) {
		e.Logger.Warn("timestep rejected", "dt", dt)
		return fmt.Errorf("%w: %g", ErrInvalidTimestep, dt)
	}
	e.timestep = dt
	return nil
}

// SetOctree enables the octree over the cube of the given size centered on center.
func (e *Engine) SetOctree(center geom.Vec3, size, minCellSize float64) error {
	if size <= 0 || minCellSize <= 0 {
		return fmt.Errorf("rigid: octree size %g and minimum cell %g must be positive", size, minCellSize)
	}
	e.octree = NewOctreeIndex(center, size, minCellSize)
	e.octreeEnabled = true
	return nil
}

// DisableOctree falls back to testing every pair.
func (e *Engine) DisableOctree() {
	e.octreeEnabled = false
}

// OctreeEnabled reports whether the octree broad phase is used.
func (e *Engine) OctreeEnabled() bool {
	return e.octreeEnabled
}

// OctreeRoot returns the tree built by the last step, or nil.
func (e *Engine) OctreeRoot() *OctreeNode {
	if !e.octreeEnabled {
		return nil
	}
	return e.octree.Root()
}

func (e *Engine) index() SpatialIndexer {
	if e.octreeEnabled {
		return e.octree
	}
	return &e.bruteForce
}

func (e *Engine) restingThreshold() float64 {
	return e.Gravity.Len() / e.RestingFactor
}

// AddBody assigns body an id and adds it to the engine.
func (e *Engine) AddBody(body *Body) (BodyID, error) {
	if body.engine != nil {
		return NilID, fmt.Errorf("%w: %v", ErrBodyInUse, body.id)
	}
	if !body.fixed && body.inertia.IsSingular() {
		e.Logger.Warn("singular inertia tensor, body will not rotate", "mass", body.mass)
	}
	body.id = e.ids.Next()
	body.engine = e
	e.bodies = append(e.bodies, body)
	e.Logger.Debug("body added", "id", body.id, "fixed", body.fixed, "mass", body.mass)
	return body.id, nil
}

// RemoveBody removes body from the engine.
func (e *Engine) RemoveBody(body *Body) error {
	if body.engine != e {
		return ErrBodyNotFound
	}
	e.bodies = slices.DeleteFunc(e.bodies, func(b *Body) bool {
		return b == body
	})
	body.engine = nil
	e.Logger.Debug("body removed", "id", body.id)
	return nil
}

// RemoveAllBodies empties the engine.
func (e *Engine) RemoveAllBodies() {
	for _, body := range e.bodies {
		body.engine = nil
	}
	e.bodies = nil
	e.lastContacts = nil
}

// ContainsBody reports whether body was added to e.
func (e *Engine) ContainsBody(body *Body) bool {
	return body.engine == e
}

// BodyByID returns the body with the given id.
func (e *Engine) BodyByID(id BodyID) (*Body, bool) {
	for _, body := range e.bodies {
		if body.id == id {
			return body, true
		}
	}
	return nil, false
}

// BodyCount returns the number of bodies.
func (e *Engine) BodyCount() int {
	return len(e.bodies)
}

// Bodies returns a copy of the body list.
func (e *Engine) Bodies() []*Body {
	return slices.Clone(e.bodies)
}

// EachBody calls f for every body.
func (e *Engine) EachBody(f func(body *Body)) {
	for _, body := range e.bodies {
		f(body)
	}
}

// LastContacts returns the contacts resolved during the last step.
func (e *Engine) LastContacts() []*Arbiter {
	return e.lastContacts
}

// Update adds seconds of wall time and runs as many fixed steps as the
// accumulated time allows. Accumulated time is capped at
// max(MaxBuffer, timestep); the excess is dropped. It returns the number
// of steps run.
func (e *Engine) Update(seconds float64) int {
	if !(seconds > 0) {
		return 0
	}
	e.buffer = math.Min(e.buffer+seconds, math.Max(e.MaxBuffer, e.timestep))
	steps := 0
	for e.buffer >= e.timestep {
		e.Step()
		e.buffer -= e.timestep
		steps++
	}
	return steps
}

// Step advances the simulation by one timestep: gravity and integration,
// broad phase, then narrow phase and resolution of every candidate pair.
func (e *Engine) Step() {
	start := time.Now()
	dt := e.timestep
	gravity := e.Gravity.Scale(dt)

	for _, body := range e.bodies {
		if !body.fixed {
			body.velocity = body.velocity.Add(gravity)
			body.MoveInTime(dt)
		}
		body.ClearTested()
	}

	e.lastContacts = nil
	stats := StepStats{Bodies: len(e.bodies)}
	index := e.index()
	index.Rebuild(e.bodies)
	index.EachGroup(func(group []*Body) {
		stats.Groups++
		for i, a := range group {
			for _, b := range group[i+1:] {
				e.detectAndResolve(a, b, &stats)
			}
		}
	})

	e.stamp++
	stats.Duration = time.Since(start)
	e.metrics.ObserveStep(stats)
	if e.Logger.Enabled(context.Background(), slog.LevelDebug) {
		e.Logger.Debug("step", "stamp", e.stamp, "pairs", stats.Pairs,
			"contacts", stats.Contacts, "resolved", stats.Resolved, "took", stats.Duration)
	}
}

// DetectAndResolve runs the pair filter, narrow phase and resolution on
// two bodies outside of Step. It returns nil when the pair was skipped or
// did not touch.
func (e *Engine) DetectAndResolve(a, b *Body) *Arbiter {
	var stats StepStats
	return e.detectAndResolve(a, b, &stats)
}

func (e *Engine) detectAndResolve(a, b *Body, stats *StepStats) *Arbiter {
	if pairFilter(a, b) {
		return nil
	}
	stats.Pairs++
	if !a.InCollisionRange(b) {
		return nil
	}
	c := collideBodies(a, b, e.FaceDedupCosine)
	if c == nil {
		return nil
	}
	arb := newArbiter(c)
	arb.resolve(e)
	stats.Contacts++
	if arb.Resolved {
		stats.Resolved++
	}
	e.lastContacts = append(e.lastContacts, arb)
	return arb
}

// StepCount returns the number of steps run so far.
func (e *Engine) StepCount() uint64 {
	return e.stamp
}
