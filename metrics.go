package rigid

import "time"

// StepStats describes one fixed step.
type StepStats struct {
	Duration time.Duration
	Bodies   int
	Groups   int // broad-phase groups visited
	Pairs    int // pairs that reached the bounding-sphere test
	Contacts int // contacts found by the narrow phase
	Resolved int // contacts that received impulses
}

// Metrics receives the statistics of every step.
type Metrics interface {
	ObserveStep(StepStats)
}

// NopMetrics discards everything.
type NopMetrics struct{}

// ObserveStep does nothing.
func (NopMetrics) ObserveStep(StepStats) {}

// StepCounter accumulates step statistics.
type StepCounter struct {
	Steps int
	Last  StepStats
	Total StepStats
}

// ObserveStep adds s to the totals.
func (c *StepCounter) ObserveStep(s StepStats) {
	c.Steps++
	c.Last = s
	c.Total.Duration += s.Duration
	c.Total.Bodies += s.Bodies
	c.Total.Groups += s.Groups
	c.Total.Pairs += s.Pairs
	c.Total.Contacts += s.Contacts
	c.Total.Resolved += s.Resolved
}
