package metrics

import "time"

// SolveRecord captures the observable outcome of one planning run.
type SolveRecord struct {
	RunID         string
	Status        string
	Objective     float64
	WallTime      time.Duration
	LeasedWeeks   int
	EnginesBought int
}

// Sink records solve outcomes for observability purposes.
type Sink interface {
	RecordSolve(rec SolveRecord) error
	Close() error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }
func (NopSink) Close() error                  { return nil }
