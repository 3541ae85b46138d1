package expr

import "time"

// Limits bounds the resources a single Eval call may consume. Each bound
// has a configurable override; zero-value Limits is never used directly —
// callers get DefaultLimits() unless they override via Option.
type Limits struct {
	MaxIterations int
	MaxCallDepth  int
	Timeout       time.Duration
	MaxMemory     int64
}

// DefaultLimits returns the evaluator's out-of-the-box defaults: 10,000 iterations, a
// call-depth of 100, a one-second wall-time budget and an approximate
// 10 MiB memory budget.
func DefaultLimits() Limits {
	return Limits{
		MaxIterations: 10_000,
		MaxCallDepth:  100,
		Timeout:       time.Second,
		MaxMemory:     10 * 1024 * 1024,
	}
}
