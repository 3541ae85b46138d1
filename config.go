package linkml

import (
	"sync/atomic"
	"time"
)

// LinkMLConfig is the full configuration surface for the façade and the
// engine components it drives. Zero value is not directly usable; use
// DefaultConfig.
type LinkMLConfig struct {
	EnableCompilation      bool
	CacheTTLSeconds        uint64
	MaxValidationErrors    int
	EnableParallelValidate bool
	ExpressionTimeoutMS    uint64
	RenameThreshold        float64
	ParallelThreshold      int
}

// DefaultConfig returns the engine's out-of-the-box configuration.
func DefaultConfig() LinkMLConfig {
	return LinkMLConfig{
		EnableCompilation:      true,
		CacheTTLSeconds:        300,
		MaxValidationErrors:    0,
		EnableParallelValidate: true,
		ExpressionTimeoutMS:    1000,
		RenameThreshold:        0.8,
		ParallelThreshold:      3,
	}
}

// ExpressionTimeout returns ExpressionTimeoutMS as a time.Duration.
func (c LinkMLConfig) ExpressionTimeout() time.Duration {
	return time.Duration(c.ExpressionTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a time.Duration.
func (c LinkMLConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// atomicConfig supports lock-free reads of the active configuration from
// many concurrent validation goroutines while a single subscriber
// goroutine swaps it on change.
type atomicConfig struct {
	v atomic.Value
}

func newAtomicConfig(initial LinkMLConfig) *atomicConfig {
	a := &atomicConfig{}
	a.v.Store(initial)
	return a
}

func (a *atomicConfig) Load() LinkMLConfig {
	return a.v.Load().(LinkMLConfig)
}

func (a *atomicConfig) Store(c LinkMLConfig) {
	a.v.Store(c)
}
