package linkmlio

// NoopMonitor implements linkml.Monitoring as a no-op, the default when no
// observability backend is wired in (e.g. tests, or linkmlctl's default
// run mode).
type NoopMonitor struct{}

// NewNoopMonitor returns a NoopMonitor.
func NewNoopMonitor() *NoopMonitor { return &NoopMonitor{} }

func (NoopMonitor) IncCounter(name string, kv ...any)             {}
func (NoopMonitor) SetGauge(name string, value float64, kv ...any) {}
func (NoopMonitor) ReportHealth(healthy bool, detail string)      {}
