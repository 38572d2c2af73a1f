package service

// Metrics is the instrumentation hook consumed by domain services and the
// pipeline. The prometheus-backed implementation lives in
// internal/infrastructure/monitoring.
type Metrics interface {
	TokenIssued(tokenType string)
	CodeIssued()
	CodeRedeemed(outcome string)
	PurgeSweep(deleted int64, failed bool)
	OperationObserved(kind string, seconds float64)
	SlowOperation(kind string)
}

type nopMetrics struct{}

// NopMetrics returns a metrics sink that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) TokenIssued(string)             {}
func (nopMetrics) CodeIssued()                    {}
func (nopMetrics) CodeRedeemed(string)            {}
func (nopMetrics) PurgeSweep(int64, bool)         {}
func (nopMetrics) OperationObserved(string, float64) {}
func (nopMetrics) SlowOperation(string)           {}
