package metrics

import coremetrics "github.com/healthflow/roster/core/metrics"

// MultiSink fans records out to multiple sinks. Sinks that do not
// implement an optional recorder interface are skipped for that record.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordSolve(rec coremetrics.SolveRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordIteration forwards iteration records when supported by the sink.
func (m *MultiSink) RecordIteration(rec coremetrics.IterationRecord) error {
	for _, s := range m.Sinks {
		if ir, ok := s.(coremetrics.IterationRecorder); ok {
			if err := ir.RecordIteration(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNode forwards node records when supported by the sink.
func (m *MultiSink) RecordNode(rec coremetrics.NodeRecord) error {
	for _, s := range m.Sinks {
		if nr, ok := s.(coremetrics.NodeRecorder); ok {
			if err := nr.RecordNode(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
