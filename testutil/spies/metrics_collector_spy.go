package spies

import (
	"context"
	"sync"
	"time"
)

const (
	kindDuration = "duration"
	kindCounter  = "counter"
	kindValue    = "value"
)

// MetricRecord is one recorded metrics call.
type MetricRecord struct {
	Kind     string
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	Context  context.Context
}

// MetricsCollectorSpy captures metrics calls. It implements ledger.MetricsCollector.
// Use NewContextualMetricsCollectorSpy to also exercise the context-aware code paths.
type MetricsCollectorSpy struct {
	records     []MetricRecord
	mu          sync.Mutex
	recordCalls bool
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture all metrics calls for inspection in tests.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(MetricRecord{Kind: kindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(MetricRecord{Kind: kindCounter, Metric: metric, Value: 1, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(MetricRecord{Kind: kindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) record(r MetricRecord) {
	if !s.recordCalls {
		return
	}

	labelsCopy := make(map[string]string, len(r.Labels))
	for k, v := range r.Labels {
		labelsCopy[k] = v
	}
	r.Labels = labelsCopy

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
}

// GetRecords returns a copy of all captured records.
func (s *MetricsCollectorSpy) GetRecords() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]MetricRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// HasDurationRecordForMetric starts a fluent chain to check a duration record.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return s.match(kindDuration, metric)
}

// HasCounterRecordForMetric starts a fluent chain to check a counter record.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return s.match(kindCounter, metric)
}

// HasValueRecordForMetric starts a fluent chain to check a value record.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	return s.match(kindValue, metric)
}

// CountDurationRecordsForMetric counts the duration records of a metric.
func (s *MetricsCollectorSpy) CountDurationRecordsForMetric(metric string) int {
	return len(s.match(kindDuration, metric).candidates)
}

// CountCounterRecordsForMetric counts the counter increments of a metric.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	return len(s.match(kindCounter, metric).candidates)
}

func (s *MetricsCollectorSpy) match(kind, metric string) *MetricRecordMatcher {
	m := &MetricRecordMatcher{}

	for _, r := range s.GetRecords() {
		if r.Kind == kind && r.Metric == metric {
			m.candidates = append(m.candidates, r)
		}
	}

	return m
}

// MetricRecordMatcher provides a fluent interface for checking metric records.
// Assert succeeds if at least one record satisfies every condition of the chain.
type MetricRecordMatcher struct {
	candidates []MetricRecord
}

// WithOperation checks the operation label.
func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

// WithStatus checks the status label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithErrorType checks the error_type label.
func (m *MetricRecordMatcher) WithErrorType(errorType string) *MetricRecordMatcher {
	return m.WithLabel("error_type", errorType)
}

// WithLabel checks an arbitrary label.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	kept := m.candidates[:0:0]

	for _, r := range m.candidates {
		if labelValue, exists := r.Labels[key]; exists && labelValue == value {
			kept = append(kept, r)
		}
	}

	m.candidates = kept

	return m
}

// Assert returns true if all conditions in the fluent chain were met by one record.
func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// ContextualMetricsCollectorSpy additionally implements ledger.ContextualMetricsCollector and keeps the context of each call.
type ContextualMetricsCollectorSpy struct {
	*MetricsCollectorSpy
}

// NewContextualMetricsCollectorSpy creates a new ContextualMetricsCollectorSpy.
func NewContextualMetricsCollectorSpy(recordCalls bool) *ContextualMetricsCollectorSpy {
	return &ContextualMetricsCollectorSpy{MetricsCollectorSpy: NewMetricsCollectorSpy(recordCalls)}
}

func (s *ContextualMetricsCollectorSpy) RecordDurationContext(
	ctx context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.record(MetricRecord{Kind: kindDuration, Metric: metric, Duration: duration, Labels: labels, Context: ctx})
}

func (s *ContextualMetricsCollectorSpy) IncrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	s.record(MetricRecord{Kind: kindCounter, Metric: metric, Value: 1, Labels: labels, Context: ctx})
}

func (s *ContextualMetricsCollectorSpy) RecordValueContext(
	ctx context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.record(MetricRecord{Kind: kindValue, Metric: metric, Value: value, Labels: labels, Context: ctx})
}
