package spies

import (
	"context"
	"sync"
)

// SpyLogRecord represents one recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Arg returns the value logged for key, or nil.
func (r SpyLogRecord) Arg(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1]
		}
	}

	return nil
}

// ContextualLoggerSpy captures contextual logging calls. It implements ledger.ContextualLogger.
type ContextualLoggerSpy struct {
	records     []SpyLogRecord
	mu          sync.Mutex
	recordCalls bool
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{recordCalls: recordCalls}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record("debug", ctx, msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record("info", ctx, msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record("warn", ctx, msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record("error", ctx, msg, args)
}

func (s *ContextualLoggerSpy) record(level string, ctx context.Context, msg string, args []any) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// GetRecords returns a copy of all captured records.
func (s *ContextualLoggerSpy) GetRecords() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Reset clears all captured records.
func (s *ContextualLoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

func (s *ContextualLoggerSpy) HasDebugLog(message string) bool {
	return s.FindLog("debug", message) != nil
}

func (s *ContextualLoggerSpy) HasInfoLog(message string) bool {
	return s.FindLog("info", message) != nil
}

func (s *ContextualLoggerSpy) HasWarnLog(message string) bool {
	return s.FindLog("warn", message) != nil
}

func (s *ContextualLoggerSpy) HasErrorLog(message string) bool {
	return s.FindLog("error", message) != nil
}

// FindLog returns the first record with the given level and message, or nil.
func (s *ContextualLoggerSpy) FindLog(level, message string) *SpyLogRecord {
	for _, r := range s.GetRecords() {
		if r.Level == level && r.Message == message {
			return &r
		}
	}

	return nil
}
