package spies

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records, for use with slog.New.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          *sync.Mutex
	attrs       []slog.Attr
	logToStdout bool
	shared      *LogHandlerSpy
}

// NewLogHandlerSpy creates a new LogHandlerSpy.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{mu: &sync.Mutex{}, logToStdout: logToStdout}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	if len(s.attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(s.attrs...)
	}

	if s.logToStdout {
		_ = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}).Handle(ctx, record)
	}

	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	root.records = append(root.records, record)

	return nil
}

func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (s *LogHandlerSpy) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandlerSpy{
		mu:          s.mu,
		attrs:       append(append([]slog.Attr{}, s.attrs...), attrs...),
		logToStdout: s.logToStdout,
		shared:      s.root(),
	}
}

// WithGroup is not tracked, grouped attributes are recorded flat.
func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

func (s *LogHandlerSpy) root() *LogHandlerSpy {
	if s.shared != nil {
		return s.shared
	}

	return s
}

// GetRecords returns a copy of all captured records.
func (s *LogHandlerSpy) GetRecords() []slog.Record {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	records := make([]slog.Record, len(root.records))
	copy(records, root.records)

	return records
}

// Reset clears all captured records.
func (s *LogHandlerSpy) Reset() {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	root.records = root.records[:0]
}

// HasDebugLog checks for a debug record whose message starts with prefix.
func (s *LogHandlerSpy) HasDebugLog(prefix string) bool {
	return s.HasLog(slog.LevelDebug, prefix)
}

// HasInfoLog checks for an info record whose message starts with prefix.
func (s *LogHandlerSpy) HasInfoLog(prefix string) bool {
	return s.HasLog(slog.LevelInfo, prefix)
}

// HasWarnLog checks for a warn record whose message starts with prefix.
func (s *LogHandlerSpy) HasWarnLog(prefix string) bool {
	return s.HasLog(slog.LevelWarn, prefix)
}

// HasErrorLog checks for an error record whose message starts with prefix.
func (s *LogHandlerSpy) HasErrorLog(prefix string) bool {
	return s.HasLog(slog.LevelError, prefix)
}

// HasLog checks for a record of the given level whose message starts with prefix.
func (s *LogHandlerSpy) HasLog(level slog.Level, prefix string) bool {
	for _, r := range s.GetRecords() {
		if r.Level == level && strings.HasPrefix(r.Message, prefix) {
			return true
		}
	}

	return false
}

// HasLogWithAttr checks for a record whose message starts with prefix and that carries the attribute key.
func (s *LogHandlerSpy) HasLogWithAttr(prefix, key string) bool {
	for _, r := range s.GetRecords() {
		if !strings.HasPrefix(r.Message, prefix) {
			continue
		}

		found := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				found = true
				return false
			}
			return true
		})

		if found {
			return true
		}
	}

	return false
}
