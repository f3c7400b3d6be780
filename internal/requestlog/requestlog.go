// Package requestlog provides the RequestLogger capability the server
// core calls after handling each request, carried forward from
// memory_request_logger.{h,cc} and null_request_logger.h: a no-op
// implementation for production, an in-memory one for tests and
// metrics.
package requestlog

import "sync"

// RequestLogger observes the size of each request/response pair.
type RequestLogger interface {
	LogRequest(requestSize, responseSize int)
}

// NullLogger discards everything logged to it.
type NullLogger struct{}

// LogRequest implements RequestLogger.
func (NullLogger) LogRequest(int, int) {}

// Record is one logged request/response size pair.
type Record struct {
	RequestSize  int
	ResponseSize int
}

// MemoryLogger accumulates Records for later inspection, guarded by a
// mutex since the server may log from multiple worker goroutines.
type MemoryLogger struct {
	mu      sync.Mutex
	records []Record
}

// LogRequest implements RequestLogger.
func (m *MemoryLogger) LogRequest(requestSize, responseSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, Record{RequestSize: requestSize, ResponseSize: responseSize})
}

// Records returns a snapshot of everything logged so far.
func (m *MemoryLogger) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
