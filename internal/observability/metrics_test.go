package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/mep", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/mep", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/mep", "POST", "VALIDATION_FAILED")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Requests["/api/mep|GET|200"])
	assert.Equal(t, int64(1), s.Errors["/api/mep|POST|VALIDATION_FAILED"])
	assert.Equal(t, int64(2), s.TotalRequests)
	assert.InDelta(t, 20.0, s.AvgLatencyMS, 0.01)

	s.Requests["/api/mep|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/api/mep|GET|200"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
