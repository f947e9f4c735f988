package metrics

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex      sync.RWMutex
	requests   int64
	redirects  map[string]int64
	notFound   int64
	resolveDur []time.Duration
	startTime  time.Time
}

type Snapshot struct {
	TotalRequests int64            `json:"total_requests"`
	Redirects     map[string]int64 `json:"redirects"`
	NotFound      int64            `json:"not_found"`
	Uptime        time.Duration    `json:"uptime"`
	AvgResolve    time.Duration    `json:"avg_resolve"`
	P50Resolve    time.Duration    `json:"p50_resolve"`
	P95Resolve    time.Duration    `json:"p95_resolve"`
	P99Resolve    time.Duration    `json:"p99_resolve"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		redirects: make(map[string]int64),
		startTime: time.Now(),
	}
}

func (m *Metrics) IncrementRequests() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests++
}

func (m *Metrics) RecordRedirect(source string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.redirects[source]++
	m.recordDuration(duration)
}

func (m *Metrics) RecordNotFound(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.notFound++
	m.recordDuration(duration)
}

// recordDuration keeps a bounded window of recent resolution times.
// Callers must hold the write lock.
func (m *Metrics) recordDuration(duration time.Duration) {
	m.resolveDur = append(m.resolveDur, duration)
	if len(m.resolveDur) > 1000 {
		m.resolveDur = m.resolveDur[1:]
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalRequests: m.requests,
		Redirects:     make(map[string]int64, len(m.redirects)),
		NotFound:      m.notFound,
		Uptime:        time.Since(m.startTime),
	}

	for source, count := range m.redirects {
		snap.Redirects[source] = count
	}

	if len(m.resolveDur) > 0 {
		sorted := make([]time.Duration, len(m.resolveDur))
		copy(sorted, m.resolveDur)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.AvgResolve = average(sorted)
		snap.P50Resolve = percentile(sorted, 0.50)
		snap.P95Resolve = percentile(sorted, 0.95)
		snap.P99Resolve = percentile(sorted, 0.99)
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
