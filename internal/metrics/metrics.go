package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	RunsCompleted      int64
	RunsStarved        int64
	RunsRejected       int64
	FeedsFetched       int64
	FeedFailures       int64
	ArticlesProcessed  int64
	ArticlesDropped    int64
	ExtractionFailures int64
	SummaryFailures    int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(counter *int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += int64(n)
}

func (m *Metrics) IncrementRunsCompleted()      { m.add(&m.RunsCompleted, 1) }
func (m *Metrics) IncrementRunsRejected()       { m.add(&m.RunsRejected, 1) }
func (m *Metrics) IncrementFeedsFetched()       { m.add(&m.FeedsFetched, 1) }
func (m *Metrics) IncrementFeedFailures()       { m.add(&m.FeedFailures, 1) }
func (m *Metrics) IncrementArticlesProcessed()  { m.add(&m.ArticlesProcessed, 1) }
func (m *Metrics) IncrementExtractionFailures() { m.add(&m.ExtractionFailures, 1) }
func (m *Metrics) IncrementSummaryFailures()    { m.add(&m.SummaryFailures, 1) }
func (m *Metrics) AddArticlesDropped(n int)     { m.add(&m.ArticlesDropped, n) }

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

// RecordStarvedRun counts a run that produced no articles. Starvation usually
// means the feeds of one profile are down, so it does not affect health.
func (m *Metrics) RecordStarvedRun(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsStarved++
	m.LastError = err
	m.LastErrorTime = time.Now()
}

// SetError records a failure of the process itself and marks it unhealthy.
func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs_completed":             m.RunsCompleted,
		"runs_starved":               m.RunsStarved,
		"runs_rejected":              m.RunsRejected,
		"feeds_fetched":              m.FeedsFetched,
		"feed_failures":              m.FeedFailures,
		"articles_processed":         m.ArticlesProcessed,
		"articles_dropped":           m.ArticlesDropped,
		"extraction_failures":        m.ExtractionFailures,
		"summary_failures":           m.SummaryFailures,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
