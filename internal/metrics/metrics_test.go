package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementArticlesProcessed()
			m.IncrementSummaryFailures()
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	if stats["articles_processed"].(int64) != 50 || stats["summary_failures"].(int64) != 50 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestHealthAndTimings(t *testing.T) {
	m := New()
	m.RecordProcessingTime(2 * time.Second)
	m.RecordProcessingTime(4 * time.Second)
	if m.AverageProcessingTime != 3*time.Second {
		t.Errorf("average = %v", m.AverageProcessingTime)
	}

	m.RecordStarvedRun("no articles")
	stats := m.GetStats()
	if !stats["is_healthy"].(bool) || stats["runs_starved"].(int64) != 1 || stats["last_error"] != "no articles" {
		t.Errorf("starved run should be counted without changing health: %v", stats)
	}

	m.SetError("internal failure")
	if m.GetStats()["is_healthy"].(bool) {
		t.Error("expected unhealthy after error")
	}
	m.SetLastRun()
	if !m.GetStats()["is_healthy"].(bool) {
		t.Error("expected healthy after successful run")
	}
	m.AddArticlesDropped(3)
	if m.GetStats()["articles_dropped"].(int64) != 3 {
		t.Error("dropped counter not updated")
	}
}
