package downloader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"postarchive/pkg/logger"
	"postarchive/pkg/report"
)

// MockFetcher records calls instead of touching the network
type MockFetcher struct {
	fetchDelay time.Duration
	failURLs   map[string]bool
	counter    int32

	mu      sync.Mutex
	started map[string]time.Time
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		failURLs: make(map[string]bool),
		started:  make(map[string]time.Time),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url, destDir string, delay time.Duration) report.ImageResult {
	atomic.AddInt32(&m.counter, 1)
	result := report.ImageResult{URL: url, Path: destDir + "/x", Status: report.StatusOK}

	if delay > 0 {
		select {
		case <-ctx.Done():
			result.Status = report.StatusFailed
			result.Error = ctx.Err().Error()
			return result
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	m.started[url] = time.Now()
	m.mu.Unlock()

	if m.fetchDelay > 0 {
		time.Sleep(m.fetchDelay)
	}
	if m.failURLs[url] {
		result.Status = report.StatusFailed
		result.Error = "download error"
	}
	return result
}

func (m *MockFetcher) GetFetchCount() int {
	return int(atomic.LoadInt32(&m.counter))
}

func (m *MockFetcher) StartedAt(url string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started[url]
}

func collect(pool *WorkerPool) (*[]report.ImageResult, *sync.WaitGroup) {
	var results []report.ImageResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			results = append(results, result)
		}
	}()
	return &results, &wg
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	fetcher := NewMockFetcher()
	fetcher.fetchDelay = 10 * time.Millisecond

	pool := NewWorkerPool(context.Background(), 3, fetcher, logger.NewNopLogger())
	pool.Start()
	results, wg := collect(pool)

	numJobs := 10
	now := time.Now()
	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			Seq:       i,
			PostSlug:  "post",
			URL:       fmt.Sprintf("https://example.com/photo%d.jpg", i),
			Dir:       "out/post/images",
			NotBefore: now,
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(*results) != numJobs {
		t.Fatalf("Expected %d results, got %d", numJobs, len(*results))
	}

	seen := make(map[int]bool)
	for _, result := range *results {
		if result.Status != report.StatusOK {
			t.Errorf("Expected ok status for seq %d, got %s", result.Seq, result.Status)
		}
		if result.PostSlug != "post" {
			t.Errorf("Expected post slug to be carried over, got %q", result.PostSlug)
		}
		seen[result.Seq] = true
	}
	if len(seen) != numJobs {
		t.Errorf("Expected %d distinct sequence numbers, got %d", numJobs, len(seen))
	}

	if fetcher.GetFetchCount() != numJobs {
		t.Errorf("Expected %d fetch calls, got %d", numJobs, fetcher.GetFetchCount())
	}
}

func TestWorkerPoolFailuresDoNotStopLaterJobs(t *testing.T) {
	fetcher := NewMockFetcher()
	fetcher.failURLs["https://example.com/photo0.jpg"] = true

	pool := NewWorkerPool(context.Background(), 1, fetcher, logger.NewNopLogger())
	pool.Start()
	results, wg := collect(pool)

	for i := 0; i < 3; i++ {
		_ = pool.Submit(DownloadJob{Seq: i, URL: fmt.Sprintf("https://example.com/photo%d.jpg", i)})
	}

	pool.Stop()
	wg.Wait()

	if len(*results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(*results))
	}
	failed := 0
	for _, result := range *results {
		if result.Status == report.StatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected exactly 1 failure, got %d", failed)
	}
}

func TestWorkerPoolConcurrency(t *testing.T) {
	fetcher := NewMockFetcher()
	fetcher.fetchDelay = 100 * time.Millisecond

	pool := NewWorkerPool(context.Background(), 5, fetcher, logger.NewNopLogger())
	pool.Start()
	results, wg := collect(pool)

	numJobs := 10
	startTime := time.Now()
	for i := 0; i < numJobs; i++ {
		_ = pool.Submit(DownloadJob{Seq: i, URL: fmt.Sprintf("https://example.com/photo%d.jpg", i), NotBefore: startTime})
	}

	pool.Stop()
	wg.Wait()

	elapsed := time.Since(startTime)

	// 5 workers and 10 jobs of 100ms each should take about 200ms
	if elapsed > 600*time.Millisecond {
		t.Errorf("Downloads took too long: %v", elapsed)
	}
	if elapsed < 190*time.Millisecond {
		t.Errorf("Downloads finished faster than the pool size allows: %v", elapsed)
	}
	if len(*results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(*results))
	}
}

func TestWorkerPoolHonorsNotBefore(t *testing.T) {
	fetcher := NewMockFetcher()

	pool := NewWorkerPool(context.Background(), 4, fetcher, logger.NewNopLogger())
	pool.Start()
	results, wg := collect(pool)

	start := time.Now()
	increment := 40 * time.Millisecond
	for i := 0; i < 3; i++ {
		delay := time.Duration(i) * increment
		_ = pool.Submit(DownloadJob{
			Seq:       i,
			URL:       fmt.Sprintf("https://example.com/photo%d.jpg", i),
			Delay:     delay,
			NotBefore: start.Add(delay),
		})
	}

	pool.Stop()
	wg.Wait()

	sorted := append([]report.ImageResult(nil), *results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	for i, result := range sorted {
		want := time.Duration(i) * increment
		if result.Delay != want {
			t.Errorf("seq %d: expected scheduled delay %v, got %v", i, want, result.Delay)
		}
		started := fetcher.StartedAt(result.URL)
		if started.Sub(start) < want {
			t.Errorf("seq %d started after %v, before its slot at %v", i, started.Sub(start), want)
		}
	}

	// firing order follows the sequence
	for i := 1; i < len(sorted); i++ {
		prev := fetcher.StartedAt(sorted[i-1].URL)
		cur := fetcher.StartedAt(sorted[i].URL)
		if cur.Before(prev) {
			t.Errorf("seq %d fired before seq %d", i, i-1)
		}
	}
}

func TestWorkerPoolCancellationStillReportsEveryJob(t *testing.T) {
	fetcher := NewMockFetcher()
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewWorkerPool(ctx, 2, fetcher, logger.NewNopLogger())
	pool.Start()
	results, wg := collect(pool)

	start := time.Now()
	for i := 0; i < 4; i++ {
		_ = pool.Submit(DownloadJob{Seq: i, URL: fmt.Sprintf("https://example.com/photo%d.jpg", i), NotBefore: start.Add(time.Hour)})
	}

	cancel()
	pool.Stop()
	wg.Wait()

	if len(*results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(*results))
	}
	for _, result := range *results {
		if result.Status != report.StatusFailed {
			t.Errorf("Expected cancelled job %d to fail, got %s", result.Seq, result.Status)
		}
	}
}
