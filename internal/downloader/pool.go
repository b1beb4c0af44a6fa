package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"postarchive/pkg/logger"
	"postarchive/pkg/report"
)

// DownloadJob is one scheduled image fetch
type DownloadJob struct {
	Seq       int
	PostSlug  string
	URL       string
	Dir       string
	Delay     time.Duration // offset from the start of the run
	NotBefore time.Time     // absolute time the fetch may start
}

// Fetcher downloads one image into a directory after waiting delay
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string, delay time.Duration) report.ImageResult
}

// WorkerPool runs scheduled fetches on a fixed number of workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan report.ImageResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     Fetcher
	logger      logger.Logger
}

// NewWorkerPool creates a download pool whose jobs stop waiting when ctx is done
func NewWorkerPool(ctx context.Context, numWorkers int, fetcher Fetcher, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan report.ImageResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		logger:      log.WithField("component", "downloader"),
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	logger.LogComponentStart(wp.logger, "worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for every submitted job to produce a result
// and then closes the results channel. Results must be drained concurrently.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	logger.LogComponentStop(wp.logger, "worker pool", "queue drained")
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"seq":   job.Seq,
			"url":   job.URL,
			"delay": job.Delay,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the channel every job's result is published on
func (wp *WorkerPool) Results() <-chan report.ImageResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	// every queued job yields a result, even after cancellation, so callers
	// can account for all of them
	for job := range wp.jobQueue {
		wp.resultQueue <- wp.processJob(job, id)
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

func (wp *WorkerPool) processJob(job DownloadJob, workerID int) report.ImageResult {
	delay := time.Until(job.NotBefore)
	if delay < 0 {
		delay = 0
	}

	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"seq":       job.Seq,
		"wait":      delay,
	})

	result := wp.fetcher.Fetch(wp.ctx, job.URL, job.Dir, delay)
	result.Seq = job.Seq
	result.PostSlug = job.PostSlug
	result.Delay = job.Delay
	return result
}
