package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"postarchive/internal/downloader"
	"postarchive/pkg/config"
	"postarchive/pkg/document"
	"postarchive/pkg/errors"
	"postarchive/pkg/fetch"
	"postarchive/pkg/logger"
	"postarchive/pkg/models"
	"postarchive/pkg/pathing"
	"postarchive/pkg/report"
	"postarchive/pkg/storage"
)

// Writer materializes posts into an archive directory
type Writer struct {
	cfg     *config.Config
	paths   pathing.Options
	storage *storage.Manager
	fetcher downloader.Fetcher
	logger  logger.Logger
}

// Option configures a Writer
type Option func(*Writer)

// WithLogger sets the log side channel
func WithLogger(log logger.Logger) Option {
	return func(w *Writer) {
		w.logger = log
	}
}

// WithFetcher replaces the HTTP image client
func WithFetcher(f downloader.Fetcher) Option {
	return func(w *Writer) {
		w.fetcher = f
	}
}

// NewWriter creates a writer for cfg, creating the base output directory
func NewWriter(cfg *config.Config, opts ...Option) (*Writer, error) {
	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:     cfg,
		paths:   cfg.PathOptions(),
		storage: manager,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.GetLogger()
	}
	if w.fetcher == nil {
		w.fetcher = fetch.NewClient(&cfg.Download, w.logger, fetch.WithStorage(manager))
	}
	return w, nil
}

// Storage returns the manager tracking files written by this writer
func (w *Writer) Storage() *storage.Manager {
	return w.storage
}

// WriteFiles writes every post's content file and schedules its image
// downloads, returning without waiting for any of it. Image N across the
// whole collection starts no earlier than N*stagger after this call.
//
// Nothing is returned as an error: failures are logged and recorded in the
// report available from the returned Run. Cancelling ctx abandons pending
// downloads.
func (w *Writer) WriteFiles(ctx context.Context, posts []models.Post) *Run {
	run := newRun(time.Now())
	go w.execute(ctx, posts, run)
	return run
}

func (w *Writer) execute(ctx context.Context, posts []models.Post, run *Run) {
	defer run.finish()

	rep := run.report
	rep.Posts = make([]report.PostResult, len(posts))
	for i, post := range posts {
		rep.Posts[i] = report.PostResult{
			Slug:   post.Meta.Slug,
			Images: len(post.Meta.ImageURLs),
			Status: report.StatusOK,
		}
	}

	plan := NewPlan(posts, w.paths, w.cfg.Download.StaggerIncrement)
	for _, skipped := range plan.Skipped {
		rep.Posts[skipped.Index].SetError(skipped.Err)
		w.logger.WithError(skipped.Err).WithField("slug", skipped.Slug).Warn("Skipping post")
	}

	logger.LogComponentStart(w.logger, "archive writer", map[string]interface{}{
		"posts":  len(posts),
		"images": len(plan.Tasks),
		"output": w.storage.Root(),
	})

	pool := downloader.NewWorkerPool(ctx, w.cfg.Download.ConcurrentDownloads, w.fetcher, w.logger)
	pool.Start()

	images := make([]report.ImageResult, 0, len(plan.Tasks))
	var imagesMu sync.Mutex
	record := func(r report.ImageResult) {
		imagesMu.Lock()
		images = append(images, r)
		imagesMu.Unlock()
	}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range pool.Results() {
			record(r)
		}
	}()

	writes := new(errgroup.Group)
	writes.SetLimit(max(w.cfg.Download.ConcurrentWrites, 1))

	// Content writes are all queued before any image is submitted: Submit
	// blocks while the pool is busy and must not hold back later posts.
	for _, p := range plan.Posts {
		res := &rep.Posts[p.Index]
		res.Path = p.File

		if err := w.storage.EnsureDir(p.Dir); err != nil {
			res.SetError(err)
			w.logger.WithError(err).WithField("slug", p.Post.Meta.Slug).Error("Failed to create post directory")
			continue
		}
		writes.Go(func() error {
			w.writeContent(p, res)
			return nil
		})
	}

	for _, task := range plan.Tasks {
		if r, ok := w.dispatch(pool, plan.Posts[task.PostIndex], task, run.StartedAt); !ok {
			record(r)
		}
	}

	pool.Stop()
	<-collected
	_ = writes.Wait()

	sort.Slice(images, func(i, j int) bool { return images[i].Seq < images[j].Seq })
	rep.Images = images

	s := rep.Summary()
	w.logger.InfoWithFields("Archive run finished", map[string]interface{}{
		"posts_written": s.PostsWritten,
		"posts_failed":  s.PostsFailed,
		"posts_skipped": s.PostsSkipped,
		"images_saved":  s.ImagesSaved,
		"images_warned": s.ImagesWarned,
		"images_failed": s.ImagesFailed,
	})
}

func (w *Writer) writeContent(p PlannedPost, res *report.PostResult) {
	data := document.SerializePost(p.Post)
	if err := w.storage.WriteFile(p.File, data); err != nil {
		res.SetError(err)
		w.logger.WithError(err).WithField("path", p.File).Error("Failed to write post")
		return
	}
	w.logger.InfoWithFields("Wrote post", map[string]interface{}{
		"path":  p.File,
		"bytes": len(data),
	})
}

// dispatch submits one image to the pool. When the image cannot be queued
// it returns the failed result and false.
func (w *Writer) dispatch(pool *downloader.WorkerPool, p PlannedPost, task ImageTask, start time.Time) (report.ImageResult, bool) {
	imagesDir := pathing.ImagesDir(p.Dir)
	failed := func(err error) (report.ImageResult, bool) {
		r := report.ImageResult{
			Seq:      task.Seq,
			PostSlug: task.PostSlug,
			URL:      task.URL,
			Path:     filepath.Join(imagesDir, fetch.FilenameFromURL(task.URL)),
			Delay:    task.Delay,
		}
		r.SetError(err)
		w.logger.WithError(err).WithField("url", task.URL).Error("Image not dispatched")
		return r, false
	}

	if err := w.storage.EnsureDir(imagesDir); err != nil {
		return failed(err)
	}

	err := pool.Submit(downloader.DownloadJob{
		Seq:       task.Seq,
		PostSlug:  task.PostSlug,
		URL:       task.URL,
		Dir:       imagesDir,
		Delay:     task.Delay,
		NotBefore: start.Add(task.Delay),
	})
	if err != nil {
		return failed(&errors.Error{
			Kind: errors.KindDownloadTransport,
			Op:   "submit",
			URL:  task.URL,
			Err:  fmt.Errorf("not queued: %w", err),
		})
	}
	return report.ImageResult{}, true
}
