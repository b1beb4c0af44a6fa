package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"postarchive/pkg/errors"
)

// Status is the outcome of writing one post or fetching one image
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// PostResult records what happened to one post's content file
type PostResult struct {
	Slug      string      `json:"slug"`
	Path      string      `json:"path,omitempty"`
	Images    int         `json:"images"`
	Status    Status      `json:"status"`
	ErrorKind errors.Kind `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ImageResult records the outcome of one scheduled download
type ImageResult struct {
	Seq        int           `json:"seq"`
	PostSlug   string        `json:"post_slug"`
	URL        string        `json:"url"`
	Path       string        `json:"path,omitempty"`
	Delay      time.Duration `json:"delay"`
	StatusCode int           `json:"status_code,omitempty"`
	Bytes      int64         `json:"bytes"`
	Status     Status        `json:"status"`
	ErrorKind  errors.Kind   `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// SetError records err on the result. Download status errors are warnings
// because the body was still written.
func (r *ImageResult) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err.Error()
	r.ErrorKind = errors.KindOf(err)
	if errors.IsWarning(err) {
		r.Status = StatusWarning
	} else {
		r.Status = StatusFailed
	}
}

// SetError records err on the post result as a failure
func (r *PostResult) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err.Error()
	r.ErrorKind = errors.KindOf(err)
	if r.ErrorKind == errors.KindDateParse {
		r.Status = StatusSkipped
	} else {
		r.Status = StatusFailed
	}
}

// Report aggregates every outcome of one archive run
type Report struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Posts      []PostResult  `json:"posts"`
	Images     []ImageResult `json:"images"`
}

// Summary holds the counts shown at the end of a run
type Summary struct {
	PostsWritten int           `json:"posts_written"`
	PostsFailed  int           `json:"posts_failed"`
	PostsSkipped int           `json:"posts_skipped"`
	ImagesSaved  int           `json:"images_saved"`
	ImagesWarned int           `json:"images_warned"`
	ImagesFailed int           `json:"images_failed"`
	BytesSaved   int64         `json:"bytes_saved"`
	Duration     time.Duration `json:"duration"`
}

// Summary counts outcomes by status
func (r *Report) Summary() Summary {
	var s Summary
	for _, p := range r.Posts {
		switch p.Status {
		case StatusOK:
			s.PostsWritten++
		case StatusSkipped:
			s.PostsSkipped++
		default:
			s.PostsFailed++
		}
	}
	for _, img := range r.Images {
		switch img.Status {
		case StatusOK:
			s.ImagesSaved++
		case StatusWarning:
			s.ImagesWarned++
		default:
			s.ImagesFailed++
		}
		s.BytesSaved += img.Bytes
	}
	if !r.FinishedAt.IsZero() {
		s.Duration = r.FinishedAt.Sub(r.StartedAt)
	}
	return s
}

// HasFailures reports whether any post or image did not complete cleanly.
// Warnings count, since a non-2xx body is rarely the wanted image.
func (r *Report) HasFailures() bool {
	s := r.Summary()
	return s.PostsFailed+s.PostsSkipped+s.ImagesFailed+s.ImagesWarned > 0
}

// Save writes the report as indented JSON, replacing path atomically
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync report file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace report file: %w", err)
	}
	return nil
}

// Load reads a report previously written by Save
func Load(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	var r Report
	if err := json.NewDecoder(file).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
