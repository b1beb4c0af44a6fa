package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"postarchive/pkg/config"
	"postarchive/pkg/errors"
	"postarchive/pkg/logger"
	"postarchive/pkg/ratelimit"
	"postarchive/pkg/report"
	"postarchive/pkg/storage"
)

// fallbackFilename is used when a URL has no usable final path segment
const fallbackFilename = "image"

// Client downloads images and streams them into archive directories
type Client struct {
	http       *resty.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	createFile func(path string) (*os.File, error)
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithLimiter caps the request rate
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithStorage routes destination files through a storage manager so the run
// can account for what it wrote.
func WithStorage(m *storage.Manager) Option {
	return func(c *Client) {
		c.createFile = m.CreateFile
	}
}

// NewClient creates an image client from the download settings
func NewClient(cfg *config.DownloadConfig, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		http: resty.NewWithClient(&http.Client{
			Timeout: cfg.DownloadTimeout,
		}),
		headers: map[string]string{
			"User-Agent": cfg.UserAgent,
			"Accept":     "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
		},
		limiter:    ratelimit.PerMinute(cfg.RequestsPerMinute),
		createFile: storage.CreateFile,
		logger:     log.WithField("component", "fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FilenameFromURL returns the final path segment of rawURL, percent-decoded
// and without query or fragment.
func FilenameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
	}

	name := path.Base(p)
	switch name {
	case "", ".", "..", "/":
		return fallbackFilename
	}
	// backslash is a separator on windows
	name = strings.ReplaceAll(name, `\`, "_")
	return name
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetch waits delay, downloads rawURL and streams the body into destDir.
//
// Failures never propagate: they are logged and recorded on the returned
// result. A non-2xx response still writes the body and is reported as a
// download_status warning. A transport error leaves any partial file on disk.
// Nothing is retried.
func (c *Client) Fetch(ctx context.Context, rawURL, destDir string, delay time.Duration) report.ImageResult {
	dest := filepath.Join(destDir, FilenameFromURL(rawURL))
	result := report.ImageResult{
		URL:    rawURL,
		Path:   dest,
		Delay:  delay,
		Status: report.StatusOK,
	}
	log := c.logger.WithFields(map[string]interface{}{
		"url":  rawURL,
		"path": dest,
	})

	transportErr := func(op string, err error) report.ImageResult {
		result.FinishedAt = time.Now()
		result.SetError(&errors.Error{Kind: errors.KindDownloadTransport, Op: op, URL: rawURL, Path: dest, Err: err})
		log.WithError(err).Error("Image download failed")
		return result
	}

	if err := Sleep(ctx, delay); err != nil {
		return transportErr("wait", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return transportErr("rate limit", err)
	}

	result.StartedAt = time.Now()
	resp, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return transportErr("get", err)
	}
	body := resp.RawBody()
	defer body.Close()
	result.StatusCode = resp.StatusCode()

	file, err := c.createFile(dest)
	if err != nil {
		result.FinishedAt = time.Now()
		result.SetError(err)
		log.WithError(err).Error("Failed to create image file")
		return result
	}

	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()
	result.Bytes = written
	if copyErr != nil {
		return transportErr("stream", copyErr)
	}
	if closeErr != nil {
		result.FinishedAt = time.Now()
		result.SetError(&errors.Error{Kind: errors.KindFileWrite, Op: "close", Path: dest, Err: closeErr})
		log.WithError(closeErr).Error("Failed to close image file")
		return result
	}

	result.FinishedAt = time.Now()
	if !errors.IsSuccessStatus(result.StatusCode) {
		result.SetError(&errors.Error{
			Kind:       errors.KindDownloadStatus,
			Op:         "get",
			URL:        rawURL,
			Path:       dest,
			StatusCode: result.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		})
		log.WarnWithFields("Image download returned non-success status", map[string]interface{}{
			"status": result.StatusCode,
			"bytes":  written,
		})
		return result
	}

	log.InfoWithFields("Saved image", map[string]interface{}{
		"bytes":    written,
		"duration": result.FinishedAt.Sub(result.StartedAt),
	})
	return result
}

// doRequest performs a GET with the configured headers. The response body
// is left unread so the caller can stream it.
func (c *Client) doRequest(ctx context.Context, rawURL string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	for key, value := range c.headers {
		if value != "" {
			req.SetHeader(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": http.MethodGet,
		"url":    rawURL,
	})

	resp, err := req.Get(rawURL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, err
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   http.MethodGet,
		"url":      rawURL,
		"status":   resp.StatusCode(),
		"duration": time.Since(start),
	})
	return resp, nil
}
