package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"postarchive/pkg/report"
)

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat(barEmpty, barWidth), Bar(0, 0))
	assert.Equal(t, strings.Repeat(barFilled, 10)+strings.Repeat(barEmpty, 10), Bar(5, 10))
	assert.Equal(t, strings.Repeat(barFilled, barWidth), Bar(12, 10))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KiB", formatBytes(2048))
	assert.Equal(t, "5.0 MiB", formatBytes(5*1024*1024))
}

func TestRenderSummary(t *testing.T) {
	start := time.Now()
	clean := &report.Report{
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Posts:      []report.PostResult{{Slug: "a", Status: report.StatusOK}},
		Images:     []report.ImageResult{{URL: "http://x/a.png", Status: report.StatusOK, Bytes: 2048}},
	}

	out := RenderSummary(clean)
	assert.Contains(t, out, "Archive summary")
	assert.Contains(t, out, "Posts written")
	assert.Contains(t, out, "1/1")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "Everything written")

	clean.Images = append(clean.Images, report.ImageResult{URL: "http://x/b.png", Status: report.StatusWarning, StatusCode: 404})
	out = RenderSummary(clean)
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "non-success status")
	assert.NotContains(t, out, "Everything written")
}

func TestRenderFailures(t *testing.T) {
	rep := &report.Report{
		Posts: []report.PostResult{
			{Slug: "fine", Status: report.StatusOK},
			{Slug: "undated", Status: report.StatusSkipped, Error: "date_parse"},
		},
		Images: []report.ImageResult{
			{URL: "http://x/404.png", Status: report.StatusWarning, StatusCode: 404},
			{URL: "http://x/down.png", Status: report.StatusFailed, Error: "connection refused"},
		},
	}

	out := RenderFailures(rep)
	assert.Contains(t, out, "undated")
	assert.Contains(t, out, "status 404")
	assert.Contains(t, out, "connection refused")
	assert.NotContains(t, out, "fine")

	for i := 0; i < 20; i++ {
		rep.Images = append(rep.Images, report.ImageResult{URL: fmt.Sprintf("http://x/%d.png", i), Status: report.StatusFailed})
	}
	out = RenderFailures(rep)
	assert.Contains(t, out, "... and 13 more")
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Success("done")
	p.Warning("careful", "slug")
	p.Info("Output", "./out")
	p.Error("failed", fmt.Errorf("boom"))

	out := buf.String()
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful: slug")
	assert.Contains(t, out, "./out")
	assert.Contains(t, out, "failed: boom")
}

func TestQuietPrinterOnlyShowsErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Success("done")
	p.Warning("careful")
	p.Info("Output", "./out")
	p.Print("block")
	assert.Empty(t, buf.String())

	p.Error("failed")
	assert.Contains(t, buf.String(), "failed")
}
