package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"postarchive/pkg/report"
)

const (
	barFilled = "█"
	barEmpty  = "░"
	barWidth  = 20

	// maxListedFailures caps the failure list so large runs stay readable
	maxListedFailures = 10
)

// Bar renders done out of total as a fixed width bar
func Bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
}

// RenderSummary renders the end of run panel
func RenderSummary(rep *report.Report) string {
	s := rep.Summary()
	totalImages := len(rep.Images)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		titleStyle.Render("Archive summary"),
		"",
		row("Posts written", fmt.Sprintf("%d/%d", s.PostsWritten, len(rep.Posts))),
		row("Images saved", fmt.Sprintf("%d/%d", s.ImagesSaved, totalImages)),
		dimStyle.Render(Bar(s.ImagesSaved, totalImages)),
		row("Downloaded", formatBytes(s.BytesSaved)),
		row("Duration", s.Duration.Round(time.Millisecond).String()),
	}

	if s.PostsSkipped > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%d post(s) skipped", s.PostsSkipped)))
	}
	if s.ImagesWarned > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%d image(s) returned a non-success status", s.ImagesWarned)))
	}
	if n := s.PostsFailed + s.ImagesFailed; n > 0 {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%d failure(s)", n)))
	}
	if !rep.HasFailures() {
		lines = append(lines, successStyle.Render("Everything written"))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderFailures lists the posts and images that did not complete cleanly
func RenderFailures(rep *report.Report) string {
	var lines []string
	for _, p := range rep.Posts {
		if p.Status == report.StatusOK {
			continue
		}
		lines = append(lines, errorStyle.Render(string(p.Status))+" "+p.Slug+dimStyle.Render(" "+p.Error))
	}
	for _, img := range rep.Images {
		switch img.Status {
		case report.StatusOK:
			continue
		case report.StatusWarning:
			lines = append(lines, warningStyle.Render(string(img.Status))+" "+img.URL+dimStyle.Render(fmt.Sprintf(" status %d", img.StatusCode)))
		default:
			lines = append(lines, errorStyle.Render(string(img.Status))+" "+img.URL+dimStyle.Render(" "+img.Error))
		}
	}

	if len(lines) > maxListedFailures {
		more := len(lines) - maxListedFailures
		lines = append(lines[:maxListedFailures], dimStyle.Render(fmt.Sprintf("... and %d more", more)))
	}
	return strings.Join(lines, "\n")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
