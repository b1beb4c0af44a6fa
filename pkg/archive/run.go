package archive

import (
	"time"

	"postarchive/pkg/report"
)

// Run is the handle for one WriteFiles call. Callers may ignore it and let
// the work finish in the background, or Wait for the report.
type Run struct {
	StartedAt time.Time

	report *report.Report
	done   chan struct{}
}

func newRun(start time.Time) *Run {
	return &Run{
		StartedAt: start,
		report:    &report.Report{StartedAt: start},
		done:      make(chan struct{}),
	}
}

// Done is closed once every content write and download has finished
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run is finished and returns its report
func (r *Run) Wait() *report.Report {
	<-r.done
	return r.report
}

func (r *Run) finish() {
	r.report.FinishedAt = time.Now()
	close(r.done)
}
