package reindex

import (
	"fmt"
	"io"
	"time"
)

// progressTracker reports re-indexing progress to a writer, typically
// os.Stderr. It is driven from a single goroutine and needs no locking.
type progressTracker struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
}

func newProgressTracker(writer io.Writer, total, reportInterval int) *progressTracker {
	if reportInterval <= 0 {
		reportInterval = 1
	}
	return &progressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
		startTime:      time.Now(),
	}
}

// update advances progress to current and reports when a report interval
// has been crossed.
func (p *progressTracker) update(current int) {
	if current > p.total {
		current = p.total
	}
	p.current = current

	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// finish forces a final report.
func (p *progressTracker) finish() {
	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

func (p *progressTracker) elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *progressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d chunks (%.1f%%) - %.1f chunks/s",
		p.current, p.total, percentage, rate)
}
