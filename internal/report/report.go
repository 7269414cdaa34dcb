// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report prints progress lines for a conversion run. A Reporter
// is safe for use from the goroutines of a batch.
package report

import (
	"fmt"
	"io"
	"sync"

	humanize "github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/pdiddy/wxr2md/internal/acquire"
)

// Reporter writes status lines to an io.Writer.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	green func(a ...any) string
	red   func(a ...any) string
	warn  func(a ...any) string
}

// New returns a Reporter writing to w. Colours follow color.NoColor.
func New(w io.Writer) *Reporter {
	return &Reporter{
		w:     w,
		green: color.New(color.FgGreen).SprintFunc(),
		red:   color.New(color.FgRed).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
	}
}

func (r *Reporter) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

// OK reports a written item.
func (r *Reporter) OK(label string, size int) {
	r.println(fmt.Sprintf("%s %s (%s)", r.green("[OK]"), label, humanize.Bytes(uint64(size))))
}

// Failed reports a failed item.
func (r *Reporter) Failed(label string, err error) {
	r.println(fmt.Sprintf("%s %s %s", r.red("[FAILED]"), label, r.red("("+err.Error()+")")))
}

// Infof prints a plain progress line.
func (r *Reporter) Infof(format string, args ...any) {
	r.println(fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (r *Reporter) Warnf(format string, args ...any) {
	r.println(r.warn("warning:") + " " + fmt.Sprintf(format, args...))
}

// Start announces a batch before it runs.
func (r *Reporter) Start(noun string, pending, existing int, regenerate bool) {
	switch {
	case pending+existing == 0:
		r.println(fmt.Sprintf("\nNo %s to save...", noun))
	case regenerate:
		r.println(fmt.Sprintf("\nSaving %s %s (%s will be rewritten)...",
			humanize.Comma(int64(pending)), noun, humanize.Comma(int64(existing))))
	default:
		r.println(fmt.Sprintf("\nSaving %s %s (%s already exist)...",
			humanize.Comma(int64(pending)), noun, humanize.Comma(int64(existing))))
	}
}

// StartDownload announces an image batch, whose existing files are never
// rewritten.
func (r *Reporter) StartDownload(noun string, pending, existing int) {
	if pending+existing == 0 {
		r.println(fmt.Sprintf("\nNo %s to download and save...", noun))
		return
	}
	r.println(fmt.Sprintf("\nDownloading and saving %s %s (%s already exist)...",
		humanize.Comma(int64(pending)), noun, humanize.Comma(int64(existing))))
}

// Summary prints the closing lines of a batch.
func (r *Reporter) Summary(noun string, res acquire.BatchResult) {
	if res.Total() == 0 {
		return
	}
	r.println(fmt.Sprintf("Batch summary (%s): %d written, %d skipped, %d regenerated, %d failed (total: %d)",
		noun, res.Written, res.Skipped, res.Regenerated, res.Failed, res.Total()))
	if res.HasFailures() {
		r.println("Done, but with " + r.red(fmt.Sprintf("%d failed", res.Failed)) + ".")
		return
	}
	r.println("Done, got them all!")
}
