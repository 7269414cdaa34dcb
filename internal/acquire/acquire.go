// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire runs batches of independent load-and-write tasks. Each
// item starts at its own offset from the batch start, and a failed item
// never stops its siblings.
package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// Entry is one candidate write: a source to load and where to put it.
type Entry[S any] struct {
	// Label names the item in progress output.
	Label  string
	Dest   string
	Source S
}

// Item is a planned entry with its start offset.
type Item[S any] struct {
	Entry[S]
	Delay time.Duration

	// Regenerate is set when Dest already exists and will be overwritten.
	Regenerate bool
}

// PlanOptions controls planning.
type PlanOptions struct {
	// Regenerate overwrites existing destinations instead of skipping them.
	Regenerate bool
	// Step is the offset between consecutive retained items.
	Step time.Duration
}

// Schedule is the planned work of one batch.
type Schedule[S any] struct {
	Items []Item[S]

	// Skipped counts entries whose destination already exists.
	Skipped int
	// Regenerated counts entries that will overwrite an existing file.
	Regenerated int
	// Duplicates lists the labels of entries dropped because an earlier
	// entry writes the same destination.
	Duplicates []string
}

// Plan drops entries whose destination exists (unless regenerating) or
// repeats an earlier entry's destination, and staggers the rest by Step.
func Plan[S any](entries []Entry[S], opts PlanOptions) Schedule[S] {
	var s Schedule[S]
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Dest] {
			s.Duplicates = append(s.Duplicates, e.Label)
			continue
		}
		seen[e.Dest] = true

		regenerate := false
		if exists(e.Dest) {
			if !opts.Regenerate {
				s.Skipped++
				continue
			}
			regenerate = true
			s.Regenerated++
		}
		s.Items = append(s.Items, Item[S]{
			Entry:      e,
			Delay:      time.Duration(len(s.Items)) * opts.Step,
			Regenerate: regenerate,
		})
	}
	return s
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Loader produces the bytes for a source.
type Loader[S any] interface {
	Load(ctx context.Context, src S) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[S any] func(ctx context.Context, src S) ([]byte, error)

// Load calls f.
func (f LoaderFunc[S]) Load(ctx context.Context, src S) ([]byte, error) {
	return f(ctx, src)
}

// Reporter receives each item's result as it settles. Calls may come from
// several goroutines at once.
type Reporter interface {
	OK(label string, size int)
	Failed(label string, err error)
}

// RunOptions controls execution.
type RunOptions struct {
	// Concurrency caps the number of in-flight items; 0 means no cap.
	Concurrency int
	// Reporter, when set, is told about every item.
	Reporter Reporter
}

// Outcome is the settled result of one item.
type Outcome struct {
	Label       string
	Dest        string
	Size        int
	Regenerated bool
	Err         error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Written     int
	Failed      int
	Skipped     int
	Regenerated int

	// Outcomes are in plan order.
	Outcomes []Outcome
}

// Total returns the number of entries considered.
func (r BatchResult) Total() int {
	return r.Written + r.Failed + r.Skipped
}

// HasFailures reports whether any item failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run executes every item of s and waits for all of them to settle.
// Items are loaded no earlier than their offset from the start of the
// run and written atomically. Failures are recorded, never retried, and
// never cancel other items.
func Run[S any](ctx context.Context, s Schedule[S], loader Loader[S], opts RunOptions) BatchResult {
	start := time.Now()
	outcomes := make([]Outcome, len(s.Items))

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, it := range s.Items {
		g.Go(func() error {
			out := runItem(ctx, start, it, loader)
			outcomes[i] = out
			if opts.Reporter != nil {
				if out.Err != nil {
					opts.Reporter.Failed(out.Label, out.Err)
				} else {
					opts.Reporter.OK(out.Label, out.Size)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Skipped: s.Skipped, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failed++
			continue
		}
		result.Written++
		if o.Regenerated {
			result.Regenerated++
		}
	}
	return result
}

func runItem[S any](ctx context.Context, start time.Time, it Item[S], loader Loader[S]) Outcome {
	out := Outcome{Label: it.Label, Dest: it.Dest, Regenerated: it.Regenerate}

	if wait := time.Until(start.Add(it.Delay)); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			out.Err = ctx.Err()
			return out
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	data, err := loader.Load(ctx, it.Source)
	if err != nil {
		out.Err = err
		return out
	}
	if err := writeFile(it.Dest, data); err != nil {
		out.Err = err
		return out
	}
	out.Size = len(data)
	return out
}

// writeFile writes data to destPath through a temporary file in the same
// directory, creating parent directories as needed.
func writeFile(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".wxr2md-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	if writeErr == nil {
		writeErr = tmpFile.Chmod(0o644)
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", destPath, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
