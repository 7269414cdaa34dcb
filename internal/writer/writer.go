// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package writer saves extracted posts as three sequential batches: post
// Markdown files, comment YAML files, then images. Each batch runs every
// item to completion before the next starts, and item failures never stop
// the remaining batches.
package writer

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/pdiddy/wxr2md/internal/acquire"
	"github.com/pdiddy/wxr2md/internal/paths"
	"github.com/pdiddy/wxr2md/internal/seal"
	"github.com/pdiddy/wxr2md/pkg/types"
)

// Batch names, used in progress output and the run manifest.
const (
	BatchPosts    = "posts"
	BatchComments = "comments"
	BatchImages   = "images"
)

// Reporter receives batch progress.
type Reporter interface {
	acquire.Reporter
	Warner
	Start(noun string, pending, existing int, regenerate bool)
	StartDownload(noun string, pending, existing int)
	Summary(noun string, res acquire.BatchResult)
}

// RecordFunc receives each batch result once it settles.
type RecordFunc func(ctx context.Context, batch string, res acquire.BatchResult) error

// Result holds the outcome of the three batches.
type Result struct {
	Posts    acquire.BatchResult
	Comments acquire.BatchResult
	Images   acquire.BatchResult
}

// HasFailures reports whether any batch had a failed item.
func (r Result) HasFailures() bool {
	return r.Posts.HasFailures() || r.Comments.HasFailures() || r.Images.HasFailures()
}

// Failed returns the number of failed items across batches.
func (r Result) Failed() int {
	return r.Posts.Failed + r.Comments.Failed + r.Images.Failed
}

// Writer saves posts, comments, and images.
type Writer struct {
	cfg     types.WriteConfig
	planner *paths.Planner
	enc     seal.Encrypter
	rep     Reporter

	// Record, when set, is called after each batch. Its errors are
	// reported as warnings.
	Record RecordFunc
}

// New returns a Writer. enc may be nil when no comment fields are
// encrypted.
func New(cfg types.WriteConfig, planner *paths.Planner, enc seal.Encrypter, rep Reporter) *Writer {
	return &Writer{cfg: cfg, planner: planner, enc: enc, rep: rep}
}

// Write runs the post, comment, and image batches in that order.
func (w *Writer) Write(ctx context.Context, posts []*types.Post) Result {
	var res Result
	res.Posts = w.writePosts(ctx, posts)
	w.record(ctx, BatchPosts, res.Posts)

	res.Comments = w.writeComments(ctx, posts)
	w.record(ctx, BatchComments, res.Comments)

	res.Images = w.writeImages(ctx, posts)
	w.record(ctx, BatchImages, res.Images)
	return res
}

func (w *Writer) record(ctx context.Context, batch string, res acquire.BatchResult) {
	if w.Record == nil {
		return
	}
	if err := w.Record(ctx, batch, res); err != nil {
		w.rep.Warnf("recording %s batch: %v", batch, err)
	}
}

func (w *Writer) writePosts(ctx context.Context, posts []*types.Post) acquire.BatchResult {
	entries := make([]acquire.Entry[*types.Post], 0, len(posts))
	for _, post := range posts {
		label := post.Meta.Slug
		if w.cfg.TypeLabels {
			label = post.Meta.Type + " - " + label
		}
		entries = append(entries, acquire.Entry[*types.Post]{
			Label:  label,
			Dest:   w.planner.PostPath(post),
			Source: post,
		})
	}

	loader := acquire.LoaderFunc[*types.Post](func(_ context.Context, post *types.Post) ([]byte, error) {
		return RenderPost(post, w.cfg.FrontmatterExclude), nil
	})
	return runMarkdown(ctx, w, BatchPosts, entries, loader)
}

func (w *Writer) writeComments(ctx context.Context, posts []*types.Post) acquire.BatchResult {
	var entries []acquire.Entry[types.Comment]
	for _, post := range posts {
		for i, dest := range w.planner.CommentPaths(post) {
			entries = append(entries, acquire.Entry[types.Comment]{
				Label:  filepath.Base(dest),
				Dest:   dest,
				Source: post.Comments[i],
			})
		}
	}

	loader := acquire.LoaderFunc[types.Comment](func(_ context.Context, c types.Comment) ([]byte, error) {
		return RenderComment(c, w.enc, w.cfg.CommentKeysToEncrypt, w.rep)
	})
	return runMarkdown(ctx, w, BatchComments, entries, loader)
}

func runMarkdown[S any](ctx context.Context, w *Writer, noun string, entries []acquire.Entry[S], loader acquire.Loader[S]) acquire.BatchResult {
	s := acquire.Plan(entries, acquire.PlanOptions{
		Regenerate: w.cfg.RegenerateMarkdown,
		Step:       w.cfg.MarkdownWriteDelay,
	})
	w.warnDuplicates(noun, s.Duplicates)

	existing := s.Skipped
	if w.cfg.RegenerateMarkdown {
		existing = s.Regenerated
	}
	w.rep.Start(noun, len(s.Items), existing, w.cfg.RegenerateMarkdown)

	res := acquire.Run(ctx, s, loader, w.runOptions())
	w.rep.Summary(noun, res)
	return res
}

func (w *Writer) writeImages(ctx context.Context, posts []*types.Post) acquire.BatchResult {
	var entries []acquire.Entry[string]
	for _, post := range posts {
		for _, u := range post.Meta.ImageURLs {
			entries = append(entries, acquire.Entry[string]{
				Label:  paths.Filename(u),
				Dest:   w.planner.ImagePath(post, u),
				Source: u,
			})
		}
	}

	s := acquire.Plan(entries, acquire.PlanOptions{Step: w.cfg.ImageRequestDelay})
	w.warnDuplicates(BatchImages, s.Duplicates)
	w.rep.StartDownload(BatchImages, len(s.Items), s.Skipped)

	res := acquire.Run(ctx, s, w.imageLoader(), w.runOptions())
	w.rep.Summary(BatchImages, res)
	return res
}

func (w *Writer) imageLoader() acquire.Loader[string] {
	if w.cfg.ImagesFromFolder != "" {
		return acquire.LocalLoader{Root: w.cfg.ImagesFromFolder}
	}
	return &acquire.HTTPLoader{
		Client:    &http.Client{Timeout: w.cfg.Timeout},
		UserAgent: w.cfg.UserAgent,
		Verify:    w.cfg.VerifyImages,
	}
}

func (w *Writer) runOptions() acquire.RunOptions {
	return acquire.RunOptions{Concurrency: w.cfg.Concurrency, Reporter: w.rep}
}

func (w *Writer) warnDuplicates(noun string, labels []string) {
	for _, l := range labels {
		w.rep.Warnf("%s: %s has the same destination as an earlier item, not saved", noun, l)
	}
}
