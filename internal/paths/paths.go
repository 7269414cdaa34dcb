// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paths derives output locations for posts, comments, and images.
// It never touches the filesystem.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/wxr2md/pkg/types"
)

const (
	imagesDir     = "images"
	indexFile     = "index.md"
	markdownExt   = ".md"
	commentPrefix = "comment-"
	commentExt    = ".yml"
)

// ErrUnknownFolderField is returned for a frontmatter folder field that has
// no accessor.
var ErrUnknownFolderField = errors.New("unknown frontmatter folder field")

// folderFields maps the frontmatter fields usable as a folder segment to
// their accessors. List fields contribute their first value.
var folderFields = map[string]func(types.Frontmatter) string{
	types.KeyTitle:         func(f types.Frontmatter) string { return f.Title },
	types.KeyDate:          func(f types.Frontmatter) string { return f.Date },
	types.KeyOldURL:        func(f types.Frontmatter) string { return f.OldURL },
	types.KeyCategories:    func(f types.Frontmatter) string { return first(f.Categories) },
	types.KeyTags:          func(f types.Frontmatter) string { return first(f.Tags) },
	types.KeyFeaturedImage: func(f types.Frontmatter) string { return f.FeaturedImage },
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// FolderFields returns the sorted names accepted as a frontmatter folder.
func FolderFields() []string {
	names := make([]string, 0, len(folderFields))
	for name := range folderFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Planner computes destinations from post metadata and naming settings.
type Planner struct {
	cfg    types.PathConfig
	folder func(types.Frontmatter) string
}

// New returns a Planner for cfg. It rejects unknown frontmatter folder fields.
func New(cfg types.PathConfig) (*Planner, error) {
	p := &Planner{cfg: cfg}
	if cfg.FrontmatterFolder != "" {
		fn, ok := folderFields[cfg.FrontmatterFolder]
		if !ok {
			return nil, fmt.Errorf("%w: %q (want one of %s)",
				ErrUnknownFolderField, cfg.FrontmatterFolder, strings.Join(FolderFields(), ", "))
		}
		p.folder = fn
	}
	return p, nil
}

// segments returns the post-relative path segments shared by post and
// comment destinations.
func (p *Planner) segments(post *types.Post) []string {
	var segs []string
	published := post.Meta.Published

	if p.cfg.TypeFolders {
		segs = append(segs, post.Meta.Type)
	}
	if p.cfg.YearFolders {
		segs = append(segs, published.Format("2006"))
	}
	if p.cfg.MonthFolders {
		segs = append(segs, published.Format("01"))
	}
	if p.folder != nil {
		if seg := p.folder(post.Frontmatter); seg != "" {
			segs = append(segs, seg)
		}
	}

	slug := post.Meta.Slug
	if slug == "" {
		slug = post.Meta.ID
	}
	if p.cfg.PrefixDate {
		slug = published.Format("2006-01-02") + "-" + slug
	}
	return append(segs, slug)
}

// PostPath returns the Markdown destination for post.
func (p *Planner) PostPath(post *types.Post) string {
	dir := filepath.Join(append([]string{p.cfg.Output}, p.segments(post)...)...)
	if p.cfg.PostFolders {
		return filepath.Join(dir, indexFile)
	}
	return dir + markdownExt
}

// CommentPath returns the destination for a single comment of post.
// Comments sharing a millisecond resolve to the same path; use
// CommentPaths to write all comments of a post.
func (p *Planner) CommentPath(c types.Comment, post *types.Post) string {
	return filepath.Join(p.commentDir(post), commentName(c.Time.UnixMilli(), ""))
}

// CommentPaths returns one destination per comment of post, in comment
// order. Comments that share a millisecond get their id appended so no two
// comments overwrite each other.
func (p *Planner) CommentPaths(post *types.Post) []string {
	dir := p.commentDir(post)
	counts := make(map[int64]int, len(post.Comments))
	for _, c := range post.Comments {
		counts[c.Time.UnixMilli()]++
	}

	out := make([]string, len(post.Comments))
	for i, c := range post.Comments {
		ms := c.Time.UnixMilli()
		suffix := ""
		if counts[ms] > 1 {
			suffix = c.ID
		}
		out[i] = filepath.Join(dir, commentName(ms, suffix))
	}
	return out
}

func (p *Planner) commentDir(post *types.Post) string {
	return filepath.Join(append([]string{p.cfg.OutputComments}, p.segments(post)...)...)
}

func commentName(ms int64, suffix string) string {
	name := commentPrefix + strconv.FormatInt(ms, 10)
	if suffix != "" {
		name += "-" + suffix
	}
	return name + commentExt
}

// ImagePath returns the destination for an image of post. Images live in
// an images/ folder beside the post's Markdown file.
func (p *Planner) ImagePath(post *types.Post, imageURL string) string {
	return filepath.Join(filepath.Dir(p.PostPath(post)), imagesDir, Filename(imageURL))
}

// Filename returns the last path segment of an image URL or path, without
// query string or fragment.
func Filename(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// ImageRef returns the post-relative reference used in Markdown and
// frontmatter for an image URL.
func ImageRef(imageURL string) string {
	return imagesDir + "/" + Filename(imageURL)
}
