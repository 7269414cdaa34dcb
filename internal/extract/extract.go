// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract builds post records from a decoded export: frontmatter,
// approved comments, translated Markdown bodies, and the set of images each
// post needs.
package extract

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/pdiddy/wxr2md/internal/translate"
	"github.com/pdiddy/wxr2md/internal/wxr"
	"github.com/pdiddy/wxr2md/pkg/types"
)

const (
	defaultPostType = "post"
	thumbnailKey    = "_thumbnail_id"
	categoryDomain  = "category"
	tagDomain       = "post_tag"
	approvedComment = "1"
)

// systemTypes are post types that never become Markdown files.
var systemTypes = map[string]bool{
	"attachment":          true,
	"revision":            true,
	"nav_menu_item":       true,
	"custom_css":          true,
	"customize_changeset": true,
	"oembed_cache":        true,
	"user_request":        true,
	"wp_block":            true,
	"wp_template":         true,
	"wp_template_part":    true,
	"wp_global_styles":    true,
	"wp_navigation":       true,
}

// skippedStatuses are item statuses that are never published.
var skippedStatuses = map[string]bool{
	"trash": true,
	"draft": true,
}

// Logger receives progress and warning lines.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// PostTypes returns the post types to process, in first-seen order.
func PostTypes(doc *wxr.Document, includeOther bool) []string {
	if !includeOther {
		return []string{defaultPostType}
	}
	var out []string
	for _, it := range doc.Channel.Items {
		if it.PostType == "" || systemTypes[it.PostType] || slices.Contains(out, it.PostType) {
			continue
		}
		out = append(out, it.PostType)
	}
	return out
}

// Extract builds the posts of doc. Images are discovered and merged per
// cfg, and filenames cleaned when a local image folder is set. A body that
// cannot be translated or a scraped image that cannot be resolved aborts
// the run.
func Extract(doc *wxr.Document, cfg types.ExtractConfig, log Logger) ([]*types.Post, error) {
	postTypes := PostTypes(doc, cfg.IncludeOtherTypes)
	tr := translate.New(translate.Options{
		RewriteScrapedImages: cfg.SaveScrapedImages,
		StrictCaptions:       cfg.StrictCaptions,
	})

	var (
		rc    translate.RenderContext
		posts []*types.Post
		items []wxr.Item
	)
	for _, postType := range postTypes {
		count := 0
		for _, it := range doc.ItemsOfType(postType) {
			if !keep(it, cfg) {
				continue
			}
			post := newPost(it, postType, cfg, log)

			content, next, err := tr.Translate(rc, it.Content)
			if err != nil {
				return nil, fmt.Errorf("translating post %s: %w", it.PostID, err)
			}
			rc = next
			if rc.Mismatch() {
				log.Warnf("post %s: %d <img> tags in body, %d captured into galleries", it.PostID, rc.BodyImages, rc.Captured)
			}
			post.Content = content

			posts = append(posts, post)
			items = append(items, it)
			count++
		}
		if len(postTypes) > 1 {
			log.Infof("%d %q posts found.", count, postType)
		}
	}
	if len(postTypes) == 1 {
		log.Infof("%d posts found.", len(posts))
	}

	var images []types.ImageRecord
	if cfg.SaveAttachedImages {
		attached := AttachedImages(doc)
		log.Infof("%d attached images found.", len(attached))
		images = append(images, attached...)
	}
	if cfg.SaveScrapedImages {
		scraped, err := ScrapedImages(items)
		if err != nil {
			return nil, err
		}
		log.Infof("%d images scraped from post body content.", len(scraped))
		images = append(images, scraped...)
	}
	Merge(images, posts)

	if cfg.ImagesFromFolder == "" {
		log.Warnf("image filenames not cleaned: no images folder set")
	} else {
		CleanImages(posts)
	}
	return posts, nil
}

func keep(it wxr.Item, cfg types.ExtractConfig) bool {
	if skippedStatuses[it.Status] {
		return false
	}
	return len(cfg.OnlyPosts) == 0 || slices.Contains(cfg.OnlyPosts, it.PostID)
}

// newPost builds everything but the body of a post.
func newPost(it wxr.Item, postType string, cfg types.ExtractConfig, log Logger) *types.Post {
	cover, _ := it.Meta(thumbnailKey)
	post := &types.Post{
		Meta: types.PostMeta{
			ID:           it.PostID,
			Slug:         decode(it.PostName),
			CoverImageID: cover,
			Type:         postType,
		},
		Frontmatter: types.Frontmatter{
			Title:      it.Title,
			OldURL:     it.Link,
			Categories: categories(it, cfg.FilterCategories),
			Tags:       terms(it, tagDomain),
		},
		Comments: comments(it, cfg.Dates, log),
	}

	published, err := ParsePubDate(it.PubDate, cfg.Dates.Location())
	if err != nil {
		log.Warnf("post %s: %v", it.PostID, err)
	} else {
		post.Meta.Published = published
		post.Frontmatter.Date = FormatDate(published, cfg.Dates)
	}
	return post
}

func categories(it wxr.Item, filter []string) []string {
	var out []string
	for _, c := range terms(it, categoryDomain) {
		if !slices.Contains(filter, c) {
			out = append(out, c)
		}
	}
	return out
}

// terms returns the URL-decoded nicenames of the item's terms in domain.
func terms(it wxr.Item, domain string) []string {
	var out []string
	for _, c := range it.Categories {
		if c.Domain == domain {
			out = append(out, decode(c.Nicename))
		}
	}
	return out
}

func comments(it wxr.Item, dates types.DateConfig, log Logger) []types.Comment {
	var out []types.Comment
	for _, c := range it.Comments {
		if c.Approved != approvedComment {
			continue
		}
		comment := types.Comment{
			ID:       c.ID,
			ParentID: c.Parent,
			Message:  c.Content,
			Name:     c.Author,
			Email:    c.AuthorEmail,
			Approved: true,
		}
		t, err := ParseCommentDate(c.Date, dates.Location())
		if err != nil {
			log.Warnf("post %s comment %s: %v", it.PostID, c.ID, err)
		} else {
			comment.Time = t
			comment.Date = FormatDate(t, dates)
		}
		out = append(out, comment)
	}
	return out
}

// decode undoes percent-encoding in slugs and nicenames. Values that are
// not valid escapes are kept as-is.
func decode(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}
