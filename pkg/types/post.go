// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared by the wxr2md pipeline stages:
// posts and comments extracted from an export, the transient image records
// used while merging images into posts, and per-stage configuration.
package types

import "time"

// UnattachedImageID marks an image scraped from post content. It never
// matches a post's cover image id, so such images attach to their post by
// owner id only.
const UnattachedImageID = "unattached"

// Post is one exported post, page, or custom post type item.
type Post struct {
	// Meta is not rendered; it drives paths and image acquisition.
	Meta PostMeta

	// Frontmatter is rendered at the top of the Markdown file.
	Frontmatter Frontmatter

	// Content is the Markdown body.
	Content string

	// Comments holds approved comments in export order.
	Comments []Comment
}

// PostMeta carries the identity and bookkeeping fields of a post.
type PostMeta struct {
	ID           string
	Slug         string
	CoverImageID string
	Type         string

	// Published is the parsed publish time. Zero when the export date
	// could not be parsed.
	Published time.Time

	// ImageURLs is an ordered set of images to acquire for this post.
	ImageURLs []string
}

// AddImageURL appends u unless it is already present. It reports whether
// the URL was added.
func (m *PostMeta) AddImageURL(u string) bool {
	for _, existing := range m.ImageURLs {
		if existing == u {
			return false
		}
	}
	m.ImageURLs = append(m.ImageURLs, u)
	return true
}

// Frontmatter keys in render order.
const (
	KeyTitle         = "title"
	KeyDate          = "date"
	KeyOldURL        = "old_url"
	KeyCategories    = "categories"
	KeyTags          = "tags"
	KeyFeaturedImage = "featured_image"
)

// FrontmatterKeys lists every frontmatter key in render order.
var FrontmatterKeys = []string{KeyTitle, KeyDate, KeyOldURL, KeyCategories, KeyTags, KeyFeaturedImage}

// Frontmatter is the metadata block of a rendered post.
type Frontmatter struct {
	Title      string
	Date       string
	OldURL     string
	Categories []string
	Tags       []string

	// FeaturedImage is "images/<filename>" when the post has a cover image.
	FeaturedImage string
}

// Field is one frontmatter entry. Exactly one of Value and List is
// meaningful, selected by IsList.
type Field struct {
	Key    string
	Value  string
	List   []string
	IsList bool
}

// Fields returns the frontmatter entries in render order. featured_image
// is only included once it has been set.
func (f Frontmatter) Fields() []Field {
	fields := []Field{
		{Key: KeyTitle, Value: f.Title},
		{Key: KeyDate, Value: f.Date},
		{Key: KeyOldURL, Value: f.OldURL},
		{Key: KeyCategories, List: f.Categories, IsList: true},
		{Key: KeyTags, List: f.Tags, IsList: true},
	}
	if f.FeaturedImage != "" {
		fields = append(fields, Field{Key: KeyFeaturedImage, Value: f.FeaturedImage})
	}
	return fields
}

// Comment is an approved reader comment. The yaml tags define the layout
// of the per-comment output file.
type Comment struct {
	ID       string `yaml:"_id"`
	ParentID string `yaml:"_parent"`
	Message  string `yaml:"message"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Date     string `yaml:"date"`

	// Time is the parsed comment time, used for the output filename.
	Time time.Time `yaml:"-"`

	Approved bool `yaml:"-"`
}

// ImageRecord is an image discovered in the export, before it is merged
// into the posts that reference it.
type ImageRecord struct {
	// ID is the attachment id, or UnattachedImageID for scraped images.
	ID string

	// PostID is the id of the owning post.
	PostID string

	URL string
}
