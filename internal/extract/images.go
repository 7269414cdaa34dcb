// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/pdiddy/wxr2md/internal/paths"
	"github.com/pdiddy/wxr2md/internal/wxr"
	"github.com/pdiddy/wxr2md/pkg/types"
)

// ErrMalformedLink is returned when a scraped image cannot be resolved
// against its post's link.
var ErrMalformedLink = errors.New("malformed link")

const attachmentType = "attachment"

var (
	attachedImagePattern = regexp.MustCompile(`(?i)\.(gif|jpe?g|png)$`)
	scrapedImagePattern  = regexp.MustCompile(`(?i)<img[^>]*src="(.+?\.(?:gif|jpe?g|png))"[^>]*>`)
)

// AttachedImages returns the image attachments of doc, owned by their
// parent post.
func AttachedImages(doc *wxr.Document) []types.ImageRecord {
	var images []types.ImageRecord
	for _, it := range doc.ItemsOfType(attachmentType) {
		if !attachedImagePattern.MatchString(it.AttachmentURL) {
			continue
		}
		images = append(images, types.ImageRecord{
			ID:     it.PostID,
			PostID: it.PostParent,
			URL:    it.AttachmentURL,
		})
	}
	return images
}

// ScrapedImages returns the images referenced by <img> tags in the raw
// bodies of items. Relative sources resolve against the item's link.
func ScrapedImages(items []wxr.Item) ([]types.ImageRecord, error) {
	var images []types.ImageRecord
	for _, it := range items {
		matches := scrapedImagePattern.FindAllStringSubmatch(it.Content, -1)
		if len(matches) == 0 {
			continue
		}
		base, err := url.Parse(it.Link)
		if err != nil {
			return nil, fmt.Errorf("%w: post %s link %q: %v", ErrMalformedLink, it.PostID, it.Link, err)
		}
		for _, m := range matches {
			ref, err := url.Parse(m[1])
			if err != nil {
				return nil, fmt.Errorf("%w: post %s image %q: %v", ErrMalformedLink, it.PostID, m[1], err)
			}
			if !ref.IsAbs() && !base.IsAbs() {
				return nil, fmt.Errorf("%w: post %s link %q cannot resolve %q", ErrMalformedLink, it.PostID, it.Link, m[1])
			}
			images = append(images, types.ImageRecord{
				ID:     types.UnattachedImageID,
				PostID: it.PostID,
				URL:    base.ResolveReference(ref).String(),
			})
		}
	}
	return images, nil
}

// Merge attaches images to posts. An image joins a post when it is owned
// by the post or is the post's cover image; a cover image also sets the
// post's featured image. Each post's URLs stay free of duplicates.
func Merge(images []types.ImageRecord, posts []*types.Post) {
	for _, img := range images {
		for _, post := range posts {
			attach := img.PostID == post.Meta.ID
			if post.Meta.CoverImageID != "" && img.ID == post.Meta.CoverImageID {
				attach = true
				post.Frontmatter.FeaturedImage = paths.ImageRef(img.URL)
			}
			if attach {
				post.Meta.AddImageURL(img.URL)
			}
		}
	}
}
