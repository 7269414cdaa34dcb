// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/wxr2md/internal/paths"
	"github.com/pdiddy/wxr2md/pkg/types"
)

// CleanImages points each post's image URLs at the original uploads
// instead of their resized variants. Where a filename changes, the post
// body and a matching featured image are rewritten with it. Body
// references are matched as whole path segments. Running it
// twice gives the same result as running it once.
func CleanImages(posts []*types.Post) {
	for _, post := range posts {
		urls := post.Meta.ImageURLs
		post.Meta.ImageURLs = nil
		for _, u := range urls {
			name := paths.Filename(u)
			cleaned := paths.CleanFilename(name)
			if cleaned != name {
				post.Content = strings.ReplaceAll(post.Content, "/"+name, "/"+cleaned)
				if post.Frontmatter.FeaturedImage != "" && paths.Filename(post.Frontmatter.FeaturedImage) == name {
					post.Frontmatter.FeaturedImage = paths.ImageRef(cleaned)
				}
				u = replaceFilename(u, name, cleaned)
			}
			post.Meta.AddImageURL(u)
		}
	}
}

// replaceFilename swaps the last path segment of u, keeping any query or
// fragment.
func replaceFilename(u, name, cleaned string) string {
	head, tail := u, ""
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		head, tail = u[:i], u[i:]
	}
	return strings.TrimSuffix(head, name) + cleaned + tail
}
