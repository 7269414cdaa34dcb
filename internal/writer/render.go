// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writer

import (
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wxr2md/internal/seal"
	"github.com/pdiddy/wxr2md/pkg/types"
)

const frontmatterDelim = "---\n"

var scalarEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + scalarEscaper.Replace(s) + `"`
}

// RenderPost returns the Markdown file for post: a frontmatter block
// without the excluded keys, a blank line, then the body.
func RenderPost(post *types.Post, exclude []string) []byte {
	var b strings.Builder
	b.WriteString(frontmatterDelim)
	for _, f := range post.Frontmatter.Fields() {
		if slices.Contains(exclude, f.Key) {
			continue
		}
		if !f.IsList {
			b.WriteString(f.Key + ": " + quote(f.Value) + "\n")
			continue
		}
		if len(f.List) == 0 {
			continue
		}
		b.WriteString(f.Key + ":")
		for _, v := range f.List {
			b.WriteString("\n  - " + quote(v))
		}
		b.WriteString("\n")
	}
	b.WriteString(frontmatterDelim + "\n")
	b.WriteString(post.Content)
	b.WriteString("\n")
	return []byte(b.String())
}

// Warner receives non-fatal rendering warnings.
type Warner interface {
	Warnf(format string, args ...any)
}

// RenderComment returns the YAML file for c. The fields named by keys are
// encrypted with enc; empty values are left as they are.
func RenderComment(c types.Comment, enc seal.Encrypter, keys []string, log Warner) ([]byte, error) {
	c.Message = strings.ReplaceAll(c.Message, "\r", "")

	if enc != nil {
		for _, key := range keys {
			field := commentField(&c, key)
			if field == nil {
				continue
			}
			if *field == "" {
				log.Warnf("comment %s: %s is empty, not encrypted", c.ID, key)
				continue
			}
			v, err := enc.Encrypt(*field)
			if err != nil {
				return nil, fmt.Errorf("encrypting %s of comment %s: %w", key, c.ID, err)
			}
			*field = v
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling comment %s: %w", c.ID, err)
	}
	return data, nil
}

// CommentKeys lists the comment fields that can be encrypted.
var CommentKeys = []string{"_id", "_parent", "message", "name", "email", "date"}

func commentField(c *types.Comment, key string) *string {
	switch key {
	case "_id":
		return &c.ID
	case "_parent":
		return &c.ParentID
	case "message":
		return &c.Message
	case "name":
		return &c.Name
	case "email":
		return &c.Email
	case "date":
		return &c.Date
	}
	return nil
}
