// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A rule lifts a matching element out of the document as verbatim output.
// Rules are tried in order and the first match wins.
type rule struct {
	name   string
	match  func(n *nethtml.Node) bool
	render func(n *nethtml.Node) (embed, error)
}

// embed is the output of a rule. Before is the padding emitted ahead of
// the block; a blank line always follows it. An inline embed sits inside a
// table cell or list item and keeps the whitespace around its token.
type embed struct {
	before string
	text   string
	inline bool
}

var socialEmbedClasses = []string{"twitter-tweet", "instagram-media", "tiktok-embed"}

var rules = []rule{
	{
		name: "social-embed",
		match: func(n *nethtml.Node) bool {
			if n.DataAtom != atom.Blockquote {
				return false
			}
			for _, class := range socialEmbedClasses {
				if hasClass(n, class) {
					return true
				}
			}
			return false
		},
		render: renderBlock,
	},
	{
		name: "codepen",
		match: func(n *nethtml.Node) bool {
			return (n.DataAtom == atom.P || n.DataAtom == atom.Div) &&
				hasAttr(n, "data-slug-hash") && hasClass(n, "codepen")
		},
		render: renderBlock,
	},
	{
		name:  "script",
		match: func(n *nethtml.Node) bool { return n.DataAtom == atom.Script },
		render: func(n *nethtml.Node) (embed, error) {
			e, err := renderBlock(n)
			if err != nil {
				return e, err
			}
			// A script right after an element stays tight against it.
			if prev := n.PrevSibling; prev != nil && (prev.Type == nethtml.ElementNode || isToken(prev)) {
				e.before = "\n"
			}
			return e, nil
		},
	},
	{
		name: "media",
		match: func(n *nethtml.Node) bool {
			return n.DataAtom == atom.Iframe || n.DataAtom == atom.Audio || n.DataAtom == atom.Video
		},
		render: renderBlock,
	},
	{
		name: "gallery",
		match: func(n *nethtml.Node) bool {
			return n.DataAtom == atom.Figure && hasAttr(n, galleryAttr)
		},
		render: renderGallery,
	},
}

var booleanAttrPattern = regexp.MustCompile(`\s(async|defer|allowfullscreen|autoplay|controls|loop|muted|playsinline)=""`)

func renderBlock(n *nethtml.Node) (embed, error) {
	var buf bytes.Buffer
	if err := nethtml.Render(&buf, n); err != nil {
		return embed{}, fmt.Errorf("rendering <%s>: %w", n.Data, err)
	}
	return embed{
		before: "\n\n",
		text:   booleanAttrPattern.ReplaceAllString(buf.String(), " $1"),
	}, nil
}

func renderGallery(n *nethtml.Node) (embed, error) {
	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.Img {
			continue
		}
		item := attr(c, "src")
		if alt := attr(c, "alt"); alt != "" {
			item += "'" + escapeCaption(alt)
		}
		items = append(items, item)
	}
	text := fmt.Sprintf(`{{< gallery caption="%s" images="%s" >}}`,
		escapeCaption(attr(n, "data-caption")), strings.Join(items, "|"))
	return embed{before: "\n\n", text: text}, nil
}

// escapeCaption HTML-escapes s and protects the "|" item separator.
func escapeCaption(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "|", "&#124;")
}

const tokenPrefix = "wxrembed"

var (
	tokenPattern = regexp.MustCompile(`\s*` + tokenPrefix + `(\d+)x\s*`)
	lineBreakRun = regexp.MustCompile(`\s*\n\s*`)
)

func isToken(n *nethtml.Node) bool {
	return n.Type == nethtml.TextNode && strings.HasPrefix(n.Data, tokenPrefix)
}

// embeds holds lifted blocks, indexed by token number.
type embeds []embed

// liftEmbeds replaces every element matched by a rule with a plain-text
// token and returns the rendered blocks. Matched elements are not descended.
// Embeds inside table cells and list items are kept on one line.
func liftEmbeds(root *nethtml.Node) (embeds, error) {
	var out embeds
	var walk func(p *nethtml.Node, inline bool) error
	walk = func(p *nethtml.Node, inline bool) error {
		for c := p.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type != nethtml.ElementNode {
				c = next
				continue
			}
			r, ok := matchRule(c)
			if !ok {
				if err := walk(c, inline || isCellOrItem(c)); err != nil {
					return err
				}
				c = next
				continue
			}
			e, err := r.render(c)
			if err != nil {
				return fmt.Errorf("%s rule: %w", r.name, err)
			}
			if inline {
				e.before, e.inline = "", true
				e.text = lineBreakRun.ReplaceAllString(e.text, " ")
			}
			token := &nethtml.Node{
				Type: nethtml.TextNode,
				Data: tokenPrefix + strconv.Itoa(len(out)) + "x",
			}
			out = append(out, e)
			p.InsertBefore(token, c)
			p.RemoveChild(c)
			c = next
		}
		return nil
	}
	if err := walk(root, false); err != nil {
		return nil, err
	}
	return out, nil
}

func isCellOrItem(n *nethtml.Node) bool {
	switch n.DataAtom {
	case atom.Td, atom.Th, atom.Li:
		return true
	}
	return false
}

func matchRule(n *nethtml.Node) (rule, bool) {
	for _, r := range rules {
		if r.match(n) {
			return r, true
		}
	}
	return rule{}, false
}

// substitute swaps tokens in converted Markdown for their blocks. The
// whitespace around a block token is replaced by the block's own padding;
// text following a block is separated from it by a blank line. Inline
// tokens are swapped in place.
func (es embeds) substitute(s string) string {
	if len(es) == 0 {
		return s
	}
	var (
		buf     []byte
		last    int
		pending bool
	)
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		seg := s[last:m[0]]
		if pending && seg != "" {
			buf = append(buf, "\n\n"...)
		}
		buf = append(buf, seg...)

		i, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil || i >= len(es) {
			buf = append(buf, s[m[0]:m[1]]...)
			last, pending = m[1], false
			continue
		}
		e := es[i]
		if e.inline {
			start, end := m[2]-len(tokenPrefix), m[3]+1
			buf = append(buf, s[m[0]:start]...)
			buf = append(buf, e.text...)
			buf = append(buf, s[end:m[1]]...)
			last, pending = m[1], false
			continue
		}
		buf = bytes.TrimRight(buf, " \t\n")
		if len(buf) > 0 {
			buf = append(buf, e.before...)
		}
		buf = append(buf, e.text...)
		last, pending = m[1], true
	}
	if rest := s[last:]; rest != "" {
		if pending {
			buf = append(buf, "\n\n"...)
		}
		buf = append(buf, rest...)
	}
	return string(buf)
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *nethtml.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *nethtml.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
