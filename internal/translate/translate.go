// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate turns post-body HTML into Markdown. It runs in three
// steps: a structural pre-pass that folds image figures into gallery
// placeholders, a rule engine that lifts embeds out as raw HTML, and a
// general HTML-to-Markdown conversion with fenced code, ATX headings, "-"
// bullets and GFM tables.
package translate

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Caption and figure structure errors. They are fatal for the post being
// translated.
var (
	ErrCaptionConflict  = errors.New("image alt text and figcaption differ")
	ErrMultipleCaptions = errors.New("figure has more than one figcaption")
	ErrMultipleImages   = errors.New("gallery item has more than one image")
	ErrLinkMismatch     = errors.New("linked image does not match its source")
)

// Options tune a Translator.
type Options struct {
	// RewriteScrapedImages points every body <img> at images/<filename>.
	RewriteScrapedImages bool
	// StrictCaptions makes differing alt text and figcaption an error.
	// When false the alt text wins.
	StrictCaptions bool
}

// RenderContext carries state across calls to Translate. Image fields
// describe the most recent call; the counters accumulate.
type RenderContext struct {
	Translated int
	Mismatches int

	// BodyImages is the number of <img> tags in the raw body.
	BodyImages int
	// Images are the sources captured into galleries, in document order.
	// A repeated source is kept once, with its first caption.
	Images []string
	// Captured counts the <img> tags folded into galleries, repeats
	// included.
	Captured int
}

// Mismatch reports whether the last body's <img> count differs from the
// number of images the pre-pass captured.
func (rc RenderContext) Mismatch() bool {
	return rc.BodyImages != rc.Captured
}

// Translator converts post bodies. It is not safe for concurrent use.
type Translator struct {
	opts Options
	conv *md.Converter
}

// New returns a Translator with the converter configured once for all posts.
func New(opts Options) *Translator {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
	})
	conv.Use(plugin.GitHubFlavored())
	return &Translator{opts: opts, conv: conv}
}

var (
	bodyImgPattern    = regexp.MustCompile(`(?i)<img\b`)
	scrapedImgPattern = regexp.MustCompile(`(?i)(<img[^>]*src=").*?([^/"]+\.(?:gif|jpe?g|png))("[^>]*>)`)
	listMarkerPattern = regexp.MustCompile(`(?m)^(\s*)(-|\d+\.) +`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// paragraphMarker survives HTML parsing where a bare blank line would be
// folded into surrounding whitespace.
const paragraphMarker = "\n<div></div>\n"

// Translate converts raw to Markdown and returns the updated context.
// It has no side effects beyond the returned values.
func (t *Translator) Translate(rc RenderContext, raw string) (string, RenderContext, error) {
	rc.BodyImages = len(bodyImgPattern.FindAllStringIndex(raw, -1))
	rc.Images, rc.Captured = nil, 0

	prepared := strings.ReplaceAll(raw, "\n\n", paragraphMarker)
	if t.opts.RewriteScrapedImages {
		prepared = scrapedImgPattern.ReplaceAllString(prepared, "${1}images/${2}${3}")
	}

	root, err := parseFragment(prepared)
	if err != nil {
		return "", rc, fmt.Errorf("parsing body: %w", err)
	}
	removeComments(root)

	images, captured, err := restructure(root, t.opts.StrictCaptions)
	if err != nil {
		return "", rc, err
	}
	rc.Images, rc.Captured = images, captured

	embeds, err := liftEmbeds(root)
	if err != nil {
		return "", rc, err
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", rc, fmt.Errorf("rendering body: %w", err)
		}
	}

	out, err := t.conv.ConvertString(buf.String())
	if err != nil {
		return "", rc, fmt.Errorf("converting body: %w", err)
	}
	out = embeds.substitute(out)
	out = listMarkerPattern.ReplaceAllString(out, "${1}${2} ")
	out = blankRunPattern.ReplaceAllString(out, "\n\n")

	rc.Translated++
	if rc.Mismatch() {
		rc.Mismatches++
	}
	return strings.TrimSpace(out), rc, nil
}

// parseFragment parses s in a <body> context and hangs the resulting nodes
// off a detached body element.
func parseFragment(s string) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), root)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}
