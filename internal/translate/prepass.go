// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/wxr2md/internal/paths"
)

// galleryAttr marks placeholder figures built by the pre-pass.
const galleryAttr = "data-wxr-gallery"

var imageFilePattern = regexp.MustCompile(`(?i)\.(gif|jpe?g|png|webp)$`)

type galleryImage struct {
	src     string
	caption string
}

type gallery struct {
	caption string
	images  []galleryImage
	seen    int
}

// add appends img unless its source is already in the gallery.
func (g *gallery) add(img galleryImage) {
	g.seen++
	for _, have := range g.images {
		if have.src == img.src {
			return
		}
	}
	g.images = append(g.images, img)
}

type blockKind int

const (
	blockOther blockKind = iota
	blockBlank
	blockImage
	blockGallery
)

// restructure folds runs of adjacent image blocks among the top-level
// children of root into gallery placeholder figures. Blank text and empty
// paragraph markers between image blocks do not break a run; a captioned
// gallery always starts a new one. It returns every distinct image source
// captured and the number of images folded, repeats included.
func restructure(root *html.Node, strict bool) ([]string, int, error) {
	var (
		captured []string
		count    int
		current  *gallery
		members  []*html.Node
	)

	flush := func() {
		if current == nil {
			return
		}
		placeholder := current.node()
		root.InsertBefore(placeholder, members[0])
		for _, m := range members {
			root.RemoveChild(m)
		}
		for _, img := range current.images {
			captured = append(captured, img.src)
		}
		count += current.seen
		current, members = nil, nil
	}

	var pendingBlank []*html.Node
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		kind := classify(c)

		switch kind {
		case blockBlank:
			if current != nil {
				pendingBlank = append(pendingBlank, c)
			}
		case blockImage:
			img, err := singleImage(c, strict)
			if err != nil {
				return nil, 0, err
			}
			if current == nil {
				current = &gallery{}
			}
			members = append(members, pendingBlank...)
			members = append(members, c)
			pendingBlank = nil
			current.add(img)
		case blockGallery:
			g, err := galleryOf(c, strict)
			if err != nil {
				return nil, 0, err
			}
			if current != nil && g.caption != "" {
				flush()
				pendingBlank = nil
			}
			if current == nil {
				current = &gallery{caption: g.caption}
			}
			members = append(members, pendingBlank...)
			members = append(members, c)
			pendingBlank = nil
			for _, img := range g.images {
				current.add(img)
			}
			current.seen += g.seen - len(g.images)
		default:
			flush()
			pendingBlank = nil
		}
		c = next
	}
	flush()
	return captured, count, nil
}

func (g *gallery) node() *html.Node {
	fig := &html.Node{
		Type:     html.ElementNode,
		Data:     "figure",
		DataAtom: atom.Figure,
		Attr: []html.Attribute{
			{Key: galleryAttr},
			{Key: "data-caption", Val: g.caption},
		},
	}
	for _, img := range g.images {
		fig.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "img",
			DataAtom: atom.Img,
			Attr: []html.Attribute{
				{Key: "src", Val: img.src},
				{Key: "alt", Val: img.caption},
			},
		})
	}
	return fig
}

func classify(n *html.Node) blockKind {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return blockBlank
		}
		return blockOther
	case html.ElementNode:
	default:
		return blockOther
	}

	switch n.DataAtom {
	case atom.Div:
		if n.FirstChild == nil && len(n.Attr) == 0 {
			return blockBlank
		}
	case atom.Figure:
		doc := goquery.NewDocumentFromNode(n)
		imgs := doc.Find("img").Length()
		switch {
		case doc.Find("figure").Length() > 0 && imgs > 0:
			return blockGallery
		case imgs > 1:
			return blockGallery
		case imgs == 1:
			return blockImage
		}
	case atom.P:
		if loneImage(n) != nil {
			return blockImage
		}
	}
	return blockOther
}

// loneImage returns the only img of a paragraph whose content is nothing
// but that image, optionally wrapped in a link.
func loneImage(n *html.Node) *html.Node {
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
		case c.Type == html.ElementNode && c.DataAtom == atom.Img && found == nil:
			found = c
		case c.Type == html.ElementNode && c.DataAtom == atom.A && found == nil:
			found = loneImage(c)
			if found == nil {
				return nil
			}
		default:
			return nil
		}
	}
	return found
}

// singleImage extracts the image and caption of a figure or paragraph
// holding exactly one image.
func singleImage(n *html.Node, strict bool) (galleryImage, error) {
	doc := goquery.NewDocumentFromNode(n)
	img := doc.Find("img")
	if img.Length() != 1 {
		return galleryImage{}, fmt.Errorf("%w: found %d", ErrMultipleImages, img.Length())
	}
	src, _ := img.Attr("src")
	alt := strings.TrimSpace(img.AttrOr("alt", ""))

	captions := doc.Find("figcaption")
	if captions.Length() > 1 {
		return galleryImage{}, fmt.Errorf("%w: image %s", ErrMultipleCaptions, src)
	}
	figcaption := strings.TrimSpace(captions.Text())

	if link := img.ParentsFiltered("a").First(); link.Length() > 0 {
		if err := checkLink(link.AttrOr("href", ""), src); err != nil {
			return galleryImage{}, err
		}
	}

	caption, err := pickCaption(alt, figcaption, src, strict)
	if err != nil {
		return galleryImage{}, err
	}
	return galleryImage{src: src, caption: caption}, nil
}

// pickCaption prefers alt text over a figcaption.
func pickCaption(alt, figcaption, src string, strict bool) (string, error) {
	if alt != "" && figcaption != "" && alt != figcaption && strict {
		return "", fmt.Errorf("%w: image %s has alt %q and caption %q", ErrCaptionConflict, src, alt, figcaption)
	}
	if alt != "" {
		return alt, nil
	}
	return figcaption, nil
}

// checkLink rejects a link around an image when the link targets a
// different image file. Size variants of the same upload are allowed.
func checkLink(href, src string) error {
	target := paths.Filename(href)
	if !imageFilePattern.MatchString(target) {
		return nil
	}
	if paths.CleanFilename(target) != paths.CleanFilename(paths.Filename(src)) {
		return fmt.Errorf("%w: %s links to %s", ErrLinkMismatch, src, href)
	}
	return nil
}

// galleryOf collects the images of a gallery figure in document order.
// Nested figures are items with their own captions; loose images use their
// alt text. Figcaptions outside the nested figures caption the gallery.
func galleryOf(n *html.Node, strict bool) (gallery, error) {
	var (
		g        gallery
		captions []string
		walk     func(*html.Node) error
	)
	walk = func(p *html.Node) error {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Figure:
				if goquery.NewDocumentFromNode(c).Find("img").Length() == 0 {
					continue
				}
				img, err := singleImage(c, strict)
				if err != nil {
					return err
				}
				g.add(img)
			case atom.Img:
				g.add(galleryImage{
					src:     attr(c, "src"),
					caption: strings.TrimSpace(attr(c, "alt")),
				})
			case atom.Figcaption:
				captions = append(captions, strings.TrimSpace(goquery.NewDocumentFromNode(c).Text()))
			default:
				if err := walk(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(n); err != nil {
		return gallery{}, err
	}
	if len(captions) > 1 {
		return gallery{}, fmt.Errorf("%w: gallery", ErrMultipleCaptions)
	}
	if len(captions) == 1 {
		g.caption = captions[0]
	}
	return g, nil
}
