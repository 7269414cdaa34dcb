// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translate(t *testing.T, opts Options, raw string) (string, RenderContext) {
	t.Helper()
	out, rc, err := New(opts).Translate(RenderContext{}, raw)
	require.NoError(t, err)
	return out, rc
}

func TestSingleFigureUsesAltText(t *testing.T) {
	raw := `<figure class="wp-block-image"><img src="https://example.com/wp-content/uploads/2020/05/x.jpg" alt="A"/></figure>`
	out, rc := translate(t, Options{RewriteScrapedImages: true, StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="images/x.jpg'A" >}}`, out)
	assert.Equal(t, []string{"images/x.jpg"}, rc.Images)
	assert.False(t, rc.Mismatch())
}

func TestScrapedImageRewriteIgnoresCase(t *testing.T) {
	raw := `<FIGURE><IMG SRC="https://example.com/wp-content/uploads/2020/05/PHOTO.JPG" ALT="A"></FIGURE>`
	out, rc := translate(t, Options{RewriteScrapedImages: true, StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="images/PHOTO.JPG'A" >}}`, out)
	assert.Equal(t, []string{"images/PHOTO.JPG"}, rc.Images)
}

func TestSingleFigureUsesFigcaption(t *testing.T) {
	raw := `<figure><img src="https://example.com/wp-content/uploads/x.jpg"/><figcaption>B</figcaption></figure>`
	out, _ := translate(t, Options{RewriteScrapedImages: true, StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="images/x.jpg'B" >}}`, out)
}

func TestGalleryFigure(t *testing.T) {
	raw := `<figure class="wp-block-gallery has-nested-images">` +
		`<figure class="wp-block-image"><img src="https://example.com/a.jpg" alt="A"/></figure>` +
		`<figure class="wp-block-image"><img src="https://example.com/b.jpg"/></figure>` +
		`<figcaption class="blocks-gallery-caption">G</figcaption></figure>`
	out, rc := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="G" images="https://example.com/a.jpg'A|https://example.com/b.jpg" >}}`, out)
	assert.Equal(t, 2, rc.BodyImages)
	assert.Len(t, rc.Images, 2)
}

func TestCaptionsAreEscaped(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg" alt="Tom &amp; &quot;Jerry&quot; | friends"/></figure>`
	out, _ := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="https://example.com/a.jpg'Tom &amp; &#34;Jerry&#34; &#124; friends" >}}`, out)
}

func TestCaptionConflict(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg" alt="A"/><figcaption>B</figcaption></figure>`

	_, _, err := New(Options{StrictCaptions: true}).Translate(RenderContext{}, raw)
	assert.ErrorIs(t, err, ErrCaptionConflict)

	out, _ := translate(t, Options{}, raw)
	assert.Equal(t, `{{< gallery caption="" images="https://example.com/a.jpg'A" >}}`, out)
}

func TestMultipleCaptions(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg"/><figcaption>A</figcaption><figcaption>B</figcaption></figure>`
	_, _, err := New(Options{StrictCaptions: true}).Translate(RenderContext{}, raw)
	assert.ErrorIs(t, err, ErrMultipleCaptions)
}

func TestMultipleImagesInGalleryItem(t *testing.T) {
	raw := `<figure class="wp-block-gallery"><figure><img src="https://example.com/a.jpg"/><img src="https://example.com/b.jpg"/></figure></figure>`
	_, _, err := New(Options{}).Translate(RenderContext{}, raw)
	assert.ErrorIs(t, err, ErrMultipleImages)
}

func TestLinkedImage(t *testing.T) {
	tests := []struct {
		name    string
		href    string
		wantErr bool
	}{
		{name: "same upload", href: "https://example.com/x.jpg"},
		{name: "size variant", href: "https://example.com/x-scaled.jpg"},
		{name: "attachment page", href: "https://example.com/2020/05/post/x/"},
		{name: "different image", href: "https://example.com/other.jpg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<figure><a href="` + tt.href + `"><img src="https://example.com/x-1024x768.jpg"/></a></figure>`
			_, _, err := New(Options{StrictCaptions: true}).Translate(RenderContext{}, raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLinkMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAdjacentImagesCoalesce(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg" alt="A"/></figure>` + "\n\n" +
		`<p><a href="https://example.com/b.jpg"><img src="https://example.com/b.jpg" alt="B"/></a></p>`
	out, rc := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="https://example.com/a.jpg'A|https://example.com/b.jpg'B" >}}`, out)
	assert.Equal(t, []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}, rc.Images)
}

func TestRepeatedImageCountsAsCaptured(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg" alt="First"/></figure>` +
		`<figure><img src="https://example.com/a.jpg" alt="Second"/></figure>`
	out, rc := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t, `{{< gallery caption="" images="https://example.com/a.jpg'First" >}}`, out)
	assert.Equal(t, []string{"https://example.com/a.jpg"}, rc.Images)
	assert.Equal(t, 2, rc.BodyImages)
	assert.Equal(t, 2, rc.Captured)
	assert.False(t, rc.Mismatch())
	assert.Zero(t, rc.Mismatches)
}

func TestRepeatedImageInGalleryFigure(t *testing.T) {
	raw := `<figure class="wp-block-gallery">` +
		`<figure><img src="https://example.com/a.jpg"/></figure>` +
		`<figure><img src="https://example.com/a.jpg"/></figure>` +
		`<figure><img src="https://example.com/b.jpg"/></figure></figure>`
	_, rc := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t, []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}, rc.Images)
	assert.Equal(t, 3, rc.Captured)
	assert.False(t, rc.Mismatch())
}

func TestCaptionedGalleryStartsNewGroup(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg"/></figure>` +
		`<figure class="wp-block-gallery"><figure><img src="https://example.com/b.jpg"/></figure><figure><img src="https://example.com/c.jpg"/></figure><figcaption>G</figcaption></figure>`
	out, _ := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t,
		`{{< gallery caption="" images="https://example.com/a.jpg" >}}`+"\n\n"+
			`{{< gallery caption="G" images="https://example.com/b.jpg|https://example.com/c.jpg" >}}`,
		out)
}

func TestParagraphSeparatesGalleries(t *testing.T) {
	raw := `<figure><img src="https://example.com/a.jpg"/></figure><p>Text</p><figure><img src="https://example.com/b.jpg"/></figure>`
	out, _ := translate(t, Options{StrictCaptions: true}, raw)

	assert.Equal(t,
		`{{< gallery caption="" images="https://example.com/a.jpg" >}}`+"\n\nText\n\n"+
			`{{< gallery caption="" images="https://example.com/b.jpg" >}}`,
		out)
}

func TestEmbedsPassThrough(t *testing.T) {
	raw := "<p>Intro</p>\n\n" +
		`<blockquote class="twitter-tweet"><p>Hi</p></blockquote>` +
		`<script async src="https://platform.twitter.com/widgets.js" charset="utf-8"></script>`
	out, _ := translate(t, Options{}, raw)

	assert.Equal(t, "Intro\n\n"+
		`<blockquote class="twitter-tweet"><p>Hi</p></blockquote>`+"\n"+
		`<script async src="https://platform.twitter.com/widgets.js" charset="utf-8"></script>`,
		out)
}

func TestMediaPassThrough(t *testing.T) {
	raw := `<p>Watch:</p><iframe src="https://www.youtube.com/embed/abc" allowfullscreen></iframe><p>Done</p>`
	out, _ := translate(t, Options{}, raw)

	assert.Equal(t, "Watch:\n\n"+
		`<iframe src="https://www.youtube.com/embed/abc" allowfullscreen></iframe>`+
		"\n\nDone", out)
}

func TestEmbedsInsideTableCellsAndListItems(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		embed string
		check func(t *testing.T, out string)
	}{
		{
			name:  "table cell",
			raw:   "<table><tr><td><script>x()</script></td></tr></table>",
			embed: "<script>x()</script>",
			check: func(t *testing.T, out string) {
				for _, line := range strings.Split(out, "\n") {
					assert.True(t, strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|"), "table row %q", line)
				}
			},
		},
		{
			name:  "list item",
			raw:   `<ul><li>one <iframe src="https://player.example.com/1"></iframe></li><li>two</li></ul>`,
			embed: `<iframe src="https://player.example.com/1"></iframe>`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, "- one <iframe src=\"https://player.example.com/1\"></iframe>\n- two", out)
			},
		},
		{
			name:  "multi-line embed in a cell",
			raw:   "<table><tr><th>Clip</th></tr><tr><td><video controls>\n<source src=\"a.mp4\">\n</video></td></tr></table>",
			embed: `<video controls> <source src="a.mp4"/> </video>`,
			check: func(t *testing.T, out string) {
				assert.Len(t, strings.Split(out, "\n"), 3)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := translate(t, Options{}, tt.raw)
			assert.Contains(t, out, tt.embed)
			tt.check(t, out)
		})
	}
}

func TestCodepenPassThrough(t *testing.T) {
	raw := `<p class="codepen" data-height="265" data-slug-hash="abc123">See the Pen</p>`
	out, _ := translate(t, Options{}, raw)
	assert.Equal(t, raw, out)
}

func TestListMarkers(t *testing.T) {
	out, _ := translate(t, Options{}, `<ul><li>One</li><li>Two</li></ul><ol><li>First</li></ol>`)
	assert.Equal(t, "- One\n- Two\n\n1. First", out)
}

func TestCommentsRemoved(t *testing.T) {
	out, _ := translate(t, Options{}, "<!-- wp:paragraph -->\n<p>Hi</p>\n<!-- /wp:paragraph -->")
	assert.Equal(t, "Hi", out)
}

func TestImageCountMismatch(t *testing.T) {
	tr := New(Options{})
	out, rc, err := tr.Translate(RenderContext{}, `<p>Look <img src="https://example.com/a.jpg"> inline</p>`)
	require.NoError(t, err)

	assert.Contains(t, out, "https://example.com/a.jpg")
	assert.Equal(t, 1, rc.BodyImages)
	assert.Empty(t, rc.Images)
	assert.True(t, rc.Mismatch())
	assert.Equal(t, 1, rc.Mismatches)

	_, rc, err = tr.Translate(rc, `<p>Plain</p>`)
	require.NoError(t, err)
	assert.False(t, rc.Mismatch())
	assert.Equal(t, 1, rc.Mismatches)
	assert.Equal(t, 2, rc.Translated)
}

func TestSubstituteUnknownToken(t *testing.T) {
	es := embeds{{before: "\n\n", text: "<b>x</b>"}}
	assert.Equal(t, "a\n\n<b>x</b>\n\nb", es.substitute("a wxrembed0x b"))
	assert.Equal(t, "wxrembed5x", es.substitute("wxrembed5x"))

	inline := embeds{{text: "<b>x</b>", inline: true}}
	assert.Equal(t, "| a <b>x</b> |", inline.substitute("| a wxrembed0x |"))
}
