// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wxr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Example Blog</title>
	<link>https://example.com</link>
	<item>
		<title>Hello &amp; Welcome</title>
		<link>https://example.com/2020/05/hello/</link>
		<pubDate>Sat, 02 May 2020 10:30:00 +0000</pubDate>
		<dc:creator><![CDATA[admin]]></dc:creator>
		<content:encoded><![CDATA[  <p>Body text</p>  ]]></content:encoded>
		<excerpt:encoded><![CDATA[Short excerpt]]></excerpt:encoded>
		<wp:post_id>12</wp:post_id>
		<wp:post_name><![CDATA[hello-world]]></wp:post_name>
		<wp:status><![CDATA[publish]]></wp:status>
		<wp:post_parent>0</wp:post_parent>
		<wp:post_type><![CDATA[post]]></wp:post_type>
		<category domain="category" nicename="news"><![CDATA[News]]></category>
		<category domain="post_tag" nicename="go"><![CDATA[Go]]></category>
		<wp:postmeta>
			<wp:meta_key><![CDATA[_edit_last]]></wp:meta_key>
			<wp:meta_value><![CDATA[1]]></wp:meta_value>
		</wp:postmeta>
		<wp:postmeta>
			<wp:meta_key><![CDATA[_thumbnail_id]]></wp:meta_key>
			<wp:meta_value><![CDATA[40]]></wp:meta_value>
		</wp:postmeta>
		<wp:comment>
			<wp:comment_id>7</wp:comment_id>
			<wp:comment_author><![CDATA[Ann]]></wp:comment_author>
			<wp:comment_author_email><![CDATA[ann@example.com]]></wp:comment_author_email>
			<wp:comment_date><![CDATA[2020-05-03 08:00:00]]></wp:comment_date>
			<wp:comment_content><![CDATA[Nice post]]></wp:comment_content>
			<wp:comment_approved><![CDATA[1]]></wp:comment_approved>
			<wp:comment_parent>0</wp:comment_parent>
		</wp:comment>
	</item>
	<item>
		<title>photo</title>
		<link>https://example.com/hello/photo/</link>
		<wp:post_id>40</wp:post_id>
		<wp:post_parent>12</wp:post_parent>
		<wp:post_type><![CDATA[attachment]]></wp:post_type>
		<wp:attachment_url><![CDATA[https://example.com/wp-content/uploads/2020/05/photo.jpg]]></wp:attachment_url>
	</item>
</channel>
</rss>`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, doc.Channel.Items, 2)

	post := doc.Channel.Items[0]
	assert.Equal(t, "Hello & Welcome", post.Title)
	assert.Equal(t, "<p>Body text</p>", post.Content, "content:encoded must not pick up excerpt:encoded")
	assert.Equal(t, "12", post.PostID)
	assert.Equal(t, "hello-world", post.PostName)
	assert.Equal(t, "publish", post.Status)
	assert.Equal(t, "post", post.PostType)
	require.Len(t, post.Categories, 2)
	assert.Equal(t, Category{Domain: "post_tag", Nicename: "go", Name: "Go"}, post.Categories[1])

	thumb, ok := post.Meta("_thumbnail_id")
	assert.True(t, ok)
	assert.Equal(t, "40", thumb)
	_, ok = post.Meta("missing")
	assert.False(t, ok)

	require.Len(t, post.Comments, 1)
	assert.Equal(t, "7", post.Comments[0].ID)
	assert.Equal(t, "1", post.Comments[0].Approved)
	assert.Equal(t, "2020-05-03 08:00:00", post.Comments[0].Date)

	att := doc.Channel.Items[1]
	assert.Equal(t, "https://example.com/wp-content/uploads/2020/05/photo.jpg", att.AttachmentURL)
	assert.Equal(t, "12", att.PostParent)
}

func TestItemsOfType(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Len(t, doc.ItemsOfType("post"), 1)
	assert.Len(t, doc.ItemsOfType("attachment"), 1)
	assert.Empty(t, doc.ItemsOfType("page"))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader("<rss><channel><item></channel>"))
	assert.Error(t, err)
}
