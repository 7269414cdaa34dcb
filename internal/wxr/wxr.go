// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wxr decodes WordPress eXtended RSS export documents into a typed
// tree of channel items.
package wxr

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is the root <rss> element of an export.
type Document struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel holds the exported items in document order.
type Channel struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
	Items []Item `xml:"item"`
}

// Item is one exported post, page, attachment, or other post type. Fields
// tagged without a namespace match the wp: elements of any export version;
// Content names its namespace because excerpt:encoded shares the local name.
type Item struct {
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	PubDate       string     `xml:"pubDate"`
	Content       string     `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PostID        string     `xml:"post_id"`
	PostName      string     `xml:"post_name"`
	Status        string     `xml:"status"`
	PostType      string     `xml:"post_type"`
	PostParent    string     `xml:"post_parent"`
	AttachmentURL string     `xml:"attachment_url"`
	Categories    []Category `xml:"category"`
	PostMeta      []PostMeta `xml:"postmeta"`
	Comments      []Comment  `xml:"comment"`
}

// Category is a taxonomy term; Domain is "category" or "post_tag".
type Category struct {
	Domain   string `xml:"domain,attr"`
	Nicename string `xml:"nicename,attr"`
	Name     string `xml:",chardata"`
}

// PostMeta is a key/value custom field.
type PostMeta struct {
	Key   string `xml:"meta_key"`
	Value string `xml:"meta_value"`
}

// Comment is a reader comment attached to an item.
type Comment struct {
	ID          string `xml:"comment_id"`
	Parent      string `xml:"comment_parent"`
	Approved    string `xml:"comment_approved"`
	Author      string `xml:"comment_author"`
	AuthorEmail string `xml:"comment_author_email"`
	Date        string `xml:"comment_date"`
	Content     string `xml:"comment_content"`
}

// Decode reads an export document from r. Scalar fields are trimmed of
// surrounding whitespace.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	for i := range doc.Channel.Items {
		doc.Channel.Items[i].trim()
	}
	return &doc, nil
}

func (it *Item) trim() {
	for _, f := range []*string{
		&it.Title, &it.Link, &it.PubDate, &it.Content, &it.PostID, &it.PostName,
		&it.Status, &it.PostType, &it.PostParent, &it.AttachmentURL,
	} {
		*f = strings.TrimSpace(*f)
	}
	for i := range it.PostMeta {
		it.PostMeta[i].Key = strings.TrimSpace(it.PostMeta[i].Key)
		it.PostMeta[i].Value = strings.TrimSpace(it.PostMeta[i].Value)
	}
	for i := range it.Comments {
		c := &it.Comments[i]
		for _, f := range []*string{&c.ID, &c.Parent, &c.Approved, &c.Author, &c.AuthorEmail, &c.Date, &c.Content} {
			*f = strings.TrimSpace(*f)
		}
	}
}

// Meta returns the value of the first post-meta entry named key.
func (it Item) Meta(key string) (string, bool) {
	for _, m := range it.PostMeta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// ItemsOfType returns the items whose post type equals postType, in
// document order.
func (d *Document) ItemsOfType(postType string) []Item {
	var items []Item
	for _, it := range d.Channel.Items {
		if it.PostType == postType {
			items = append(items, it)
		}
	}
	return items
}
