// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/pdiddy/wxr2md/pkg/types"
)

const (
	isoDateTimeLayout = "2006-01-02T15:04:05.000Z07:00"
	isoDateLayout     = "2006-01-02"
	commentDateLayout = "2006-01-02 15:04:05"
)

// pubDateLayouts are the RFC 2822 variants seen in export pubDate fields.
var pubDateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	"2 Jan 2006 15:04:05 -0700",
}

// ParsePubDate parses an RFC 2822 post date and converts it to loc.
func ParsePubDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized post date %q", s)
}

// ParseCommentDate parses a "YYYY-MM-DD hh:mm:ss" comment date as wall
// time in loc.
func ParseCommentDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(commentDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized comment date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t under the date policy: a strftime pattern when one
// is set, else an ISO-8601 date-time with milliseconds, else a plain date.
func FormatDate(t time.Time, d types.DateConfig) string {
	t = t.In(d.Location())
	switch {
	case d.Format != "":
		return strftime.Format(d.Format, t)
	case d.IncludeTime:
		return t.Format(isoDateTimeLayout)
	default:
		return t.Format(isoDateLayout)
	}
}
