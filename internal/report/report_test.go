// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/wxr2md/internal/acquire"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestItemLines(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.OK("hello-world", 2048)
	r.Failed("photo.jpg", errors.New("HTTP 404"))
	r.Warnf("post %s: %d images", "12", 3)
	r.Infof("%d posts found.", 4)

	assert.Equal(t, "[OK] hello-world (2.0 kB)\n"+
		"[FAILED] photo.jpg (HTTP 404)\n"+
		"warning: post 12: 3 images\n"+
		"4 posts found.\n", buf.String())
}

func TestStart(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Start("posts", 0, 0, false)
	r.Start("posts", 1200, 3, false)
	r.Start("comments", 2, 1, true)

	assert.Equal(t, "\nNo posts to save...\n"+
		"\nSaving 1,200 posts (3 already exist)...\n"+
		"\nSaving 2 comments (1 will be rewritten)...\n", buf.String())
}

func TestStartDownload(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.StartDownload("images", 0, 0)
	r.StartDownload("images", 4, 2)

	assert.Equal(t, "\nNo images to download and save...\n"+
		"\nDownloading and saving 4 images (2 already exist)...\n", buf.String())
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Summary("images", acquire.BatchResult{Written: 2, Skipped: 1})
	r.Summary("posts", acquire.BatchResult{Written: 1, Failed: 1, Regenerated: 1})
	r.Summary("comments", acquire.BatchResult{})

	assert.Equal(t, "Batch summary (images): 2 written, 1 skipped, 0 regenerated, 0 failed (total: 3)\n"+
		"Done, got them all!\n"+
		"Batch summary (posts): 1 written, 0 skipped, 1 regenerated, 1 failed (total: 2)\n"+
		"Done, but with 1 failed.\n", buf.String())
}

func TestConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.OK("item", 1)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
	for _, l := range lines {
		assert.Equal(t, "[OK] item (1 B)", l)
	}
}
