// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/wxr2md/internal/httputil"
)

// ErrMissingLocalImage is returned when an image URL has no counterpart
// in the local uploads folder.
var ErrMissingLocalImage = errors.New("local image not found")

// ErrOutsideRoot is returned when an image URL maps to a path outside the
// local uploads folder.
var ErrOutsideRoot = errors.New("image path outside images folder")

const uploadsSegment = "uploads"

var percentEscape = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

// HTTPLoader fetches image URLs over HTTP.
type HTTPLoader struct {
	Client    *http.Client
	UserAgent string

	// Verify rejects payloads that do not decode as images.
	Verify bool

	// MaxRetries bounds retries on HTTP 429/503; 0 uses the default.
	MaxRetries int
}

// Load fetches rawURL. URLs without percent escapes are encoded first.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := RequestURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, l.Client, req, l.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, target)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if l.Verify {
		if _, err := VerifyImage(data); err != nil {
			return nil, fmt.Errorf("%s: %w", target, err)
		}
	}
	return data, nil
}

// RequestURL returns rawURL ready for a request. A URL that already holds
// percent escapes is used as-is so it is not encoded twice.
func RequestURL(rawURL string) (string, error) {
	if percentEscape.MatchString(rawURL) {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing image URL: %w", err)
	}
	return u.String(), nil
}

// LocalLoader reads images from a local copy of the uploads folder.
type LocalLoader struct {
	Root string
}

// Load reads the local file mapped from rawURL.
func (l LocalLoader) Load(_ context.Context, rawURL string) ([]byte, error) {
	path, err := LocalPath(l.Root, rawURL)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingLocalImage, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// LocalPath maps an image URL onto root: the path segments after the last
// "uploads" segment are joined under root. URLs without an uploads segment
// map to their filename. A URL whose ".." segments climb out of root is
// rejected.
func LocalPath(root, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing image URL: %w", err)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	rel := segs[len(segs)-1:]
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == uploadsSegment {
			rel = segs[i+1:]
			break
		}
	}
	path := filepath.Join(append([]string{root}, rel...)...)
	inside, err := filepath.Rel(root, path)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rawURL)
	}
	return path, nil
}
