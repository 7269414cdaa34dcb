// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paths

import "regexp"

// FilenameRule rewrites a platform-generated variant of an image filename
// back towards the original upload's name.
type FilenameRule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// FilenameRules are applied in order. "scaled" undoes the big-image
// downscale suffix and "dimensions" the thumbnail size suffix.
var FilenameRules = []FilenameRule{
	{Name: "scaled", Pattern: regexp.MustCompile(`-scaled\.`), Replace: "."},
	{Name: "dimensions", Pattern: regexp.MustCompile(`-[0-9]+x[0-9]+\.`), Replace: "."},
}

// CleanFilename strips size suffixes from an image filename. Rules run in
// order until none of them changes the name, so the result is stable:
// CleanFilename(CleanFilename(s)) == CleanFilename(s).
func CleanFilename(name string) string {
	for {
		prev := name
		for _, r := range FilenameRules {
			name = r.Pattern.ReplaceAllString(name, r.Replace)
		}
		if name == prev {
			return name
		}
	}
}
