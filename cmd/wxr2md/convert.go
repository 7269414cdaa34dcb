// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wxr2md/internal/acquire"
	"github.com/pdiddy/wxr2md/internal/config"
	"github.com/pdiddy/wxr2md/internal/extract"
	"github.com/pdiddy/wxr2md/internal/manifest"
	"github.com/pdiddy/wxr2md/internal/paths"
	"github.com/pdiddy/wxr2md/internal/report"
	"github.com/pdiddy/wxr2md/internal/seal"
	"github.com/pdiddy/wxr2md/internal/writer"
	"github.com/pdiddy/wxr2md/internal/wxr"
	"github.com/pdiddy/wxr2md/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [export.xml]",
	Short: "Write posts, comments, and images from a WordPress export",
	Long: `Convert reads a WXR export, turns each published post into a Markdown
file with frontmatter, writes approved comments as YAML files, and saves
the images the posts use, either downloaded or copied from a local uploads
folder.

Existing post and comment files are skipped unless --regenerate-markdown
is set. Existing images are always skipped. Every batch runs to the end;
the command fails afterwards if any item failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// convertFlags maps flag names to configuration keys.
var convertFlags = map[string]string{
	"input":                "input",
	"output":               "output",
	"output-comments":      "outputComments",
	"post-folders":         "postFolders",
	"prefix-date":          "prefixDate",
	"year-folders":         "yearFolders",
	"month-folders":        "monthFolders",
	"frontmatter-folder":   "frontmatterFolders",
	"frontmatter-exclude":  "frontmatterExclude",
	"include-other-types":  "includeOtherTypes",
	"only-posts":           "onlyPosts",
	"save-attached-images": "saveAttachedImages",
	"save-scraped-images":  "saveScrapedImages",
	"images-from-folder":   "imagesFromFolder",
	"regenerate-markdown":  "regenerateMarkdown",
	"encrypt-comment-keys": "commentKeysToEncrypt",
	"public-key":           "publicKey",
	"local-date":           "localDate",
	"date-format":          "dateFormat",
	"include-time":         "includeTimeWithDate",
	"filter-categories":    "filterCategories",
	"markdown-write-delay": "markdownWriteDelay",
	"image-request-delay":  "imageRequestDelay",
	"concurrency":          "concurrency",
	"timeout":              "timeout",
	"user-agent":           "userAgent",
	"strict-captions":      "strictCaptions",
	"verify-images":        "verifyImages",
	"manifest":             "manifest",
}

func init() {
	f := convertCmd.Flags()
	f.StringP("input", "i", "", "WXR export file (default export.xml)")
	f.StringP("output", "o", "", "folder for post Markdown files (default output)")
	f.String("output-comments", "", "folder for comment YAML files (default comments)")
	f.Bool("post-folders", true, "write <slug>/index.md instead of <slug>.md")
	f.Bool("prefix-date", false, "prefix post slugs with the publish date")
	f.Bool("year-folders", false, "group posts in year folders")
	f.Bool("month-folders", false, "group posts in month folders")
	f.String("frontmatter-folder", "", "group posts by this frontmatter field ("+strings.Join(paths.FolderFields(), ", ")+")")
	f.StringSlice("frontmatter-exclude", nil, "frontmatter keys left out of post files")
	f.Bool("include-other-types", false, "include pages and custom post types")
	f.StringSlice("only-posts", nil, "only convert these post ids")
	f.Bool("save-attached-images", true, "save images attached to posts")
	f.Bool("save-scraped-images", true, "save images found in post bodies")
	f.String("images-from-folder", "", "copy images from this uploads folder instead of downloading")
	f.Bool("regenerate-markdown", false, "rewrite existing post and comment files")
	f.StringSlice("encrypt-comment-keys", nil, "comment fields to encrypt (_id, _parent, message, name, email, date)")
	f.String("public-key", "", "public key file used to encrypt comment fields")
	f.Bool("local-date", false, "render dates in the local time zone instead of UTC")
	f.String("date-format", "", "strftime pattern for frontmatter and comment dates")
	f.Bool("include-time", false, "render ISO date-times instead of dates")
	f.StringSlice("filter-categories", nil, "category slugs left out of frontmatter (default uncategorized)")
	f.Duration("markdown-write-delay", 0, "delay between consecutive post and comment writes (default 25ms)")
	f.Duration("image-request-delay", 0, "delay between consecutive image requests (default 500ms)")
	f.Int("concurrency", 0, "maximum in-flight items per batch (0 means no limit)")
	f.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	f.String("user-agent", "", "User-Agent sent with image requests")
	f.Bool("strict-captions", true, "fail on figures whose alt text and caption differ")
	f.Bool("verify-images", false, "reject downloads that are not images")
	f.String("manifest", "", "run manifest database (default "+manifest.DefaultPath+")")

	for name, key := range convertFlags {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		viper.Set("input", args[0])
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep := report.New(os.Stdout)

	posts, err := readPosts(cfg, rep)
	if err != nil {
		return err
	}

	planner, err := paths.New(cfg.PathConfig())
	if err != nil {
		return err
	}

	var enc seal.Encrypter
	if len(cfg.CommentKeysToEncrypt) > 0 {
		if enc, err = seal.Load(cfg.PublicKey); err != nil {
			return err
		}
	}

	store, err := manifest.Open(cfg.Manifest)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.BeginRun(ctx, cfg.Input)
	if err != nil {
		return err
	}

	w := writer.New(cfg.WriteConfig(), planner, enc, rep)
	w.Record = func(ctx context.Context, batch string, res acquire.BatchResult) error {
		return store.RecordBatch(ctx, runID, batch, res)
	}
	res := w.Write(ctx, posts)

	if err := store.FinishRun(context.Background(), runID); err != nil {
		rep.Warnf("%v", err)
	}
	if res.HasFailures() {
		return fmt.Errorf("%d item(s) failed; run `wxr2md status` for details", res.Failed())
	}
	fmt.Println("\nAll done!")
	return nil
}

func readPosts(cfg types.Config, rep *report.Reporter) ([]*types.Post, error) {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	rep.Infof("Parsing %s...", cfg.Input)
	doc, err := wxr.Decode(f)
	if err != nil {
		return nil, err
	}
	return extract.Extract(doc, cfg.ExtractConfig(), rep)
}
