// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds settings for network image acquisition.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with image requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DateConfig selects how export dates are rendered. The same policy applies
// to post and comment dates.
type DateConfig struct {
	// Local renders dates in the local time zone instead of UTC.
	Local bool `json:"local" yaml:"local"`

	// Format is an optional strftime pattern (e.g. "%Y/%m/%d"). It takes
	// precedence over IncludeTime.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// IncludeTime renders ISO-8601 date-times instead of plain dates.
	IncludeTime bool `json:"include_time" yaml:"include_time"`
}

// Location returns the time zone selected by the policy.
func (d DateConfig) Location() *time.Location {
	if d.Local {
		return time.Local
	}
	return time.UTC
}

// ExtractConfig holds settings for record extraction and content translation.
type ExtractConfig struct {
	// IncludeOtherTypes processes every non-system post type instead of
	// only "post".
	IncludeOtherTypes bool `json:"include_other_types" yaml:"include_other_types"`

	// OnlyPosts restricts extraction to these post ids when non-empty.
	OnlyPosts []string `json:"only_posts" yaml:"only_posts"`

	// FilterCategories lists category slugs dropped from frontmatter.
	FilterCategories []string `json:"filter_categories" yaml:"filter_categories"`

	SaveAttachedImages bool `json:"save_attached_images" yaml:"save_attached_images"`
	SaveScrapedImages  bool `json:"save_scraped_images" yaml:"save_scraped_images"`

	// ImagesFromFolder is the local uploads folder. Image filename cleaning
	// only runs when it is set.
	ImagesFromFolder string `json:"images_from_folder" yaml:"images_from_folder"`

	// StrictCaptions rejects figures whose alt text and caption differ.
	StrictCaptions bool `json:"strict_captions" yaml:"strict_captions"`

	Dates DateConfig `json:"dates" yaml:"dates"`
}

// PathConfig holds the naming settings for output files.
type PathConfig struct {
	Output         string `json:"output" yaml:"output"`
	OutputComments string `json:"output_comments" yaml:"output_comments"`

	// PostFolders writes <slug>/index.md instead of <slug>.md.
	PostFolders bool `json:"post_folders" yaml:"post_folders"`

	PrefixDate   bool `json:"prefix_date" yaml:"prefix_date"`
	YearFolders  bool `json:"year_folders" yaml:"year_folders"`
	MonthFolders bool `json:"month_folders" yaml:"month_folders"`

	// TypeFolders adds a post-type segment; set when several types are processed.
	TypeFolders bool `json:"type_folders" yaml:"type_folders"`

	// FrontmatterFolder names the frontmatter field used as an extra segment.
	FrontmatterFolder string `json:"frontmatter_folder,omitempty" yaml:"frontmatter_folder,omitempty"`
}

// WriteConfig holds settings for the three output batches.
type WriteConfig struct {
	HTTPConfig `yaml:",inline"`

	FrontmatterExclude []string `json:"frontmatter_exclude" yaml:"frontmatter_exclude"`

	// RegenerateMarkdown rewrites existing post and comment files.
	RegenerateMarkdown bool `json:"regenerate_markdown" yaml:"regenerate_markdown"`

	// ImagesFromFolder copies images from this folder instead of fetching them.
	ImagesFromFolder string `json:"images_from_folder" yaml:"images_from_folder"`

	// MarkdownWriteDelay staggers consecutive post and comment writes.
	MarkdownWriteDelay time.Duration `json:"markdown_write_delay" yaml:"markdown_write_delay"`

	// ImageRequestDelay staggers consecutive image requests.
	ImageRequestDelay time.Duration `json:"image_request_delay" yaml:"image_request_delay"`

	// Concurrency caps in-flight items per batch; 0 means unbounded.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// VerifyImages rejects fetched payloads that do not decode as images.
	VerifyImages bool `json:"verify_images" yaml:"verify_images"`

	// CommentKeysToEncrypt lists comment fields encrypted before writing.
	CommentKeysToEncrypt []string `json:"comment_keys_to_encrypt" yaml:"comment_keys_to_encrypt"`

	// TypeLabels prefixes post progress labels with the post type.
	TypeLabels bool `json:"type_labels" yaml:"type_labels"`
}

// Config is the user-facing configuration. Keys match the configuration
// file, flags, and WXR2MD_* environment variables.
type Config struct {
	Input          string `mapstructure:"input" validate:"required"`
	Output         string `mapstructure:"output" validate:"required"`
	OutputComments string `mapstructure:"outputComments" validate:"required"`

	PostFolders        bool     `mapstructure:"postFolders"`
	PrefixDate         bool     `mapstructure:"prefixDate"`
	YearFolders        bool     `mapstructure:"yearFolders"`
	MonthFolders       bool     `mapstructure:"monthFolders"`
	FrontmatterFolders string   `mapstructure:"frontmatterFolders" validate:"omitempty,oneof=title date old_url categories tags featured_image"`
	FrontmatterExclude []string `mapstructure:"frontmatterExclude" validate:"dive,oneof=title date old_url categories tags featured_image"`
	IncludeOtherTypes  bool     `mapstructure:"includeOtherTypes"`
	OnlyPosts          []string `mapstructure:"onlyPosts" validate:"dive,numeric"`
	SaveAttachedImages bool     `mapstructure:"saveAttachedImages"`
	SaveScrapedImages  bool     `mapstructure:"saveScrapedImages"`
	ImagesFromFolder   string   `mapstructure:"imagesFromFolder"`
	RegenerateMarkdown bool     `mapstructure:"regenerateMarkdown"`

	CommentKeysToEncrypt []string `mapstructure:"commentKeysToEncrypt" validate:"dive,oneof=_id _parent message name email date"`
	PublicKey            string   `mapstructure:"publicKey"`

	LocalDate           bool     `mapstructure:"localDate"`
	DateFormat          string   `mapstructure:"dateFormat"`
	IncludeTimeWithDate bool     `mapstructure:"includeTimeWithDate"`
	FilterCategories    []string `mapstructure:"filterCategories"`

	MarkdownWriteDelay time.Duration `mapstructure:"markdownWriteDelay" validate:"gte=0"`
	ImageRequestDelay  time.Duration `mapstructure:"imageRequestDelay" validate:"gte=0"`
	Concurrency        int           `mapstructure:"concurrency" validate:"gte=0"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent          string        `mapstructure:"userAgent"`

	StrictCaptions bool   `mapstructure:"strictCaptions"`
	VerifyImages   bool   `mapstructure:"verifyImages"`
	Manifest       string `mapstructure:"manifest"`
}

// ExtractConfig returns the extraction settings.
func (c Config) ExtractConfig() ExtractConfig {
	return ExtractConfig{
		IncludeOtherTypes:  c.IncludeOtherTypes,
		OnlyPosts:          c.OnlyPosts,
		FilterCategories:   c.FilterCategories,
		SaveAttachedImages: c.SaveAttachedImages,
		SaveScrapedImages:  c.SaveScrapedImages,
		ImagesFromFolder:   c.ImagesFromFolder,
		StrictCaptions:     c.StrictCaptions,
		Dates: DateConfig{
			Local:       c.LocalDate,
			Format:      c.DateFormat,
			IncludeTime: c.IncludeTimeWithDate,
		},
	}
}

// PathConfig returns the output naming settings.
func (c Config) PathConfig() PathConfig {
	return PathConfig{
		Output:            c.Output,
		OutputComments:    c.OutputComments,
		PostFolders:       c.PostFolders,
		PrefixDate:        c.PrefixDate,
		YearFolders:       c.YearFolders,
		MonthFolders:      c.MonthFolders,
		TypeFolders:       c.IncludeOtherTypes,
		FrontmatterFolder: c.FrontmatterFolders,
	}
}

// WriteConfig returns the batch settings.
func (c Config) WriteConfig() WriteConfig {
	return WriteConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   c.Timeout,
			UserAgent: c.UserAgent,
		},
		FrontmatterExclude:   c.FrontmatterExclude,
		RegenerateMarkdown:   c.RegenerateMarkdown,
		ImagesFromFolder:     c.ImagesFromFolder,
		MarkdownWriteDelay:   c.MarkdownWriteDelay,
		ImageRequestDelay:    c.ImageRequestDelay,
		Concurrency:          c.Concurrency,
		VerifyImages:         c.VerifyImages,
		CommentKeysToEncrypt: c.CommentKeysToEncrypt,
		TypeLabels:           c.IncludeOtherTypes,
	}
}
