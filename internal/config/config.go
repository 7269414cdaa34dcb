// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the wxr2md configuration from viper.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/wxr2md/internal/manifest"
	"github.com/pdiddy/wxr2md/internal/paths"
	"github.com/pdiddy/wxr2md/pkg/types"
)

// ErrInvalid is returned for a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// DefaultUserAgent is sent with image requests unless configured.
const DefaultUserAgent = "wxr2md/0.1"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "export.xml")
	v.SetDefault("output", "output")
	v.SetDefault("outputComments", "comments")
	v.SetDefault("postFolders", true)
	v.SetDefault("saveAttachedImages", true)
	v.SetDefault("saveScrapedImages", true)
	v.SetDefault("filterCategories", []string{"uncategorized"})
	v.SetDefault("strictCaptions", true)
	v.SetDefault("markdownWriteDelay", 25*time.Millisecond)
	v.SetDefault("imageRequestDelay", 500*time.Millisecond)
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("userAgent", DefaultUserAgent)
	v.SetDefault("manifest", manifest.DefaultPath)
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings that depend on each
// other.
func Validate(cfg types.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, describe(e))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if len(cfg.CommentKeysToEncrypt) > 0 && cfg.PublicKey == "" {
		return fmt.Errorf("%w: publicKey is required when commentKeysToEncrypt is set", ErrInvalid)
	}
	if _, err := paths.New(cfg.PathConfig()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of %s", e.Field(), e.Value(), e.Param())
	case "numeric":
		return fmt.Sprintf("%s: %q is not a post id", e.Field(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	}
	return fmt.Sprintf("%s failed %s", e.Field(), e.Tag())
}
