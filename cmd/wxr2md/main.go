// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wxr2md CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wxr2md/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the wxr2md CLI.
var rootCmd = &cobra.Command{
	Use:   "wxr2md",
	Short: "Convert a WordPress export into Markdown files",
	Long: `wxr2md converts a WordPress WXR export into Markdown posts with
frontmatter, one YAML file per approved comment, and the images the posts
reference.

Settings come from flags, WXR2MD_* environment variables, and a config file
(./wxr2md.yaml or ~/.config/wxr2md/config.yaml).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wxr2md.yaml or ~/.config/wxr2md/config.yaml)")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wxr2md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wxr2md"))
		}
	}

	viper.SetEnvPrefix("WXR2MD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
