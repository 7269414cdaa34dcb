//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts $WXR2MD_INPUT (default export.xml).
func Convert() error {
	mg.Deps(Build)
	input := os.Getenv("WXR2MD_INPUT")
	if input == "" {
		input = "export.xml"
	}
	return sh.RunV(filepath.Join(binDir, binName), "convert", input)
}

// Status prints the outcome of the last conversion run.
func Status() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "status")
}
