// internal/naming/naming.go
// Package naming derives the output video path from the input filename and
// the upscaler settings, and keeps prior runs from being overwritten.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputName builds the deterministic output filename:
// {input_stem}_upscaled_{algorithm}{magnification}x.{container},
// placed next to the input file.
func OutputName(inputPath, algorithm string, magnification int, container string) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return fmt.Sprintf("%s_upscaled_%s%dx.%s", stem, algorithm, magnification, container)
}

// NoOverwrite disambiguates a path against existing files by appending an
// incrementing counter in parentheses before the extension: the second run
// gets "(1)", the third "(2)", and so on.
func NoOverwrite(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	candidate := path
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s(%d)%s", stem, counter, ext)
	}
}
