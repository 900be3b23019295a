// Package slug turns free text into URL- and path-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonWord = regexp.MustCompile(`[^\w-]+`)
	dashes  = regexp.MustCompile(`-+`)
)

// Make lower-cases s, replaces runs of characters outside [A-Za-z0-9_-]
// with a dash, collapses repeated dashes and trims them from both ends.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
