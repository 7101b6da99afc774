// Package sanitize strips markup from user supplied text before storage.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML and trims surrounding whitespace.
func Text(s string) string {
	cleaned := strict.Sanitize(s)
	// bluemonday escapes entities; stored text is plain, not HTML.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
