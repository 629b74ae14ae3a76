// Package sanitize provides display-safety cleaning for user-generated text.
//
// Comment text arrives from the provider as plain text but may still carry
// HTML fragments, script payloads, null bytes, and absurd lengths. The
// functions here make it safe to store and render; they are deliberately
// separate from the classification-time normalization, which has its own
// rules.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

// MaxCommentLength caps stored comment text. The provider itself limits
// comments to roughly double this.
const MaxCommentLength = 5000

var (
	tagRegex          = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)
	scriptRegex       = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRegex        = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	eventHandlerRegex = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// Comment sanitizes one comment's text for storage and display.
// Returns the empty string for input that is empty after cleaning.
func Comment(text string) string {
	return clean(text, MaxCommentLength)
}

// Field sanitizes a short user-visible field such as an author name.
func Field(text string, maxLength int) string {
	return clean(text, maxLength)
}

func clean(text string, maxLength int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if len(text) > maxLength {
		text = text[:maxLength]
	}

	text = strings.ReplaceAll(text, "\x00", "")

	// Script and style bodies go first so their content is dropped, not just
	// their tags.
	text = scriptRegex.ReplaceAllString(text, "")
	text = styleRegex.ReplaceAllString(text, "")
	text = tagRegex.ReplaceAllString(text, "")
	text = eventHandlerRegex.ReplaceAllString(text, "")

	text = html.UnescapeString(text)
	text = html.EscapeString(text)

	return strings.Join(strings.Fields(text), " ")
}
