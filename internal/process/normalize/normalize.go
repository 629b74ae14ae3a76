// Package normalize prepares comment text for sentiment classification.
//
// Clean applies a fixed, order-sensitive pipeline: lowercase, strip URLs,
// mentions, hashtags and emoji, collapse repeated characters, replace slang
// tokens, drop everything outside lowercase letters and whitespace, and
// collapse whitespace. The result is deterministic; an input that cleans
// down to nothing returns the empty string.
package normalize

import (
	"regexp"
	"strings"
)

var (
	urlRegex     = regexp.MustCompile(`http\S+|www\S+`)
	mentionRegex = regexp.MustCompile(`@\w+`)
	hashtagRegex = regexp.MustCompile(`#\w+`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalizer cleans comment text using an immutable slang dictionary.
type Normalizer struct {
	slang map[string]string
}

// New creates a Normalizer with the embedded slang dictionary.
func New() *Normalizer {
	return &Normalizer{slang: slangDict()}
}

// NewWithSlang creates a Normalizer with a custom dictionary. The map is
// not copied; callers must not mutate it afterwards.
func NewWithSlang(dict map[string]string) *Normalizer {
	return &Normalizer{slang: dict}
}

// Clean runs the full normalization pipeline over one comment's text.
func (n *Normalizer) Clean(text string) string {
	text = strings.ToLower(text)
	text = urlRegex.ReplaceAllString(text, "")
	text = mentionRegex.ReplaceAllString(text, "")
	text = hashtagRegex.ReplaceAllString(text, "")
	text = stripEmoji(text)
	text = collapseRepeats(text)
	text = n.replaceSlang(text)
	text = dropNonLetters(text)

	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// stripEmoji removes pictographic code points.
func stripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if isEmojiRune(r) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map symbols
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r == 0xFE0F: // variation selector
		return true
	default:
		return false
	}
}

// collapseRepeats reduces letter/digit runs of three or more to exactly two
// and repeated sentence punctuation to a single occurrence. Go's regexp has
// no backreferences, so this is a manual pass.
func collapseRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var (
		prev rune
		run  int
	)

	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}

		if isAlnum(r) && run > 2 {
			continue
		}

		if isCollapsiblePunct(r) && run > 1 {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isCollapsiblePunct(r rune) bool {
	return r == '!' || r == '?' || r == '.' || r == ','
}

// replaceSlang swaps whole-space-delimited tokens found in the dictionary
// for their canonical form; everything else passes through unchanged.
func (n *Normalizer) replaceSlang(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if formal, ok := n.slang[w]; ok {
			words[i] = formal
		}
	}

	return strings.Join(words, " ")
}

// dropNonLetters replaces every character outside [a-z\s] with a space.
func dropNonLetters(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return b.String()
}
