// package normalizer canonicalizes free-text track metadata into comparison-stable forms.
//
// Two profiles exist: [Clean] is the indexing profile applied to raw catalog
// rows before they enter the reference index, and [CleanSearch] is the
// stricter profile used when building search queries at playlist-match time.
// Both are deterministic and pure.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	bracketRe    = regexp.MustCompile(`\s*[(\[].*?[)\]]\s*`)
	featRe       = regexp.MustCompile(`(?i)(feat\.|ft\.).*$`)
	punctRe      = regexp.MustCompile(`[^\w\s\-'&]`)
	punctSearch  = regexp.MustCompile(`[^\w\s\-']`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean normalizes text with the indexing profile: diacritics folded to
// ASCII, lower-cased, bracketed annotations removed, punctuation outside the
// whitelist replaced with spaces, whitespace collapsed.
//
// Bracketed substrings are kept when stripping them would leave fewer than
// two characters: titles like "(Intro)" are entirely bracketed and stripping
// would erase them.
func Clean(text string) string {
	s := strings.ToLower(unidecode.Unidecode(text))
	s = stripBrackets(s)
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CleanSearch normalizes text with the search profile used for query
// construction: brackets and trailing "feat./ft. ..." suffixes are removed
// and a stricter punctuation whitelist applies (no ampersand).
func CleanSearch(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(unidecode.Unidecode(text))
	s = stripBrackets(s)
	s = strings.TrimSpace(featRe.ReplaceAllString(s, ""))
	s = punctSearch.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// stripBrackets removes parenthesized and bracketed substrings unless the
// remainder would be shorter than two characters.
func stripBrackets(s string) string {
	stripped := strings.TrimSpace(bracketRe.ReplaceAllString(s, " "))
	if len(stripped) < 2 {
		return s
	}
	return stripped
}

// Tokens splits cleaned text into its whitespace-delimited token set.
func Tokens(s string) []string {
	return strings.Fields(s)
}
