package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// NFD decomposition followed by removal of combining marks strips accents
	// ("cotización" -> "cotizacion")
	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw user text for matching: lowercase, accents
// stripped, punctuation collapsed to spaces, whitespace collapsed, trimmed.
// The steps are order-sensitive and the result is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(text)

	if stripped, _, err := transform.String(accentStripper, text); err == nil {
		text = stripped
	}

	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Tokenize splits normalized text into terms
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
