package scraper

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText lowercases and NFKC-folds a snippet so keyword matching
// survives the mixed-width text the Korean boards render.
func NormalizeText(str string) string {
	t := transform.Chain(norm.NFKC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// CleanWhitespace collapses runs of whitespace to single spaces and
// trims the result.
func CleanWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}
