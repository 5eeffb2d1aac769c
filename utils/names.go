package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName trims and collapses inner whitespace in a player name. A name
// typed entirely in lower or upper case is also title-cased. Mixed-case input
// like "McDonald" is kept as entered.
func NormalizeName(name string) string {
	joined := strings.Join(strings.Fields(name), " ")
	if joined == "" {
		return ""
	}
	if joined != strings.ToLower(joined) && joined != strings.ToUpper(joined) {
		return joined
	}
	// A Caser carries state, so each call gets its own.
	return cases.Title(language.English).String(strings.ToLower(joined))
}

// FoldName strips accents and case so "José" matches a search for "jose".
func FoldName(name string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(name)))
}

// MatchesQuery reports whether name contains query after folding both.
func MatchesQuery(name, query string) bool {
	q := FoldName(query)
	if q == "" {
		return true
	}
	return strings.Contains(FoldName(name), q)
}
