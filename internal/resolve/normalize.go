// Package resolve maps free-text location strings to canonical region ids.
package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	metroSuffixRe  = regexp.MustCompile(`(?i)\s*metro(politan)?\s*(statistical\s*)?area$`)
	cityDelimRe    = regexp.MustCompile(`[-/]`)
	uzaCityDelimRe = regexp.MustCompile(`--|/`)
	stateDelimRe   = regexp.MustCompile(`[-/]`)
)

// foldCase lower-cases s and strips combining marks ("Cañon" -> "canon").
// Whitespace is preserved so fragment patterns such as "la " keep their
// meaning.
func foldCase(s string) string {
	// transform.Chain is stateful; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// normalizeCity folds case and collapses whitespace.
func normalizeCity(s string) string {
	s = foldCase(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StripMetroSuffix removes a trailing "Metro Area" or "Metropolitan
// Statistical Area" from a Census CBSA name.
func StripMetroSuffix(name string) string {
	return strings.TrimSpace(metroSuffixRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

// NormalizeName produces the key used for whole-name matching.
func NormalizeName(name string) string {
	return normalizeCity(StripMetroSuffix(name))
}

// splitCityState splits at the first comma.
func splitCityState(s string) (city, state string) {
	city, state, _ = strings.Cut(s, ",")
	return strings.TrimSpace(city), strings.TrimSpace(state)
}

// splitTokens splits s with re, normalizes each piece and drops empties
// and duplicates while keeping order.
func splitTokens(s string, re *regexp.Regexp, normalize func(string) string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range re.Split(s, -1) {
		p = normalize(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ParseRegionName extracts city and state tokens from a canonical region
// name such as "Minneapolis-St. Paul-Bloomington, MN-WI".
func ParseRegionName(name string) (cities, states []string) {
	cityPart, statePart := splitCityState(StripMetroSuffix(name))
	return splitTokens(cityPart, cityDelimRe, normalizeCity), splitTokens(statePart, stateDelimRe, normalizeState)
}

// ParseUZAName extracts candidate city and state tokens from a transit
// urbanized-area descriptor such as "Dallas--Fort Worth--Arlington, TX".
// Tokens from "--" and "/" come first, followed by their single-hyphen
// sub-tokens.
func ParseUZAName(name string) (cities, states []string) {
	cityPart, statePart := splitCityState(StripMetroSuffix(name))
	coarse := splitTokens(cityPart, uzaCityDelimRe, normalizeCity)

	seen := make(map[string]bool, len(coarse))
	for _, c := range coarse {
		seen[c] = true
	}
	cities = append(cities, coarse...)
	for _, c := range coarse {
		if !strings.Contains(c, "-") {
			continue
		}
		for _, fine := range splitTokens(c, cityDelimRe, normalizeCity) {
			if !seen[fine] {
				seen[fine] = true
				cities = append(cities, fine)
			}
		}
	}
	return cities, splitTokens(statePart, stateDelimRe, normalizeState)
}
