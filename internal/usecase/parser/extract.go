package parser

import (
	"strconv"
	"strings"

	"github.com/cinequery/cinequery/internal/domain"
)

const (
	defaultTopN = 10
	minTopN     = 1
	maxTopN     = 50
	minRating   = 1.0
	maxRating   = 5.0
)

// isFourDigitYear reports whether tok is a plausible release year for
// the catalog (1900–2099).
func isFourDigitYear(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	y, _ := strconv.Atoi(tok)
	return y >= 1900 && y <= 2099
}

// parseFloat parses a float, returning ok=false instead of an error.
func parseFloat(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clampTopN(n int) int {
	if n < minTopN {
		return minTopN
	}
	if n > maxTopN {
		return maxTopN
	}
	return n
}

func clampRating(r float64) float64 {
	if r < minRating {
		return minRating
	}
	if r > maxRating {
		return maxRating
	}
	return r
}

// extractTopN reads "top N" from the token stream. N may be a digit
// string or a spelled-out number up to ten; anything else falls back
// to the default of 10. The result is clamped to 1..50.
func extractTopN(words []string) int {
	pos := -1
	for i, w := range words {
		if w == "top" {
			pos = i
			break
		}
	}
	if pos < 0 || pos+1 >= len(words) {
		return defaultTopN
	}
	next := words[pos+1]
	if n, err := strconv.Atoi(next); err == nil && next != "" && !strings.ContainsAny(next, "-.") {
		return clampTopN(n)
	}
	if n, ok := wordNumbers[next]; ok {
		return clampTopN(n)
	}
	return defaultTopN
}

// extractYears detects year constraints: "since Y", a hyphenated
// "Y1-Y2" token, "Y1 to Y2", "between Y1 and Y2", and finally a lone
// four-digit year. Every scan runs unconditionally, so when several
// patterns fire the last successful one wins; ranges are reported in
// sorted order.
func extractYears(words []string) (year, yearFrom, yearTo *int) {
	for i := range words {
		if words[i] == "since" && i+1 < len(words) && isFourDigitYear(words[i+1]) {
			y, _ := strconv.Atoi(words[i+1])
			yearFrom = &y
		}
	}

	for _, w := range words {
		if !strings.Contains(w, "-") {
			continue
		}
		parts := strings.Split(w, "-")
		if len(parts) == 2 && isFourDigitYear(parts[0]) && isFourDigitYear(parts[1]) {
			y1, _ := strconv.Atoi(parts[0])
			y2, _ := strconv.Atoi(parts[1])
			lo, hi := minMax(y1, y2)
			yearFrom, yearTo = &lo, &hi
		}
	}

	for i := 0; i+2 < len(words); i++ {
		if isFourDigitYear(words[i]) && words[i+1] == "to" && isFourDigitYear(words[i+2]) {
			y1, _ := strconv.Atoi(words[i])
			y2, _ := strconv.Atoi(words[i+2])
			lo, hi := minMax(y1, y2)
			yearFrom, yearTo = &lo, &hi
		}
	}

	for i := 0; i+3 < len(words); i++ {
		if words[i] == "between" && isFourDigitYear(words[i+1]) && words[i+2] == "and" && isFourDigitYear(words[i+3]) {
			y1, _ := strconv.Atoi(words[i+1])
			y2, _ := strconv.Atoi(words[i+3])
			lo, hi := minMax(y1, y2)
			yearFrom, yearTo = &lo, &hi
		}
	}

	if yearFrom == nil && yearTo == nil {
		var found []int
		for _, w := range words {
			if isFourDigitYear(w) {
				y, _ := strconv.Atoi(w)
				found = append(found, y)
			}
		}
		if len(found) == 1 {
			year = &found[0]
		}
	}

	return year, yearFrom, yearTo
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// extractMinRating finds a rating threshold. After the token "rating"
// it accepts, in order, "at least X", "greater than X", "less than X",
// or a bare numeric token; a standalone "min X" / "minimum X" is the
// last resort. The value is clamped to 1.0..5.0.
func extractMinRating(words []string) (*float64, domain.RatingCompare) {
	for i := 0; i+1 < len(words); i++ {
		if words[i] != "rating" {
			continue
		}
		next := words[i+1]

		if next == "at" && i+3 < len(words) && words[i+2] == "least" {
			if v, ok := parseFloat(words[i+3]); ok {
				v = clampRating(v)
				return &v, domain.RatingGreaterOrEqual
			}
		}
		if next == "greater" && i+3 < len(words) && words[i+2] == "than" {
			if v, ok := parseFloat(words[i+3]); ok {
				v = clampRating(v)
				return &v, domain.RatingGreaterOrEqual
			}
		}
		if next == "less" && i+3 < len(words) && words[i+2] == "than" {
			if v, ok := parseFloat(words[i+3]); ok {
				v = clampRating(v)
				return &v, domain.RatingLessOrEqual
			}
		}
		if v, ok := parseFloat(next); ok {
			v = clampRating(v)
			return &v, domain.RatingGreaterOrEqual
		}
	}

	for i := 0; i+1 < len(words); i++ {
		if words[i] == "min" || words[i] == "minimum" {
			if v, ok := parseFloat(words[i+1]); ok {
				v = clampRating(v)
				return &v, domain.RatingGreaterOrEqual
			}
		}
	}

	return nil, ""
}

// extractGenres matches the lowered text against the genre dictionary
// by substring, returning canonical names deduplicated in first-seen
// dictionary order.
func extractGenres(lowered string) []string {
	var found []string
	seen := map[string]bool{}
	for _, g := range knownGenres {
		if !strings.Contains(lowered, g.key) {
			continue
		}
		if !seen[g.canonical] {
			seen[g.canonical] = true
			found = append(found, g.canonical)
		}
	}
	return found
}

// titleMarkers are the phrases whose trailing text is taken as a
// title, tried in order after quoted spans.
var titleMarkers = []string{
	"about ",
	"like ",
	"who directed ",
	"who starred in ",
	"who starred ",
}

// extractTitle pulls a movie title out of the raw text: quoted spans
// first (double then single quotes), then the remainder after a known
// marker phrase. Original casing of the source text is preserved.
func extractTitle(raw string) string {
	raw = strings.TrimSpace(raw)

	for _, q := range []byte{'"', '\''} {
		i := strings.IndexByte(raw, q)
		if i < 0 {
			continue
		}
		j := strings.IndexByte(raw[i+1:], q)
		if j > 0 {
			return strings.TrimSpace(raw[i+1 : i+1+j])
		}
	}

	lowered := strings.ToLower(raw)
	for _, marker := range titleMarkers {
		if pos := strings.Index(lowered, marker); pos >= 0 {
			return strings.TrimSpace(raw[pos+len(marker):])
		}
	}

	return ""
}
