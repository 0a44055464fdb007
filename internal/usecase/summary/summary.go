// Package summary derives the compact, human-readable context object
// (time window, rating bounds, filter text, titles) from a canonical
// payload. Everything here is pure string shaping; the builders
// construct the full Context in one pass so it stays read-only after.
package summary

import (
	"fmt"
	"strings"

	"github.com/cinequery/cinequery/internal/domain"
)

// DefaultMaxFiltersLength bounds the filters_text line.
const DefaultMaxFiltersLength = 140

// Build summarizes a canonical payload into a Context. filters_text
// is truncated with a trailing ellipsis when it exceeds
// maxFiltersLength (the default applies for non-positive values).
func Build(payload domain.CanonicalPayload, maxFiltersLength int) domain.Context {
	if maxFiltersLength <= 0 {
		maxFiltersLength = DefaultMaxFiltersLength
	}

	timeWindow := timeWindow(payload.Slots)
	ratingBounds := ratingBounds(payload.Slots)

	titles := make([]string, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.Title != "" {
			titles = append(titles, r.Title)
		}
	}

	return domain.Context{
		ResultCount:  len(payload.Results),
		SeedTitle:    strSlot(payload.Slots, domain.SlotTitle),
		FiltersText:  filtersText(payload.Intent, payload.Slots, timeWindow, ratingBounds, maxFiltersLength),
		TimeWindow:   timeWindow,
		RatingBounds: ratingBounds,
		Titles:       titles,
	}
}

// strSlot reads a slot as a trimmed string; empty becomes nil.
func strSlot(slots domain.Slots, key string) *string {
	v, ok := slots[key]
	if !ok || v == nil {
		return nil
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return nil
	}
	return &s
}

func intSlot(slots domain.Slots, key string) *int {
	switch v := slots[key].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	default:
		return nil
	}
}

func floatSlot(slots domain.Slots, key string) *float64 {
	switch v := slots[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

// timeWindow phrases the year constraints: "between A and B",
// "since A", "until B", or "in Y".
func timeWindow(slots domain.Slots) *string {
	year := intSlot(slots, domain.SlotYear)
	start := intSlot(slots, domain.SlotStartYear)
	end := intSlot(slots, domain.SlotEndYear)

	switch {
	case start != nil && end != nil:
		return strPtr(fmt.Sprintf("between %d and %d", *start, *end))
	case start != nil:
		return strPtr(fmt.Sprintf("since %d", *start))
	case end != nil:
		return strPtr(fmt.Sprintf("until %d", *end))
	case year != nil:
		return strPtr(fmt.Sprintf("in %d", *year))
	default:
		return nil
	}
}

// ratingBounds phrases the rating constraints with one decimal:
// "= R", "between MIN and MAX", "≥ MIN", or "≤ MAX".
func ratingBounds(slots domain.Slots) *string {
	minR := floatSlot(slots, domain.SlotMinRating)
	maxR := floatSlot(slots, domain.SlotMaxRating)
	exact := floatSlot(slots, domain.SlotRating)

	switch {
	case exact != nil:
		return strPtr(fmt.Sprintf("= %.1f", *exact))
	case minR != nil && maxR != nil:
		return strPtr(fmt.Sprintf("between %.1f and %.1f", *minR, *maxR))
	case minR != nil:
		return strPtr(fmt.Sprintf("≥ %.1f", *minR))
	case maxR != nil:
		return strPtr(fmt.Sprintf("≤ %.1f", *maxR))
	default:
		return nil
	}
}

// intentPhrases is the fixed lookup for the leading filters_text hint.
var intentPhrases = map[domain.Intent]string{
	domain.IntentRecommendByFilter: "recommendations by filters",
	domain.IntentTopN:              "top titles",
	domain.IntentSimilarMovies:     "similar titles",
	domain.IntentGetDetails:        "title details",
}

// slotGenres reads the genres slot in any of its accepted shapes.
func slotGenres(slots domain.Slots) []string {
	raw, ok := slots[domain.SlotGenres]
	if !ok {
		raw = slots["genre"]
	}
	switch g := raw.(type) {
	case string:
		parts := strings.Split(strings.ReplaceAll(g, "|", ","), ",")
		var out []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		var out []string
		for _, p := range g {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range g {
			if p := strings.TrimSpace(fmt.Sprintf("%v", item)); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// filtersText joins the intent phrase, genres, time window, rating
// bounds, and seed title with "; ", then truncates to maxLength with
// a trailing ellipsis. Empty joins yield nil.
func filtersText(intent domain.Intent, slots domain.Slots, timeWindow, ratingBounds *string, maxLength int) *string {
	var parts []string

	if phrase, ok := intentPhrases[intent]; ok {
		parts = append(parts, phrase)
	}
	if genres := slotGenres(slots); len(genres) > 0 {
		parts = append(parts, "genres="+strings.Join(genres, ", "))
	}
	if timeWindow != nil {
		parts = append(parts, *timeWindow)
	}
	if ratingBounds != nil {
		parts = append(parts, *ratingBounds)
	}
	if seed := strSlot(slots, domain.SlotTitle); seed != nil {
		parts = append(parts, fmt.Sprintf("title=%q", *seed))
	}

	text := strings.Join(parts, "; ")
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > maxLength {
		text = strings.TrimRight(string(runes[:maxLength-1]), " \t") + "…"
	}
	return &text
}

func strPtr(s string) *string { return &s }
