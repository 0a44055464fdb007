// Package render produces the deterministic natural-language answer
// for a processed query, plus the prompt text handed to a generative
// model. Every phrasing is fixed so that identical inputs always
// yield identical output.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// DefaultMaxItems caps how many rows the answer renderer considers.
const DefaultMaxItems = 5

// Service renders answers and prompts from pipeline output.
type Service struct {
	logger *zap.Logger
}

// New creates a renderer.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Answer builds a short conversational response for the given intent
// and result rows. Missing fields degrade to fixed fallback wording
// rather than errors.
func (s *Service) Answer(intent domain.Intent, ctx domain.Context, results []domain.CanonicalRow, maxItems int) string {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	rows := results
	if len(rows) > maxItems {
		rows = rows[:maxItems]
	}

	var hint string
	if ctx.FiltersText != nil {
		hint = *ctx.FiltersText
	}

	switch intent {
	case domain.IntentGetDetails:
		if len(rows) > 0 {
			return formatMovieSentence(rows[0])
		}
		return "I could not find details for that title."

	case domain.IntentSimilarMovies:
		var titles []string
		for _, r := range rows {
			if r.Title != "" {
				titles = append(titles, r.Title)
			}
		}
		if len(titles) == 0 {
			return "I could not find similar movies to recommend."
		}
		if len(titles) > 3 {
			titles = titles[:3]
		}
		joined := naturalJoin(titles)
		if ctx.SeedTitle != nil && *ctx.SeedTitle != "" {
			return fmt.Sprintf("If you liked %s, you might also enjoy %s.", *ctx.SeedTitle, joined)
		}
		return fmt.Sprintf("You might also enjoy %s.", joined)

	case domain.IntentTopN, domain.IntentRecommendByFilter:
		if len(rows) == 0 {
			return "I could not find any matches. Try lowering the rating or widening the year range."
		}
		s.logger.Debug("rendering highlights", zap.Int("rows", len(rows)))
		var briefs []string
		for _, r := range rows {
			briefs = append(briefs, formatMovieBrief(r))
			if len(briefs) == 2 {
				break
			}
		}
		highlights := naturalJoin(briefs)
		more := len(rows) - 2
		if more < 0 {
			more = 0
		}
		switch {
		case hint != "" && more > 0:
			return fmt.Sprintf("I found %d title(s) matching your filters (%s): %s, and %d more.", len(rows), hint, highlights, more)
		case hint != "":
			return fmt.Sprintf("I found %d title(s) matching your filters (%s): %s.", len(rows), hint, highlights)
		case more > 0:
			return fmt.Sprintf("I found %d title(s): %s, and %d more.", len(rows), highlights, more)
		default:
			return fmt.Sprintf("I found %d title(s): %s.", len(rows), highlights)
		}
	}

	if len(rows) > 0 {
		var titles []string
		for _, r := range rows {
			if r.Title != "" {
				titles = append(titles, r.Title)
			}
			if len(titles) == 2 {
				break
			}
		}
		firstTwo := naturalJoin(titles)
		if hint != "" {
			return fmt.Sprintf("Here are the matches for your filters (%s): %s.", hint, firstTwo)
		}
		return fmt.Sprintf("Here are the matches: %s.", firstTwo)
	}
	return "No matching movies found."
}

// FormatCount shortens a ratings count for display: 999 stays "999",
// 1200 becomes "1k", 1500000 becomes "1.5M". A nil count renders as
// "unknown".
func FormatCount(count *int) string {
	if count == nil {
		return "unknown"
	}
	n := *count
	if n >= 1_000_000 {
		text := strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64)
		text = strings.TrimSuffix(text, ".0")
		return text + "M"
	}
	if n >= 1000 {
		return fmt.Sprintf("%dk", n/1000)
	}
	return strconv.Itoa(n)
}

// formatMovieBrief compacts a row into a parenthesized phrase like
// "Heat (1995, Action/Crime, 4.6★, 2k ratings)".
func formatMovieBrief(row domain.CanonicalRow) string {
	title := row.Title
	if title == "" {
		title = "Unknown Title"
	}

	genresText := "Genre N/A"
	if len(row.Genres) > 0 {
		g := row.Genres
		if len(g) > 3 {
			g = g[:3]
		}
		genresText = strings.Join(g, "/")
	}

	ratingPart := "rating N/A"
	if row.AvgRating != nil {
		ratingPart = fmt.Sprintf("%.1f★", *row.AvgRating)
	}

	countPart := "unknown rating count"
	if row.NumRatings != nil {
		countPart = FormatCount(row.NumRatings) + " ratings"
	}

	if row.Year != nil {
		return fmt.Sprintf("%s (%d, %s, %s, %s)", title, *row.Year, genresText, ratingPart, countPart)
	}
	return fmt.Sprintf("%s — %s, %s, %s", title, genresText, ratingPart, countPart)
}

// formatMovieSentence expands a row into one standalone sentence.
func formatMovieSentence(row domain.CanonicalRow) string {
	title := row.Title
	if title == "" {
		title = "This title"
	}

	genresText := "Unknown genre"
	if len(row.Genres) > 0 {
		g := row.Genres
		if len(g) > 3 {
			g = g[:3]
		}
		genresText = strings.Join(g, "/")
	}

	ratingText := "an unrated"
	if row.AvgRating != nil {
		ratingText = fmt.Sprintf("%.1f★", *row.AvgRating)
	}

	countText := "unknown rating count"
	if row.NumRatings != nil {
		countText = FormatCount(row.NumRatings) + " ratings"
	}

	switch {
	case row.Year != nil && row.AvgRating != nil:
		return fmt.Sprintf("%s is an %s movie from %d with a %s rating and %s.", title, genresText, *row.Year, ratingText, countText)
	case row.Year != nil:
		return fmt.Sprintf("%s is an %s movie from %d with %s.", title, genresText, *row.Year, countText)
	default:
		return fmt.Sprintf("%s is an %s movie with a %s rating and %s.", title, genresText, ratingText, countText)
	}
}

// naturalJoin joins items conversationally: "A", "A and B",
// "A, B, and C".
func naturalJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
