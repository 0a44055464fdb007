package render

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// DefaultPromptMaxItems caps the facts block of a generated prompt.
const DefaultPromptMaxItems = 10

// DefaultTone is the response style hint used when none is configured.
const DefaultTone = "concise"

// BuildPrompt assembles the grounded prompt handed to a generative
// model: a system instruction, the compact context, the result count,
// the title list, a facts block, and a task line carrying the tone.
func (s *Service) BuildPrompt(ctx domain.Context, results []domain.CanonicalRow, tone string, maxItems int) string {
	if tone == "" {
		tone = DefaultTone
	}
	if maxItems <= 0 {
		maxItems = DefaultPromptMaxItems
	}

	var sections []string

	sections = append(sections,
		"You are a helpful movie assistant. Answer using only the facts provided. Do not invent movies or data.")

	if ctx.FiltersText != nil && *ctx.FiltersText != "" {
		sections = append(sections, "Context: "+*ctx.FiltersText)
	} else {
		var hints []string
		if ctx.TimeWindow != nil {
			hints = append(hints, *ctx.TimeWindow)
		}
		if ctx.RatingBounds != nil {
			hints = append(hints, *ctx.RatingBounds)
		}
		hintText := "no explicit filters"
		if len(hints) > 0 {
			hintText = strings.Join(hints, "; ")
		}
		sections = append(sections, "Context: "+hintText)
	}

	sections = append(sections, fmt.Sprintf("Found: %d result(s).", ctx.ResultCount))

	if len(ctx.Titles) > 0 {
		sections = append(sections, "Titles: "+strings.Join(ctx.Titles, ", "))
	}

	s.logger.Debug("compiling fact lines", zap.Int("results", len(results)))
	facts := factLines(results, maxItems)
	sections = append(sections, "Facts:")
	if len(facts) > 0 {
		sections = append(sections, facts...)
	} else {
		sections = append(sections, "• No matching items.")
	}

	sections = append(sections, fmt.Sprintf(
		"Task: Write a short, %s response that summarizes these results for the user. If there are no results, say that politely and suggest broadening the filters.",
		tone))

	return strings.Join(sections, "\n")
}

// factLines renders up to maxItems rows as bullet facts. Unlike the
// conversational renderer, counts stay raw so the model sees exact
// numbers.
func factLines(results []domain.CanonicalRow, maxItems int) []string {
	var lines []string
	for _, row := range results {
		if len(lines) >= maxItems {
			break
		}

		ratingText := "rating n/a"
		if row.AvgRating != nil {
			ratingText = fmt.Sprintf("%.1f/5", *row.AvgRating)
		}

		countText := "count n/a"
		if row.NumRatings != nil {
			countText = fmt.Sprintf("%d ratings", *row.NumRatings)
		}

		yearText := ""
		if row.Year != nil {
			yearText = fmt.Sprintf(" (%d)", *row.Year)
		}

		genresBracket := ""
		if len(row.Genres) > 0 {
			genresBracket = " — [" + strings.Join(row.Genres, ", ") + "]"
		}

		lines = append(lines, fmt.Sprintf("• %s%s — %s — %s%s", row.Title, yearText, ratingText, countText, genresBracket))
	}
	return lines
}
