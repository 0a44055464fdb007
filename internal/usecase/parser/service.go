// Package parser turns free-form movie queries into a structured
// intent plus slot set. Parsing is deterministic and rule-ordered:
// every extractor runs up front on a lower-cased, whitespace-tokenized
// copy of the input, then intent dispatch picks the first matching
// rule. Ambiguous inputs (say, containing both "top" and "movies
// like") resolve by that fixed rule order, not by inferred intent.
package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// Service is the rule-based intent and slot extractor.
type Service struct {
	logger *zap.Logger
}

// New creates a parser service.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Parse extracts an intent and slots from user text. It never fails:
// unmatched extractors yield defaults or absence, and text that fits
// no rule comes back as IntentUnknown with only the raw text set.
func (s *Service) Parse(text string) domain.ParsedQuery {
	raw := text
	lowered := strings.TrimSpace(strings.ToLower(text))
	words := strings.Fields(lowered)

	topN := extractTopN(words)
	year, yearFrom, yearTo := extractYears(words)
	rating, compare := extractMinRating(words)
	genres := extractGenres(lowered)
	title := extractTitle(raw)

	q := s.dispatch(raw, lowered, words, parsedSlots{
		topN:     topN,
		year:     year,
		yearFrom: yearFrom,
		yearTo:   yearTo,
		rating:   rating,
		compare:  compare,
		genres:   genres,
		title:    title,
	})

	s.logger.Debug("parsed query",
		zap.String("intent", string(q.Intent)),
		zap.Int("top_n", q.TopN),
		zap.Strings("genres", q.Genres),
	)
	return q
}

// parsedSlots carries the extractor outputs into dispatch.
type parsedSlots struct {
	topN     int
	year     *int
	yearFrom *int
	yearTo   *int
	rating   *float64
	compare  domain.RatingCompare
	genres   []string
	title    string
}

// dispatch applies the intent rules in fixed order; the first match
// wins and decides which slots propagate.
func (s *Service) dispatch(raw, lowered string, words []string, sl parsedSlots) domain.ParsedQuery {
	if strings.Contains(lowered, "tell me about") ||
		strings.Contains(lowered, "who directed") ||
		strings.Contains(lowered, "who starred") {
		return domain.ParsedQuery{
			Intent:    domain.IntentGetDetails,
			RawText:   raw,
			Title:     sl.title,
			Genres:    []string{},
			Year:      sl.year,
			YearFrom:  sl.yearFrom,
			YearTo:    sl.yearTo,
			MinRating: sl.rating,
			TopN:      sl.topN,
		}
	}

	if strings.Contains(lowered, "movies like") {
		return domain.ParsedQuery{
			Intent:    domain.IntentSimilarMovies,
			RawText:   raw,
			Title:     sl.title,
			Genres:    []string{},
			MinRating: sl.rating,
			TopN:      sl.topN,
		}
	}

	if containsWord(words, "top") {
		return domain.ParsedQuery{
			Intent:        domain.IntentTopN,
			RawText:       raw,
			Genres:        orEmpty(sl.genres),
			Year:          sl.year,
			YearFrom:      sl.yearFrom,
			YearTo:        sl.yearTo,
			MinRating:     sl.rating,
			RatingCompare: compareIfRated(sl),
			TopN:          sl.topN,
			Sort:          "rating",
		}
	}

	if strings.Contains(lowered, "recommend") || len(sl.genres) > 0 || sl.year != nil || sl.yearFrom != nil {
		return domain.ParsedQuery{
			Intent:        domain.IntentRecommendByFilter,
			RawText:       raw,
			Genres:        orEmpty(sl.genres),
			Year:          sl.year,
			YearFrom:      sl.yearFrom,
			YearTo:        sl.yearTo,
			MinRating:     sl.rating,
			RatingCompare: compareIfRated(sl),
			TopN:          sl.topN,
			Sort:          "rating",
		}
	}

	return domain.ParsedQuery{
		Intent:  domain.IntentUnknown,
		RawText: raw,
		Genres:  []string{},
		TopN:    defaultTopN,
	}
}

func compareIfRated(sl parsedSlots) domain.RatingCompare {
	if sl.rating == nil {
		return ""
	}
	return sl.compare
}

func orEmpty(genres []string) []string {
	if genres == nil {
		return []string{}
	}
	return genres
}

func containsWord(words []string, w string) bool {
	for _, tok := range words {
		if tok == w {
			return true
		}
	}
	return false
}
