// Package canonical validates, normalizes, deduplicates, sorts, and
// caps the heterogeneous rows a row source returns, producing the
// fixed-schema payload the rest of the pipeline runs on.
package canonical

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// DefaultMaxResults caps the canonical result list when the caller
// supplies a non-positive limit.
const DefaultMaxResults = 10

// Service canonicalizes executor payloads.
type Service struct {
	logger *zap.Logger
}

// New creates a canonicalizer service.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Canonicalize coerces an untrusted executor payload into the fixed
// schema. The only fatal case is a root value that is not a mapping
// (domain.ErrInputShape); everything inside degrades silently: wrong
// slot types coerce to nil, rows without an id or a string title are
// dropped, duplicate movieIds keep their first occurrence. Results
// are sorted by the intent's ordering rules and capped to maxResults.
func (s *Service) Canonicalize(data any, maxResults int) (domain.CanonicalPayload, error) {
	intent, slots, rows, err := split(data)
	if err != nil {
		return domain.CanonicalPayload{}, err
	}

	cleanRows := dedupeRows(rows)
	sortRows(intent, cleanRows)

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(cleanRows) > maxResults {
		cleanRows = cleanRows[:maxResults]
	}

	s.logger.Debug("canonicalized payload",
		zap.String("intent", string(intent)),
		zap.Int("rows_in", len(rows)),
		zap.Int("rows_out", len(cleanRows)),
	)

	return domain.CanonicalPayload{
		Intent:  intent,
		Slots:   normalizeSlots(slots),
		Results: cleanRows,
	}, nil
}

// split pulls intent, slots, and results out of the root value,
// accepting either an already-shaped ExecutorPayload or the decoded
// JSON mapping a transport hands over. Missing or mistyped members
// default rather than fail.
func split(data any) (domain.Intent, domain.Slots, []domain.RawRow, error) {
	switch v := data.(type) {
	case domain.ExecutorPayload:
		return domain.ParseIntent(v.Intent), orSlots(v.Slots), orRows(v.Results), nil
	case *domain.ExecutorPayload:
		if v == nil {
			return "", nil, nil, fmt.Errorf("nil payload: %w", domain.ErrInputShape)
		}
		return domain.ParseIntent(v.Intent), orSlots(v.Slots), orRows(v.Results), nil
	case map[string]any:
		intent := ""
		if s, ok := v["intent"].(string); ok {
			intent = strings.TrimSpace(s)
		}
		slots := domain.Slots{}
		if m, ok := v["slots"].(map[string]any); ok {
			slots = m
		}
		var rows []domain.RawRow
		if list, ok := v["results"].([]any); ok {
			for _, item := range list {
				if row, ok := item.(map[string]any); ok {
					rows = append(rows, row)
				}
			}
		}
		return domain.ParseIntent(intent), slots, rows, nil
	default:
		return "", nil, nil, fmt.Errorf("got %T: %w", data, domain.ErrInputShape)
	}
}

func orSlots(s domain.Slots) domain.Slots {
	if s == nil {
		return domain.Slots{}
	}
	return s
}

func orRows(r []domain.RawRow) []domain.RawRow {
	if r == nil {
		return []domain.RawRow{}
	}
	return r
}

// normalizeSlots coerces year-like slot values to int and rating-like
// values to float64. Invalid values become nil, never an error; all
// other keys pass through unchanged.
func normalizeSlots(slots domain.Slots) domain.Slots {
	clean := domain.Slots{}
	for key, value := range slots {
		switch key {
		case domain.SlotYear, domain.SlotStartYear, domain.SlotEndYear:
			if n, ok := toInt(value); ok {
				clean[key] = n
			} else {
				clean[key] = nil
			}
		case domain.SlotMinRating, domain.SlotMaxRating, domain.SlotRating:
			if f, ok := toFloat(value); ok {
				clean[key] = f
			} else {
				clean[key] = nil
			}
		default:
			clean[key] = value
		}
	}
	return clean
}

// normalizeRow coerces one raw row into the canonical schema. Rows
// missing both id keys or a string title are rejected (nil, false).
func normalizeRow(row domain.RawRow) (domain.CanonicalRow, bool) {
	id, ok := rowID(row)
	if !ok {
		return domain.CanonicalRow{}, false
	}
	title, ok := row["title"].(string)
	if !ok {
		return domain.CanonicalRow{}, false
	}

	clean := domain.CanonicalRow{
		MovieID: id,
		Title:   strings.TrimSpace(title),
		Genres:  normalizeGenres(row["genres"]),
	}
	if y, ok := toInt(row["year"]); ok {
		clean.Year = &y
	}
	if r, ok := toFloat(firstPresent(row, "avg_rating", "rating", "avgRating")); ok {
		clean.AvgRating = &r
	}
	if n, ok := toInt(firstPresent(row, "num_ratings", "ratings_count", "numRatings")); ok {
		clean.NumRatings = &n
	}
	if sim, ok := toFloat(row["similarity"]); ok {
		clean.Similarity = &sim
	}
	return clean, true
}

// rowID reads the movie id under its accepted key spellings and
// stringifies it.
func rowID(row domain.RawRow) (string, bool) {
	v := firstPresent(row, "movieId", "movie_id")
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(id) == "" {
			return "", false
		}
		return id, true
	case float64:
		// JSON numbers decode as float64; integral ids print without
		// a fraction.
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	default:
		return fmt.Sprintf("%v", id), true
	}
}

// firstPresent returns the first non-nil value among the given keys,
// the fixed priority list for duck-typed row shapes.
func firstPresent(row domain.RawRow, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// normalizeGenres accepts a "A|B" or "A, B" string, a list of values,
// or nothing, and always yields a non-nil list of trimmed names.
func normalizeGenres(v any) []string {
	switch g := v.(type) {
	case string:
		parts := strings.Split(strings.ReplaceAll(g, "|", ","), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(g))
		for _, p := range g {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(g))
		for _, item := range g {
			p := strings.TrimSpace(fmt.Sprintf("%v", item))
			if p != "" && p != "<nil>" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []string{}
	}
}

// dedupeRows normalizes all rows and drops later duplicates of the
// same movieId, preserving first-seen order.
func dedupeRows(rows []domain.RawRow) []domain.CanonicalRow {
	seen := map[string]bool{}
	clean := make([]domain.CanonicalRow, 0, len(rows))
	for _, row := range rows {
		cr, ok := normalizeRow(row)
		if !ok || seen[cr.MovieID] {
			continue
		}
		seen[cr.MovieID] = true
		clean = append(clean, cr)
	}
	return clean
}

// toInt best-effort coerces numbers and numeric strings to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toFloat best-effort coerces numbers and numeric strings to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}
