// Package edgecase detects degraded-data conditions in a canonical
// result set (no results, overflow, sparse quality, thin metadata,
// tie-prone ordering, missing similarity seed) and applies the
// corrective display policies: genre round-robin diversification,
// quality-floor reordering, capping, and relaxation suggestions.
package edgecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// DefaultMinCountThreshold is the ratings-count floor below which a
// row counts as low-evidence.
const DefaultMinCountThreshold = 50

const maxSuggestions = 3

// Engine applies edge-case policies.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an edge-case policy engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Flags reports the degraded conditions detected in a payload.
// Detection is a single non-mutating pass.
type Flags struct {
	NoResults     bool
	Overflow      bool
	SparseQuality bool
	SeedMissing   bool
	ThinMetadata  bool
	TiesPossible  bool
}

// notes returns the triggered flag names in detection order.
func (f Flags) notes() []string {
	var out []string
	if f.NoResults {
		out = append(out, "no_results")
	}
	if f.Overflow {
		out = append(out, "overflow")
	}
	if f.SparseQuality {
		out = append(out, "quality_floor_advised")
	}
	if f.SeedMissing {
		out = append(out, "seed_missing")
	}
	if f.ThinMetadata {
		out = append(out, "thin_metadata")
	}
	if f.TiesPossible {
		out = append(out, "ties_possible")
	}
	return out
}

// Detect inspects the payload and reports edge-case flags.
func Detect(payload domain.CanonicalPayload, maxResults, minCountThreshold int) Flags {
	results := payload.Results
	n := len(results)

	lowQuality := 0
	thinMeta := 0
	seenPairs := map[[2]string]bool{}
	ties := false
	for _, r := range results {
		if r.AvgRating == nil || (r.NumRatings != nil && *r.NumRatings < minCountThreshold) {
			lowQuality++
		}
		if r.Year == nil || len(r.Genres) == 0 {
			thinMeta++
		}
		pair := [2]string{"nil", "nil"}
		if r.AvgRating != nil {
			pair[0] = fmt.Sprintf("%g", *r.AvgRating)
		}
		if r.NumRatings != nil {
			pair[1] = fmt.Sprintf("%d", *r.NumRatings)
		}
		if seenPairs[pair] {
			ties = true
		}
		seenPairs[pair] = true
	}

	half := n / 2
	if half < 1 {
		half = 1
	}

	return Flags{
		NoResults:     n == 0,
		Overflow:      n > maxResults,
		SparseQuality: n > 0 && lowQuality >= half,
		SeedMissing:   payload.Intent == domain.IntentSimilarMovies && missingSeed(payload.Slots),
		ThinMetadata:  n > 0 && thinMeta >= half,
		TiesPossible:  ties,
	}
}

func missingSeed(slots domain.Slots) bool {
	v, ok := slots[domain.SlotTitle]
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && s == ""
}

// Apply runs the correction policy in fixed order: overflow handling
// (diversify or cap), then quality floor on the reduced set, then
// relaxation suggestions when nothing matched. It returns an adjusted
// copy of the payload and an annotated copy of the context; the
// inputs are not mutated.
func (e *Engine) Apply(
	payload domain.CanonicalPayload, ctx domain.Context,
	maxResults, minCountThreshold int, diversify bool,
) (domain.CanonicalPayload, domain.Context) {
	flags := Detect(payload, maxResults, minCountThreshold)

	results := payload.Results
	var sampledFrom *domain.SampleInfo

	if flags.Overflow {
		total := len(results)
		if diversify {
			results = DiversifyAndCap(results, maxResults)
			sampledFrom = &domain.SampleInfo{Total: total, Used: len(results), Method: "genre_round_robin"}
		} else {
			results = results[:maxResults]
			sampledFrom = &domain.SampleInfo{Total: total, Used: len(results), Method: "cap_only"}
		}
		e.logger.Debug("overflow corrected",
			zap.Int("total", total),
			zap.Int("used", len(results)),
			zap.Bool("diversified", diversify),
		)
	}

	if flags.SparseQuality {
		preferred, fallback := qualityFloor(results, minCountThreshold)
		merged := append(preferred, fallback...)
		if len(merged) > maxResults {
			merged = merged[:maxResults]
		}
		results = merged
	}

	var suggestions []string
	if flags.NoResults {
		suggestions = RelaxationSuggestions(payload.Slots)
	}

	adjusted := payload
	adjusted.Results = results

	annotated := ctx
	annotated.EdgeNotes = flags.notes()
	if len(suggestions) > 0 {
		annotated.Suggestions = suggestions
	}
	annotated.SampledFrom = sampledFrom

	return adjusted, annotated
}

// DiversifyAndCap selects a diverse subset by primary genre: rows are
// bucketed by first genre ("Unknown" when empty) in first-seen genre
// order, then picked round-robin (index 0 of every bucket, index 1,
// and so on) until the cap or exhaustion. Any remaining capacity is
// backfilled from the original order, skipping already-picked ids.
func DiversifyAndCap(results []domain.CanonicalRow, maxResults int) []domain.CanonicalRow {
	if maxResults <= 0 {
		return nil
	}

	var genreOrder []string
	buckets := map[string][]domain.CanonicalRow{}
	for _, r := range results {
		primary := "Unknown"
		if len(r.Genres) > 0 {
			primary = r.Genres[0]
		}
		if _, seen := buckets[primary]; !seen {
			genreOrder = append(genreOrder, primary)
		}
		buckets[primary] = append(buckets[primary], r)
	}

	var picked []domain.CanonicalRow
	for index := 0; len(picked) < maxResults; index++ {
		added := false
		for _, g := range genreOrder {
			bucket := buckets[g]
			if index < len(bucket) {
				picked = append(picked, bucket[index])
				added = true
				if len(picked) >= maxResults {
					break
				}
			}
		}
		if !added {
			break
		}
	}

	if len(picked) < maxResults {
		pickedIDs := map[string]bool{}
		for _, p := range picked {
			pickedIDs[p.MovieID] = true
		}
		for _, r := range results {
			if len(picked) >= maxResults {
				break
			}
			if !pickedIDs[r.MovieID] {
				picked = append(picked, r)
				pickedIDs[r.MovieID] = true
			}
		}
	}

	return picked
}

// qualityFloor splits rows into those with enough rating evidence and
// the rest, preserving each partition's relative order.
func qualityFloor(results []domain.CanonicalRow, minCountThreshold int) (preferred, fallback []domain.CanonicalRow) {
	for _, r := range results {
		if r.NumRatings != nil && *r.NumRatings >= minCountThreshold {
			preferred = append(preferred, r)
		} else {
			fallback = append(fallback, r)
		}
	}
	return preferred, fallback
}

// RelaxationSuggestions builds at most three tips for broadening a
// search that matched nothing, in fixed priority order.
func RelaxationSuggestions(slots domain.Slots) []string {
	var tips []string

	if v, ok := slots[domain.SlotMinRating]; ok && v != nil {
		tips = append(tips, "Lower the minimum rating by 0.5")
	}
	if hasYearSlot(slots) {
		tips = append(tips, "Expand the year range by ±5 years")
	}
	if genres := slotGenres(slots); len(genres) > 1 {
		tips = append(tips, fmt.Sprintf("Try fewer genres (e.g., remove '%s')", genres[len(genres)-1]))
	}
	if v, ok := slots[domain.SlotTitle]; ok && v != nil && fmt.Sprintf("%v", v) != "" {
		tips = append(tips, "Try alternate title phrasing (e.g., 'Godfather, The')")
	}

	if len(tips) > maxSuggestions {
		tips = tips[:maxSuggestions]
	}
	return tips
}

func hasYearSlot(slots domain.Slots) bool {
	for _, key := range []string{domain.SlotYear, domain.SlotStartYear, domain.SlotEndYear} {
		if v, ok := slots[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// slotGenres reads the genres slot as string, []string, or []any.
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
