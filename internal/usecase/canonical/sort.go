package canonical

import (
	"math"
	"sort"

	"github.com/cinequery/cinequery/internal/domain"
)

// Null substitutes for the sort keys: a missing rating or similarity
// ranks below every real value, a missing count ranks just below zero,
// a missing year sorts as 0.
func ratingKey(r domain.CanonicalRow) float64 {
	if r.AvgRating == nil {
		return math.Inf(-1)
	}
	return *r.AvgRating
}

func countKey(r domain.CanonicalRow) float64 {
	if r.NumRatings == nil {
		return -1
	}
	return float64(*r.NumRatings)
}

func similarityKey(r domain.CanonicalRow) float64 {
	if r.Similarity == nil {
		return math.Inf(-1)
	}
	return *r.Similarity
}

func yearKey(r domain.CanonicalRow) int {
	if r.Year == nil {
		return 0
	}
	return *r.Year
}

// sortRows orders rows by the intent's documented rules. Ties beyond
// the listed keys keep their input order.
func sortRows(intent domain.Intent, rows []domain.CanonicalRow) {
	switch intent {
	case domain.IntentTopN, domain.IntentRecommendByFilter:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if ratingKey(a) != ratingKey(b) {
				return ratingKey(a) > ratingKey(b)
			}
			if countKey(a) != countKey(b) {
				return countKey(a) > countKey(b)
			}
			return a.Title < b.Title
		})
	case domain.IntentSimilarMovies:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if similarityKey(a) != similarityKey(b) {
				return similarityKey(a) > similarityKey(b)
			}
			if ratingKey(a) != ratingKey(b) {
				return ratingKey(a) > ratingKey(b)
			}
			return a.Title < b.Title
		})
	case domain.IntentGetDetails:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return yearKey(a) < yearKey(b)
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if ratingKey(a) != ratingKey(b) {
				return ratingKey(a) > ratingKey(b)
			}
			return a.Title < b.Title
		})
	}
}
