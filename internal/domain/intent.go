package domain

import "strings"

// Intent is the caller's high-level goal as detected by the parser.
// It is immutable once parsed.
type Intent string

const (
	IntentGetDetails        Intent = "GET_DETAILS"
	IntentRecommendByFilter Intent = "RECOMMEND_BY_FILTER"
	IntentTopN              Intent = "TOP_N"
	IntentSimilarMovies     Intent = "SIMILAR_MOVIES"
	IntentUnknown           Intent = "UNKNOWN"
)

// ParseIntent maps a raw string onto a known intent, case-insensitively.
// Unrecognized values become IntentUnknown; WHO_DIRECTED and WHO_STARRED
// are legacy aliases routed into GET_DETAILS.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(s))) {
	case IntentGetDetails, "WHO_DIRECTED", "WHO_STARRED":
		return IntentGetDetails
	case IntentRecommendByFilter, "RECOMMEND":
		return IntentRecommendByFilter
	case IntentTopN:
		return IntentTopN
	case IntentSimilarMovies:
		return IntentSimilarMovies
	default:
		return IntentUnknown
	}
}

// RatingCompare is the direction of a rating threshold.
type RatingCompare string

const (
	RatingGreaterOrEqual RatingCompare = "greater_than_or_equal"
	RatingLessOrEqual    RatingCompare = "less_than_or_equal"
)
