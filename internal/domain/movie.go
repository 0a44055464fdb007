package domain

// RawRow is one untrusted row from the external row source. Keys are
// loosely typed and may vary (movieId vs movie_id, rating vs
// avg_rating); values may be strings, numbers, or missing entirely.
type RawRow = map[string]any

// CanonicalRow is a movie record normalized to the fixed schema.
// Genres is never nil after canonicalization; Similarity is present
// only for similarity searches.
type CanonicalRow struct {
	MovieID    string   `json:"movieId"`
	Title      string   `json:"title"`
	Year       *int     `json:"year"`
	AvgRating  *float64 `json:"avg_rating"`
	NumRatings *int     `json:"num_ratings"`
	Genres     []string `json:"genres"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// ExecutorPayload is the row-source collaborator's output contract:
// an intent tag, the slots it ran with, and the raw rows it produced.
// Nothing in it is trusted; the canonicalizer coerces it defensively.
type ExecutorPayload struct {
	Intent  string   `json:"intent"`
	Slots   Slots    `json:"slots"`
	Results []RawRow `json:"results"`
}

// CanonicalPayload is the validated, normalized, deduplicated, sorted
// and capped form of an executor payload. It is immutable after the
// edge-case engine's single mutation pass.
type CanonicalPayload struct {
	Intent  Intent         `json:"intent"`
	Slots   Slots          `json:"slots"`
	Results []CanonicalRow `json:"results"`
}
