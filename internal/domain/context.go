package domain

// SampleInfo records how an overflowing result set was reduced.
type SampleInfo struct {
	Total  int    `json:"total"`
	Used   int    `json:"used"`
	Method string `json:"method"`
}

// Context is the derived, read-only summary of a canonical payload,
// extended by the edge-case engine with notes, suggestions, and
// sampling info.
type Context struct {
	ResultCount  int         `json:"result_count"`
	SeedTitle    *string     `json:"seed_title"`
	FiltersText  *string     `json:"filters_text"`
	TimeWindow   *string     `json:"time_window"`
	RatingBounds *string     `json:"rating_bounds"`
	Titles       []string    `json:"titles"`
	EdgeNotes    []string    `json:"edge_notes,omitempty"`
	Suggestions  []string    `json:"suggestions,omitempty"`
	SampledFrom  *SampleInfo `json:"sampled_from,omitempty"`
}
