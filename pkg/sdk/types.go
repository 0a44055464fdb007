package sdk

// ParsedQuery mirrors the parser output of POST /v1/query/parse.
type ParsedQuery struct {
	Intent        string   `json:"intent"`
	RawText       string   `json:"raw_text"`
	Title         string   `json:"title,omitempty"`
	Genres        []string `json:"genres"`
	Year          *int     `json:"year,omitempty"`
	YearFrom      *int     `json:"year_from,omitempty"`
	YearTo        *int     `json:"year_to,omitempty"`
	MinRating     *float64 `json:"min_rating,omitempty"`
	RatingCompare string   `json:"rating_compare,omitempty"`
	TopN          int      `json:"top_n"`
	Sort          string   `json:"sort,omitempty"`
}

// Movie is one canonical result row.
type Movie struct {
	MovieID    string   `json:"movieId"`
	Title      string   `json:"title"`
	Year       *int     `json:"year"`
	AvgRating  *float64 `json:"avg_rating"`
	NumRatings *int     `json:"num_ratings"`
	Genres     []string `json:"genres"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// SampleInfo records how an overflowing result set was reduced.
type SampleInfo struct {
	Total  int    `json:"total"`
	Used   int    `json:"used"`
	Method string `json:"method"`
}

// Context is the derived summary returned with each answer.
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

// LLMInfo identifies what produced the final answer text.
type LLMInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Timing reports pipeline stage durations in milliseconds.
type Timing struct {
	Preproc int64 `json:"preproc"`
	Total   int64 `json:"total"`
}

// AnswerResult is the full pipeline output of the answer endpoints.
type AnswerResult struct {
	Intent        string         `json:"intent"`
	Slots         map[string]any `json:"slots"`
	Results       []Movie        `json:"results"`
	Context       Context        `json:"context"`
	Answer        string         `json:"answer"`
	PromptPreview string         `json:"prompt_preview"`
	LLM           LLMInfo        `json:"llm"`
	TimingMS      Timing         `json:"timing_ms"`
	AnswerID      string         `json:"answer_id"`
}

// RatingMode is the most common rating score in the catalog.
type RatingMode struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// TopMovie is the most rated movie in the catalog.
type TopMovie struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

// Stats reports catalog counts from GET /v1/stats.
type Stats struct {
	Movies           int         `json:"movies"`
	Genres           int         `json:"genres"`
	Ratings          int         `json:"ratings"`
	Users            int         `json:"users"`
	MostCommonRating *RatingMode `json:"most_common_rating,omitempty"`
	MostRatedMovie   *TopMovie   `json:"most_rated_movie,omitempty"`
}

// Health reports component status from GET /healthz.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Version reports build metadata from GET /version.
type Version struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}
