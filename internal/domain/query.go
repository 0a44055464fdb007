package domain

// ParsedQuery is the result of rule-based parsing: an intent plus the
// slot constraints extracted from free text. Optional slots are nil
// pointers when absent.
type ParsedQuery struct {
	Intent        Intent        `json:"intent"`
	RawText       string        `json:"raw_text"`
	Title         string        `json:"title,omitempty"`
	Genres        []string      `json:"genres"`
	Year          *int          `json:"year,omitempty"`
	YearFrom      *int          `json:"year_from,omitempty"`
	YearTo        *int          `json:"year_to,omitempty"`
	MinRating     *float64      `json:"min_rating,omitempty"`
	RatingCompare RatingCompare `json:"rating_compare,omitempty"`
	TopN          int           `json:"top_n"`
	Sort          string        `json:"sort,omitempty"`
}

// Slots is the canonicalized slot mapping passed between pipeline
// stages. Year-like keys hold int, rating-like keys hold float64, the
// rest pass through as extracted; failed coercions hold nil.
type Slots map[string]any

// Well-known slot keys.
const (
	SlotTitle         = "title"
	SlotGenres        = "genres"
	SlotYear          = "year"
	SlotStartYear     = "start_year"
	SlotEndYear       = "end_year"
	SlotMinRating     = "min_rating"
	SlotMaxRating     = "max_rating"
	SlotRating        = "rating"
	SlotRatingCompare = "rating_compare"
)

// ExecutorSlots flattens a parsed query into the loosely-typed slot
// mapping the row-source collaborator and the canonicalizer exchange.
func (p ParsedQuery) ExecutorSlots() Slots {
	slots := Slots{}
	if p.Title != "" {
		slots[SlotTitle] = p.Title
	}
	if len(p.Genres) > 0 {
		slots[SlotGenres] = p.Genres
	}
	if p.Year != nil {
		slots[SlotYear] = *p.Year
	}
	if p.YearFrom != nil {
		slots[SlotStartYear] = *p.YearFrom
	}
	if p.YearTo != nil {
		slots[SlotEndYear] = *p.YearTo
	}
	if p.MinRating != nil {
		slots[SlotMinRating] = *p.MinRating
	}
	if p.RatingCompare != "" {
		slots[SlotRatingCompare] = string(p.RatingCompare)
	}
	return slots
}
