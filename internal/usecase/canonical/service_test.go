package canonical

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cinequery/cinequery/internal/domain"
)

func row(id any, title string, extra map[string]any) domain.RawRow {
	r := domain.RawRow{"movieId": id, "title": title}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func titles(rows []domain.CanonicalRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestCanonicalize_RejectsNonMapping(t *testing.T) {
	svc := New(nil)

	for _, bad := range []any{nil, "text", 42, []any{"a"}} {
		if _, err := svc.Canonicalize(bad, 10); !errors.Is(err, domain.ErrInputShape) {
			t.Errorf("Canonicalize(%v): expected ErrInputShape, got %v", bad, err)
		}
	}
}

func TestCanonicalize_SilentDefaultsForMistypedMembers(t *testing.T) {
	svc := New(nil)

	got, err := svc.Canonicalize(map[string]any{
		"intent":  123,          // not a string
		"slots":   []any{"bad"}, // not a mapping
		"results": "nope",       // not a list
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != domain.IntentUnknown {
		t.Errorf("intent = %s", got.Intent)
	}
	if len(got.Slots) != 0 || len(got.Results) != 0 {
		t.Errorf("expected empty slots/results, got %+v", got)
	}
}

func TestCanonicalize_SlotCoercion(t *testing.T) {
	svc := New(nil)

	got, err := svc.Canonicalize(domain.ExecutorPayload{
		Intent: "TOP_N",
		Slots: domain.Slots{
			"start_year": "1998",
			"end_year":   "not a year",
			"min_rating": "4.0",
			"genres":     "Drama",
		},
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Slots["start_year"] != 1998 {
		t.Errorf("start_year = %v", got.Slots["start_year"])
	}
	if got.Slots["end_year"] != nil {
		t.Errorf("bad year should coerce to nil, got %v", got.Slots["end_year"])
	}
	if got.Slots["min_rating"] != 4.0 {
		t.Errorf("min_rating = %v", got.Slots["min_rating"])
	}
	if got.Slots["genres"] != "Drama" {
		t.Errorf("unrelated slot must pass through, got %v", got.Slots["genres"])
	}
}

func TestCanonicalize_RowNormalizationAndDedup(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "TOP_N",
		Results: []domain.RawRow{
			row(1, "Heat", map[string]any{"avg_rating": "4.5", "num_ratings": "120", "genres": "Action|Crime"}),
			// Same movie under a different key spelling and types.
			{"movie_id": "1", "title": "Heat", "rating": 4.5, "numRatings": 120, "genres": []any{"Action", "Crime"}},
			// No id: dropped.
			{"title": "Orphan"},
			// No string title: dropped.
			row(2, "", nil),
			row(3, "  Ronin  ", map[string]any{"year": "1998"}),
		},
	}
	// Clear the empty-title case: title key present but wrong type.
	payload.Results[3]["title"] = 77

	got, err := svc.Canonicalize(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Results) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(got.Results), titles(got.Results))
	}

	heat := got.Results[0]
	if heat.MovieID != "1" || heat.Title != "Heat" {
		t.Errorf("row = %+v", heat)
	}
	if heat.AvgRating == nil || *heat.AvgRating != 4.5 {
		t.Errorf("avg_rating = %v", heat.AvgRating)
	}
	if heat.NumRatings == nil || *heat.NumRatings != 120 {
		t.Errorf("num_ratings = %v", heat.NumRatings)
	}
	if !reflect.DeepEqual(heat.Genres, []string{"Action", "Crime"}) {
		t.Errorf("genres = %v", heat.Genres)
	}

	ronin := got.Results[1]
	if ronin.Title != "Ronin" {
		t.Errorf("title not trimmed: %q", ronin.Title)
	}
	if ronin.Year == nil || *ronin.Year != 1998 {
		t.Errorf("year = %v", ronin.Year)
	}
	if ronin.Genres == nil || len(ronin.Genres) != 0 {
		t.Errorf("genres must be empty list, got %v", ronin.Genres)
	}
}

func TestCanonicalize_TopNSort(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "TOP_N",
		Results: []domain.RawRow{
			row("b", "B", map[string]any{"avg_rating": 4.0, "num_ratings": 100}),
			row("a", "A", map[string]any{"avg_rating": 4.5, "num_ratings": 50}),
			row("c", "C", map[string]any{"avg_rating": 3.9, "num_ratings": 500}),
		},
	}
	got, err := svc.Canonicalize(payload, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(titles(got.Results), want) {
		t.Errorf("order = %v, want %v", titles(got.Results), want)
	}
}

func TestCanonicalize_TopNSortNullsAndTies(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "TOP_N",
		Results: []domain.RawRow{
			row("1", "Zeta", map[string]any{"num_ratings": 9000}), // null rating sorts last
			row("2", "Beta", map[string]any{"avg_rating": 4.0, "num_ratings": 10}),
			row("3", "Alpha", map[string]any{"avg_rating": 4.0, "num_ratings": 10}),
			row("4", "Gamma", map[string]any{"avg_rating": 4.0}), // null count below 10
		},
	}
	got, err := svc.Canonicalize(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Alpha", "Beta", "Gamma", "Zeta"}; !reflect.DeepEqual(titles(got.Results), want) {
		t.Errorf("order = %v, want %v", titles(got.Results), want)
	}
}

func TestCanonicalize_SimilarSort(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "SIMILAR_MOVIES",
		Results: []domain.RawRow{
			row("1", "Low", map[string]any{"similarity": 0.2, "avg_rating": 5.0}),
			row("2", "High", map[string]any{"similarity": 0.9, "avg_rating": 3.0}),
			row("3", "NoSim", map[string]any{"avg_rating": 4.9}),
		},
	}
	got, err := svc.Canonicalize(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"High", "Low", "NoSim"}; !reflect.DeepEqual(titles(got.Results), want) {
		t.Errorf("order = %v, want %v", titles(got.Results), want)
	}
}

func TestCanonicalize_GetDetailsSort(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "GET_DETAILS",
		Results: []domain.RawRow{
			row("1", "King Kong", map[string]any{"year": 2005}),
			row("2", "King Kong", map[string]any{"year": 1933}),
			row("3", "Alien", nil),
		},
	}
	got, err := svc.Canonicalize(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Alien", "King Kong", "King Kong"}; !reflect.DeepEqual(titles(got.Results), want) {
		t.Fatalf("order = %v", titles(got.Results))
	}
	if *got.Results[1].Year != 1933 {
		t.Errorf("same-title rows must order by year: %v", got.Results[1].Year)
	}
}

func TestCanonicalize_CapAndDefault(t *testing.T) {
	svc := New(nil)

	var rows []domain.RawRow
	for i := 0; i < 25; i++ {
		rows = append(rows, row(i, "Movie", nil))
	}
	payload := domain.ExecutorPayload{Intent: "TOP_N", Results: rows}

	for _, tt := range []struct{ max, want int }{{3, 3}, {25, 25}, {0, 10}, {-7, 10}} {
		got, err := svc.Canonicalize(payload, tt.max)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Results) != tt.want {
			t.Errorf("max=%d: got %d rows, want %d", tt.max, len(got.Results), tt.want)
		}
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	svc := New(nil)

	payload := domain.ExecutorPayload{
		Intent: "TOP_N",
		Results: []domain.RawRow{
			row("1", "B", map[string]any{"avg_rating": 4.0, "num_ratings": 100, "genres": "Drama"}),
			row("2", "A", map[string]any{"avg_rating": 4.5, "num_ratings": 50, "genres": "Crime|Drama"}),
		},
	}
	first, err := svc.Canonicalize(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Feed the canonical output back in as raw rows.
	again := domain.ExecutorPayload{Intent: "TOP_N"}
	for _, r := range first.Results {
		raw := domain.RawRow{
			"movieId": r.MovieID, "title": r.Title, "genres": r.Genres,
		}
		if r.AvgRating != nil {
			raw["avg_rating"] = *r.AvgRating
		}
		if r.NumRatings != nil {
			raw["num_ratings"] = *r.NumRatings
		}
		again.Results = append(again.Results, raw)
	}
	second, err := svc.Canonicalize(again, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Errorf("canonicalization not idempotent:\nfirst  %+v\nsecond %+v", first.Results, second.Results)
	}
}

func TestCanonicalize_JSONShapedInput(t *testing.T) {
	svc := New(nil)

	// The shape encoding/json produces: float64 numbers, []any lists.
	data := map[string]any{
		"intent": "TOP_N",
		"slots":  map[string]any{"min_rating": "4"},
		"results": []any{
			map[string]any{"movieId": float64(7), "title": "Big", "avg_rating": float64(4.1), "genres": []any{"Comedy"}},
		},
	}
	got, err := svc.Canonicalize(data, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Results) != 1 || got.Results[0].MovieID != "7" {
		t.Fatalf("results = %+v", got.Results)
	}
	if got.Slots["min_rating"] != 4.0 {
		t.Errorf("min_rating = %v", got.Slots["min_rating"])
	}
}
