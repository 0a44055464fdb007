package movie

import (
	"context"
	"strings"
	"testing"

	"github.com/cinequery/cinequery/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	seedCatalog(t, store)
	return store
}

func seedCatalog(t *testing.T, store *Store) {
	t.Helper()

	movies := []struct {
		id     int
		title  string
		year   int
		rating float64
		count  int
		genres []string
	}{
		{1, "The Dark Knight", 2008, 4.7, 5000, []string{"Action", "Crime", "Drama"}},
		{2, "Inception", 2010, 4.6, 4500, []string{"Action", "Sci-Fi", "Thriller"}},
		{3, "Toy Story", 1995, 4.2, 3000, []string{"Animation", "Comedy"}},
		{4, "Finding Nemo", 2003, 4.1, 2500, []string{"Animation", "Comedy"}},
		{5, "The Room", 2003, 2.0, 800, []string{"Drama"}},
		{6, "Heat", 1995, 4.5, 2000, []string{"Action", "Crime"}},
	}

	for _, m := range movies {
		_, err := store.DB().Exec(
			"INSERT INTO movies (movie_id, title, year, avg_rating, num_ratings) VALUES (?, ?, ?, ?, ?)",
			m.id, m.title, m.year, m.rating, m.count,
		)
		if err != nil {
			t.Fatalf("insert movie: %v", err)
		}
		for _, g := range m.genres {
			_, err = store.DB().Exec("INSERT OR IGNORE INTO genres (genre_name) VALUES (?)", g)
			if err != nil {
				t.Fatalf("insert genre: %v", err)
			}
			_, err = store.DB().Exec(
				"INSERT INTO movie_genres (movie_id, genre_id) SELECT ?, genre_id FROM genres WHERE genre_name = ?",
				m.id, g,
			)
			if err != nil {
				t.Fatalf("link genre: %v", err)
			}
		}
	}

	_, err := store.DB().Exec(
		"INSERT INTO ratings (user_id, movie_id, rating, unix_time) VALUES (1, 1, 5.0, 0), (1, 2, 4.5, 0), (2, 1, 4.5, 0)",
	)
	if err != nil {
		t.Fatalf("insert ratings: %v", err)
	}
}

func titles(rows []domain.RawRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["title"].(string))
	}
	return out
}

func TestRows_GetDetails(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent: domain.IntentGetDetails,
		Title:  "dark knight",
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", titles(rows))
	}

	row := rows[0]
	if row["title"] != "The Dark Knight" {
		t.Errorf("title = %v", row["title"])
	}
	if row["year"] != 2008 {
		t.Errorf("year = %v", row["year"])
	}
	if row["avg_rating"] != 4.7 {
		t.Errorf("avg_rating = %v", row["avg_rating"])
	}
	genres, _ := row["genres"].(string)
	for _, g := range []string{"Action", "Crime", "Drama"} {
		if !strings.Contains(genres, g) {
			t.Errorf("genres %q missing %s", genres, g)
		}
	}
}

func TestRows_RecommendByFilter(t *testing.T) {
	store := newTestStore(t)
	minRating := 4.0
	yearFrom := 2000

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent:    domain.IntentRecommendByFilter,
		Genres:    []string{"Action"},
		YearFrom:  &yearFrom,
		MinRating: &minRating,
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := titles(rows)
	want := []string{"The Dark Knight", "Inception"}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rows = %v, want %v", got, want)
			break
		}
	}
}

func TestRows_RatingCompareLessOrEqual(t *testing.T) {
	store := newTestStore(t)
	maxRating := 3.0

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent:        domain.IntentRecommendByFilter,
		Genres:        []string{"Drama"},
		MinRating:     &maxRating,
		RatingCompare: domain.RatingLessOrEqual,
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := titles(rows); len(got) != 1 || got[0] != "The Room" {
		t.Errorf("rows = %v, want [The Room]", got)
	}
}

func TestRows_TopNUsesParsedLimit(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent: domain.IntentTopN,
		TopN:   2,
		Sort:   "rating",
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := titles(rows)
	if len(got) != 2 || got[0] != "The Dark Knight" || got[1] != "Inception" {
		t.Errorf("rows = %v, want top two by rating", got)
	}
}

func TestRows_SimilarMovies(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent: domain.IntentSimilarMovies,
		Title:  "Toy Story",
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected shared-genre matches")
	}
	if rows[0]["title"] != "Finding Nemo" {
		t.Errorf("first match = %v", rows[0]["title"])
	}
	if sim, ok := rows[0]["similarity"].(float64); !ok || sim != 2 {
		t.Errorf("similarity = %v, want 2 shared genres", rows[0]["similarity"])
	}
	for _, r := range rows {
		if r["title"] == "Toy Story" {
			t.Error("seed movie leaked into similar results")
		}
	}
}

func TestRows_SimilarMoviesNoSeed(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{
		Intent: domain.IntentSimilarMovies,
		Title:  "No Such Film",
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want empty", titles(rows))
	}
}

func TestRows_UnknownIntent(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Rows(context.Background(), domain.ParsedQuery{Intent: domain.IntentUnknown}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v, want empty non-nil", rows)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Movies != 6 {
		t.Errorf("movies = %d", stats.Movies)
	}
	if stats.Ratings != 3 {
		t.Errorf("ratings = %d", stats.Ratings)
	}
	if stats.Users != 2 {
		t.Errorf("users = %d", stats.Users)
	}
	if stats.Genres == 0 {
		t.Error("genres not counted")
	}
	if stats.MostCommonRating == nil || stats.MostCommonRating.Score != 4.5 || stats.MostCommonRating.Count != 2 {
		t.Errorf("most common rating = %+v", stats.MostCommonRating)
	}
	if stats.MostRatedMovie == nil || stats.MostRatedMovie.Title != "The Dark Knight" || stats.MostRatedMovie.Count != 2 {
		t.Errorf("most rated movie = %+v", stats.MostRatedMovie)
	}
}
