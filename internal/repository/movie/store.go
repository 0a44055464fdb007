// Package movie provides the SQLite-backed movie catalog: the row
// source behind the query pipeline plus catalog statistics.
package movie

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Store wraps the catalog database.
type Store struct {
	conn   *sql.DB
	logger *zap.Logger
	dbPath string
}

// Open opens or creates the catalog database at path. ":memory:" is
// accepted for tests.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, logger: logger, dbPath: path}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS movies (
			movie_id     INTEGER PRIMARY KEY,
			title        TEXT NOT NULL,
			release_date TEXT,
			year         INTEGER,
			avg_rating   REAL,
			num_ratings  INTEGER
		);

		CREATE TABLE IF NOT EXISTS genres (
			genre_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			genre_name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id INTEGER NOT NULL REFERENCES movies(movie_id),
			genre_id INTEGER NOT NULL REFERENCES genres(genre_id),
			PRIMARY KEY (movie_id, genre_id)
		);

		CREATE TABLE IF NOT EXISTS ratings (
			user_id   INTEGER NOT NULL,
			movie_id  INTEGER NOT NULL REFERENCES movies(movie_id),
			rating    REAL NOT NULL,
			unix_time INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(title);
		CREATE INDEX IF NOT EXISTS idx_movies_year ON movies(year);
		CREATE INDEX IF NOT EXISTS idx_movies_rating ON movies(avg_rating);
		CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id);
		CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// DB exposes the underlying connection for the ingester.
func (s *Store) DB() *sql.DB {
	return s.conn
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// RatingMode is the most frequent rating score.
type RatingMode struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// TopMovie is the most rated movie.
type TopMovie struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	Movies           int         `json:"movies"`
	Genres           int         `json:"genres"`
	Ratings          int         `json:"ratings"`
	Users            int         `json:"users"`
	MostCommonRating *RatingMode `json:"most_common_rating,omitempty"`
	MostRatedMovie   *TopMovie   `json:"most_rated_movie,omitempty"`
}

// Stats counts movies, genres, ratings, and distinct raters, plus the
// most common rating score and the most rated movie.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	counts := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM movies", &out.Movies},
		{"SELECT COUNT(*) FROM genres", &out.Genres},
		{"SELECT COUNT(*) FROM ratings", &out.Ratings},
		{"SELECT COUNT(DISTINCT user_id) FROM ratings", &out.Users},
	}
	for _, q := range counts {
		if err := s.conn.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("catalog stats: %w", err)
		}
	}

	var mode RatingMode
	err := s.conn.QueryRowContext(ctx, `
		SELECT rating, COUNT(*) AS c
		FROM ratings
		GROUP BY rating
		ORDER BY c DESC
		LIMIT 1
	`).Scan(&mode.Score, &mode.Count)
	switch {
	case err == sql.ErrNoRows:
		// empty catalog
	case err != nil:
		return Stats{}, fmt.Errorf("rating mode: %w", err)
	default:
		out.MostCommonRating = &mode
	}

	var top TopMovie
	err = s.conn.QueryRowContext(ctx, `
		SELECT r.movie_id, m.title, COUNT(*) AS c
		FROM ratings r
		JOIN movies m ON m.movie_id = r.movie_id
		GROUP BY r.movie_id
		ORDER BY c DESC
		LIMIT 1
	`).Scan(&top.MovieID, &top.Title, &top.Count)
	switch {
	case err == sql.ErrNoRows:
		// empty catalog
	case err != nil:
		return Stats{}, fmt.Errorf("most rated movie: %w", err)
	default:
		out.MostRatedMovie = &top
	}

	return out, nil
}
