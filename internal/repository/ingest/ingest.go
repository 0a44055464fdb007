// Package ingest loads the MovieLens 100k raw files (u.item, u.data)
// into the SQLite catalog: movies, genres, genre links, ratings, and
// the per-movie rating aggregates the query pipeline reads.
package ingest

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultChunkSize is the batch size for bulk rating inserts.
const DefaultChunkSize = 5000

// genreColumns lists the genre flag columns of u.item in file order.
var genreColumns = []string{
	"unknown", "Action", "Adventure", "Animation", "Children", "Comedy", "Crime",
	"Documentary", "Drama", "Fantasy", "Film-Noir", "Horror", "Musical",
	"Mystery", "Romance", "Sci-Fi", "Thriller", "War", "Western",
}

// itemColumns is the fixed column count of u.item: movie_id, title,
// release_date, video_release_date, imdb_url, then 19 genre flags.
const itemColumns = 5 + 19

// Report summarizes one ingestion run.
type Report struct {
	MovieRows     int `json:"movie_rows"`
	RatingRows    int `json:"rating_rows"`
	GenreCount    int `json:"genre_count"`
	GenreLinks    int `json:"movie_genre_links"`
	UpdatedMovies int `json:"updated_movies"`
}

// Ingestor loads raw MovieLens files into the catalog database.
type Ingestor struct {
	conn      *sql.DB
	dataDir   string
	chunkSize int
	logger    *zap.Logger
}

// New creates an ingestor reading from dataDir (must contain u.item
// and u.data) and writing through conn.
func New(conn *sql.DB, dataDir string, chunkSize int, logger *zap.Logger) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{conn: conn, dataDir: dataDir, chunkSize: chunkSize, logger: logger}
}

// Run executes the full ingestion: movies and genre links, ratings,
// then aggregate recomputation.
func (in *Ingestor) Run(ctx context.Context) (Report, error) {
	var report Report

	movieRows, genreCount, genreLinks, err := in.ingestMovies(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("ingest movies: %w", err)
	}
	report.MovieRows = movieRows
	report.GenreCount = genreCount
	report.GenreLinks = genreLinks

	ratingRows, err := in.ingestRatings(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("ingest ratings: %w", err)
	}
	report.RatingRows = ratingRows

	updated, err := in.recomputeAggregates(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("recompute aggregates: %w", err)
	}
	report.UpdatedMovies = updated

	in.logger.Info("ingestion complete",
		zap.Int("movies", report.MovieRows),
		zap.Int("ratings", report.RatingRows),
		zap.Int("genre_links", report.GenreLinks),
	)
	return report, nil
}

// ingestMovies parses u.item (pipe-separated) and fills movies,
// genres, and movie_genres inside one transaction.
func (in *Ingestor) ingestMovies(ctx context.Context) (movieRows, genreCount, genreLinks int, err error) {
	path := filepath.Join(in.dataDir, "u.item")
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	tx, err := in.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Ratings reference movies, so they go first or the movies
	// delete trips the foreign key on a re-run.
	if _, err = tx.ExecContext(ctx, "DELETE FROM ratings"); err != nil {
		return 0, 0, 0, fmt.Errorf("clear ratings: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM movie_genres"); err != nil {
		return 0, 0, 0, fmt.Errorf("clear genre links: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM genres"); err != nil {
		return 0, 0, 0, fmt.Errorf("clear genres: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return 0, 0, 0, fmt.Errorf("clear movies: %w", err)
	}

	genreIDs := map[string]int64{}
	for _, name := range genreColumns {
		res, insErr := tx.ExecContext(ctx, "INSERT INTO genres (genre_name) VALUES (?)", name)
		if insErr != nil {
			err = fmt.Errorf("insert genre %s: %w", name, insErr)
			return 0, 0, 0, err
		}
		id, idErr := res.LastInsertId()
		if idErr != nil {
			err = fmt.Errorf("genre id: %w", idErr)
			return 0, 0, 0, err
		}
		genreIDs[name] = id
	}
	genreCount = len(genreIDs)

	movieStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO movies (movie_id, title, release_date, year) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, 0, 0, fmt.Errorf("prepare movie insert: %w", err)
	}
	defer func() { _ = movieStmt.Close() }()

	linkStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)")
	if err != nil {
		return 0, 0, 0, fmt.Errorf("prepare link insert: %w", err)
	}
	defer func() { _ = linkStmt.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != itemColumns {
			err = fmt.Errorf("u.item line %d: expected %d fields, got %d", movieRows+1, itemColumns, len(fields))
			return 0, 0, 0, err
		}

		movieID, parseErr := strconv.ParseInt(fields[0], 10, 64)
		if parseErr != nil {
			err = fmt.Errorf("u.item movie id %q: %w", fields[0], parseErr)
			return 0, 0, 0, err
		}
		title := strings.TrimSpace(decodeLatin1(fields[1]))
		releaseDate := strings.TrimSpace(fields[2])

		var year any
		if y := ExtractYear(releaseDate); y > 0 {
			year = y
		} else if y := ExtractYear(title); y > 0 {
			year = y
		}

		if _, err = movieStmt.ExecContext(ctx, movieID, title, releaseDate, year); err != nil {
			return 0, 0, 0, fmt.Errorf("insert movie %d: %w", movieID, err)
		}
		movieRows++

		for i, name := range genreColumns {
			if fields[5+i] != "1" {
				continue
			}
			if _, err = linkStmt.ExecContext(ctx, movieID, genreIDs[name]); err != nil {
				return 0, 0, 0, fmt.Errorf("link movie %d to %s: %w", movieID, name, err)
			}
			genreLinks++
		}
	}
	if err = scanner.Err(); err != nil {
		return 0, 0, 0, fmt.Errorf("read %s: %w", path, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("commit movies: %w", err)
	}
	return movieRows, genreCount, genreLinks, nil
}

// ingestRatings parses u.data (tab-separated) and bulk-inserts in
// chunked transactions.
func (in *Ingestor) ingestRatings(ctx context.Context) (ratingRows int, err error) {
	path := filepath.Join(in.dataDir, "u.data")
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if _, err = in.conn.ExecContext(ctx, "DELETE FROM ratings"); err != nil {
		return 0, fmt.Errorf("clear ratings: %w", err)
	}

	type rating struct {
		userID   int64
		movieID  int64
		score    float64
		unixTime int64
	}

	flush := func(batch []rating) error {
		if len(batch) == 0 {
			return nil
		}
		tx, txErr := in.conn.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("begin tx: %w", txErr)
		}
		stmt, stmtErr := tx.PrepareContext(ctx,
			"INSERT INTO ratings (user_id, movie_id, rating, unix_time) VALUES (?, ?, ?, ?)")
		if stmtErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prepare rating insert: %w", stmtErr)
		}
		for _, r := range batch {
			if _, execErr := stmt.ExecContext(ctx, r.userID, r.movieID, r.score, r.unixTime); execErr != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return fmt.Errorf("insert rating: %w", execErr)
			}
		}
		_ = stmt.Close()
		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("commit ratings: %w", commitErr)
		}
		return nil
	}

	batch := make([]rating, 0, in.chunkSize)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return ratingRows, fmt.Errorf("u.data line %d: expected 4 fields, got %d", lineNo, len(fields))
		}

		var r rating
		if r.userID, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
			return ratingRows, fmt.Errorf("u.data line %d user id: %w", lineNo, err)
		}
		if r.movieID, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
			return ratingRows, fmt.Errorf("u.data line %d movie id: %w", lineNo, err)
		}
		if r.score, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return ratingRows, fmt.Errorf("u.data line %d rating: %w", lineNo, err)
		}
		if r.unixTime, err = strconv.ParseInt(fields[3], 10, 64); err != nil {
			return ratingRows, fmt.Errorf("u.data line %d timestamp: %w", lineNo, err)
		}

		batch = append(batch, r)
		if len(batch) >= in.chunkSize {
			if err = flush(batch); err != nil {
				return ratingRows, err
			}
			ratingRows += len(batch)
			batch = batch[:0]
		}
	}
	if err = scanner.Err(); err != nil {
		return ratingRows, fmt.Errorf("read %s: %w", path, err)
	}
	if err = flush(batch); err != nil {
		return ratingRows, err
	}
	ratingRows += len(batch)

	return ratingRows, nil
}

// recomputeAggregates refreshes avg_rating and num_ratings on every
// movie from the ratings table.
func (in *Ingestor) recomputeAggregates(ctx context.Context) (int, error) {
	res, err := in.conn.ExecContext(ctx, `
		UPDATE movies SET
			avg_rating = (
				SELECT ROUND(AVG(rating), 3) FROM ratings WHERE ratings.movie_id = movies.movie_id
			),
			num_ratings = (
				SELECT COUNT(*) FROM ratings WHERE ratings.movie_id = movies.movie_id
			)
	`)
	if err != nil {
		return 0, fmt.Errorf("update aggregates: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// decodeLatin1 converts a Latin-1 encoded field to UTF-8. u.item
// ships in Latin-1 and some titles carry accented characters.
func decodeLatin1(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	runes := make([]rune, 0, len(s))
	for i := 0; i < len(s); i++ {
		runes = append(runes, rune(s[i]))
	}
	return string(runes)
}

// ExtractYear pulls a 4-digit year from a date string like
// "01-Jan-1995" or a title like "Heat (1995)". Returns 0 when no
// 4-digit run is found.
func ExtractYear(text string) int {
	if text == "" {
		return 0
	}
	isDigits := func(s string) bool {
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return len(s) == 4
	}

	if len(text) >= 4 && isDigits(text[len(text)-4:]) {
		y, _ := strconv.Atoi(text[len(text)-4:])
		return y
	}
	for i := 0; i+4 <= len(text); i++ {
		if isDigits(text[i : i+4]) {
			y, _ := strconv.Atoi(text[i : i+4])
			return y
		}
	}
	return 0
}
