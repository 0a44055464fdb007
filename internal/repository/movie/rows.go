package movie

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
)

// selectColumns is the shared projection for catalog rows: movie
// fields plus an aggregated genre list.
const selectColumns = `
	SELECT
		m.movie_id,
		m.title,
		m.year,
		m.avg_rating,
		m.num_ratings,
		COALESCE(GROUP_CONCAT(DISTINCT g.genre_name), '')
	FROM movies m
	LEFT JOIN movie_genres mg ON mg.movie_id = m.movie_id
	LEFT JOIN genres g ON g.genre_id = mg.genre_id
`

// Rows executes the parsed query and returns loosely-typed rows for
// the canonicalizer. Unknown intents return no rows.
func (s *Store) Rows(ctx context.Context, parsed domain.ParsedQuery, limit int) ([]domain.RawRow, error) {
	if limit <= 0 {
		limit = 10
	}
	if parsed.TopN > 0 && parsed.TopN < limit && parsed.Intent != domain.IntentTopN {
		limit = parsed.TopN
	}

	s.logger.Debug("executing catalog query",
		zap.String("intent", string(parsed.Intent)),
		zap.Int("limit", limit),
	)

	switch parsed.Intent {
	case domain.IntentGetDetails:
		return s.movieDetails(ctx, parsed.Title, limit)
	case domain.IntentRecommendByFilter:
		return s.recommendByFilter(ctx, parsed, limit)
	case domain.IntentTopN:
		top := parsed.TopN
		if top <= 0 {
			top = limit
		}
		return s.recommendByFilter(ctx, parsed, top)
	case domain.IntentSimilarMovies:
		return s.similarByGenres(ctx, parsed, limit)
	default:
		return []domain.RawRow{}, nil
	}
}

// movieDetails looks up movies whose title contains the given text.
func (s *Store) movieDetails(ctx context.Context, title string, limit int) ([]domain.RawRow, error) {
	pattern := "%" + strings.TrimSpace(title) + "%"
	query := selectColumns + `
		WHERE m.title LIKE ?
		GROUP BY m.movie_id
		ORDER BY m.num_ratings DESC, m.avg_rating DESC
		LIMIT ?
	`
	rows, err := s.conn.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("movie details query: %w", err)
	}
	return collectRows(rows, false)
}

// recommendByFilter selects by genre, year, and rating constraints,
// ordered by rating then popularity.
func (s *Store) recommendByFilter(ctx context.Context, parsed domain.ParsedQuery, limit int) ([]domain.RawRow, error) {
	var where []string
	var params []any

	if len(parsed.Genres) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(parsed.Genres)), ",")
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM movie_genres fmg
			JOIN genres fg ON fg.genre_id = fmg.genre_id
			WHERE fmg.movie_id = m.movie_id AND fg.genre_name IN (%s)
		)`, placeholders))
		for _, g := range parsed.Genres {
			params = append(params, g)
		}
	}

	if parsed.Year != nil {
		where = append(where, "m.year = ?")
		params = append(params, *parsed.Year)
	} else {
		if parsed.YearFrom != nil {
			where = append(where, "m.year >= ?")
			params = append(params, *parsed.YearFrom)
		}
		if parsed.YearTo != nil {
			where = append(where, "m.year <= ?")
			params = append(params, *parsed.YearTo)
		}
	}

	if parsed.MinRating != nil {
		op := ">="
		if parsed.RatingCompare == domain.RatingLessOrEqual {
			op = "<="
		}
		where = append(where, "m.avg_rating "+op+" ?")
		params = append(params, *parsed.MinRating)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += `
		GROUP BY m.movie_id
		ORDER BY m.avg_rating DESC, m.num_ratings DESC
		LIMIT ?
	`
	params = append(params, limit)

	rows, err := s.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("recommend query: %w", err)
	}
	return collectRows(rows, false)
}

// similarByGenres finds movies sharing genres with the seed title,
// exposing the shared-genre count as a similarity score.
func (s *Store) similarByGenres(ctx context.Context, parsed domain.ParsedQuery, limit int) ([]domain.RawRow, error) {
	pattern := "%" + strings.TrimSpace(parsed.Title) + "%"

	var baseID int64
	err := s.conn.QueryRowContext(ctx,
		"SELECT movie_id FROM movies WHERE title LIKE ? LIMIT 1", pattern,
	).Scan(&baseID)
	if err == sql.ErrNoRows {
		return []domain.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed lookup: %w", err)
	}

	query := `
		SELECT
			m.movie_id,
			m.title,
			m.year,
			m.avg_rating,
			m.num_ratings,
			COALESCE(GROUP_CONCAT(DISTINCT g.genre_name), ''),
			COUNT(DISTINCT mg0.genre_id) AS shared
		FROM movie_genres mg0
		JOIN movie_genres mg1 ON mg1.genre_id = mg0.genre_id
		JOIN movies m ON m.movie_id = mg1.movie_id
		LEFT JOIN movie_genres mg ON mg.movie_id = m.movie_id
		LEFT JOIN genres g ON g.genre_id = mg.genre_id
		WHERE mg0.movie_id = ? AND mg1.movie_id != ?
	`
	params := []any{baseID, baseID}

	if parsed.MinRating != nil {
		op := ">="
		if parsed.RatingCompare == domain.RatingLessOrEqual {
			op = "<="
		}
		query += " AND m.avg_rating " + op + " ?"
		params = append(params, *parsed.MinRating)
	}

	query += `
		GROUP BY m.movie_id
		ORDER BY shared DESC, m.avg_rating DESC, m.num_ratings DESC
		LIMIT ?
	`
	params = append(params, limit)

	rows, err := s.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("similar query: %w", err)
	}

	return collectRows(rows, true)
}

// collectRows scans catalog rows into the raw map shape the
// canonicalizer expects. withSimilarity indicates an extra trailing
// shared-genre count column.
func collectRows(rows *sql.Rows, withSimilarity bool) ([]domain.RawRow, error) {
	defer func() { _ = rows.Close() }()

	out := []domain.RawRow{}
	for rows.Next() {
		var (
			id     int64
			title  string
			year   sql.NullInt64
			avg    sql.NullFloat64
			num    sql.NullInt64
			genres string
			shared int64
		)

		dest := []any{&id, &title, &year, &avg, &num, &genres}
		if withSimilarity {
			dest = append(dest, &shared)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := domain.RawRow{
			"movieId": id,
			"title":   title,
		}
		if year.Valid {
			row["year"] = int(year.Int64)
		}
		if avg.Valid {
			row["avg_rating"] = avg.Float64
		}
		if num.Valid {
			row["num_ratings"] = int(num.Int64)
		}
		if genres != "" {
			row["genres"] = genres
		}
		if withSimilarity {
			row["similarity"] = float64(shared)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
