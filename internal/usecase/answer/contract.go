package answer

import (
	"context"

	"github.com/cinequery/cinequery/internal/domain"
)

// RowSource executes a parsed query against the movie catalog and
// returns loosely-typed rows. A failure here is fatal for the request.
type RowSource interface {
	Rows(ctx context.Context, parsed domain.ParsedQuery, limit int) ([]domain.RawRow, error)
}

// Generator produces free text from a grounded prompt. An error or an
// empty generation falls back to the deterministic answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
