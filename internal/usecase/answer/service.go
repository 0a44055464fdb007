// Package answer orchestrates the full query pipeline: parse, fetch
// rows, canonicalize, summarize, correct edge cases, render, and
// optionally enrich through a generative model.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
	"github.com/cinequery/cinequery/internal/usecase/canonical"
	"github.com/cinequery/cinequery/internal/usecase/edgecase"
	"github.com/cinequery/cinequery/internal/usecase/parser"
	"github.com/cinequery/cinequery/internal/usecase/render"
	"github.com/cinequery/cinequery/internal/usecase/summary"
)

// DefaultMaxFiltersLength caps the compact filters line built for the
// answer pipeline.
const DefaultMaxFiltersLength = 160

// promptMaxItems caps the facts block of the generated prompt.
const promptMaxItems = 5

// Options tunes a single pipeline invocation.
type Options struct {
	MaxResults        int
	MinCountThreshold int
	MaxFiltersLength  int
	Diversify         bool
	Tone              string
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = canonical.DefaultMaxResults
	}
	if o.MinCountThreshold <= 0 {
		o.MinCountThreshold = edgecase.DefaultMinCountThreshold
	}
	if o.MaxFiltersLength <= 0 {
		o.MaxFiltersLength = DefaultMaxFiltersLength
	}
	if o.Tone == "" {
		o.Tone = render.DefaultTone
	}
	return o
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

// Result is the full pipeline output for one query.
type Result struct {
	Intent        domain.Intent         `json:"intent"`
	Slots         domain.Slots          `json:"slots"`
	Results       []domain.CanonicalRow `json:"results"`
	Context       domain.Context        `json:"context"`
	Answer        string                `json:"answer"`
	PromptPreview string                `json:"prompt_preview"`
	LLM           LLMInfo               `json:"llm"`
	TimingMS      Timing                `json:"timing_ms"`
}

// Service wires the pipeline stages together.
type Service struct {
	parser    *parser.Service
	canonical *canonical.Service
	edge      *edgecase.Engine
	renderer  *render.Service
	rows      RowSource
	generator Generator
	genInfo   LLMInfo
	logger    *zap.Logger
}

// New creates the pipeline orchestrator. generator may be nil, in
// which case every answer is rendered deterministically.
func New(
	p *parser.Service, c *canonical.Service, e *edgecase.Engine, r *render.Service,
	rows RowSource, generator Generator, genInfo LLMInfo, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		parser:    p,
		canonical: c,
		edge:      e,
		renderer:  r,
		rows:      rows,
		generator: generator,
		genInfo:   genInfo,
		logger:    logger,
	}
}

// Answer runs the full pipeline for a free-text query: parse, fetch
// rows from the catalog, then hand off to Respond.
func (s *Service) Answer(ctx context.Context, text string, opts Options) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, fmt.Errorf("text is required: %w", domain.ErrEmptyPayload)
	}
	opts = opts.withDefaults()

	parsed := s.parser.Parse(text)
	s.logger.Debug("query parsed",
		zap.String("intent", string(parsed.Intent)),
		zap.Int("top_n", parsed.TopN),
	)

	rows, err := s.rows.Rows(ctx, parsed, opts.MaxResults)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrRowSource, err)
	}

	payload := domain.ExecutorPayload{
		Intent:  string(parsed.Intent),
		Slots:   parsed.ExecutorSlots(),
		Results: rows,
	}
	return s.Respond(ctx, payload, opts)
}

// Respond enters the pipeline after the row source, taking a raw
// executor payload as produced by any collaborator. The payload is
// coerced defensively; only a missing or empty payload is an error.
func (s *Service) Respond(ctx context.Context, payload any, opts Options) (Result, error) {
	if emptyPayload(payload) {
		return Result{}, fmt.Errorf("executor payload is required (intent, slots, results): %w", domain.ErrEmptyPayload)
	}
	opts = opts.withDefaults()

	start := time.Now()

	canonLimit := opts.MaxResults
	if canonLimit < 5 {
		canonLimit = 5
	}
	normalized, err := s.canonical.Canonicalize(payload, canonLimit)
	if err != nil {
		return Result{}, err
	}

	summarized := summary.Build(normalized, opts.MaxFiltersLength)
	adjusted, queryContext := s.edge.Apply(normalized, summarized, opts.MaxResults, opts.MinCountThreshold, opts.Diversify)
	preproc := time.Since(start)

	answerText := s.renderer.Answer(adjusted.Intent, queryContext, adjusted.Results, opts.MaxResults)
	prompt := s.renderer.BuildPrompt(queryContext, adjusted.Results, opts.Tone, promptMaxItems)

	finalAnswer := answerText
	info := LLMInfo{Provider: "deterministic", Model: "rule-based"}
	if s.generator != nil {
		generated, genErr := s.generator.Generate(ctx, prompt)
		switch {
		case genErr != nil:
			s.logger.Warn("generation failed, keeping deterministic answer", zap.Error(genErr))
		case strings.TrimSpace(generated) == "":
			s.logger.Debug("empty generation, keeping deterministic answer")
		default:
			finalAnswer = generated
			info = s.genInfo
		}
	}

	results := adjusted.Results
	if results == nil {
		results = []domain.CanonicalRow{}
	}

	return Result{
		Intent:        adjusted.Intent,
		Slots:         adjusted.Slots,
		Results:       results,
		Context:       queryContext,
		Answer:        finalAnswer,
		PromptPreview: prompt,
		LLM:           info,
		TimingMS: Timing{
			Preproc: preproc.Milliseconds(),
			Total:   time.Since(start).Milliseconds(),
		},
	}, nil
}

// emptyPayload reports whether the responder was invoked with nothing
// to work on.
func emptyPayload(payload any) bool {
	switch p := payload.(type) {
	case nil:
		return true
	case map[string]any:
		return len(p) == 0
	case domain.ExecutorPayload:
		return p.Intent == "" && len(p.Slots) == 0 && len(p.Results) == 0
	case *domain.ExecutorPayload:
		return p == nil || (p.Intent == "" && len(p.Slots) == 0 && len(p.Results) == 0)
	default:
		return false
	}
}
