// Package cinequery embeds the movie query pipeline as a library:
// the same parser, canonicalizer, edge-case engine, and renderer the
// HTTP server runs, wired directly over a local SQLite catalog.
//
//	client, _ := cinequery.Open(ctx, "data/movies.db")
//	defer client.Close()
//
//	result, _ := client.Answer(ctx, "top 5 drama since 2010")
//	fmt.Println(result.Answer)
package cinequery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
	movierepo "github.com/cinequery/cinequery/internal/repository/movie"
	answeruc "github.com/cinequery/cinequery/internal/usecase/answer"
	"github.com/cinequery/cinequery/internal/usecase/canonical"
	"github.com/cinequery/cinequery/internal/usecase/edgecase"
	parseruc "github.com/cinequery/cinequery/internal/usecase/parser"
	"github.com/cinequery/cinequery/internal/usecase/render"
)

// Result is the full pipeline output for one query.
type Result = answeruc.Result

// ParsedQuery is the rule-based parser's output.
type ParsedQuery = domain.ParsedQuery

// Stats reports catalog counts.
type Stats = movierepo.Stats

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyPayload = domain.ErrEmptyPayload
	ErrInputShape   = domain.ErrInputShape
	ErrRowSource    = domain.ErrRowSource
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	logger    *zap.Logger
	generator answeruc.Generator
	provider  string
	model     string
	defaults  answeruc.Options
}

// WithLogger attaches a zap logger to every pipeline stage.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = logger })
}

// WithGenerator attaches a conversational generator. Without one,
// every answer comes from the deterministic renderer.
func WithGenerator(g answeruc.Generator, provider, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
		c.provider = provider
		c.model = model
	})
}

// WithMaxResults caps result rows per answer.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) { c.defaults.MaxResults = n })
}

// WithTone sets the default response tone.
func WithTone(tone string) Option {
	return optionFunc(func(c *clientConfig) { c.defaults.Tone = tone })
}

// WithDiversify toggles genre round-robin sampling on overflow.
func WithDiversify(on bool) Option {
	return optionFunc(func(c *clientConfig) { c.defaults.Diversify = on })
}

// Client is the embedded cinequery pipeline.
type Client struct {
	store    *movierepo.Store
	parser   *parseruc.Service
	answers  *answeruc.Service
	defaults answeruc.Options
}

// Open opens the SQLite catalog at path and wires the pipeline.
// The context is used for the initial readiness check.
func Open(ctx context.Context, path string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		defaults: answeruc.Options{Diversify: true},
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := movierepo.Open(path, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("cinequery: open catalog: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("cinequery: catalog not ready: %w", err)
	}

	parser := parseruc.New(cfg.logger)
	answers := answeruc.New(
		parser,
		canonical.New(cfg.logger),
		edgecase.NewEngine(cfg.logger),
		render.New(cfg.logger),
		store,
		cfg.generator,
		answeruc.LLMInfo{Provider: cfg.provider, Model: cfg.model},
		cfg.logger,
	)

	return &Client{
		store:    store,
		parser:   parser,
		answers:  answers,
		defaults: cfg.defaults,
	}, nil
}

// Parse runs only the rule-based parser.
func (c *Client) Parse(text string) ParsedQuery {
	return c.parser.Parse(text)
}

// Answer runs the full text-to-answer pipeline against the catalog.
func (c *Client) Answer(ctx context.Context, text string) (Result, error) {
	return c.answers.Answer(ctx, text, c.defaults)
}

// Respond runs the pipeline over a pre-executed payload.
func (c *Client) Respond(ctx context.Context, payload any) (Result, error) {
	return c.answers.Respond(ctx, payload, c.defaults)
}

// Stats reports catalog counts.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}

// Close releases the underlying database handle.
func (c *Client) Close() error {
	return c.store.Close()
}
