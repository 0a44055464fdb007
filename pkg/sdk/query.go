package sdk

import (
	"context"
	"net/http"
)

// QueryOption tunes a single answer request.
type QueryOption interface {
	applyQuery(*queryParams)
}

type queryOptionFunc func(*queryParams)

func (f queryOptionFunc) applyQuery(p *queryParams) { f(p) }

type queryParams struct {
	limit     *int
	diversify *bool
	tone      string
}

// WithLimit caps the number of result rows.
func WithLimit(n int) QueryOption {
	return queryOptionFunc(func(p *queryParams) { p.limit = &n })
}

// WithDiversify toggles genre round-robin sampling on overflow.
func WithDiversify(on bool) QueryOption {
	return queryOptionFunc(func(p *queryParams) { p.diversify = &on })
}

// WithTone sets the requested response tone (concise, friendly, neutral).
func WithTone(tone string) QueryOption {
	return queryOptionFunc(func(p *queryParams) { p.tone = tone })
}

func collectQueryParams(opts []QueryOption) queryParams {
	var p queryParams
	for _, o := range opts {
		o.applyQuery(&p)
	}
	return p
}

// Parse runs only the rule-based parser on a free-text query.
func (c *Client) Parse(ctx context.Context, text string) (ParsedQuery, error) {
	var resp struct {
		Parsed ParsedQuery `json:"parsed"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/query/parse",
		map[string]string{"text": text}, &resp)
	if err != nil {
		return ParsedQuery{}, err
	}
	return resp.Parsed, nil
}

type answerRequest struct {
	Text      string `json:"text"`
	Limit     *int   `json:"limit,omitempty"`
	Diversify *bool  `json:"diversify,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

// Answer runs the full text-to-answer pipeline.
func (c *Client) Answer(ctx context.Context, text string, opts ...QueryOption) (AnswerResult, error) {
	p := collectQueryParams(opts)
	req := answerRequest{
		Text:      text,
		Limit:     p.limit,
		Diversify: p.diversify,
		Tone:      p.tone,
	}

	var resp AnswerResult
	if err := c.do(ctx, http.MethodPost, "/v1/query/answer", req, &resp); err != nil {
		return AnswerResult{}, err
	}
	return resp, nil
}

type respondRequest struct {
	ExecutorPayload any    `json:"executor_payload"`
	MaxResults      *int   `json:"max_results,omitempty"`
	Diversify       *bool  `json:"diversify,omitempty"`
	Tone            string `json:"tone,omitempty"`
}

// Respond runs the pipeline over a pre-executed payload (intent,
// slots, raw result rows) without touching the catalog.
func (c *Client) Respond(ctx context.Context, payload any, opts ...QueryOption) (AnswerResult, error) {
	p := collectQueryParams(opts)
	req := respondRequest{
		ExecutorPayload: payload,
		MaxResults:      p.limit,
		Diversify:       p.diversify,
		Tone:            p.tone,
	}

	var resp AnswerResult
	if err := c.do(ctx, http.MethodPost, "/v1/query/respond", req, &resp); err != nil {
		return AnswerResult{}, err
	}
	return resp, nil
}

// Stats fetches catalog statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var resp Stats
	if err := c.do(ctx, http.MethodGet, "/v1/stats", nil, &resp); err != nil {
		return Stats{}, err
	}
	return resp, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return Health{}, err
	}
	return resp, nil
}

// Version fetches server build metadata.
func (c *Client) Version(ctx context.Context) (Version, error) {
	var resp Version
	if err := c.do(ctx, http.MethodGet, "/version", nil, &resp); err != nil {
		return Version{}, err
	}
	return resp, nil
}
