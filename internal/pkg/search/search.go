package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"zvaintel/internal/models"

	"github.com/rs/zerolog/log"
)

var (
	ErrRateLimited = errors.New("search engine rate limit exceeded")
	ErrMissingKey  = errors.New("search engine credentials missing")
)

const DefaultTimeout = 10 * time.Second

// Hit is one organic result of a web search engine.
type Hit struct {
	Title   string
	URL     string
	Snippet string
}

type Query struct {
	Text   string
	Count  int
	Locale string
}

// Engine is a raw web search backend.
type Engine interface {
	Name() string
	Query(ctx context.Context, q Query) ([]Hit, error)
}

// Adapter produces vendor candidates for a query. Adapters always return a
// usable (possibly empty) slice; the error only describes what went wrong.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query, locale string) ([]models.VendorCandidate, error)
}

// EngineAdapter turns an Engine into an Adapter.
type EngineAdapter struct {
	engine  Engine
	timeout time.Duration
	count   int
}

func NewEngineAdapter(engine Engine, timeout time.Duration, count int) *EngineAdapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if count <= 0 {
		count = 10
	}
	return &EngineAdapter{engine: engine, timeout: timeout, count: count}
}

func (a *EngineAdapter) Name() string {
	return a.engine.Name()
}

func (a *EngineAdapter) Search(ctx context.Context, query, locale string) ([]models.VendorCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	hits, err := a.engine.Query(ctx, Query{Text: query, Count: a.count, Locale: locale})
	if err != nil {
		log.Warn().Str("adapter", a.Name()).Str("query", query).Err(err).Msg("search failed")
		return []models.VendorCandidate{}, fmt.Errorf("%s: %w", a.Name(), err)
	}

	candidates := make([]models.VendorCandidate, 0, len(hits))
	for i, h := range hits {
		if h.URL == "" || IsNonCommercial(h.URL) {
			continue
		}
		candidates = append(candidates, CandidateFromHit(h, a.Name(), i))
	}

	log.Debug().Str("adapter", a.Name()).Str("query", query).Int("hits", len(hits)).Int("candidates", len(candidates)).Msg("search done")
	return candidates, nil
}

func checkStatus(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		if len(body) > 256 {
			body = body[:256]
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
