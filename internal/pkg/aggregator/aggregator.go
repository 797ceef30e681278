package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/search"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidConfig = errors.New("invalid aggregator config")

const (
	DefaultWorkers   = 3
	DefaultDelay     = time.Second
	DefaultEnrichTop = 10
	DefaultDepth     = 2
)

type Request struct {
	MedicineName string `json:"medicine_name" form:"medicine_name" binding:"required"`
	Dosage       string `json:"dosage" form:"dosage"`
	Country      string `json:"country" form:"country"`
	SearchDepth  int    `json:"search_depth" form:"search_depth"`
}

type Result struct {
	Candidates  []models.VendorCandidate `json:"candidates"`
	Insights    string                   `json:"insights"`
	DataQuality DataQuality              `json:"data_quality"`
	Sources     []string                 `json:"sources"`
	Errors      []string                 `json:"errors"`
}

// Enricher refines the top candidates, e.g. with a language model.
type Enricher interface {
	Enrich(ctx context.Context, query string, candidates []models.VendorCandidate) ([]models.CandidateEnrichment, error)
}

type Config struct {
	Workers   int
	Delay     time.Duration // minimum gap between two calls to the same adapter, unless it is already limited
	EnrichTop int
}

type Aggregator struct {
	adapters []search.Adapter
	enricher Enricher
	cfg      Config
}

// New builds an Aggregator. enricher may be nil.
func New(adapters []search.Adapter, enricher Enricher, cfg Config) (*Aggregator, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no search adapters", ErrInvalidConfig)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.EnrichTop <= 0 {
		cfg.EnrichTop = DefaultEnrichTop
	}

	limited := make([]search.Adapter, len(adapters))
	for i, ad := range adapters {
		limited[i] = search.Limited(ad, cfg.Delay)
	}

	return &Aggregator{adapters: limited, enricher: enricher, cfg: cfg}, nil
}

type unit struct {
	query   string
	adapter int
}

func (a *Aggregator) Search(ctx context.Context, req Request) Result {
	depth := req.SearchDepth
	if depth <= 0 {
		depth = DefaultDepth
	}
	variants := QueryVariants(req)
	variants = variants[:min(depth, len(variants))]

	units := make([]unit, 0, len(variants)*len(a.adapters))
	for _, q := range variants {
		for i := range a.adapters {
			units = append(units, unit{query: q, adapter: i})
		}
	}

	found := make([][]models.VendorCandidate, len(units))
	failures := make([]error, len(units))

	var g errgroup.Group
	g.SetLimit(a.cfg.Workers)
	for i, u := range units {
		g.Go(func() error {
			found[i], failures[i] = a.adapters[u.adapter].Search(ctx, u.query, req.Country)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Errors: []string{}}
	var all []models.VendorCandidate
	sourceSet := map[string]bool{}
	for i, u := range units {
		if failures[i] != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("query %q: %v", u.query, failures[i]))
		}
		for _, c := range found[i] {
			if c.Source == "" {
				c.Source = a.adapters[u.adapter].Name()
			}
			sourceSet[c.Source] = true
			all = append(all, c)
		}
	}

	result.Candidates = Merge(all)

	if a.enricher != nil && len(result.Candidates) > 0 {
		if err := a.enrich(ctx, variants[0], result.Candidates); err != nil {
			log.Warn().Str("query", variants[0]).Err(err).Msg("candidate enrichment failed")
			result.Errors = append(result.Errors, err.Error())
		}
	}

	result.Sources = make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		result.Sources = append(result.Sources, s)
	}
	sort.Strings(result.Sources)

	result.Insights = Insights(variants[0], result.Candidates, result.Sources)
	result.DataQuality = RateQuality(len(result.Candidates), len(result.Sources))

	log.Info().
		Str("query", variants[0]).
		Int("variants", len(variants)).
		Int("candidates", len(result.Candidates)).
		Int("errors", len(result.Errors)).
		Str("quality", string(result.DataQuality)).
		Msg("vendor search done")

	return result
}

// enrich applies enrichment to the top candidates in place and re-sorts.
func (a *Aggregator) enrich(ctx context.Context, query string, candidates []models.VendorCandidate) error {
	top := candidates[:min(a.cfg.EnrichTop, len(candidates))]

	enrichments, err := a.enricher.Enrich(ctx, query, top)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	for i := range top {
		if i >= len(enrichments) {
			break
		}
		Apply(&top[i], enrichments[i])
	}
	sortCandidates(candidates)
	return nil
}

// Apply merges an enrichment into a candidate. Known values are only ever
// added and confidence never goes down.
func Apply(c *models.VendorCandidate, e models.CandidateEnrichment) {
	if e.BusinessType != "" && e.BusinessType != models.BusinessUnknown &&
		(c.BusinessType == "" || c.BusinessType == models.BusinessUnknown) {
		c.BusinessType = e.BusinessType
	}
	if e.ServesHospitals != nil && *e.ServesHospitals {
		c.Volume.ServesHospitals = true
	}
	if e.InternationalShipping != nil && *e.InternationalShipping {
		c.Volume.InternationalShipping = true
	}
	c.Certifications = unionCerts(c.Certifications, e.Certifications)
	if e.Confidence != nil && *e.Confidence > c.Confidence {
		c.Confidence = *e.Confidence
	}
}
