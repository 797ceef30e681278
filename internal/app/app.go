package app

import (
	"context"
	"fmt"

	"zvaintel/internal/config"
	"zvaintel/internal/db"
	"zvaintel/internal/pkg/aggregator"
	"zvaintel/internal/pkg/matcher"
	"zvaintel/internal/pkg/openai"
	"zvaintel/internal/pkg/registry"
	"zvaintel/internal/pkg/research"
	"zvaintel/internal/pkg/search"
	"zvaintel/internal/pkg/terms"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App holds the services every binary builds from the same Config.
type App struct {
	Config     *config.Config
	Store      *db.Store
	Normalizer *terms.Normalizer
	Extractor  *registry.Extractor
	Aggregator *aggregator.Aggregator
	Research   *research.Service
	Matcher    *matcher.Matcher

	closers []func()
}

// New wires the services. database may be nil for commands that only
// scrape or search; Research and Matcher stay nil in that case.
func New(ctx context.Context, cfg *config.Config, database *gorm.DB) (*App, error) {
	a := &App{Config: cfg}

	norm, err := Normalizer(cfg)
	if err != nil {
		return nil, err
	}
	a.Normalizer = norm

	renderer := a.renderer(ctx)
	a.Extractor, err = registry.NewExtractor(renderer, norm, registry.Config{
		BaseURL: cfg.RegistryURL,
		Timeout: cfg.RegistryTimeout,
		Workers: cfg.RegistryWorkers,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	var llm openai.Completer
	if cfg.OpenAIAPIKey != "" {
		llm = openai.New(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel)
	}

	adapters := Adapters(cfg, llm)
	var enricher aggregator.Enricher
	if llm != nil {
		enricher = openai.NewEnricher(llm)
	}
	a.Aggregator, err = aggregator.New(adapters, enricher, aggregator.Config{Delay: cfg.SearchDelay})
	if err != nil {
		a.Close()
		return nil, err
	}

	if database == nil {
		return a, nil
	}
	a.Store = db.NewStore(database)

	var profiler research.Profiler
	if llm != nil {
		profiler = openai.NewProfiler(llm)
	}
	if a.Research, err = research.New(a.Store, adapters, profiler); err != nil {
		a.Close()
		return nil, err
	}
	if a.Matcher, err = matcher.New(a.Store, a.Store); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Options are the extraction defaults from config.
func (a *App) Options() registry.Options {
	return registry.Options{
		MaxPages: a.Config.RegistryMaxPages,
		PageSize: a.Config.RegistryPageSize,
		Delay:    a.Config.RegistryPageDelay,
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) renderer(ctx context.Context) registry.Renderer {
	if a.Config.RegistryRenderer == config.RendererBrowser {
		r := registry.NewBrowserRenderer(ctx, true)
		a.closers = append(a.closers, r.Close)
		return r
	}
	return registry.NewHTTPRenderer()
}

// Normalizer loads TERMS_FILE over the built-in tables when it is set.
func Normalizer(cfg *config.Config) (*terms.Normalizer, error) {
	if cfg.TermsFile == "" {
		return terms.New(terms.Default()), nil
	}
	tables, err := terms.LoadTables(cfg.TermsFile)
	if err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}
	return terms.New(tables), nil
}

// Adapters picks the search backends that have credentials, each spaced by
// SEARCH_DELAY. DuckDuckGo is the fallback when no keyed engine is configured.
func Adapters(cfg *config.Config, llm openai.Completer) []search.Adapter {
	var adapters []search.Adapter
	if cfg.GoogleAPIKey != "" && cfg.GoogleCX != "" {
		adapters = append(adapters, search.NewEngineAdapter(search.NewGoogleEngine(cfg.GoogleAPIKey, cfg.GoogleCX), cfg.SearchTimeout, 0))
	}
	if cfg.BingAPIKey != "" {
		adapters = append(adapters, search.NewEngineAdapter(search.NewBingEngine(cfg.BingAPIKey), cfg.SearchTimeout, 0))
	}
	if len(adapters) == 0 {
		adapters = append(adapters, search.NewEngineAdapter(search.NewDuckDuckGoEngine(), cfg.SearchTimeout, 0))
	}
	if llm != nil && cfg.SearchLLM {
		adapters = append(adapters, openai.NewKnowledgeAdapter(llm))
	}

	// one limiter per adapter, shared by the aggregator and research
	names := make([]string, len(adapters))
	for i, ad := range adapters {
		adapters[i] = search.Limited(ad, cfg.SearchDelay)
		names[i] = ad.Name()
	}
	log.Debug().Strs("adapters", names).Msg("search adapters configured")
	return adapters
}
