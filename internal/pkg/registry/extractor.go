package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/terms"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var ErrInvalidConfig = errors.New("invalid extractor config")

const (
	DefaultTimeout  = 30 * time.Second
	DefaultWorkers  = 2
	DefaultMaxPages = 10
	DefaultPageSize = 100
	DefaultDelay    = 2 * time.Second
)

type Config struct {
	BaseURL       string
	Selectors     []string
	Timeout       time.Duration
	Workers       int
	MinCells      int
	PageParam     string
	PageSizeParam string
}

type Options struct {
	MaxPages int
	PageSize int
	Delay    time.Duration
}

type Result struct {
	Records     []models.RegistryRecord `json:"records"`
	Errors      []string                `json:"errors"`
	Pages       int                     `json:"pages"`
	PagesFailed int                     `json:"pages_failed"`
	Dropped     int                     `json:"dropped"`
}

type Extractor struct {
	renderer Renderer
	parser   *RowParser
	cfg      Config
}

func NewExtractor(renderer Renderer, norm *terms.Normalizer, cfg Config) (*Extractor, error) {
	if renderer == nil {
		return nil, fmt.Errorf("%w: renderer is nil", ErrInvalidConfig)
	}
	if norm == nil {
		return nil, fmt.Errorf("%w: normalizer is nil", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", ErrInvalidConfig, cfg.BaseURL, err)
	}

	if len(cfg.Selectors) == 0 {
		cfg.Selectors = DefaultSelectors
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.PageParam == "" {
		cfg.PageParam = "page"
	}
	if cfg.PageSizeParam == "" {
		cfg.PageSizeParam = "per_page"
	}

	return &Extractor{
		renderer: renderer,
		parser:   NewRowParser(norm, cfg.MinCells),
		cfg:      cfg,
	}, nil
}

type pageOutcome struct {
	number    int
	pageCount int
	records   []models.RegistryRecord
	errors    []string
	dropped   int
	failed    bool
}

// Extract walks the registry pages. A failing page or row never aborts the
// run; it ends up in Result.Errors.
func (e *Extractor) Extract(ctx context.Context, opts Options) Result {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	first := e.processPage(ctx, limiter, 1, opts.PageSize)

	// without a first page the page count is unknown, so try up to MaxPages
	total := opts.MaxPages
	if !first.failed {
		total = min(max(first.pageCount, 1), opts.MaxPages)
	}

	outcomes := make([]pageOutcome, total)
	outcomes[0] = first

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for n := 2; n <= total; n++ {
		g.Go(func() error {
			outcomes[n-1] = e.processPage(ctx, limiter, n, opts.PageSize)
			return nil
		})
	}
	_ = g.Wait()

	return collect(outcomes)
}

func (e *Extractor) processPage(ctx context.Context, limiter *rate.Limiter, n, pageSize int) pageOutcome {
	out := pageOutcome{number: n}
	fail := func(err error) pageOutcome {
		log.Warn().Int("page", n).Err(err).Msg("registry page failed")
		out.failed = true
		out.errors = append(out.errors, fmt.Sprintf("page %d: %v", n, err))
		return out
	}

	if err := limiter.Wait(ctx); err != nil {
		return fail(err)
	}

	page, err := e.renderer.Navigate(ctx, e.pageURL(n, pageSize), WaitCondition(strings.Join(e.cfg.Selectors, ", ")), e.cfg.Timeout)
	if err != nil {
		return fail(err)
	}
	page.Number = n

	rows, err := page.Rows(e.cfg.Selectors)
	if err != nil {
		return fail(err)
	}
	out.pageCount = page.PageCount()

	for _, row := range rows {
		rec, err := e.parser.Parse(row)
		if err != nil {
			log.Debug().Int("page", n).Int("row", row.Index).Err(err).Msg("row dropped")
			out.errors = append(out.errors, err.Error())
			out.dropped++
			continue
		}
		out.records = append(out.records, rec)
	}

	log.Info().Int("page", n).Int("rows", len(rows)).Int("records", len(out.records)).Msg("registry page processed")
	return out
}

func (e *Extractor) pageURL(n, pageSize int) string {
	u, _ := url.Parse(e.cfg.BaseURL)
	q := u.Query()
	q.Set(e.cfg.PageParam, strconv.Itoa(n))
	q.Set(e.cfg.PageSizeParam, strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String()
}

// collect merges page outcomes in page order. A registration number seen
// again replaces the earlier record in place.
func collect(outcomes []pageOutcome) Result {
	res := Result{Pages: len(outcomes)}
	index := map[string]int{}

	for _, o := range outcomes {
		if o.failed {
			res.PagesFailed++
		}
		res.Errors = append(res.Errors, o.errors...)
		res.Dropped += o.dropped

		for _, rec := range o.records {
			if i, ok := index[rec.RegistrationNumber]; ok {
				res.Records[i] = rec
				continue
			}
			index[rec.RegistrationNumber] = len(res.Records)
			res.Records = append(res.Records, rec)
		}
	}
	return res
}
