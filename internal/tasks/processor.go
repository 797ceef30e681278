package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zvaintel/internal/db"
	"zvaintel/internal/models"
	"zvaintel/internal/pkg/registry"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type RegistryExtractor interface {
	Extract(ctx context.Context, opts registry.Options) registry.Result
}

type RecordSaver interface {
	UpsertRegistryRecords(ctx context.Context, records []models.RegistryRecord) db.UpsertResult
}

type VendorResearcher interface {
	Research(ctx context.Context, name, country, knownWebsite string) (*models.VendorIntelligence, []string)
}

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	extractor  RegistryExtractor
	records    RecordSaver
	researcher VendorResearcher
	defaults   registry.Options
}

// NewTaskProcessor creates a new TaskProcessor. researcher may be nil when
// no search source is configured; research tasks are then dropped.
func NewTaskProcessor(extractor RegistryExtractor, records RecordSaver, researcher VendorResearcher, defaults registry.Options) *TaskProcessor {
	return &TaskProcessor{
		extractor:  extractor,
		records:    records,
		researcher: researcher,
		defaults:   defaults,
	}
}

func (p *TaskProcessor) HandleExtractRegistryTask(ctx context.Context, t *asynq.Task) error {
	var payload ExtractRegistryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	opts := p.defaults
	if payload.MaxPages != nil {
		opts.MaxPages = *payload.MaxPages
	}
	if payload.PageSize != nil {
		opts.PageSize = *payload.PageSize
	}
	if payload.DelayMs != nil {
		opts.Delay = time.Duration(*payload.DelayMs) * time.Millisecond
	}

	log.Info().Int("max_pages", opts.MaxPages).Int("page_size", opts.PageSize).Msg("extracting registry")

	result := p.extractor.Extract(ctx, opts)
	for _, e := range result.Errors {
		log.Warn().Str("task", t.Type()).Msg(e)
	}

	saved := p.records.UpsertRegistryRecords(ctx, result.Records)

	log.Info().
		Int("pages", result.Pages).
		Int("pages_failed", result.PagesFailed).
		Int("records", len(result.Records)).
		Int("dropped", result.Dropped).
		Int("saved", saved.Saved).
		Int("save_failed", saved.Failed).
		Msg("registry extraction finished")

	// nothing at all came back: let asynq retry later
	if len(result.Records) == 0 && result.PagesFailed > 0 {
		return fmt.Errorf("registry extraction failed: %s", strings.Join(result.Errors, "; "))
	}
	return nil
}

func (p *TaskProcessor) HandleResearchVendorTask(ctx context.Context, t *asynq.Task) error {
	var payload ResearchVendorPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.VendorName) == "" {
		return fmt.Errorf("vendor name is empty: %w", asynq.SkipRetry)
	}
	if p.researcher == nil {
		return fmt.Errorf("vendor research is not configured: %w", asynq.SkipRetry)
	}

	v, errs := p.researcher.Research(ctx, payload.VendorName, payload.Country, payload.Website)
	for _, e := range errs {
		log.Warn().Str("vendor", payload.VendorName).Msg(e)
	}
	if v == nil {
		return fmt.Errorf("research %s: %s: %w", payload.VendorName, strings.Join(errs, "; "), asynq.SkipRetry)
	}

	log.Info().
		Str("vendor", v.VendorName).
		Str("status", string(v.ResearchStatus)).
		Str("classification", string(v.SupplierClassification)).
		Msg("vendor research task finished")

	// Failed results are stored; asynq retries them with backoff.
	if v.ResearchStatus == models.ResearchFailed {
		return fmt.Errorf("research %s failed: %s", v.VendorName, v.LastError)
	}
	return nil
}
