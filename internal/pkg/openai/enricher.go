package openai

import (
	"context"
	"fmt"
	"strings"

	"zvaintel/internal/models"
)

type enrichmentJSON struct {
	Index                 int      `json:"index"`
	BusinessType          string   `json:"business_type"`
	ServesHospitals       *bool    `json:"serves_hospitals"`
	InternationalShipping *bool    `json:"international_shipping"`
	Certifications        []string `json:"certifications"`
	Confidence            *float64 `json:"confidence"`
}

// Enricher asks the model to classify already found candidates.
type Enricher struct {
	llm       Completer
	maxTokens int
}

func NewEnricher(llm Completer) *Enricher {
	return &Enricher{llm: llm, maxTokens: defaultMaxTokens}
}

// Enrich returns one entry per candidate, matched by position. Candidates the
// model skipped get a zero entry.
func (e *Enricher) Enrich(ctx context.Context, query string, candidates []models.VendorCandidate) ([]models.CandidateEnrichment, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for i, c := range candidates {
		website := ""
		if c.Website != nil {
			website = *c.Website
		}
		fmt.Fprintf(&list, "%d. %s | %s | %s\n", i+1, c.CompanyName, website, c.Snippet)
	}

	out, err := e.llm.Complete(ctx, fmt.Sprintf(enrichPrompt, query, list.String()), e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("enrich candidates: %w", err)
	}

	var items []enrichmentJSON
	if err := DecodeJSON(out, &items); err != nil {
		return nil, fmt.Errorf("enrich candidates: %w", err)
	}

	enrichments := make([]models.CandidateEnrichment, len(candidates))
	for _, it := range items {
		i := it.Index - 1
		if i < 0 || i >= len(candidates) {
			continue
		}

		en := models.CandidateEnrichment{
			ServesHospitals:       it.ServesHospitals,
			InternationalShipping: it.InternationalShipping,
			Certifications:        normalizeCerts(it.Certifications),
		}
		if bt := models.ParseBusinessType(it.BusinessType); bt != models.BusinessUnknown {
			en.BusinessType = bt
		}
		if it.Confidence != nil && *it.Confidence >= 0 && *it.Confidence <= 1 {
			en.Confidence = it.Confidence
		}
		enrichments[i] = en
	}
	return enrichments, nil
}
