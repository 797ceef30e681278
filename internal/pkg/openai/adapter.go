package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"zvaintel/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	defaultSupplierCount = 10
	defaultMaxTokens     = 2000
	knowledgeSource      = "openai"
)

type supplierJSON struct {
	CompanyName           string   `json:"company_name"`
	Website               *string  `json:"website"`
	Description           string   `json:"description"`
	BusinessType          string   `json:"business_type"`
	Email                 *string  `json:"email"`
	Phone                 *string  `json:"phone"`
	Address               *string  `json:"address"`
	Certifications        []string `json:"certifications"`
	ServesHospitals       bool     `json:"serves_hospitals"`
	InternationalShipping bool     `json:"international_shipping"`
	IsBulkSupplier        bool     `json:"is_bulk_supplier"`
	MinimumOrderQuantity  *int     `json:"minimum_order_quantity"`
	Confidence            *float64 `json:"confidence"`
}

// KnowledgeAdapter asks the model for suppliers it knows about. It is a
// search source like the web engines.
type KnowledgeAdapter struct {
	llm       Completer
	count     int
	maxTokens int
}

func NewKnowledgeAdapter(llm Completer) *KnowledgeAdapter {
	return &KnowledgeAdapter{llm: llm, count: defaultSupplierCount, maxTokens: defaultMaxTokens}
}

func (a *KnowledgeAdapter) Name() string { return knowledgeSource }

func (a *KnowledgeAdapter) Search(ctx context.Context, query, locale string) ([]models.VendorCandidate, error) {
	market := locale
	if market == "" {
		market = "any"
	}

	out, err := a.llm.Complete(ctx, fmt.Sprintf(supplierSearchPrompt, query, market, a.count), a.maxTokens)
	if err != nil {
		log.Warn().Str("adapter", a.Name()).Err(err).Msg("supplier lookup failed")
		return []models.VendorCandidate{}, fmt.Errorf("%s: %w", a.Name(), err)
	}

	var suppliers []supplierJSON
	if err := DecodeJSON(out, &suppliers); err != nil {
		log.Warn().Str("adapter", a.Name()).Err(err).Msg("malformed supplier list")
		return []models.VendorCandidate{}, fmt.Errorf("%s: %w", a.Name(), err)
	}

	candidates := make([]models.VendorCandidate, 0, len(suppliers))
	for _, s := range suppliers {
		if strings.TrimSpace(s.CompanyName) == "" {
			continue
		}
		candidates = append(candidates, s.candidate())
	}
	return candidates, nil
}

func (s supplierJSON) candidate() models.VendorCandidate {
	return models.VendorCandidate{
		CompanyName:  strings.TrimSpace(s.CompanyName),
		Website:      nonEmpty(s.Website),
		Snippet:      s.Description,
		BusinessType: models.ParseBusinessType(s.BusinessType),
		Confidence:   clampConfidence(s.Confidence, 0.5),
		Volume: models.VolumeIndicators{
			IsBulkSupplier:        s.IsBulkSupplier,
			MinimumOrderQuantity:  s.MinimumOrderQuantity,
			ServesHospitals:       s.ServesHospitals,
			InternationalShipping: s.InternationalShipping,
		},
		Certifications: normalizeCerts(s.Certifications),
		Contact: models.ContactInfo{
			Email:   nonEmpty(s.Email),
			Phone:   nonEmpty(s.Phone),
			Address: nonEmpty(s.Address),
		},
		Source: knowledgeSource,
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func clampConfidence(c *float64, fallback float64) float64 {
	if c == nil || *c < 0 || *c > 1 {
		return fallback
	}
	return *c
}

func normalizeCerts(certs []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range certs {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
