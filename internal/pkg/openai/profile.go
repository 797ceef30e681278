package openai

import (
	"context"
	"fmt"
	"strings"
)

// VendorProfile is the model's reading of the research evidence.
type VendorProfile struct {
	BusinessType         string   `json:"business_type"`
	EmployeeCount        *int     `json:"employee_count"`
	MinimumOrderQuantity *int     `json:"minimum_order_quantity"`
	NumberOfLocations    *int     `json:"number_of_locations"`
	GeographicCoverage   string   `json:"geographic_coverage"`
	Certifications       []string `json:"certifications"`
	ClientTypes          []string `json:"client_types"`
	OfficialWebsite      string   `json:"official_website"`
}

type Profiler struct {
	llm       Completer
	maxTokens int
}

func NewProfiler(llm Completer) *Profiler {
	return &Profiler{llm: llm, maxTokens: 1000}
}

func (p *Profiler) Profile(ctx context.Context, vendor, country, website string, evidence []string) (*VendorProfile, error) {
	if website == "" {
		website = "unknown"
	}
	if country == "" {
		country = "unknown"
	}

	ev := "none"
	if len(evidence) > 0 {
		ev = "- " + strings.Join(evidence, "\n- ")
	}

	out, err := p.llm.Complete(ctx, fmt.Sprintf(vendorProfilePrompt, vendor, country, website, ev), p.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", vendor, err)
	}

	var profile VendorProfile
	if err := DecodeJSON(out, &profile); err != nil {
		return nil, fmt.Errorf("profile %s: %w", vendor, err)
	}
	profile.Certifications = normalizeCerts(profile.Certifications)
	return &profile, nil
}
