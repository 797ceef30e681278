package models

import (
	"net/url"
	"strings"
)

type BusinessType string

const (
	BusinessManufacturer BusinessType = "Manufacturer"
	BusinessDistributor  BusinessType = "Distributor"
	BusinessWholesaler   BusinessType = "Wholesaler"
	BusinessRetailer     BusinessType = "Retailer"
	BusinessUnknown      BusinessType = "Unknown"
)

// ParseBusinessType maps free text to a BusinessType, Unknown when nothing fits.
func ParseBusinessType(s string) BusinessType {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return BusinessUnknown
	case strings.Contains(s, "wholesal"):
		return BusinessWholesaler
	case strings.Contains(s, "distribut"):
		return BusinessDistributor
	case strings.Contains(s, "manufactur"):
		return BusinessManufacturer
	case strings.Contains(s, "retail"), strings.Contains(s, "pharmacy"):
		return BusinessRetailer
	}
	return BusinessUnknown
}

type VolumeIndicators struct {
	IsBulkSupplier        bool `json:"is_bulk_supplier"`
	MinimumOrderQuantity  *int `json:"minimum_order_quantity,omitempty"`
	ServesHospitals       bool `json:"serves_hospitals"`
	InternationalShipping bool `json:"international_shipping"`
}

type ContactInfo struct {
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

type VendorCandidate struct {
	CompanyName    string           `json:"company_name"`
	Website        *string          `json:"website,omitempty"`
	Snippet        string           `json:"snippet"`
	BusinessType   BusinessType     `json:"business_type"`
	Confidence     float64          `json:"confidence"`
	Volume         VolumeIndicators `json:"volume_indicators"`
	Certifications []string         `json:"certifications"`
	Contact        ContactInfo      `json:"contact_info"`
	Source         string           `json:"source"`
}

// DedupKey identifies the same company across sources: the website domain
// when there is one, otherwise the lower-cased company name.
func (c VendorCandidate) DedupKey() string {
	if c.Website != nil {
		if domain := NormalizeDomain(*c.Website); domain != "" {
			return domain
		}
	}
	return strings.ToLower(strings.TrimSpace(c.CompanyName))
}

// NormalizeDomain returns the lower-case host of a URL without a leading "www.".
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// CandidateEnrichment is what the enrichment step knows about one candidate.
// Nil fields are unknown and leave the candidate untouched.
type CandidateEnrichment struct {
	BusinessType          BusinessType `json:"business_type"`
	ServesHospitals       *bool        `json:"serves_hospitals"`
	InternationalShipping *bool        `json:"international_shipping"`
	Certifications        []string     `json:"certifications"`
	Confidence            *float64     `json:"confidence"`
}
