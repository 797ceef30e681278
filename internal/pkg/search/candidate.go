package search

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/classifier"
)

var reTitleSeparator = regexp.MustCompile(`\s+[|\-:\x{2013}\x{2014}]\s+`)

// CandidateFromHit builds a candidate from a search hit. Earlier positions
// and richer snippets get a higher confidence.
func CandidateFromHit(h Hit, source string, position int) models.VendorCandidate {
	sig := classifier.InferSignals(h.Title + ". " + h.Snippet)

	c := models.VendorCandidate{
		CompanyName:  companyName(h.Title, h.URL),
		Snippet:      strings.TrimSpace(h.Snippet),
		BusinessType: sig.BusinessType,
		Confidence:   hitConfidence(position, sig),
		Volume: models.VolumeIndicators{
			IsBulkSupplier:        sig.IsBulkSupplier,
			MinimumOrderQuantity:  sig.MinimumOrderQuantity,
			ServesHospitals:       sig.ServesHospitals,
			InternationalShipping: sig.InternationalShipping,
		},
		Certifications: sig.Certifications,
		Source:         source,
	}

	if root := siteRoot(h.URL); root != "" {
		c.Website = &root
	}
	if len(sig.Emails) > 0 {
		c.Contact.Email = &sig.Emails[0]
	}
	if len(sig.Phones) > 0 {
		c.Contact.Phone = &sig.Phones[0]
	}
	return c
}

func companyName(title, rawURL string) string {
	name := strings.TrimSpace(reTitleSeparator.Split(title, 2)[0])
	if name != "" {
		return name
	}
	return models.NormalizeDomain(rawURL)
}

func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func hitConfidence(position int, sig classifier.Signals) float64 {
	c := math.Max(0.3, 0.6-0.03*float64(position))
	if sig.BusinessType != models.BusinessUnknown {
		c += 0.1
	}
	if len(sig.Certifications) > 0 {
		c += 0.05
	}
	if sig.IsBulkSupplier {
		c += 0.05
	}
	return math.Round(math.Min(c, 0.95)*100) / 100
}
