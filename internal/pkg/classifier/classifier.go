package classifier

import (
	"strings"

	"zvaintel/internal/models"
)

// Score adds up the volume points for a vendor. It reads nothing but v.
func Score(v models.VendorIntelligence) int {
	score := 0

	if moq := v.MinimumOrderQuantity; moq != nil {
		switch {
		case *moq >= 5000:
			score += 5
		case *moq >= 1000:
			score += 3
		case *moq < 100:
			score -= 2
		}
	}

	if n := v.EmployeeCount; n != nil {
		switch {
		case *n > 100:
			score += 4
		case *n > 50:
			score += 2
		case *n < 10:
			score -= 2
		}
	}

	if n := v.NumberOfLocations; n != nil {
		switch {
		case *n > 5:
			score += 4
		case *n > 1:
			score += 2
		}
	}

	bt := strings.ToLower(v.BusinessType)
	switch {
	case containsAny(bt, "wholesale", "lieltirgotav"):
		score += 3
	case containsAny(bt, "distributor", "distribution", "manufacturer", "izplatītāj", "ražotāj"):
		score += 2
	}
	if containsAny(bt, "retail", "pharmacy", "aptiek") {
		score -= 2
	}

	coverage := strings.ToLower(v.GeographicCoverage)
	switch {
	case strings.Contains(coverage, "international"):
		score += 2
	case containsAny(coverage, "regional", "national"):
		score += 1
	case strings.Contains(coverage, "local"):
		score -= 1
	}

	certs := distinct(v.Certifications)
	if len(certs) >= 2 {
		score += 2
	}
	if hasCert(certs, "GDP") {
		score++
	}
	if hasCert(certs, "GMP") {
		score++
	}

	clients := strings.ToLower(strings.Join(v.ClientTypes, " "))
	if containsAny(clients, "hospital", "slimnīc") {
		score += 2
	}
	if containsAny(clients, "clinic", "klīnik") {
		score++
	}

	return score
}

func Label(score int) models.SupplierClassification {
	switch {
	case score >= 5:
		return models.ClassBulkSupplier
	case score >= 2:
		return models.ClassMidSizeDistributor
	default:
		return models.ClassSmallRetailer
	}
}

// Confidence is the share of the eight research fields that are populated.
func Confidence(v models.VendorIntelligence) float64 {
	bt := strings.TrimSpace(v.BusinessType)
	checks := []bool{
		bt != "" && !strings.EqualFold(bt, string(models.BusinessUnknown)),
		v.EmployeeCount != nil,
		v.MinimumOrderQuantity != nil,
		v.NumberOfLocations != nil,
		strings.TrimSpace(v.GeographicCoverage) != "",
		len(distinct(v.Certifications)) > 0,
		len(distinct(v.ClientTypes)) > 0,
		strings.TrimSpace(v.OfficialWebsite) != "",
	}

	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(checks))
}

// Classify fills the classification fields of v in place.
func Classify(v *models.VendorIntelligence) {
	v.ClassificationScore = Score(*v)
	v.SupplierClassification = Label(v.ClassificationScore)
	v.ConfidenceScore = Confidence(*v)
	if size := CompanySize(v.EmployeeCount); size != "" {
		v.CompanySize = size
	}
}

func CompanySize(employees *int) string {
	if employees == nil {
		return ""
	}
	switch n := *employees; {
	case n < 10:
		return "Micro"
	case n < 50:
		return "Small"
	case n < 250:
		return "Medium"
	default:
		return "Large"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func distinct(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		key := strings.ToUpper(strings.TrimSpace(it))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func hasCert(certs []string, name string) bool {
	for _, c := range certs {
		if strings.Contains(strings.ToUpper(c), name) {
			return true
		}
	}
	return false
}
