package aggregator

import (
	"strings"

	"zvaintel/internal/pkg/terms"
)

const maxVariants = 5

// QueryVariants builds the search phrasings for a request, most specific
// first. It returns between one and five distinct queries.
func QueryVariants(req Request) []string {
	name := terms.Clean(req.MedicineName)
	base := name
	if dosage := terms.Clean(req.Dosage); dosage != "" {
		base += " " + dosage
	}

	country := terms.Clean(req.Country)
	withCountry := func(q string) string {
		if country == "" {
			return q
		}
		return q + " " + country
	}

	candidates := []string{
		base,
		withCountry(base + " wholesale supplier"),
		withCountry(name + " pharmaceutical distributor"),
		name + " bulk manufacturer GMP",
		terms.StripDiacritics(withCountry(base + " supplier")),
	}

	seen := map[string]bool{}
	variants := make([]string, 0, maxVariants)
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, q)
	}

	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}
	return variants
}
