package aggregator

import (
	"sort"
	"strings"

	"zvaintel/internal/models"
)

// Merge folds candidates sharing a dedup key into one. The higher confidence
// candidate wins; the other only fills fields the winner left blank.
// Certifications are unioned. Output is sorted by confidence, then key.
func Merge(candidates []models.VendorCandidate) []models.VendorCandidate {
	byKey := make(map[string]models.VendorCandidate, len(candidates))
	for _, c := range candidates {
		key := c.DedupKey()
		if key == "" {
			continue
		}
		if cur, ok := byKey[key]; ok {
			byKey[key] = combine(cur, c)
		} else {
			byKey[key] = clone(c)
		}
	}

	merged := make([]models.VendorCandidate, 0, len(byKey))
	for _, c := range byKey {
		merged = append(merged, c)
	}
	sortCandidates(merged)
	return merged
}

func sortCandidates(cs []models.VendorCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Confidence != cs[j].Confidence {
			return cs[i].Confidence > cs[j].Confidence
		}
		return cs[i].DedupKey() < cs[j].DedupKey()
	})
}

func combine(a, b models.VendorCandidate) models.VendorCandidate {
	hi, lo := a, b
	if b.Confidence > a.Confidence {
		hi, lo = b, a
	}
	out := clone(hi)

	if out.CompanyName == "" {
		out.CompanyName = lo.CompanyName
	}
	if out.Website == nil {
		out.Website = lo.Website
	}
	if out.Snippet == "" {
		out.Snippet = lo.Snippet
	}
	if out.BusinessType == "" || out.BusinessType == models.BusinessUnknown {
		if lo.BusinessType != "" {
			out.BusinessType = lo.BusinessType
		}
	}

	out.Volume.IsBulkSupplier = out.Volume.IsBulkSupplier || lo.Volume.IsBulkSupplier
	out.Volume.ServesHospitals = out.Volume.ServesHospitals || lo.Volume.ServesHospitals
	out.Volume.InternationalShipping = out.Volume.InternationalShipping || lo.Volume.InternationalShipping
	if out.Volume.MinimumOrderQuantity == nil {
		out.Volume.MinimumOrderQuantity = lo.Volume.MinimumOrderQuantity
	}

	if out.Contact.Email == nil {
		out.Contact.Email = lo.Contact.Email
	}
	if out.Contact.Phone == nil {
		out.Contact.Phone = lo.Contact.Phone
	}
	if out.Contact.Address == nil {
		out.Contact.Address = lo.Contact.Address
	}

	out.Certifications = unionCerts(out.Certifications, lo.Certifications)
	return out
}

func clone(c models.VendorCandidate) models.VendorCandidate {
	c.Certifications = unionCerts(c.Certifications)
	return c
}

func unionCerts(sets ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, set := range sets {
		for _, c := range set {
			c = strings.TrimSpace(c)
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
