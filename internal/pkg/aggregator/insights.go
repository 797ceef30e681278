package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"zvaintel/internal/models"
)

type DataQuality string

const (
	QualityHigh   DataQuality = "High"
	QualityMedium DataQuality = "Medium"
	QualityLow    DataQuality = "Low"
)

// RateQuality grades a result by how many candidates it found and how many
// distinct sources contributed.
func RateQuality(candidates, sources int) DataQuality {
	switch {
	case candidates >= 15 && sources >= 3:
		return QualityHigh
	case candidates >= 8 && sources >= 2:
		return QualityMedium
	}
	return QualityLow
}

const topInsightCandidates = 3

// Insights writes a short plain-text summary of the merged candidates.
func Insights(query string, candidates []models.VendorCandidate, sources []string) string {
	if len(candidates) == 0 {
		return fmt.Sprintf("No suppliers found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d potential suppliers for %q", len(candidates), query)
	if len(sources) > 0 {
		fmt.Fprintf(&b, " from %d sources (%s)", len(sources), strings.Join(sources, ", "))
	}
	b.WriteString(".")

	types := map[models.BusinessType]int{}
	var bulk, hospitals, international int
	for _, c := range candidates {
		if c.BusinessType != "" && c.BusinessType != models.BusinessUnknown {
			types[c.BusinessType]++
		}
		if c.Volume.IsBulkSupplier {
			bulk++
		}
		if c.Volume.ServesHospitals {
			hospitals++
		}
		if c.Volume.InternationalShipping {
			international++
		}
	}

	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for t := range types {
			names = append(names, string(t))
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, fmt.Sprintf("%d %s", types[models.BusinessType(n)], strings.ToLower(n)))
		}
		fmt.Fprintf(&b, " Business types: %s.", strings.Join(parts, ", "))
	}

	if bulk > 0 {
		fmt.Fprintf(&b, " %d appear to sell in bulk.", bulk)
	}
	if hospitals > 0 {
		fmt.Fprintf(&b, " %d mention hospital supply.", hospitals)
	}
	if international > 0 {
		fmt.Fprintf(&b, " %d ship internationally.", international)
	}

	top := candidates[:min(topInsightCandidates, len(candidates))]
	names := make([]string, 0, len(top))
	for _, c := range top {
		names = append(names, fmt.Sprintf("%s (%.2f)", c.CompanyName, c.Confidence))
	}
	fmt.Fprintf(&b, " Top candidates: %s.", strings.Join(names, ", "))

	return b.String()
}
