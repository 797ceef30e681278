package cells

import (
	"regexp"
	"strings"

	"zvaintel/internal/models"
)

type ManufacturerInfo struct {
	Name    string
	Country string
}

var reTrailingParens = regexp.MustCompile(`^(.*\S)\s*\(([^()]+)\)$`)

// ParseProductCell reads the manufacturer cell, "<name>, <country>" or the
// same split over two lines. The country is always the last part.
func ParseProductCell(raw string) ManufacturerInfo {
	info := ManufacturerInfo{Name: "Unknown Manufacturer", Country: models.NotSpecified}

	var parts []string
	for _, p := range splitOutsideQuotes(flatten(raw, ", "), ',') {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return info
	case 1:
		if m := reTrailingParens.FindStringSubmatch(parts[0]); m != nil {
			info.Name, info.Country = stripQuotes(m[1]), strings.TrimSpace(m[2])
			return info
		}
		info.Name = stripQuotes(parts[0])
	default:
		info.Name = stripQuotes(strings.Join(parts[:len(parts)-1], ", "))
		info.Country = parts[len(parts)-1]
	}
	return info
}

// ParseIngredientCell joins multi-line substance lists with ", ".
func ParseIngredientCell(raw string) string {
	if s := flatten(raw, ", "); s != "" {
		return s
	}
	return models.NotSpecified
}

var atcRules = []Rule{
	{Name: "atc", Pattern: regexp.MustCompile(`([A-Z]\d{2}[A-Z]{0,2}\d{0,2})`), Group: 1},
}

// ParseATCCell returns the first ATC code in the cell, upper-cased without
// inner spaces. Placeholders and free text give "".
func ParseATCCell(raw string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if m, ok := firstMatch(atcRules, s, nil); ok {
		return s[m.start:m.end]
	}
	return ""
}

// ParseTextCell is the generic single-value cell: flattened, or "Not specified".
func ParseTextCell(raw string) string {
	if s := flatten(raw, " "); s != "" {
		return s
	}
	return models.NotSpecified
}
