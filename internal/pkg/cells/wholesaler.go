package cells

import (
	"regexp"
	"strings"

	"zvaintel/internal/models"
)

type WholesalerInfo struct {
	Name    string
	Address string
	License string
}

var licenseRules = []Rule{
	{Name: "L5", Pattern: regexp.MustCompile(`(?:^|[^\w])(L\d{5})(?:[^\w]|$)`), Group: 1},
	{Name: "LPN", Pattern: regexp.MustCompile(`(?:^|[^\w])(LPN-\d+/\d+)(?:[^\w/]|$)`), Group: 1},
	{Name: "L3+", Pattern: regexp.MustCompile(`(?:^|[^\w])(L\d{3,})(?:[^\w]|$)`), Group: 1},
}

// leftovers of "Licences Nr. L00031" once the number is cut out
var reLicenseLabel = regexp.MustCompile(`(?i)^(?:speciālās atļaujas|licences?|license|lic\.?)?\s*(?:nr\.?|no\.?)?\s*:?$`)

// ParseWholesalerCell splits "<company>, <address...>, <license>".
func ParseWholesalerCell(raw string) WholesalerInfo {
	s := flatten(raw, ", ")
	info := WholesalerInfo{
		Name:    models.NotSpecified,
		Address: models.NotSpecified,
		License: models.NotSpecified,
	}

	if m, ok := firstMatch(licenseRules, s, nil); ok {
		info.License = s[m.start:m.end]
		s = s[:m.start] + s[m.end:]
	}

	var parts []string
	for _, p := range splitOutsideQuotes(s, ',') {
		p = strings.TrimSpace(p)
		if p == "" || reLicenseLabel.MatchString(p) {
			continue
		}
		parts = append(parts, p)
	}

	if len(parts) == 0 {
		return info
	}
	if name := stripQuotes(parts[0]); name != "" {
		info.Name = name
	}
	if len(parts) > 1 {
		info.Address = strings.Join(parts[1:], ", ")
	}
	return info
}

// splitOutsideQuotes splits on sep except inside quoted company names.
func splitOutsideQuotes(s string, sep rune) []string {
	var (
		parts    []string
		current  strings.Builder
		straight bool
		depth    int
	)

	for _, r := range s {
		switch r {
		case '"':
			straight = !straight
		case '„', '«':
			depth++
		case '”', '»':
			if depth > 0 {
				depth--
			}
		case '“':
			if depth > 0 {
				depth--
			} else {
				depth++
			}
		}

		if r == sep && !straight && depth == 0 {
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	return append(parts, current.String())
}
