package cells

import (
	"errors"
	"regexp"
	"strings"

	"zvaintel/internal/models"
)

var ErrNoRegistrationNumber = errors.New("registration number not found")

type DrugInfo struct {
	Name               string
	DosageForm         string
	RegistrationNumber string
	// Rule names the dosage-form rule that produced the split.
	Rule string
}

var registrationRules = []Rule{
	{Name: "trailing", Pattern: regexp.MustCompile(`(?:^|\s)(N\d{6}-\d{2})$`), Group: 1},
	{Name: "anywhere", Pattern: regexp.MustCompile(`(?:^|[^\w])(N\d{6}-\d{2})(?:[^\w-]|$)`), Group: 1},
}

// DosageFormKeywords is ordered most specific first.
var DosageFormKeywords = []string{
	"apvalkotās tabletes",
	"ilgstošās darbības tabletes",
	"cietās kapsulas",
	"mīkstās kapsulas",
	"šķīdums injekcijām",
	"pulveris injekciju šķīduma pagatavošanai",
	"apvalkotā tablete",
	"film-coated tablets",
	"film-coated tablet",
	"tabletes",
	"tablete",
	"tablets",
	"tablet",
	"kapsulas",
	"capsules",
	"capsule",
	"šķīdums",
	"solutions",
	"solution",
	"pulveris",
	"powder",
	"gels",
	"gel",
	"aerosols",
	"aerosol",
	"krēms",
	"cream",
	"ziede",
	"ointment",
}

var dosageRules = func() []Rule {
	rules := make([]Rule, 0, len(DosageFormKeywords))
	for _, k := range DosageFormKeywords {
		rules = append(rules, keyword(k))
	}
	return rules
}()

var concentrationRules = []Rule{
	{Name: "concentration", Pattern: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*(?:mg|ml|g|iu|%))(?:[^\p{L}]|$)`), Group: 1},
}

// ParseDrugCell splits "<name> <dosage form> <registration number>". It always
// returns a best-effort DrugInfo; the error only reports a missing number.
func ParseDrugCell(raw string) (DrugInfo, error) {
	s := flatten(raw, " ")
	info := DrugInfo{}

	if m, ok := firstMatch(registrationRules, s, nil); ok {
		info.RegistrationNumber = s[m.start:m.end]
		s = strings.TrimSpace(s[:m.start] + " " + s[m.end:])
		s = reSpaces.ReplaceAllString(s, " ")
	}

	// the name must not be empty, so a form at position 0 does not count
	notLeading := func(start, _ int) bool { return strings.TrimSpace(s[:start]) != "" }

	if m, ok := firstMatch(dosageRules, s, notLeading); ok {
		info.Name = trimName(s[:m.start])
		info.DosageForm = strings.TrimSpace(s[m.start:])
		info.Rule = m.rule.Name
	} else {
		info.Name, info.DosageForm, info.Rule = splitAtConcentration(s)
	}

	if info.RegistrationNumber == "" {
		return info, ErrNoRegistrationNumber
	}
	return info, nil
}

// splitAtConcentration splits at the last space before the last strength
// token ("Aspirin Cardio 100mg" -> "Aspirin Cardio", "100mg").
func splitAtConcentration(s string) (name, form, rule string) {
	locs := concentrationRules[0].Pattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) > 0 {
		start := locs[len(locs)-1][2]
		if i := strings.LastIndex(s[:start], " "); i > 0 {
			return trimName(s[:i]), strings.TrimSpace(s[i+1:]), concentrationRules[0].Name
		}
	}
	return trimName(s), models.NotSpecified, "fallback"
}

func trimName(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",;")
}
