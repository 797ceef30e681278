package classifier

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"zvaintel/internal/models"
)

// Signals are the volume hints found in free text such as search snippets.
type Signals struct {
	BusinessType          models.BusinessType
	EmployeeCount         *int
	MinimumOrderQuantity  *int
	NumberOfLocations     *int
	GeographicCoverage    string
	Certifications        []string
	ClientTypes           []string
	ServesHospitals       bool
	InternationalShipping bool
	IsBulkSupplier        bool
	Emails                []string
	Phones                []string
}

var (
	reEmployees = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,3}(?:[,.]\d{3})+|\d+)\s*\+?\s*(?:employees|staff|people|darbinieki|darbinieku)`),
		regexp.MustCompile(`(?i)(?:employees|staff|darbinieki)\s*[:\-]?\s*(\d{1,3}(?:[,.]\d{3})+|\d+)`),
	}
	reMOQ        = regexp.MustCompile(`(?i)(?:moq|minimum order(?: quantity)?|min\.? order|minimālais pasūtījums)\s*(?:is|of|:)?\s*(\d[\d,.]*)`)
	reLocations  = regexp.MustCompile(`(?i)(\d+)\s*(?:locations|branches|warehouses|offices|distribution centers|filiāles|noliktavas)`)
	reCerts      = regexp.MustCompile(`(?i)\b(GMP|GDP|ISO\s?9001|ISO\s?13485|ISO\s?14001|CE)\b`)
	reEmail      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	rePhone      = regexp.MustCompile(`\+\d[\d\s\-]{7,}\d`)
	reDigitsOnly = regexp.MustCompile(`[^\d]`)
)

// keyword tables, checked in order
var businessKeywords = []struct {
	words []string
	kind  models.BusinessType
}{
	{[]string{"wholesale", "wholesaler", "lieltirgotava", "vairumtirdzniecība", "bulk supplier"}, models.BusinessWholesaler},
	{[]string{"distributor", "distribution", "izplatītājs", "importer"}, models.BusinessDistributor},
	{[]string{"manufacturer", "manufacturing", "ražotājs", "producer"}, models.BusinessManufacturer},
	{[]string{"pharmacy", "aptieka", "retail", "online shop", "e-shop"}, models.BusinessRetailer},
}

var coverageKeywords = []struct {
	words    []string
	coverage string
}{
	{[]string{"international", "worldwide", "global", "export", "across europe", "eu-wide"}, "International"},
	{[]string{"baltic", "regional", "scandinavia", "nordic"}, "Regional"},
	{[]string{"nationwide", "national", "all over latvia", "visā latvijā"}, "National"},
	{[]string{"local", "vietējais"}, "Local"},
}

var clientKeywords = []struct {
	words  []string
	client string
}{
	{[]string{"hospital", "slimnīc"}, "Hospitals"},
	{[]string{"clinic", "klīnik"}, "Clinics"},
	{[]string{"pharmacies", "aptiekām", "aptiekas"}, "Pharmacies"},
}

// InferSignals scans text for volume, reach and contact hints.
func InferSignals(text string) Signals {
	lower := strings.ToLower(text)
	s := Signals{BusinessType: models.BusinessUnknown}

	for _, k := range businessKeywords {
		if containsAny(lower, k.words...) {
			s.BusinessType = k.kind
			break
		}
	}

	for _, re := range reEmployees {
		if m := re.FindStringSubmatch(text); m != nil {
			s.EmployeeCount = parseCount(m[1])
			if s.EmployeeCount != nil {
				break
			}
		}
	}
	if m := reMOQ.FindStringSubmatch(text); m != nil {
		s.MinimumOrderQuantity = parseCount(m[1])
	}
	if m := reLocations.FindStringSubmatch(text); m != nil {
		s.NumberOfLocations = parseCount(m[1])
	}

	for _, k := range coverageKeywords {
		if containsAny(lower, k.words...) {
			s.GeographicCoverage = k.coverage
			break
		}
	}
	s.InternationalShipping = s.GeographicCoverage == "International" || containsAny(lower, "ship worldwide", "international shipping", "we export")

	for _, k := range clientKeywords {
		if containsAny(lower, k.words...) {
			s.ClientTypes = append(s.ClientTypes, k.client)
		}
	}
	s.ServesHospitals = containsAny(lower, "hospital", "slimnīc")

	s.Certifications = Certifications(text)

	s.IsBulkSupplier = s.BusinessType == models.BusinessWholesaler ||
		containsAny(lower, "bulk", "large volume", "vairumā") ||
		(s.MinimumOrderQuantity != nil && *s.MinimumOrderQuantity >= 1000)

	s.Emails = uniqueMatches(reEmail, text)
	s.Phones = uniqueMatches(rePhone, text)
	return s
}

// Certifications returns the distinct certification names in text, sorted.
func Certifications(text string) []string {
	seen := map[string]bool{}
	for _, m := range reCerts.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(m[1])
		if strings.HasPrefix(name, "ISO") {
			name = "ISO " + strings.TrimSpace(strings.TrimPrefix(name, "ISO"))
		}
		seen[name] = true
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func parseCount(raw string) *int {
	digits := reDigitsOnly.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range re.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
