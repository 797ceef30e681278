package cells

import (
	"regexp"
	"strings"
)

// Rule is one entry of an ordered heuristic table. The first rule whose
// pattern matches wins; Group selects the capture group that is the token.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
}

type match struct {
	rule       Rule
	start, end int
}

// firstMatch runs the table in order. accept may reject a location so the
// next rule gets a chance.
func firstMatch(rules []Rule, s string, accept func(start, end int) bool) (match, bool) {
	for _, r := range rules {
		locs := r.Pattern.FindAllStringSubmatchIndex(s, -1)
		for _, loc := range locs {
			start, end := loc[2*r.Group], loc[2*r.Group+1]
			if start < 0 {
				continue
			}
			if accept == nil || accept(start, end) {
				return match{rule: r, start: start, end: end}, true
			}
		}
	}
	return match{}, false
}

// keyword builds a case-insensitive rule that matches a whole word or phrase.
// \b is ASCII only, so letter boundaries are spelled out for Latvian text.
func keyword(word string) Rule {
	return Rule{
		Name:    word,
		Pattern: regexp.MustCompile(`(?i)(?:^|[^\p{L}])(` + regexp.QuoteMeta(word) + `)(?:[^\p{L}]|$)`),
		Group:   1,
	}
}

var (
	reSpaces   = regexp.MustCompile(`[ \t\x{00a0}]+`)
	reNewlines = regexp.MustCompile(`\s*[\r\n]+\s*`)
	quotes     = strings.NewReplacer(`"`, "", "«", "", "»", "", "„", "", "“", "", "”", "")
)

// flatten turns a multi-line cell into one line, newlines becoming sep.
func flatten(raw, sep string) string {
	s := strings.TrimSpace(raw)
	s = reNewlines.ReplaceAllString(s, sep)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func stripQuotes(s string) string {
	return strings.TrimSpace(quotes.Replace(s))
}
