package terms

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	quotes   = strings.NewReplacer(`"`, "", "'", "", "«", "", "»", "", "„", "", "“", "", "”", "", "‚", "", "‘", "", "’", "", "`", "")
)

// Normalizer maps registry terminology to canonical English. Every method is
// total: unknown input comes back trimmed, never as an error.
type Normalizer struct {
	countries   lookup
	dosageForms lookup
	procedures  lookup
	legalPrefix *regexp.Regexp
	legalSuffix *regexp.Regexp
}

func New(t Tables) *Normalizer {
	n := &Normalizer{
		countries:   newLookup(t.Countries),
		dosageForms: newLookup(t.DosageForms),
		procedures:  newLookup(t.Procedures),
	}

	forms := make([]string, 0, len(t.LegalForms))
	for _, f := range t.LegalForms {
		if f = strings.TrimSpace(f); f != "" {
			forms = append(forms, regexp.QuoteMeta(f))
		}
	}
	// longest first so "Ltd." wins over "Ltd"
	sort.Slice(forms, func(i, j int) bool { return len(forms[i]) > len(forms[j]) })

	if len(forms) > 0 {
		alt := strings.Join(forms, "|")
		n.legalPrefix = regexp.MustCompile(`(?i)^(?:` + alt + `)[\s,]+`)
		n.legalSuffix = regexp.MustCompile(`(?i)[\s,]+(?:` + alt + `)$`)
	}
	return n
}

func (n *Normalizer) Country(s string) string    { return n.countries.resolve(s) }
func (n *Normalizer) DosageForm(s string) string { return n.dosageForms.resolve(s) }
func (n *Normalizer) Procedure(s string) string  { return n.procedures.resolve(s) }

// CompanyName strips quotes and legal-entity forms until nothing changes.
// A name that is nothing but a legal form is kept as is.
func (n *Normalizer) CompanyName(s string) string {
	s = Clean(s)
	for {
		next := s
		if n.legalPrefix != nil {
			next = n.legalPrefix.ReplaceAllString(next, "")
			next = n.legalSuffix.ReplaceAllString(next, "")
		}
		next = strings.Trim(next, " ,.;-")
		if next == "" || next == s {
			return s
		}
		s = next
	}
}

// Clean applies NFC, drops quote characters and collapses whitespace.
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = quotes.Replace(s)
	return CollapseSpaces(s)
}

func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// StripDiacritics turns "Zāļu" into "Zalu".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

type lookup struct {
	exact  map[string]string
	folded map[string]string
}

func newLookup(m map[string]string) lookup {
	l := lookup{exact: make(map[string]string, len(m)), folded: make(map[string]string, len(m))}
	for k, v := range m {
		k = CollapseSpaces(norm.NFC.String(k))
		v = CollapseSpaces(norm.NFC.String(v))
		l.exact[k] = v
		l.folded[strings.ToLower(k)] = v
	}
	return l
}

func (l lookup) get(s string) (string, bool) {
	if v, ok := l.exact[s]; ok {
		return v, true
	}
	v, ok := l.folded[strings.ToLower(s)]
	return v, ok
}

// resolve follows the table until the term maps to itself or to nothing, so
// resolving an already canonical term is a no-op.
func (l lookup) resolve(s string) string {
	s = CollapseSpaces(norm.NFC.String(s))
	seen := map[string]bool{}
	for !seen[s] {
		seen[s] = true
		v, ok := l.get(s)
		if !ok || v == s {
			return s
		}
		s = v
	}
	return s
}
