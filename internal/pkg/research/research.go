package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/classifier"
	"zvaintel/internal/pkg/openai"
	"zvaintel/internal/pkg/search"
	"zvaintel/internal/pkg/terms"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidConfig = errors.New("invalid research config")
	ErrEmptyName     = errors.New("vendor name is required")
)

const workers = 3

// IntelligenceStore persists research results. GetIntelligence returns nil
// without an error when the vendor was never researched.
type IntelligenceStore interface {
	GetIntelligence(ctx context.Context, vendorName string) (*models.VendorIntelligence, error)
	UpsertIntelligence(ctx context.Context, v *models.VendorIntelligence) error
}

type Profiler interface {
	Profile(ctx context.Context, vendor, country, website string, evidence []string) (*openai.VendorProfile, error)
}

type Service struct {
	store    IntelligenceStore
	adapters []search.Adapter
	profiler Profiler
}

// New builds a research Service. profiler may be nil.
func New(store IntelligenceStore, adapters []search.Adapter, profiler Profiler) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidConfig)
	}
	if len(adapters) == 0 && profiler == nil {
		return nil, fmt.Errorf("%w: nothing to research with", ErrInvalidConfig)
	}
	return &Service{store: store, adapters: adapters, profiler: profiler}, nil
}

// Research returns the vendor's intelligence, reusing a completed result
// younger than 30 days. A run that gathered no evidence at all is stored as
// Failed with the reason.
func (s *Service) Research(ctx context.Context, name, country, knownWebsite string) (*models.VendorIntelligence, []string) {
	name = terms.Clean(name)
	if name == "" {
		return nil, []string{ErrEmptyName.Error()}
	}

	var errs []string
	existing, err := s.store.GetIntelligence(ctx, name)
	if err != nil {
		errs = append(errs, fmt.Sprintf("load intelligence: %v", err))
	}
	if existing.IsFresh(time.Now()) {
		log.Debug().Str("vendor", name).Msg("reusing fresh research result")
		return existing, errs
	}

	v := existing
	if v == nil {
		v = &models.VendorIntelligence{VendorName: name}
	}
	v.ResearchStatus = models.ResearchInProgress
	if err := s.store.UpsertIntelligence(ctx, v); err != nil {
		errs = append(errs, fmt.Sprintf("save intelligence: %v", err))
	}

	candidates, searchErrs := s.gather(ctx, name, country)
	errs = append(errs, searchErrs...)

	evidence := evidenceFor(name, candidates)
	website := strings.TrimSpace(knownWebsite)
	if website == "" {
		website = websiteFor(name, candidates)
	}

	fill(v, classifier.InferSignals(strings.Join(evidence, "\n")), website)

	profiled := false
	if s.profiler != nil {
		p, err := s.profiler.Profile(ctx, name, country, website, evidence)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			fillProfile(v, p)
			profiled = true
		}
	}

	now := time.Now()
	v.ResearchedAt = &now
	if len(evidence) == 0 && !profiled {
		v.ResearchStatus = models.ResearchFailed
		v.LastError = "no evidence found"
		if len(errs) > 0 {
			v.LastError = strings.Join(errs, "; ")
		}
	} else {
		v.ResearchStatus = models.ResearchCompleted
		v.LastError = ""
	}
	classifier.Classify(v)

	if err := s.store.UpsertIntelligence(ctx, v); err != nil {
		errs = append(errs, fmt.Sprintf("save intelligence: %v", err))
	}

	log.Info().
		Str("vendor", name).
		Str("status", string(v.ResearchStatus)).
		Str("classification", string(v.SupplierClassification)).
		Int("score", v.ClassificationScore).
		Int("evidence", len(evidence)).
		Msg("vendor research done")

	return v, errs
}

func queries(name, country string) []string {
	return []string{
		strings.TrimSpace(name + " " + country),
		name + " pharmaceutical wholesale",
		name + " employees certifications GDP GMP",
	}
}

func (s *Service) gather(ctx context.Context, name, country string) ([]models.VendorCandidate, []string) {
	type unit struct {
		query   string
		adapter search.Adapter
	}

	var units []unit
	for _, q := range queries(name, country) {
		for _, a := range s.adapters {
			units = append(units, unit{q, a})
		}
	}

	found := make([][]models.VendorCandidate, len(units))
	failures := make([]error, len(units))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, u := range units {
		g.Go(func() error {
			found[i], failures[i] = u.adapter.Search(ctx, u.query, country)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.VendorCandidate
	var errs []string
	for i := range units {
		if failures[i] != nil {
			errs = append(errs, failures[i].Error())
		}
		all = append(all, found[i]...)
	}
	return all, errs
}

// evidenceFor keeps the distinct snippets of candidates that look like the
// vendor itself.
func evidenceFor(name string, candidates []models.VendorCandidate) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range candidates {
		if !sameVendor(name, c.CompanyName) && !strings.Contains(strings.ToLower(c.Snippet), strings.ToLower(name)) {
			continue
		}
		snippet := terms.CollapseSpaces(c.Snippet)
		if snippet == "" || seen[snippet] {
			continue
		}
		seen[snippet] = true
		out = append(out, snippet)
	}
	return out
}

func websiteFor(name string, candidates []models.VendorCandidate) string {
	sorted := make([]models.VendorCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })

	for _, c := range sorted {
		if c.Website != nil && sameVendor(name, c.CompanyName) {
			return *c.Website
		}
	}
	return ""
}

func sameVendor(name, candidate string) bool {
	a := strings.ToLower(terms.StripDiacritics(name))
	b := strings.ToLower(terms.StripDiacritics(candidate))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func fill(v *models.VendorIntelligence, sig classifier.Signals, website string) {
	if sig.BusinessType != models.BusinessUnknown {
		v.BusinessType = string(sig.BusinessType)
	}
	if sig.EmployeeCount != nil {
		v.EmployeeCount = sig.EmployeeCount
	}
	if sig.MinimumOrderQuantity != nil {
		v.MinimumOrderQuantity = sig.MinimumOrderQuantity
	}
	if sig.NumberOfLocations != nil {
		v.NumberOfLocations = sig.NumberOfLocations
	}
	if sig.GeographicCoverage != "" {
		v.GeographicCoverage = sig.GeographicCoverage
	}
	v.Certifications = union(v.Certifications, sig.Certifications)
	v.ClientTypes = union(v.ClientTypes, sig.ClientTypes)
	if website != "" {
		v.OfficialWebsite = website
	}
}

// fillProfile only fills what the evidence scan left empty.
func fillProfile(v *models.VendorIntelligence, p *openai.VendorProfile) {
	if v.BusinessType == "" || v.BusinessType == string(models.BusinessUnknown) {
		if bt := models.ParseBusinessType(p.BusinessType); bt != models.BusinessUnknown {
			v.BusinessType = string(bt)
		}
	}
	if v.EmployeeCount == nil {
		v.EmployeeCount = p.EmployeeCount
	}
	if v.MinimumOrderQuantity == nil {
		v.MinimumOrderQuantity = p.MinimumOrderQuantity
	}
	if v.NumberOfLocations == nil {
		v.NumberOfLocations = p.NumberOfLocations
	}
	if v.GeographicCoverage == "" {
		v.GeographicCoverage = strings.TrimSpace(p.GeographicCoverage)
	}
	if v.OfficialWebsite == "" {
		v.OfficialWebsite = strings.TrimSpace(p.OfficialWebsite)
	}
	v.Certifications = union(v.Certifications, p.Certifications)
	v.ClientTypes = union(v.ClientTypes, p.ClientTypes)
}

func union(a, b []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[strings.ToLower(s)] {
			seen[strings.ToLower(s)] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
