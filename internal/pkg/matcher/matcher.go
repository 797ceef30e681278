package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/terms"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidConfig  = errors.New("invalid matcher config")
	ErrEmptySubstance = errors.New("active substance is required")
)

// RecordSource returns registry records whose active ingredient may contain
// substance. It may over-select; Group does the exact filtering.
type RecordSource interface {
	FindRegistryRecordsBySubstance(ctx context.Context, substance string) ([]models.RegistryRecord, error)
}

// VendorDirectory is the external contact table.
type VendorDirectory interface {
	FindVendorsByName(ctx context.Context, name string) ([]models.Vendor, error)
	FindVendorsByNameFold(ctx context.Context, name string) ([]models.Vendor, error)
	FindVendorsContaining(ctx context.Context, fragment string) ([]models.Vendor, error)
}

type Matcher struct {
	records RecordSource
	vendors VendorDirectory
}

// New builds a Matcher. vendors may be nil, then no contacts are resolved.
func New(records RecordSource, vendors VendorDirectory) (*Matcher, error) {
	if records == nil {
		return nil, fmt.Errorf("%w: record source is nil", ErrInvalidConfig)
	}
	return &Matcher{records: records, vendors: vendors}, nil
}

func (m *Matcher) Match(ctx context.Context, substance, dosageForm string) ([]models.SupplierMatch, []string) {
	substance = terms.CollapseSpaces(substance)
	if substance == "" {
		return []models.SupplierMatch{}, []string{ErrEmptySubstance.Error()}
	}

	records, err := m.records.FindRegistryRecordsBySubstance(ctx, substance)
	if err != nil {
		return []models.SupplierMatch{}, []string{fmt.Sprintf("load registry records: %v", err)}
	}

	matches := Group(records, substance, dosageForm)

	var errs []string
	if m.vendors != nil {
		for i := range matches {
			contact, err := m.resolveContact(ctx, matches[i].WholesalerName)
			if err != nil {
				errs = append(errs, fmt.Sprintf("resolve contact for %s: %v", matches[i].WholesalerName, err))
				continue
			}
			matches[i].Contact = contact
		}
	}

	log.Debug().
		Str("substance", substance).
		Str("dosage_form", dosageForm).
		Int("records", len(records)).
		Int("suppliers", len(matches)).
		Msg("matched product to suppliers")

	return matches, errs
}

// Group selects the records carrying substance (and dosage form when given)
// and groups them by wholesaler name and address. The result does not depend
// on the order of records.
func Group(records []models.RegistryRecord, substance, dosageForm string) []models.SupplierMatch {
	substance = strings.ToLower(terms.CollapseSpaces(substance))
	dosageForm = strings.ToLower(terms.CollapseSpaces(dosageForm))

	type group struct {
		match models.SupplierMatch
		drugs map[string]models.DrugEntry
	}
	groups := map[string]*group{}

	for _, r := range records {
		ingredient := strings.ToLower(terms.CollapseSpaces(r.ActiveIngredient))
		if substance == "" || !strings.Contains(ingredient, substance) {
			continue
		}
		if dosageForm != "" && !strings.Contains(strings.ToLower(r.DosageForm), dosageForm) {
			continue
		}

		name := strings.TrimSpace(r.WholesalerName)
		address := strings.TrimSpace(r.WholesalerAddress)
		key := name + "\x00" + address

		g, ok := groups[key]
		if !ok {
			g = &group{
				match: models.SupplierMatch{WholesalerName: name, WholesalerAddress: address},
				drugs: map[string]models.DrugEntry{},
			}
			groups[key] = g
		}
		g.match.WholesalerLicense = pickLicense(g.match.WholesalerLicense, r.WholesalerLicense)

		if _, seen := g.drugs[r.RegistrationNumber]; !seen {
			g.drugs[r.RegistrationNumber] = models.DrugEntry{
				DrugName:           r.DrugName,
				DosageForm:         r.DosageForm,
				RegistrationNumber: r.RegistrationNumber,
				ActiveIngredient:   r.ActiveIngredient,
				ManufacturerName:   r.ManufacturerName,
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	matches := make([]models.SupplierMatch, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		regNos := make([]string, 0, len(g.drugs))
		for regNo := range g.drugs {
			regNos = append(regNos, regNo)
		}
		sort.Strings(regNos)

		g.match.Drugs = make([]models.DrugEntry, 0, len(regNos))
		for _, regNo := range regNos {
			g.match.Drugs = append(g.match.Drugs, g.drugs[regNo])
		}
		matches = append(matches, g.match)
	}
	return matches
}

// pickLicense keeps the smallest real license so the choice is order free.
func pickLicense(current, candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate == models.NotSpecified {
		return current
	}
	if current == "" || current == models.NotSpecified || candidate < current {
		return candidate
	}
	return current
}
