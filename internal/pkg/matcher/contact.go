package matcher

import (
	"context"
	"strings"
	"unicode/utf8"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/terms"
)

const minTokenLength = 3

type strategy struct {
	name      string
	find      func(ctx context.Context, name string) ([]models.Vendor, error)
	needEmail bool
}

func (m *Matcher) strategies() []strategy {
	return []strategy{
		{name: "exact", find: m.vendors.FindVendorsByName, needEmail: true},
		{name: "case-insensitive", find: m.vendors.FindVendorsByNameFold},
		{name: "cleaned", find: func(ctx context.Context, name string) ([]models.Vendor, error) {
			return m.vendors.FindVendorsContaining(ctx, terms.Clean(name))
		}},
		{name: "first-token", find: func(ctx context.Context, name string) ([]models.Vendor, error) {
			token := firstToken(name)
			if utf8.RuneCountInString(token) < minTokenLength {
				return nil, nil
			}
			return m.vendors.FindVendorsContaining(ctx, token)
		}},
	}
}

// resolveContact runs the lookup strategies in order; the first one that
// yields a vendor wins.
func (m *Matcher) resolveContact(ctx context.Context, wholesaler string) (*models.Vendor, error) {
	if strings.TrimSpace(wholesaler) == "" || wholesaler == models.NotSpecified {
		return nil, nil
	}

	for _, s := range m.strategies() {
		vendors, err := s.find(ctx, wholesaler)
		if err != nil {
			return nil, err
		}
		if v := pick(vendors, s.needEmail); v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// pick prefers vendors with a usable e-mail.
func pick(vendors []models.Vendor, needEmail bool) *models.Vendor {
	for i := range vendors {
		if vendors[i].HasContactEmail() {
			return &vendors[i]
		}
	}
	if needEmail || len(vendors) == 0 {
		return nil
	}
	return &vendors[0]
}

func firstToken(name string) string {
	fields := strings.Fields(terms.Clean(name))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ",.;:")
}
