package models

import "strings"

// Vendor is a row of the contact directory the matcher resolves wholesalers against.
type Vendor struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"index" json:"name"`
	Email string `json:"email"`
}

var placeholderEmails = []string{"noreply@", "no-reply@", "example.com", "placeholder", "test@test"}

// HasContactEmail is false for empty or placeholder addresses.
func (v Vendor) HasContactEmail() bool {
	email := strings.ToLower(strings.TrimSpace(v.Email))
	switch email {
	case "", "-", "n/a", "na", "none":
		return false
	}
	if !strings.Contains(email, "@") {
		return false
	}
	for _, p := range placeholderEmails {
		if strings.Contains(email, p) {
			return false
		}
	}
	return true
}

type DrugEntry struct {
	DrugName           string `json:"drug_name"`
	DosageForm         string `json:"dosage_form"`
	RegistrationNumber string `json:"registration_number"`
	ActiveIngredient   string `json:"active_ingredient"`
	ManufacturerName   string `json:"manufacturer_name"`
}

type SupplierMatch struct {
	WholesalerName    string      `json:"wholesaler_name"`
	WholesalerAddress string      `json:"wholesaler_address"`
	WholesalerLicense string      `json:"wholesaler_license"`
	Drugs             []DrugEntry `json:"drugs"`
	Contact           *Vendor     `json:"contact,omitempty"`
}
