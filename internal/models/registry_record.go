package models

import "time"

const NotSpecified = "Not specified"

type RegistryRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	DrugName            string    `json:"drug_name" validate:"required"`
	DosageForm          string    `json:"dosage_form"`
	RegistrationNumber  string    `gorm:"uniqueIndex;not null" json:"registration_number" validate:"required,regnum"`
	ActiveIngredient    string    `json:"active_ingredient"`
	ManufacturerName    string    `json:"manufacturer_name"`
	ManufacturerCountry string    `json:"manufacturer_country"`
	ATCCode             string    `gorm:"column:atc_code" json:"atc_code"`
	IssuanceProcedure   string    `json:"issuance_procedure"`
	WholesalerName      string    `gorm:"index" json:"wholesaler_name" validate:"required"`
	WholesalerAddress   string    `json:"wholesaler_address"`
	WholesalerLicense   string    `json:"wholesaler_license"`
	PermitValidity      string    `json:"permit_validity"`
	SourcePage          int       `json:"source_page"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

// RawTableRow is one <tr> of the registry table, cells in document order.
type RawTableRow struct {
	Index int
	Page  int
	Cells []string
}
