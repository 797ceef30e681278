package testhelpers

import (
	"fmt"

	"zvaintel/internal/models"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func CleanupDB(db *gorm.DB) {
	var tables []string

	err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error
	g.Expect(err).NotTo(g.HaveOccurred())

	for _, table := range tables {
		if table == "schema_migrations" {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE \"%s\" RESTART IDENTITY CASCADE", table)
		err := db.Exec(query).Error
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to truncate table: "+table)
	}
}

// RegistryRecord builds a valid record; overrides are applied in order.
func RegistryRecord(regNo string, overrides ...func(*models.RegistryRecord)) models.RegistryRecord {
	rec := models.RegistryRecord{
		DrugName:            "Paracetamol 500mg",
		DosageForm:          "tablets",
		RegistrationNumber:  regNo,
		ActiveIngredient:    "Paracetamolum",
		ManufacturerName:    "Grindeks AS",
		ManufacturerCountry: "Latvia",
		ATCCode:             "N02BE01",
		IssuanceProcedure:   "National procedure",
		WholesalerName:      "Tamro",
		WholesalerAddress:   "Dzelzavas iela 120, Rīga",
		WholesalerLicense:   "L00012",
		PermitValidity:      "Unlimited",
		SourcePage:          1,
	}
	for _, o := range overrides {
		o(&rec)
	}
	return rec
}

func WithSubstance(s string) func(*models.RegistryRecord) {
	return func(r *models.RegistryRecord) { r.ActiveIngredient = s }
}

func WithWholesaler(name, address string) func(*models.RegistryRecord) {
	return func(r *models.RegistryRecord) {
		r.WholesalerName = name
		r.WholesalerAddress = address
	}
}

func WithDosageForm(form string) func(*models.RegistryRecord) {
	return func(r *models.RegistryRecord) { r.DosageForm = form }
}
