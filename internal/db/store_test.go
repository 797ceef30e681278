package db_test

import (
	"context"
	"time"

	"zvaintel/internal/config"
	"zvaintel/internal/db"
	"zvaintel/internal/models"
	"zvaintel/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Store", func() {
	var (
		dbConn *gorm.DB
		store  *db.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		if cfg.DatabaseURL == "" {
			Skip("DATABASE_URL not set")
		}

		dbConn, err = db.InitDB(cfg.DatabaseURL)
		if err != nil {
			Skip("database not available: " + err.Error())
		}
		Expect(db.Migrate(dbConn)).To(Succeed())
		testhelpers.CleanupDB(dbConn)

		store = db.NewStore(dbConn)
		ctx = context.Background()
	})

	Describe("registry records", func() {
		It("upserts by registration number", func() {
			res := store.UpsertRegistryRecords(ctx, []models.RegistryRecord{
				testhelpers.RegistryRecord("N123456-01"),
				testhelpers.RegistryRecord("N000123-04", testhelpers.WithSubstance("Ibuprofenum")),
			})
			Expect(res.Saved).To(Equal(2))
			Expect(res.Failed).To(BeZero())

			res = store.UpsertRegistryRecords(ctx, []models.RegistryRecord{
				testhelpers.RegistryRecord("N123456-01", testhelpers.WithWholesaler("Magnum Medical", "Rīga")),
			})
			Expect(res.Saved).To(Equal(1))

			records, err := store.ListRegistryRecords(ctx, db.RecordFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1].RegistrationNumber).To(Equal("N123456-01"))
			Expect(records[1].WholesalerName).To(Equal("Magnum Medical"))
		})

		It("filters by substance", func() {
			store.UpsertRegistryRecords(ctx, []models.RegistryRecord{
				testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofenum")),
				testhelpers.RegistryRecord("N100002-01", testhelpers.WithSubstance("Paracetamolum")),
				testhelpers.RegistryRecord("N100003-01", testhelpers.WithSubstance("IBUPROFENUM, CODEINUM")),
			})

			records, err := store.FindRegistryRecordsBySubstance(ctx, "ibuprofen")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})

		It("treats LIKE wildcards literally", func() {
			store.UpsertRegistryRecords(ctx, []models.RegistryRecord{testhelpers.RegistryRecord("N100001-01")})

			records, err := store.ListRegistryRecords(ctx, db.RecordFilter{Substance: "%"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("vendor intelligence", func() {
		It("returns nil for unknown vendors", func() {
			v, err := store.GetIntelligence(ctx, "Nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNil())
		})

		It("upserts by vendor name", func() {
			now := time.Now().UTC().Truncate(time.Second)
			v := &models.VendorIntelligence{
				VendorName:     "Tamro",
				ResearchStatus: models.ResearchInProgress,
				Certifications: []string{"GDP"},
			}
			Expect(store.UpsertIntelligence(ctx, v)).To(Succeed())

			v.ResearchStatus = models.ResearchCompleted
			v.ResearchedAt = &now
			v.ClientTypes = []string{"Hospitals"}
			Expect(store.UpsertIntelligence(ctx, v)).To(Succeed())

			got, err := store.GetIntelligence(ctx, "Tamro")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(v.ID))
			Expect(got.ResearchStatus).To(Equal(models.ResearchCompleted))
			Expect(got.Certifications).To(Equal([]string{"GDP"}))
			Expect(got.ClientTypes).To(Equal([]string{"Hospitals"}))
			Expect(got.IsFresh(time.Now())).To(BeTrue())
		})
	})

	Describe("vendors", func() {
		BeforeEach(func() {
			for _, v := range []models.Vendor{
				{Name: "Tamro", Email: "orders@tamro.lv"},
				{Name: "MAGNUM MEDICAL", Email: "info@magnum.lv"},
				{Name: "Recipe Plus SIA", Email: "info@recipe.lv"},
			} {
				Expect(gorm.G[models.Vendor](dbConn).Create(ctx, &v)).To(Succeed())
			}
		})

		It("finds by exact name", func() {
			vendors, err := store.FindVendorsByName(ctx, "Tamro")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendors).To(HaveLen(1))

			vendors, err = store.FindVendorsByName(ctx, "tamro")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendors).To(BeEmpty())
		})

		It("finds case-insensitively", func() {
			vendors, err := store.FindVendorsByNameFold(ctx, "Magnum Medical")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendors).To(HaveLen(1))
		})

		It("finds by fragment", func() {
			vendors, err := store.FindVendorsContaining(ctx, "recipe plus")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendors).To(HaveLen(1))
			Expect(vendors[0].Email).To(Equal("info@recipe.lv"))
		})
	})
})
