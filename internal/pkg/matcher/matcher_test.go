package matcher_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/matcher"
	"zvaintel/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticRecords struct {
	records []models.RegistryRecord
	err     error
}

func (s staticRecords) FindRegistryRecordsBySubstance(context.Context, string) ([]models.RegistryRecord, error) {
	return s.records, s.err
}

// memDirectory mirrors the semantics of the database lookups.
type memDirectory struct {
	vendors []models.Vendor
	calls   []string
}

func (d *memDirectory) FindVendorsByName(_ context.Context, name string) ([]models.Vendor, error) {
	d.calls = append(d.calls, "exact:"+name)
	var out []models.Vendor
	for _, v := range d.vendors {
		if v.Name == name {
			out = append(out, v)
		}
	}
	return out, nil
}

func (d *memDirectory) FindVendorsByNameFold(_ context.Context, name string) ([]models.Vendor, error) {
	d.calls = append(d.calls, "fold:"+name)
	var out []models.Vendor
	for _, v := range d.vendors {
		if strings.EqualFold(v.Name, name) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (d *memDirectory) FindVendorsContaining(_ context.Context, fragment string) ([]models.Vendor, error) {
	d.calls = append(d.calls, "contains:"+fragment)
	var out []models.Vendor
	for _, v := range d.vendors {
		if strings.Contains(strings.ToLower(v.Name), strings.ToLower(fragment)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func ibuprofenRecords() []models.RegistryRecord {
	return []models.RegistryRecord{
		testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofen"), testhelpers.WithWholesaler("Tamro", "Dzelzavas iela 120, Rīga")),
		testhelpers.RegistryRecord("N100002-01", testhelpers.WithSubstance("IBUPROFEN, PSEUDOEPHEDRINE"), testhelpers.WithWholesaler("Tamro", "Dzelzavas iela 120, Rīga")),
		testhelpers.RegistryRecord("N100003-01", testhelpers.WithSubstance("ibuprofen"), testhelpers.WithWholesaler("Magnum Medical", "Ganību dambis 13, Rīga"), testhelpers.WithDosageForm("gel")),
		testhelpers.RegistryRecord("N100004-01", testhelpers.WithSubstance("Paracetamol"), testhelpers.WithWholesaler("Recipe Plus", "Mārupe")),
	}
}

var _ = Describe("Group", func() {
	It("groups matching records by wholesaler", func() {
		matches := matcher.Group(ibuprofenRecords(), "Ibuprofen", "")
		Expect(matches).To(HaveLen(2))

		Expect(matches[0].WholesalerName).To(Equal("Magnum Medical"))
		Expect(matches[0].Drugs).To(HaveLen(1))

		Expect(matches[1].WholesalerName).To(Equal("Tamro"))
		Expect(matches[1].WholesalerLicense).To(Equal("L00012"))
		Expect(matches[1].Drugs).To(HaveLen(2))
		Expect(matches[1].Drugs[0].RegistrationNumber).To(Equal("N100001-01"))
	})

	It("narrows by dosage form", func() {
		matches := matcher.Group(ibuprofenRecords(), "ibuprofen", "GEL")
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].WholesalerName).To(Equal("Magnum Medical"))
	})

	It("keeps drugs distinct by registration number", func() {
		rec := testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofen"))
		matches := matcher.Group([]models.RegistryRecord{rec, rec, rec}, "ibuprofen", "")
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Drugs).To(HaveLen(1))
	})

	It("separates branches of the same wholesaler", func() {
		records := []models.RegistryRecord{
			testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofen"), testhelpers.WithWholesaler("Tamro", "Rīga")),
			testhelpers.RegistryRecord("N100002-01", testhelpers.WithSubstance("Ibuprofen"), testhelpers.WithWholesaler("Tamro", "Liepāja")),
		}
		Expect(matcher.Group(records, "ibuprofen", "")).To(HaveLen(2))
	})

	It("does not depend on record order", func() {
		records := ibuprofenRecords()
		records = append(records,
			testhelpers.RegistryRecord("N100005-01", testhelpers.WithSubstance("Ibuprofen"), testhelpers.WithWholesaler("Tamro", "Dzelzavas iela 120, Rīga"), func(r *models.RegistryRecord) {
				r.WholesalerLicense = "L00001"
			}),
		)
		want := matcher.Group(records, "ibuprofen", "")

		rng := rand.New(rand.NewSource(7))
		for range 50 {
			shuffled := make([]models.RegistryRecord, len(records))
			copy(shuffled, records)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			Expect(matcher.Group(shuffled, "ibuprofen", "")).To(Equal(want))
		}
	})
})

var _ = Describe("Matcher", func() {
	It("requires a record source", func() {
		_, err := matcher.New(nil, nil)
		Expect(err).To(MatchError(matcher.ErrInvalidConfig))
	})

	It("attaches contacts found by exact name", func() {
		dir := &memDirectory{vendors: []models.Vendor{
			{ID: 1, Name: "Tamro", Email: "noreply@tamro.lv"},
			{ID: 2, Name: "Tamro", Email: "orders@tamro.lv"},
			{ID: 3, Name: "Magnum Medical", Email: "info@magnum.lv"},
		}}
		m, err := matcher.New(staticRecords{records: ibuprofenRecords()}, dir)
		Expect(err).NotTo(HaveOccurred())

		matches, errs := m.Match(context.Background(), "Ibuprofen", "")
		Expect(errs).To(BeEmpty())
		Expect(matches).To(HaveLen(2))
		Expect(matches[0].Contact.ID).To(Equal(uint(3)))
		Expect(matches[1].Contact.ID).To(Equal(uint(2)))
	})

	DescribeTable("contact strategies",
		func(wholesaler string, vendors []models.Vendor, wantID uint) {
			records := []models.RegistryRecord{
				testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofen"), testhelpers.WithWholesaler(wholesaler, "Rīga")),
			}
			m, _ := matcher.New(staticRecords{records: records}, &memDirectory{vendors: vendors})

			matches, _ := m.Match(context.Background(), "ibuprofen", "")
			Expect(matches).To(HaveLen(1))
			if wantID == 0 {
				Expect(matches[0].Contact).To(BeNil())
				return
			}
			Expect(matches[0].Contact).NotTo(BeNil())
			Expect(matches[0].Contact.ID).To(Equal(wantID))
		},
		Entry("exact with placeholder email falls through to case-insensitive",
			"Tamro", []models.Vendor{{ID: 1, Name: "Tamro", Email: "n/a"}, {ID: 2, Name: "TAMRO", Email: "sales@tamro.lv"}}, uint(2)),
		Entry("case-insensitive",
			"Magnum Medical", []models.Vendor{{ID: 5, Name: "MAGNUM MEDICAL", Email: "info@magnum.lv"}}, uint(5)),
		Entry("cleaned name containment",
			`"Recipe Plus"`, []models.Vendor{{ID: 7, Name: "Recipe Plus SIA", Email: "info@recipe.lv"}}, uint(7)),
		Entry("first token",
			"Baltic Pharma Group", []models.Vendor{{ID: 9, Name: "Baltic Logistics", Email: "hello@baltic.lv"}}, uint(9)),
		Entry("short first token is not searched",
			"AB Group", []models.Vendor{{ID: 11, Name: "AB Pharma", Email: "ab@pharma.lv"}}, uint(0)),
		Entry("no vendor",
			"Nobody", []models.Vendor{{ID: 1, Name: "Tamro", Email: "sales@tamro.lv"}}, uint(0)),
	)

	It("stops at the first successful strategy", func() {
		dir := &memDirectory{vendors: []models.Vendor{{ID: 1, Name: "Tamro", Email: "sales@tamro.lv"}}}
		records := []models.RegistryRecord{testhelpers.RegistryRecord("N100001-01", testhelpers.WithSubstance("Ibuprofen"))}
		m, _ := matcher.New(staticRecords{records: records}, dir)

		m.Match(context.Background(), "ibuprofen", "")
		Expect(dir.calls).To(Equal([]string{"exact:Tamro"}))
	})

	It("reports record source failures", func() {
		m, _ := matcher.New(staticRecords{err: errors.New("db down")}, nil)
		matches, errs := m.Match(context.Background(), "ibuprofen", "")
		Expect(matches).To(BeEmpty())
		Expect(errs).To(ConsistOf("load registry records: db down"))
	})

	It("rejects an empty substance", func() {
		m, _ := matcher.New(staticRecords{}, nil)
		_, errs := m.Match(context.Background(), " ", "")
		Expect(errs).To(ConsistOf(matcher.ErrEmptySubstance.Error()))
	})
})
