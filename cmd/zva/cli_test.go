package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"

	"zvaintel/internal/config"
	"zvaintel/internal/models"
	"zvaintel/internal/pkg/export"

	"github.com/urfave/cli/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var records = []models.RegistryRecord{
	{DrugName: "Ibumetin", RegistrationNumber: "N123456-01", WholesalerName: "Tamro SIA"},
	{DrugName: "Nurofen", RegistrationNumber: "N000123-04", WholesalerName: "Recipe Plus AS"},
}

func testApp(out *bytes.Buffer) *cli.App {
	noDB := func() (*gorm.DB, error) { return nil, errors.New("no database in tests") }
	a := newCLIApp(&config.Config{}, noDB, out)
	a.ErrWriter = out
	a.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return a
}

var _ = Describe("exportFormat", func() {
	DescribeTable("resolves the format",
		func(path, flag, want string) {
			got, err := exportFormat(path, flag)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("defaults to csv", "", "", "csv"),
		Entry("from the extension", "out/registry.XLSX", "", "xlsx"),
		Entry("flag wins over extension", "registry.xlsx", "csv", "csv"),
		Entry("unknown extension without flag is csv", "registry", "", "csv"),
	)

	It("rejects other formats", func() {
		_, err := exportFormat("registry.pdf", "")
		Expect(err).To(MatchError(ContainSubstring(`"pdf"`)))
	})
})

var _ = Describe("writeFile", func() {
	It("writes csv", func() {
		path := filepath.Join(GinkgoT().TempDir(), "registry.csv")
		Expect(writeFile(path, "", records)).To(Succeed())

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0]).To(Equal(export.Header))
	})

	It("writes xlsx", func() {
		path := filepath.Join(GinkgoT().TempDir(), "registry.xlsx")
		Expect(writeFile(path, "", records)).To(Succeed())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := f.GetRows(export.SheetName)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
	})
})

var _ = Describe("commands", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("requires a medicine name for search", func() {
		err := testApp(out).Run([]string{"zva", "search"})
		Expect(err).To(MatchError("medicine name is required"))
	})

	It("requires a vendor name for research", func() {
		err := testApp(out).Run([]string{"zva", "research", "--country", "Latvia"})
		Expect(err).To(MatchError("vendor name is required"))
	})

	It("requires a substance for match", func() {
		err := testApp(out).Run([]string{"zva", "match"})
		Expect(err).To(HaveOccurred())
	})

	It("reports database errors", func() {
		err := testApp(out).Run([]string{"zva", "export"})
		Expect(err).To(MatchError(ContainSubstring("no database in tests")))
	})
})
