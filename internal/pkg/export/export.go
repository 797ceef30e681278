package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"zvaintel/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Registry"

// Header is the fixed column order of every registry export.
var Header = []string{
	"Drug Name",
	"Dosage Form",
	"Registration Number",
	"Active Ingredient",
	"Manufacturer Name",
	"Manufacturer Country",
	"ATC Code",
	"Issuance Procedure",
	"Wholesaler Name",
	"Wholesaler Address",
	"Wholesaler License",
	"Permit Validity",
}

func row(r models.RegistryRecord) []string {
	return []string{
		r.DrugName,
		r.DosageForm,
		r.RegistrationNumber,
		r.ActiveIngredient,
		r.ManufacturerName,
		r.ManufacturerCountry,
		r.ATCCode,
		r.IssuanceProcedure,
		r.WholesalerName,
		r.WholesalerAddress,
		r.WholesalerLicense,
		r.PermitValidity,
	}
}

func WriteCSV(w io.Writer, records []models.RegistryRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(row(r)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.RegistrationNumber, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, records []models.RegistryRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.RegistrationNumber, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetColWidth(SheetName, "A", lastCol, 22); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
