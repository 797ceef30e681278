package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/cells"
	"zvaintel/internal/pkg/terms"

	"github.com/go-playground/validator/v10"
)

const DefaultMinCells = 5

var (
	ErrShortRow      = errors.New("row has too few cells")
	ErrInvalidRecord = errors.New("record failed validation")
)

const (
	colDrug = iota
	colIngredient
	colManufacturer
	colATC
	colWholesaler
	colProcedure
	colValidity
)

var reRegistrationNumber = regexp.MustCompile(`^N\d{6}-\d{2}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("regnum", func(fl validator.FieldLevel) bool {
		return reRegistrationNumber.MatchString(fl.Field().String())
	})
	return v
}

// RowParser turns raw rows into validated, normalized records.
type RowParser struct {
	norm     *terms.Normalizer
	validate *validator.Validate
	minCells int
}

func NewRowParser(norm *terms.Normalizer, minCells int) *RowParser {
	if minCells <= 0 {
		minCells = DefaultMinCells
	}
	return &RowParser{norm: norm, validate: newValidator(), minCells: minCells}
}

func (p *RowParser) Parse(row models.RawTableRow) (models.RegistryRecord, error) {
	c := row.Cells
	if len(c) < p.minCells {
		return models.RegistryRecord{}, fmt.Errorf("page %d row %d: %w: got %d, need %d", row.Page, row.Index, ErrShortRow, len(c), p.minCells)
	}

	// a missing number is reported by validation below
	drug, _ := cells.ParseDrugCell(c[colDrug])
	manufacturer := cells.ParseProductCell(c[colManufacturer])
	wholesaler := cells.ParseWholesalerCell(c[colWholesaler])

	rec := models.RegistryRecord{
		DrugName:            drug.Name,
		DosageForm:          p.norm.DosageForm(drug.DosageForm),
		RegistrationNumber:  drug.RegistrationNumber,
		ActiveIngredient:    cells.ParseIngredientCell(c[colIngredient]),
		ManufacturerName:    terms.Clean(manufacturer.Name),
		ManufacturerCountry: p.norm.Country(manufacturer.Country),
		ATCCode:             cells.ParseATCCell(c[colATC]),
		IssuanceProcedure:   models.NotSpecified,
		WholesalerName:      p.norm.CompanyName(wholesaler.Name),
		WholesalerAddress:   wholesaler.Address,
		WholesalerLicense:   wholesaler.License,
		PermitValidity:      models.NotSpecified,
		SourcePage:          row.Page,
	}
	if len(c) > colProcedure {
		rec.IssuanceProcedure = p.norm.Procedure(cells.ParseTextCell(c[colProcedure]))
	}
	if len(c) > colValidity {
		rec.PermitValidity = cells.ParseTextCell(c[colValidity])
	}

	if err := p.validate.Struct(rec); err != nil {
		return rec, fmt.Errorf("page %d row %d: %w: %s", row.Page, row.Index, ErrInvalidRecord, describe(err))
	}
	return rec, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s (%q)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return strings.Join(parts, "; ")
}
