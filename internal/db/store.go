package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zvaintel/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultListLimit = 100

// Store is the gorm backed persistence of registry records, research
// results and the vendor contact directory.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// UpsertResult counts what happened to a batch.
type UpsertResult struct {
	Saved  int      `json:"saved"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// UpsertRegistryRecords writes records one by one, keyed on registration
// number. A failing record is skipped and counted.
func (s *Store) UpsertRegistryRecords(ctx context.Context, records []models.RegistryRecord) UpsertResult {
	res := UpsertResult{Errors: []string{}}

	for _, r := range records {
		r.ID = 0
		err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "registration_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"drug_name", "dosage_form", "active_ingredient", "manufacturer_name", "manufacturer_country",
				"atc_code", "issuance_procedure", "wholesaler_name", "wholesaler_address", "wholesaler_license",
				"permit_validity", "source_page", "updated_at",
			}),
		}).Create(&r).Error
		if err != nil {
			log.Warn().Str("registration_number", r.RegistrationNumber).Err(err).Msg("failed to upsert registry record")
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", r.RegistrationNumber, err))
			continue
		}
		res.Saved++
	}

	return res
}

type RecordFilter struct {
	Substance  string
	Wholesaler string
	Limit      int
	Offset     int
}

func (s *Store) ListRegistryRecords(ctx context.Context, f RecordFilter) ([]models.RegistryRecord, error) {
	var q gorm.ChainInterface[models.RegistryRecord] = gorm.G[models.RegistryRecord](s.DB).Order("registration_number")
	if f.Substance != "" {
		q = q.Where("active_ingredient ILIKE ?", like(f.Substance))
	}
	if f.Wholesaler != "" {
		q = q.Where("wholesaler_name ILIKE ?", like(f.Wholesaler))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q.Find(ctx)
}

// FindRegistryRecordsBySubstance selects records whose active ingredient
// contains substance, case-insensitively.
func (s *Store) FindRegistryRecordsBySubstance(ctx context.Context, substance string) ([]models.RegistryRecord, error) {
	return s.ListRegistryRecords(ctx, RecordFilter{Substance: substance})
}

// GetIntelligence returns nil, nil when the vendor was never researched.
func (s *Store) GetIntelligence(ctx context.Context, vendorName string) (*models.VendorIntelligence, error) {
	v, err := gorm.G[models.VendorIntelligence](s.DB).Where("vendor_name = ?", vendorName).First(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpsertIntelligence(ctx context.Context, v *models.VendorIntelligence) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_name"}},
		UpdateAll: true,
	}).Create(v).Error
}

func (s *Store) ListIntelligence(ctx context.Context, limit int) ([]models.VendorIntelligence, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return gorm.G[models.VendorIntelligence](s.DB).Order("updated_at DESC").Limit(limit).Find(ctx)
}

func (s *Store) FindVendorsByName(ctx context.Context, name string) ([]models.Vendor, error) {
	return gorm.G[models.Vendor](s.DB).Where("name = ?", name).Order("id").Find(ctx)
}

func (s *Store) FindVendorsByNameFold(ctx context.Context, name string) ([]models.Vendor, error) {
	return gorm.G[models.Vendor](s.DB).Where("LOWER(name) = LOWER(?)", name).Order("id").Find(ctx)
}

func (s *Store) FindVendorsContaining(ctx context.Context, fragment string) ([]models.Vendor, error) {
	return gorm.G[models.Vendor](s.DB).Where("name ILIKE ?", like(fragment)).Order("id").Find(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func like(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}
