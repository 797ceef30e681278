package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResearchStatus string

const (
	ResearchPending    ResearchStatus = "Pending"
	ResearchInProgress ResearchStatus = "InProgress"
	ResearchCompleted  ResearchStatus = "Completed"
	ResearchFailed     ResearchStatus = "Failed"
)

type SupplierClassification string

const (
	ClassBulkSupplier       SupplierClassification = "Bulk Supplier"
	ClassMidSizeDistributor SupplierClassification = "Mid-size Distributor"
	ClassSmallRetailer      SupplierClassification = "Small Retailer"
)

// FreshnessWindow is how long a completed research result is reused.
const FreshnessWindow = 30 * 24 * time.Hour

type VendorIntelligence struct {
	ID                     uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	VendorName             string                 `gorm:"uniqueIndex;not null" json:"vendor_name"`
	BusinessType           string                 `json:"business_type"`
	CompanySize            string                 `json:"company_size"`
	EmployeeCount          *int                   `json:"employee_count"`
	MinimumOrderQuantity   *int                   `json:"minimum_order_quantity"`
	NumberOfLocations      *int                   `json:"number_of_locations"`
	GeographicCoverage     string                 `json:"geographic_coverage"`
	Certifications         []string               `gorm:"serializer:json" json:"certifications"`
	ClientTypes            []string               `gorm:"serializer:json" json:"client_types"`
	SupplierClassification SupplierClassification `json:"supplier_classification"`
	ClassificationScore    int                    `json:"classification_score"`
	ConfidenceScore        float64                `json:"confidence_score"`
	OfficialWebsite        string                 `json:"official_website"`
	ResearchStatus         ResearchStatus         `gorm:"index" json:"research_status"`
	ResearchedAt           *time.Time             `json:"researched_at"`
	LastError              string                 `json:"last_error,omitempty"`
	CreatedAt              time.Time              `json:"-"`
	UpdatedAt              time.Time              `json:"-"`
}

func (v *VendorIntelligence) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// IsFresh reports whether a completed result is younger than FreshnessWindow.
func (v *VendorIntelligence) IsFresh(now time.Time) bool {
	if v == nil || v.ResearchStatus != ResearchCompleted || v.ResearchedAt == nil {
		return false
	}
	return now.Sub(*v.ResearchedAt) < FreshnessWindow
}
