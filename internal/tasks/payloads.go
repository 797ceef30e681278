package tasks

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTaskExtractRegistry = "task:extract_registry"
	TypeTaskResearchVendor  = "task:research_vendor"
)

// ExtractRegistryPayload overrides the configured extraction limits. Nil
// fields keep the defaults.
type ExtractRegistryPayload struct {
	MaxPages *int `json:"max_pages"`
	PageSize *int `json:"page_size"`
	DelayMs  *int `json:"delay_ms"`
}

func NewExtractRegistryTask(maxPages, pageSize, delayMs *int) (*asynq.Task, error) {
	payload := ExtractRegistryPayload{
		MaxPages: maxPages,
		PageSize: pageSize,
		DelayMs:  delayMs,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskExtractRegistry, payloadBytes), nil
}

type ResearchVendorPayload struct {
	VendorName string `json:"vendor_name"`
	Country    string `json:"country,omitempty"`
	Website    string `json:"website,omitempty"`
}

func NewResearchVendorTask(vendorName, country, website string) (*asynq.Task, error) {
	if strings.TrimSpace(vendorName) == "" {
		return nil, errors.New("vendor name is required")
	}

	payloadBytes, err := json.Marshal(ResearchVendorPayload{
		VendorName: vendorName,
		Country:    country,
		Website:    website,
	})
	if err != nil {
		return nil, err
	}

	// one research job per vendor at a time
	return asynq.NewTask(TypeTaskResearchVendor, payloadBytes, asynq.TaskID("research:"+strings.ToLower(strings.TrimSpace(vendorName)))), nil
}
