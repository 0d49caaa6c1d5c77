package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// SnapshotSchema is the top-level JSON structure of a snapshot file.
type SnapshotSchema struct {
	Source     string             `json:"source,omitempty"`
	Defaults   *DefaultsImport    `json:"defaults,omitempty"`
	Metrics    []MetricImport     `json:"metrics"`
	Orders     []OrderImport      `json:"orders,omitempty"`
	Assortment []AssortmentImport `json:"assortment,omitempty"`
}

// DefaultsImport holds file-wide values that cascade to rows leaving them empty.
type DefaultsImport struct {
	DepotID       string `json:"depot_id,omitempty"`
	EffectiveDate string `json:"effective_date,omitempty"`
}

// MetricImport is one day of depot metrics.
type MetricImport struct {
	DepotID        string   `json:"depot_id,omitempty"`
	Date           string   `json:"date"`
	CatchmentCount *int64   `json:"catchment_count"`
	EntitledCount  *int64   `json:"entitled_count"`
	AttainedCount  *int64   `json:"attained_count"`
	CBPercent      *float64 `json:"cb_percent,omitempty"`
}

// OrderImport is one ordered line.
type OrderImport struct {
	DepotID          string `json:"depot_id,omitempty"`
	Date             string `json:"date"`
	OrderID          string `json:"order_id"`
	ItemID           string `json:"item_id"`
	Substituted      bool   `json:"substituted,omitempty"`
	SubstituteItemID string `json:"substitute_item_id,omitempty"`
}

// AssortmentImport records an item's stocking state from EffectiveDate on.
type AssortmentImport struct {
	DepotID       string `json:"depot_id,omitempty"`
	ItemID        string `json:"item_id"`
	Active        *bool  `json:"active"`
	EffectiveDate string `json:"effective_date,omitempty"`
}

// LoadSnapshotSchema reads and parses a snapshot JSON file.
func LoadSnapshotSchema(path string) (*SnapshotSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema SnapshotSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}
	return &schema, nil
}
