package importer

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/depotcb/cbagent/internal/domain"
)

// Snapshot is a validated set of rows ready for persistence.
type Snapshot struct {
	ID         string
	Source     string
	Metrics    []domain.MetricRow
	Orders     []domain.OrderDetailRow
	Assortment []domain.AssortmentRow
}

// Depots lists every depot the snapshot touches, in ascending order.
func (s *Snapshot) Depots() []string {
	set := make(map[string]bool)
	for _, m := range s.Metrics {
		set[m.DepotID] = true
	}
	for _, o := range s.Orders {
		set[o.DepotID] = true
	}
	for _, a := range s.Assortment {
		set[a.DepotID] = true
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Convert transforms a validated SnapshotSchema into domain rows.
// Call ValidateSnapshotSchema first; Convert assumes the schema is valid.
// Stored cb_percent values are replaced by the value implied by the counts.
func Convert(schema *SnapshotSchema) (*Snapshot, error) {
	snap := &Snapshot{
		ID:         uuid.New().String(),
		Source:     schema.Source,
		Metrics:    make([]domain.MetricRow, 0, len(schema.Metrics)),
		Orders:     make([]domain.OrderDetailRow, 0, len(schema.Orders)),
		Assortment: make([]domain.AssortmentRow, 0, len(schema.Assortment)),
	}

	for i, m := range schema.Metrics {
		date, err := time.Parse(domain.DateLayout, m.Date)
		if err != nil {
			return nil, fmt.Errorf("metrics[%d]: parsing date: %w", i, err)
		}
		row := domain.MetricRow{
			DepotID:        depotOr(m.DepotID, schema.Defaults),
			Date:           date,
			CatchmentCount: domain.ValueOr(0, m.CatchmentCount),
			EntitledCount:  domain.ValueOr(0, m.EntitledCount),
			AttainedCount:  domain.ValueOr(0, m.AttainedCount),
		}
		row.CBPercent = row.Recompute()
		snap.Metrics = append(snap.Metrics, row)
	}

	for i, o := range schema.Orders {
		date, err := time.Parse(domain.DateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("orders[%d]: parsing date: %w", i, err)
		}
		snap.Orders = append(snap.Orders, domain.OrderDetailRow{
			DepotID:          depotOr(o.DepotID, schema.Defaults),
			Date:             date,
			OrderID:          o.OrderID,
			ItemID:           o.ItemID,
			Substituted:      o.Substituted,
			SubstituteItemID: o.SubstituteItemID,
		})
	}

	for i, a := range schema.Assortment {
		eff, err := time.Parse(domain.DateLayout, effectiveOr(a.EffectiveDate, schema.Defaults))
		if err != nil {
			return nil, fmt.Errorf("assortment[%d]: parsing effective_date: %w", i, err)
		}
		snap.Assortment = append(snap.Assortment, domain.AssortmentRow{
			DepotID:       depotOr(a.DepotID, schema.Defaults),
			ItemID:        a.ItemID,
			Active:        domain.ValueOr(false, a.Active),
			EffectiveDate: eff,
		})
	}

	return snap, nil
}
