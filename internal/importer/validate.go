package importer

import (
	"fmt"
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

// CBTolerance is how far a stored cb_percent may drift from its counts.
const CBTolerance = 0.01

// ValidateSnapshotSchema checks the snapshot for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateSnapshotSchema(schema *SnapshotSchema) []error {
	var errs []error

	errs = append(errs, validateDefaults(schema.Defaults)...)
	if len(schema.Metrics) == 0 && len(schema.Orders) == 0 && len(schema.Assortment) == 0 {
		errs = append(errs, fmt.Errorf("snapshot contains no rows"))
	}
	errs = append(errs, validateMetrics(schema.Metrics, schema.Defaults)...)
	errs = append(errs, validateOrders(schema.Orders, schema.Defaults)...)
	errs = append(errs, validateAssortment(schema.Assortment, schema.Defaults)...)

	return errs
}

func validDate(s string) bool {
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

func validateDefaults(d *DefaultsImport) []error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.EffectiveDate != "" && !validDate(d.EffectiveDate) {
		errs = append(errs, fmt.Errorf("defaults.effective_date: invalid date format %q (expected YYYY-MM-DD)", d.EffectiveDate))
	}
	return errs
}

func validateMetrics(rows []MetricImport, defaults *DefaultsImport) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, m := range rows {
		prefix := fmt.Sprintf("metrics[%d]", i)
		depot := depotOr(m.DepotID, defaults)

		if depot == "" {
			errs = append(errs, fmt.Errorf("%s.depot_id is required", prefix))
		}
		if m.Date == "" {
			errs = append(errs, fmt.Errorf("%s.date is required", prefix))
		} else if !validDate(m.Date) {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", prefix, m.Date))
		}

		key := depot + "|" + m.Date
		if depot != "" && m.Date != "" {
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s: duplicate row for depot %s on %s", prefix, depot, m.Date))
			}
			seen[key] = true
		}

		counts := []struct {
			name string
			v    *int64
		}{
			{"catchment_count", m.CatchmentCount},
			{"entitled_count", m.EntitledCount},
			{"attained_count", m.AttainedCount},
		}
		complete := true
		for _, c := range counts {
			switch {
			case c.v == nil:
				errs = append(errs, fmt.Errorf("%s.%s is required", prefix, c.name))
				complete = false
			case *c.v < 0:
				errs = append(errs, fmt.Errorf("%s.%s must not be negative", prefix, c.name))
				complete = false
			}
		}
		if !complete {
			continue
		}
		if *m.AttainedCount > *m.EntitledCount {
			errs = append(errs, fmt.Errorf("%s: attained_count (%d) must be <= entitled_count (%d)",
				prefix, *m.AttainedCount, *m.EntitledCount))
		}
		if m.CBPercent != nil {
			row := domain.MetricRow{
				DepotID:       depot,
				EntitledCount: *m.EntitledCount,
				AttainedCount: *m.AttainedCount,
				CBPercent:     m.CBPercent,
			}
			if t, err := time.Parse(domain.DateLayout, m.Date); err == nil {
				row.Date = t
			}
			if err := row.Validate(CBTolerance); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
	}
	return errs
}

func validateOrders(rows []OrderImport, defaults *DefaultsImport) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, o := range rows {
		prefix := fmt.Sprintf("orders[%d]", i)
		depot := depotOr(o.DepotID, defaults)

		if depot == "" {
			errs = append(errs, fmt.Errorf("%s.depot_id is required", prefix))
		}
		if o.Date == "" {
			errs = append(errs, fmt.Errorf("%s.date is required", prefix))
		} else if !validDate(o.Date) {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", prefix, o.Date))
		}
		if o.OrderID == "" {
			errs = append(errs, fmt.Errorf("%s.order_id is required", prefix))
		}
		if o.ItemID == "" {
			errs = append(errs, fmt.Errorf("%s.item_id is required", prefix))
		}
		if !o.Substituted && o.SubstituteItemID != "" {
			errs = append(errs, fmt.Errorf("%s.substitute_item_id set on a line that was not substituted", prefix))
		}

		if o.OrderID != "" && o.ItemID != "" {
			key := depot + "|" + o.OrderID + "|" + o.ItemID
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s: duplicate line %s/%s", prefix, o.OrderID, o.ItemID))
			}
			seen[key] = true
		}
	}
	return errs
}

func validateAssortment(rows []AssortmentImport, defaults *DefaultsImport) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, a := range rows {
		prefix := fmt.Sprintf("assortment[%d]", i)
		depot := depotOr(a.DepotID, defaults)
		eff := effectiveOr(a.EffectiveDate, defaults)

		if depot == "" {
			errs = append(errs, fmt.Errorf("%s.depot_id is required", prefix))
		}
		if a.ItemID == "" {
			errs = append(errs, fmt.Errorf("%s.item_id is required", prefix))
		}
		if a.Active == nil {
			errs = append(errs, fmt.Errorf("%s.active is required", prefix))
		}
		if eff == "" {
			errs = append(errs, fmt.Errorf("%s.effective_date is required", prefix))
		} else if !validDate(eff) {
			errs = append(errs, fmt.Errorf("%s.effective_date: invalid date format %q (expected YYYY-MM-DD)", prefix, eff))
		}

		if a.ItemID != "" && eff != "" {
			key := depot + "|" + a.ItemID + "|" + eff
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s: duplicate row for item %s on %s", prefix, a.ItemID, eff))
			}
			seen[key] = true
		}
	}
	return errs
}

func depotOr(v string, d *DefaultsImport) string {
	if d == nil {
		return v
	}
	return domain.FirstSet(v, d.DepotID)
}

func effectiveOr(v string, d *DefaultsImport) string {
	if d == nil {
		return v
	}
	return domain.FirstSet(v, d.EffectiveDate)
}
