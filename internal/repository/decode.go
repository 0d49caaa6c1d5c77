package repository

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
)

// normalizeValue converts driver-specific values into plain Go values:
// byte slices become strings and Valuer types (numeric, date wrappers)
// are unwrapped.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, float64, time.Time:
		return x
	case []byte:
		return string(x)
	case driver.Valuer:
		if inner, err := x.Value(); err == nil {
			return normalizeValue(inner)
		}
	}
	return v
}

func rowString(r app.Row, col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("column %s missing", col)
	}
	if v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", col, err)
	}
	return s, nil
}

func rowInt(r app.Row, col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("column %s missing", col)
	}
	if v == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		// warehouses report SUM() over integers as decimals
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		n = int64(f)
	}
	return n, nil
}

func rowFloatPtr(r app.Row, col string) (*float64, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &f, nil
}

func rowBool(r app.Row, col string) (bool, error) {
	v, ok := r[col]
	if !ok {
		return false, fmt.Errorf("column %s missing", col)
	}
	if v == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("column %s: %w", col, err)
	}
	return b, nil
}

// rowDate accepts time values and strings starting with YYYY-MM-DD.
func rowDate(r app.Row, col string) (time.Time, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("column %s missing", col)
	}
	if t, ok := v.(time.Time); ok {
		return domain.Day(t.UTC()), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	s = strings.TrimSpace(s)
	if len(s) >= len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

func decodeErr(kind string, i int, err error) error {
	return app.WrapError(app.ErrStoreQueryRejected, err, fmt.Sprintf("decoding %s row %d", kind, i))
}

// DecodeMetricRows converts fetched rows into metric rows.
func DecodeMetricRows(rs ResultSet) ([]domain.MetricRow, error) {
	out := make([]domain.MetricRow, 0, len(rs.Rows))
	for i, r := range rs.Rows {
		var m domain.MetricRow
		var err error
		if m.DepotID, err = rowString(r, "depot_id"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.Date, err = rowDate(r, "metric_date"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.CatchmentCount, err = rowInt(r, "catchment_count"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.EntitledCount, err = rowInt(r, "entitled_count"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.AttainedCount, err = rowInt(r, "attained_count"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.CBPercent, err = rowFloatPtr(r, "cb_percent"); err != nil {
			return nil, decodeErr("metric", i, err)
		}
		if m.EntitledCount == 0 {
			m.CBPercent = nil
		}
		out = append(out, m)
	}
	return out, nil
}

func DecodeOrderDetails(rs ResultSet) ([]domain.OrderDetailRow, error) {
	out := make([]domain.OrderDetailRow, 0, len(rs.Rows))
	for i, r := range rs.Rows {
		var o domain.OrderDetailRow
		var err error
		if o.DepotID, err = rowString(r, "depot_id"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		if o.Date, err = rowDate(r, "order_date"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		if o.OrderID, err = rowString(r, "order_id"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		if o.ItemID, err = rowString(r, "item_id"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		if o.Substituted, err = rowBool(r, "substituted"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		if o.SubstituteItemID, err = rowString(r, "substitute_item_id"); err != nil {
			return nil, decodeErr("order", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func DecodeAssortment(rs ResultSet) ([]domain.AssortmentRow, error) {
	out := make([]domain.AssortmentRow, 0, len(rs.Rows))
	for i, r := range rs.Rows {
		var a domain.AssortmentRow
		var err error
		if a.DepotID, err = rowString(r, "depot_id"); err != nil {
			return nil, decodeErr("assortment", i, err)
		}
		if a.ItemID, err = rowString(r, "item_id"); err != nil {
			return nil, decodeErr("assortment", i, err)
		}
		if a.Active, err = rowBool(r, "active"); err != nil {
			return nil, decodeErr("assortment", i, err)
		}
		if a.EffectiveDate, err = rowDate(r, "effective_date"); err != nil {
			return nil, decodeErr("assortment", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
