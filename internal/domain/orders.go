package domain

import (
	"sort"
	"time"
)

// OrderDetailRow is one ordered line. SubstituteItemID is empty when the
// line was not substituted.
type OrderDetailRow struct {
	DepotID          string
	Date             time.Time
	OrderID          string
	ItemID           string
	Substituted      bool
	SubstituteItemID string
}

// AssortmentRow records whether an item is stocked at a depot from
// EffectiveDate onwards.
type AssortmentRow struct {
	DepotID       string
	ItemID        string
	Active        bool
	EffectiveDate time.Time
}

// AssortmentState resolves the latest row per item; ties on effective date
// keep the later row in input order.
func AssortmentState(rows []AssortmentRow) map[string]AssortmentRow {
	state := make(map[string]AssortmentRow, len(rows))
	for _, r := range rows {
		prev, ok := state[r.ItemID]
		if !ok || !r.EffectiveDate.Before(prev.EffectiveDate) {
			state[r.ItemID] = r
		}
	}
	return state
}

// ActiveItems returns the set of item IDs active in the snapshot.
func ActiveItems(rows []AssortmentRow) map[string]bool {
	active := make(map[string]bool)
	for id, r := range AssortmentState(rows) {
		if r.Active {
			active[id] = true
		}
	}
	return active
}

// ChangedItems lists, in ascending order, the items whose active flag differs
// between two snapshots. An item absent from a snapshot counts as inactive.
func ChangedItems(before, after []AssortmentRow) []string {
	was := ActiveItems(before)
	now := ActiveItems(after)

	seen := make(map[string]bool)
	var changed []string
	for id := range was {
		if !now[id] && !seen[id] {
			seen[id] = true
			changed = append(changed, id)
		}
	}
	for id := range now {
		if !was[id] && !seen[id] {
			seen[id] = true
			changed = append(changed, id)
		}
	}
	sort.Strings(changed)
	return changed
}
