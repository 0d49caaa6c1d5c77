package impact

import (
	"sort"

	"github.com/depotcb/cbagent/internal/domain"
)

type itemOrders struct {
	orders      map[string]bool
	substituted map[string]bool
	fulfilled   map[string]bool
	substitutes map[string]int
}

// OrderIndex aggregates order lines per item. Build it once per window and
// share it across simulations.
type OrderIndex struct {
	orders map[string]bool
	items  map[string]*itemOrders
}

func NewOrderIndex(rows []domain.OrderDetailRow) *OrderIndex {
	idx := &OrderIndex{
		orders: make(map[string]bool),
		items:  make(map[string]*itemOrders),
	}
	for _, r := range rows {
		idx.orders[r.OrderID] = true
		it := idx.items[r.ItemID]
		if it == nil {
			it = &itemOrders{
				orders:      make(map[string]bool),
				substituted: make(map[string]bool),
				fulfilled:   make(map[string]bool),
				substitutes: make(map[string]int),
			}
			idx.items[r.ItemID] = it
		}
		it.orders[r.OrderID] = true
		// A line "substituted" by the same item was fulfilled as ordered.
		if r.Substituted && r.SubstituteItemID != r.ItemID {
			it.substituted[r.OrderID] = true
			if r.SubstituteItemID != "" {
				it.substitutes[r.SubstituteItemID]++
			}
		} else {
			it.fulfilled[r.OrderID] = true
		}
	}
	return idx
}

// TotalOrders is the number of distinct orders in the window.
func (idx *OrderIndex) TotalOrders() int {
	return len(idx.orders)
}

// QualifyingOrders is the number of distinct orders with a line for item.
func (idx *OrderIndex) QualifyingOrders(itemID string) int {
	if it := idx.items[itemID]; it != nil {
		return len(it.orders)
	}
	return 0
}

// SubstitutedOrders is the number of qualifying orders where the item was
// replaced by a different one.
func (idx *OrderIndex) SubstitutedOrders(itemID string) int {
	if it := idx.items[itemID]; it != nil {
		return len(it.substituted)
	}
	return 0
}

// FulfilledOrders is the number of qualifying orders where the item was
// delivered as ordered.
func (idx *OrderIndex) FulfilledOrders(itemID string) int {
	if it := idx.items[itemID]; it != nil {
		return len(it.fulfilled)
	}
	return 0
}

// Substitutes returns up to n items most often delivered in place of
// itemID, by count then id.
func (idx *OrderIndex) Substitutes(itemID string, n int) []string {
	it := idx.items[itemID]
	if it == nil || len(it.substitutes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(it.substitutes))
	for id := range it.substitutes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := it.substitutes[ids[i]], it.substitutes[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// Items returns every indexed item id in ascending order.
func (idx *OrderIndex) Items() []string {
	ids := make([]string, 0, len(idx.items))
	for id := range idx.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
