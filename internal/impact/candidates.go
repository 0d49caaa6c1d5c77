package impact

import (
	"sort"

	"github.com/depotcb/cbagent/internal/domain"
)

// DiscoverCandidates lists items ordered in at least minOrders distinct
// orders that are not active in the assortment, most ordered first, capped
// at limit (limit <= 0 means no cap).
func DiscoverCandidates(rows []domain.OrderDetailRow, assortment []domain.AssortmentRow, minOrders, limit int) []string {
	idx := NewOrderIndex(rows)
	active := domain.ActiveItems(assortment)

	var ids []string
	for _, id := range idx.Items() {
		if active[id] || idx.QualifyingOrders(id) < minOrders {
			continue
		}
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return idx.QualifyingOrders(ids[i]) > idx.QualifyingOrders(ids[j])
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
