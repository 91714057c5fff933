// README: Budget-constrained greedy selection of priced items.
package budget

import "sort"

// slotsPerDay is the one-item-per-time-slot policy shared with the scheduler.
const slotsPerDay = 3

// Allocate selects a subset of items maximizing count under the budget.
// Items are taken cheapest-first up to dayCount×3. Zero-priced items are
// always accepted while the count cap holds, even after the budget is spent;
// this is the fixed free-item policy. Allocation never fails: insufficient
// budget or candidates simply yield a smaller selection.
func Allocate(items []PricedItem, totalBudget float64, dayCount int) []PricedItem {
	if len(items) == 0 || dayCount <= 0 {
		return nil
	}
	maxItems := dayCount * slotsPerDay

	sorted := make([]PricedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPrice < sorted[j].TotalPrice
	})

	var selected []PricedItem
	var running float64
	for _, it := range sorted {
		if len(selected) >= maxItems {
			break
		}
		switch {
		case it.TotalPrice == 0:
			selected = append(selected, it)
		case running+it.TotalPrice <= totalBudget:
			selected = append(selected, it)
			running += it.TotalPrice
		}
		// Paid items that no longer fit are skipped, not fatal: the list is
		// sorted, but later zero-priced entries must still be reachable.
	}
	return selected
}
