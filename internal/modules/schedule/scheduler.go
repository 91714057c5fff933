// README: Slot scheduler distributing items across days and time slots.
package schedule

import "wayfarer/internal/modules/budget"

// Build distributes items over dayCount days and three fixed slots.
//
// Primary pass: items fill (day, slot) pairs in traversal order — all three
// slots of day 1, then day 2, and so on, one item per pair. Overflow pass:
// each remaining item goes to the slot currently holding the fewest items
// across all days (ties broken by a round-robin day cursor, then lowest day
// index, then slot order morning < afternoon < evening). Every placed item
// lands in exactly one (day, slot); nothing is dropped or duplicated.
// Scheduling never fails: fewer items than pairs simply leaves slots empty.
func Build(items []budget.PricedItem, dayCount int) TripPlan {
	if dayCount <= 0 {
		return nil
	}
	plan := make(TripPlan, dayCount)
	if len(items) == 0 {
		return plan
	}

	idx := 0
primary:
	for day := 0; day < dayCount; day++ {
		for _, s := range slotOrder {
			if idx >= len(items) {
				break primary
			}
			list := plan[day].slot(s)
			*list = append(*list, items[idx])
			idx++
		}
	}

	// Overflow: balance the remainder onto the least-loaded slots.
	cursor := 0
	for ; idx < len(items); idx++ {
		day, s := leastLoaded(plan, cursor)
		list := plan[day].slot(s)
		*list = append(*list, items[idx])
		cursor = (day + 1) % dayCount
	}
	return plan
}

// leastLoaded finds the (day, slot) pair with the fewest items. Among pairs
// sharing the minimum it prefers the cursor day, then the lowest day index,
// with slots compared morning < afternoon < evening within a day.
func leastLoaded(plan TripPlan, cursor int) (int, Slot) {
	minCount := -1
	for day := range plan {
		for _, s := range slotOrder {
			if n := len(*plan[day].slot(s)); minCount < 0 || n < minCount {
				minCount = n
			}
		}
	}

	// Day scan starts at the cursor so overflow rotates across days.
	for off := 0; off < len(plan); off++ {
		day := (cursor + off) % len(plan)
		for _, s := range slotOrder {
			if len(*plan[day].slot(s)) == minCount {
				return day, s
			}
		}
	}
	return 0, Morning
}
