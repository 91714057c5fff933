// README: Trip plan structure: days and fixed time-of-day slots.
package schedule

import "wayfarer/internal/modules/budget"

// Slot is a fixed time-of-day bucket within a day.
type Slot string

const (
	Morning   Slot = "morning"
	Afternoon Slot = "afternoon"
	Evening   Slot = "evening"
)

// slotOrder fixes the traversal and tie-break order.
var slotOrder = []Slot{Morning, Afternoon, Evening}

// DayPlan holds the items placed in one day's slots.
type DayPlan struct {
	Morning   []budget.PricedItem `json:"morning"`
	Afternoon []budget.PricedItem `json:"afternoon"`
	Evening   []budget.PricedItem `json:"evening"`
}

func (d *DayPlan) slot(s Slot) *[]budget.PricedItem {
	switch s {
	case Morning:
		return &d.Morning
	case Afternoon:
		return &d.Afternoon
	default:
		return &d.Evening
	}
}

// ItemCount is the number of items placed in this day.
func (d *DayPlan) ItemCount() int {
	return len(d.Morning) + len(d.Afternoon) + len(d.Evening)
}

// TripPlan is the fixed-length ordered list of day plans.
type TripPlan []DayPlan

// ItemCount is the total number of placed items.
func (p TripPlan) ItemCount() int {
	n := 0
	for i := range p {
		n += p[i].ItemCount()
	}
	return n
}
