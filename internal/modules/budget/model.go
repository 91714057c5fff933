// README: Priced item and budget summary models.
package budget

import "wayfarer/internal/modules/scout"

// Enrichment carries optional place-lookup attributes merged onto a priced
// item. Absence never blocks allocation or scheduling.
type Enrichment struct {
	PlaceID      string   `json:"place_id,omitempty"`
	Rating       float32  `json:"rating,omitempty"`
	RatingsTotal int      `json:"ratings_total,omitempty"`
	PriceLevel   int      `json:"price_level,omitempty"`
	Lat          float64  `json:"lat,omitempty"`
	Lng          float64  `json:"lng,omitempty"`
	OpenNow      *bool    `json:"open_now,omitempty"`
	Types        []string `json:"types,omitempty"`
}

// PricedItem is a candidate with its group total folded in.
// Derived once via Price and never mutated afterwards (enrichment attaches
// a separate struct rather than rewriting candidate fields).
type PricedItem struct {
	scout.CandidateItem
	// TotalPrice = PricePerPerson × party size.
	TotalPrice float64     `json:"total_price"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// Price derives priced items for the given party size.
func Price(items []scout.CandidateItem, partySize int) []PricedItem {
	if partySize < 1 {
		partySize = 1
	}
	out := make([]PricedItem, 0, len(items))
	for _, it := range items {
		out = append(out, PricedItem{
			CandidateItem: it,
			TotalPrice:    it.PricePerPerson * float64(partySize),
		})
	}
	return out
}

// Summary describes how the selection spends the budget.
type Summary struct {
	TotalCost       float64 `json:"total_cost"`
	RemainingBudget float64 `json:"remaining_budget"`
	CostPerPerson   float64 `json:"cost_per_person"`
	Utilization     float64 `json:"utilization_pct"`
	ItemCount       int     `json:"item_count"`
}

// Summarize computes the budget summary for a selection.
func Summarize(selected []PricedItem, totalBudget float64, people int) Summary {
	var total float64
	for _, it := range selected {
		total += it.TotalPrice
	}
	s := Summary{
		TotalCost:       total,
		RemainingBudget: totalBudget - total,
		ItemCount:       len(selected),
	}
	if people > 0 {
		s.CostPerPerson = total / float64(people)
	}
	if totalBudget > 0 {
		s.Utilization = total / totalBudget * 100
	}
	return s
}
