// README: Itinerary quality scores.
package review

// Scores rates a built itinerary on four dimensions, integers 1 to 5.
type Scores struct {
	InterestMatch int    `json:"interest_match"`
	BudgetRealism int    `json:"budget_realism"`
	Logistics     int    `json:"logistics"`
	ConstraintFit int    `json:"suitability_for_constraints"`
	Comment       string `json:"comment"`
}

// Overall is the mean of the four dimension scores.
func (s Scores) Overall() float64 {
	return float64(s.InterestMatch+s.BudgetRealism+s.Logistics+s.ConstraintFit) / 4
}
