// README: Candidate activity model produced by the scout.
package scout

// CandidateItem is one proposed activity for the chosen destination.
// Consumed read-only by the budget allocator.
type CandidateItem struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	PricePerPerson   float64  `json:"price_per_person"`
	Tags             []string `json:"tags"`
	Rationale        string   `json:"rationale"`
}

// CandidateCount is the contractual batch size: the scout returns exactly
// this many candidates or nothing.
const CandidateCount = 10

// requiredKeys every candidate object must carry.
var requiredKeys = []string{"name", "short_description", "price_per_person", "tags", "rationale"}
