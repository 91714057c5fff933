// README: Preference profile data model: slots, snippets, session state.
package preference

import "strings"

// SlotID is a fixed topical bucket for accumulated preference text.
type SlotID string

const (
	SlotActivities  SlotID = "activities"
	SlotPace        SlotID = "pace"
	SlotFood        SlotID = "food"
	SlotConstraints SlotID = "constraints"
	SlotBudget      SlotID = "budget"
	SlotOther       SlotID = "other"
)

// slotOrder is the declaration order, used for classification tie-breaks and
// for stable summary output.
var slotOrder = []SlotID{
	SlotActivities,
	SlotPace,
	SlotFood,
	SlotConstraints,
	SlotBudget,
	SlotOther,
}

// slotLabels are the natural-language descriptions each slot is anchored to
// in embedding space. Extending the slot set means redeploying these.
var slotLabels = map[SlotID]string{
	SlotActivities:  "Preferred activities or attractions like hiking, parks, nightlife, beaches, museums.",
	SlotPace:        "Preferred travel pace like relaxed, slow, or packed schedule.",
	SlotFood:        "Mentions restaurants, food, cuisine preferences.",
	SlotConstraints: "Mentions children, accessibility, mobility limitations, disabilities.",
	SlotBudget:      "Mentions budget, cheap/expensive, price range, cost.",
	SlotOther:       "Other preferences not covered above.",
}

// Snippet is one merged or standalone statement of preference.
type Snippet struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Slot      SlotID    `json:"slot"`
}

// State is the evolving semantic profile for one planning session.
// Only the Tracker mutates it; callers must serialize turns.
type State struct {
	Snippets []Snippet `json:"snippets"`
	// Slots holds, per slot, the space-joined texts of its snippets in
	// arrival order. Rebuilt from scratch on every update.
	Slots map[SlotID]string `json:"slots"`
	// AggregateEmbedding is the element-wise mean of all snippet embeddings,
	// nil while no snippets exist.
	AggregateEmbedding []float64 `json:"aggregate_embedding,omitempty"`
	TurnCount          int       `json:"turn_count"`
}

func NewState() *State {
	slots := make(map[SlotID]string, len(slotOrder))
	for _, s := range slotOrder {
		slots[s] = ""
	}
	return &State{Slots: slots}
}

// Summary renders the per-slot profile as prompt-ready lines.
func (s *State) Summary() string {
	labels := map[SlotID]string{
		SlotActivities:  "Activities",
		SlotPace:        "Pace",
		SlotFood:        "Food",
		SlotConstraints: "Constraints",
		SlotBudget:      "Budget",
	}
	var lines []string
	for _, slot := range slotOrder {
		label, ok := labels[slot]
		if !ok {
			continue
		}
		value := s.Slots[slot]
		if value == "" {
			value = "not specified yet"
		}
		lines = append(lines, label+": "+value)
	}
	return strings.Join(lines, "\n")
}
