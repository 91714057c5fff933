// README: LLM-scored itinerary review.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"wayfarer/internal/ai"
	"wayfarer/internal/extract"
	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/interview"
	"wayfarer/internal/modules/schedule"
)

const reviewTemperature = 0.3

// defaultScore stands in for any dimension the model omitted or mangled.
const defaultScore = 3

const fallbackComment = "Evaluation could not be completed. Using default scores."

var scoreKeys = []string{"interest_match", "budget_realism", "logistics", "suitability_for_constraints"}

// Service asks the text-generation service to rate a finished itinerary
// against the traveler's profile. Review is advisory: it never fails the
// planning pipeline, degrading to neutral scores instead.
type Service struct {
	llm ai.TextGenerator
}

func NewService(llm ai.TextGenerator) *Service {
	return &Service{llm: llm}
}

// Evaluate scores the itinerary on interest match, budget realism, logistics
// and constraint fit, each clamped to 1..5.
func (s *Service) Evaluate(ctx context.Context, profile *interview.TravelProfile, plan schedule.TripPlan, summary budget.Summary) Scores {
	prompt, err := buildPrompt(profile, plan, summary)
	if err != nil {
		log.Printf("review: %v", err)
		return fallbackScores()
	}

	raw, err := s.llm.Generate(ctx, prompt, reviewTemperature)
	if err != nil {
		log.Printf("review: generation: %v", err)
		return fallbackScores()
	}

	obj, err := extract.Object(raw, extract.ObjectSpec{
		RequiredKeys: append(scoreKeys, "comment"),
		Defaults: map[string]any{
			"interest_match":              defaultScore,
			"budget_realism":              defaultScore,
			"logistics":                   defaultScore,
			"suitability_for_constraints": defaultScore,
			"comment":                     "Evaluation completed",
		},
	})
	if err != nil {
		log.Printf("review: unparseable scores (%v)", err)
		return fallbackScores()
	}

	return Scores{
		InterestMatch: clampScore(obj["interest_match"]),
		BudgetRealism: clampScore(obj["budget_realism"]),
		Logistics:     clampScore(obj["logistics"]),
		ConstraintFit: clampScore(obj["suitability_for_constraints"]),
		Comment:       comment(obj["comment"]),
	}
}

func fallbackScores() Scores {
	return Scores{
		InterestMatch: defaultScore,
		BudgetRealism: defaultScore,
		Logistics:     defaultScore,
		ConstraintFit: defaultScore,
		Comment:       fallbackComment,
	}
}

// clampScore coerces a decoded value into the 1..5 integer range; anything
// non-numeric scores neutral.
func clampScore(v any) int {
	f, ok := v.(float64)
	if !ok {
		return defaultScore
	}
	n := int(f)
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

func comment(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "Evaluation completed"
}

func buildPrompt(p *interview.TravelProfile, plan schedule.TripPlan, summary budget.Summary) (string, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	return fmt.Sprintf(`You are an impartial travel expert evaluating a travel itinerary.

USER PROFILE:
Interests: %s
City: %s
Budget: %.0f EUR for %d people
With children: %s
With disabled traveler: %s

PROPOSED ITINERARY:
%s

BUDGET SUMMARY:
%s

Rate the itinerary from 1 to 5 (integers only) on these dimensions:
1. interest_match: How well does the itinerary match the user's stated interests?
2. budget_realism: Is the budget allocation realistic and appropriate?
3. logistics: How well does the schedule flow? Are time slots reasonably filled?
4. suitability_for_constraints: Does it accommodate any constraints (children, disabilities)?

Also provide a short comment summarizing your assessment.

Return ONLY valid JSON with this exact structure:
{
  "interest_match": 1-5,
  "budget_realism": 1-5,
  "logistics": 1-5,
  "suitability_for_constraints": 1-5,
  "comment": "Your concise evaluation comment here"
}`,
		p.Summary,
		p.Destination,
		p.Constraints.Budget, p.Constraints.People,
		boolWord(p.Constraints.WithChildren),
		boolWord(p.Constraints.WithDisabled),
		planJSON,
		summaryJSON,
	), nil
}

func boolWord(b *bool) string {
	switch {
	case b == nil:
		return "unknown"
	case *b:
		return "yes"
	default:
		return "no"
	}
}
