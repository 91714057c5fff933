// README: Planner orchestrates candidates → enrichment → budget → schedule.
package service

import (
	"context"
	"log"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/interview"
	"wayfarer/internal/modules/review"
	"wayfarer/internal/modules/schedule"
	"wayfarer/internal/modules/scout"
	"wayfarer/internal/places"
)

// Enricher is the optional place-details collaborator. Its absence must
// never block planning.
type Enricher interface {
	EnrichItems(ctx context.Context, items []budget.PricedItem, city string) []budget.PricedItem
}

var _ Enricher = (*places.Service)(nil)

// Itinerary is the planner's output handed to profile consumers.
type Itinerary struct {
	Destination    string            `json:"destination"`
	Plan           schedule.TripPlan `json:"plan"`
	Summary        budget.Summary    `json:"summary"`
	Review         review.Scores     `json:"review"`
	CandidateCount int               `json:"candidate_count"`
}

// Planner turns a finalized travel profile into a day-by-day itinerary.
type Planner struct {
	scout    *scout.Service
	reviewer *review.Service
	enricher Enricher // nil when no place-lookup key is configured
}

func NewPlanner(scout *scout.Service, reviewer *review.Service, enricher Enricher) *Planner {
	return &Planner{scout: scout, reviewer: reviewer, enricher: enricher}
}

// BuildItinerary runs the full pipeline for one finalized profile.
// Candidate generation is the only step that can fail; allocation and
// scheduling degrade to smaller plans instead of erroring.
func (p *Planner) BuildItinerary(ctx context.Context, profile *interview.TravelProfile, days int) (*Itinerary, error) {
	candidates, err := p.scout.GenerateCandidates(ctx, profile)
	if err != nil {
		return nil, err
	}

	priced := budget.Price(candidates, profile.Constraints.People)
	if p.enricher != nil {
		priced = p.enricher.EnrichItems(ctx, priced, profile.Destination)
	}

	selected := budget.Allocate(priced, profile.Constraints.Budget, days)
	plan := schedule.Build(selected, days)
	summary := budget.Summarize(selected, profile.Constraints.Budget, profile.Constraints.People)
	scores := p.reviewer.Evaluate(ctx, profile, plan, summary)

	log.Printf("planner: %s: %d candidates -> %d selected, %.0f/%.0f EUR, review %.2f",
		profile.Destination, len(candidates), len(selected), summary.TotalCost, profile.Constraints.Budget, scores.Overall())

	return &Itinerary{
		Destination:    profile.Destination,
		Plan:           plan,
		Summary:        summary,
		Review:         scores,
		CandidateCount: len(candidates),
	}, nil
}
