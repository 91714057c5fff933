// README: Scout service generating candidate activities via the LLM.
package scout

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"wayfarer/internal/ai"
	"wayfarer/internal/extract"
	"wayfarer/internal/modules/interview"
)

const scoutTemperature = 0.8

// priceUnset marks a candidate whose price the model omitted; it is resolved
// by tag class before the candidate leaves this package.
const priceUnset = -1.0

var numberRe = regexp.MustCompile(`\d+\.?\d*`)

// Service asks the text-generation service for candidate activities and
// parses the reply in strict array mode: exactly CandidateCount typed
// candidates or a typed extraction error. Under-delivering silently is worse
// than failing loudly here.
type Service struct {
	llm ai.TextGenerator
}

func NewService(llm ai.TextGenerator) *Service {
	return &Service{llm: llm}
}

// GenerateCandidates returns exactly CandidateCount candidates matching the
// finalized profile.
func (s *Service) GenerateCandidates(ctx context.Context, profile *interview.TravelProfile) ([]CandidateItem, error) {
	raw, err := s.llm.Generate(ctx, buildPrompt(profile), scoutTemperature)
	if err != nil {
		return nil, fmt.Errorf("scout generation: %w", err)
	}

	elems, err := extract.Array(raw, extract.ArraySpec{
		Count:        CandidateCount,
		Strict:       true,
		RequiredKeys: requiredKeys,
		MinKey:       "name",
		Defaults: map[string]any{
			"short_description": "",
			"price_per_person":  priceUnset,
			"tags":              []any{"sightseeing"},
			"rationale":         "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scout extraction: %w", err)
	}

	items := make([]CandidateItem, 0, len(elems))
	for _, obj := range elems {
		items = append(items, fromObject(obj))
	}
	log.Printf("scout: %d candidates for %s", len(items), profile.Destination)
	return items, nil
}

// fromObject converts a validated element into a typed candidate, resolving
// sloppy prices (strings, negatives, omissions).
func fromObject(obj map[string]any) CandidateItem {
	item := CandidateItem{
		Name:             str(obj["name"]),
		ShortDescription: str(obj["short_description"]),
		Rationale:        str(obj["rationale"]),
		Tags:             tags(obj["tags"]),
	}
	price, ok := priceFrom(obj["price_per_person"])
	if !ok || price == priceUnset {
		price = estimatePrice(item.Tags)
	}
	if price < 0 {
		price = 0
	}
	item.PricePerPerson = price
	return item
}

// estimatePrice mirrors the per-tag defaults used when the model gives no
// usable price.
func estimatePrice(tags []string) float64 {
	for _, t := range tags {
		switch strings.ToLower(t) {
		case "museum", "gallery":
			return 15
		case "landmark", "viewpoint":
			return 20
		case "outdoor", "park", "free":
			return 0
		}
	}
	return 10
}

func priceFrom(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, true
	case string:
		if m := numberRe.FindString(p); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func tags(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{"sightseeing"}
	}
	var out []string
	for _, t := range arr {
		if s, ok := t.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"sightseeing"}
	}
	return out
}

func buildPrompt(p *interview.TravelProfile) string {
	constraints := p.Constraints
	return fmt.Sprintf(`You are a travel planning assistant.
The traveler wants a trip to %s.

TRAVELER PROFILE:
%s

CONSTRAINTS:
- With children: %s
- With disabled traveler: %s
- Budget (entire trip, group): %.0f EUR
- People: %d

Propose EXACTLY %d candidate activities in %s that match the profile and constraints.

For each activity, output an object with:
- name
- short_description
- price_per_person (number in EUR)
- tags: an array of strings
- rationale: one sentence explaining why this matches the profile.

Return ONLY a JSON array of EXACTLY %d objects (no extra text).`,
		p.Destination,
		p.Summary,
		boolWord(constraints.WithChildren),
		boolWord(constraints.WithDisabled),
		constraints.Budget,
		constraints.People,
		CandidateCount, p.Destination,
		CandidateCount,
	)
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
