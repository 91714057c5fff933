// README: Google Places enrichment for priced itinerary items.
package places

import (
	"context"
	"fmt"
	"log"

	"googlemaps.github.io/maps"

	"wayfarer/internal/modules/budget"
)

// typeTags maps Google place types onto the candidate tag vocabulary.
var typeTags = map[string]string{
	"museum":              "museum",
	"art_gallery":         "museum",
	"park":                "outdoor",
	"tourist_attraction":  "landmark",
	"point_of_interest":   "landmark",
	"historical_landmark": "historical",
	"church":              "religious",
	"restaurant":          "food",
	"cafe":                "food",
	"bar":                 "food",
	"zoo":                 "nature",
	"aquarium":            "nature",
	"amusement_park":      "entertainment",
	"movie_theater":       "entertainment",
	"night_club":          "entertainment",
	"shopping_mall":       "shopping",
	"store":               "shopping",
	"stadium":             "sports",
	"gym":                 "sports",
}

// Service enriches items with Google Places attributes: rating, price level,
// geometry, opening state. It is strictly additive — any lookup failure
// leaves the item as it was.
type Service struct {
	client *maps.Client
}

// NewService creates a Service with the given API key.
func NewService(apiKey string) (*Service, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Service{client: client}, nil
}

// EnrichItems looks up each item by name within the destination city and
// attaches whatever details come back. Returns the same slice with
// enrichment filled in where lookups succeeded.
func (s *Service) EnrichItems(ctx context.Context, items []budget.PricedItem, city string) []budget.PricedItem {
	for i := range items {
		enriched, err := s.lookup(ctx, items[i].Name, city)
		if err != nil {
			log.Printf("places: skipping %q: %v", items[i].Name, err)
			continue
		}
		items[i].Enrichment = enriched
		items[i].Tags = mergeTags(items[i].Tags, enriched.Types)
	}
	return items
}

func (s *Service) lookup(ctx context.Context, name, city string) (*budget.Enrichment, error) {
	found, err := s.client.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     name + ", " + city,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields:    []maps.PlaceSearchFieldMask{maps.PlaceSearchFieldMaskPlaceID},
	})
	if err != nil {
		return nil, fmt.Errorf("find place: %w", err)
	}
	if len(found.Candidates) == 0 {
		return nil, fmt.Errorf("no place candidates")
	}
	placeID := found.Candidates[0].PlaceID

	details, err := s.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskRatings,
			maps.PlaceDetailsFieldMaskUserRatingsTotal,
			maps.PlaceDetailsFieldMaskPriceLevel,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskOpeningHours,
			maps.PlaceDetailsFieldMaskTypes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}

	e := &budget.Enrichment{
		PlaceID:      placeID,
		Rating:       details.Rating,
		RatingsTotal: details.UserRatingsTotal,
		PriceLevel:   details.PriceLevel,
		Lat:          details.Geometry.Location.Lat,
		Lng:          details.Geometry.Location.Lng,
		Types:        details.Types,
	}
	if details.OpeningHours != nil {
		e.OpenNow = details.OpeningHours.OpenNow
	}
	return e, nil
}

// mergeTags unions mapped Google types into the existing tag set, preserving
// the original order of existing tags.
func mergeTags(existing []string, googleTypes []string) []string {
	seen := make(map[string]bool, len(existing))
	out := existing
	for _, t := range existing {
		seen[t] = true
	}
	for _, gt := range googleTypes {
		if tag, ok := typeTags[gt]; ok && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
