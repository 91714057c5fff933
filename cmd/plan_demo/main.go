// README: Interactive CLI demo: interview on stdin, then a printed plan.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/interview"
	"wayfarer/internal/modules/preference"
	"wayfarer/internal/modules/review"
	"wayfarer/internal/modules/scout"
	"wayfarer/internal/service"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}
	cfg := config.TripConfig{DefaultBudget: 600, DefaultDays: 3, DefaultPeople: 1}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	classifier, err := preference.NewClassifier(ctx, provider)
	if err != nil {
		log.Fatalf("Failed to embed slot labels: %v", err)
	}
	hub := service.NewHub(
		provider,
		classifier,
		service.NewPlanner(scout.NewService(provider), review.NewService(provider), nil),
		nil, nil,
		cfg,
		config.InterviewConfig{MaxQuestions: interview.DefaultMaxQuestions, MergeThreshold: preference.DefaultMergeThreshold},
	)

	in := bufio.NewScanner(os.Stdin)
	fmt.Println("Tell me about the trip you have in mind:")
	text := readLine(in)

	id, outcome, err := hub.StartSession(ctx, text, interview.TripParams{})
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	for outcome.Kind == interview.AskQuestion {
		fmt.Printf("\n%s\n", outcome.Question)
		outcome, err = hub.Message(ctx, id, readLine(in))
		if err != nil {
			log.Fatalf("Interview turn failed: %v", err)
		}
	}

	profile := outcome.Profile
	fmt.Printf("\nDestination: %s\n%s\n\nBuilding your plan...\n", profile.Destination, profile.Summary)

	itinerary, err := hub.BuildPlan(ctx, id)
	if err != nil {
		log.Fatalf("Failed to build plan: %v", err)
	}

	for day, dp := range itinerary.Plan {
		fmt.Printf("\n=== Day %d ===\n", day+1)
		printSlot("Morning", dp.Morning)
		printSlot("Afternoon", dp.Afternoon)
		printSlot("Evening", dp.Evening)
	}
	s := itinerary.Summary
	fmt.Printf("\nTotal: %.2f EUR (%.0f%% of budget), %.2f EUR left, %d activities\n",
		s.TotalCost, s.Utilization, s.RemainingBudget, s.ItemCount)
	fmt.Printf("Expert review: %.2f/5 - %s\n", itinerary.Review.Overall(), itinerary.Review.Comment)
}

func printSlot(label string, items []budget.PricedItem) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, it := range items {
		fmt.Printf("  - %s (%.2f EUR) %s\n", it.Name, it.TotalPrice, it.ShortDescription)
	}
}

func readLine(in *bufio.Scanner) string {
	for {
		if !in.Scan() {
			fmt.Println()
			os.Exit(0)
		}
		if text := strings.TrimSpace(in.Text()); text != "" {
			return text
		}
	}
}
