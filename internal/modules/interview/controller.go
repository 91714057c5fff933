// README: Turn-bounded dialogue controller for the preference interview.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"wayfarer/internal/ai"
	"wayfarer/internal/extract"
	"wayfarer/internal/modules/preference"
)

const (
	// DefaultMaxQuestions caps the interview; each turn is a full round trip
	// to a slow external service.
	DefaultMaxQuestions = 3

	// fallbackDestination is the deterministic choice when the service never
	// committed to one.
	fallbackDestination = "Rome"

	// fallbackQuestion is asked when the service reply cannot be parsed.
	fallbackQuestion = "What type of activities or attractions interest you most?"

	dialogueTemperature = 0.7
)

// Controller runs the two-state interview machine: Collecting until either
// the service finalizes or the question budget runs out, then Finalized.
type Controller struct {
	tracker *preference.Tracker
	llm     ai.TextGenerator
	trip    TripParams

	state          *preference.State
	maxQuestions   int
	questionsAsked int
	finalized      bool
	profile        *TravelProfile
}

func NewController(tracker *preference.Tracker, llm ai.TextGenerator, trip TripParams, maxQuestions int) *Controller {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Controller{
		tracker:      tracker,
		llm:          llm,
		trip:         trip,
		state:        preference.NewState(),
		maxQuestions: maxQuestions,
	}
}

// State exposes the preference state for prompt building and finalization.
// Callers must not mutate it.
func (c *Controller) State() *preference.State { return c.state }

// Profile returns the finalized profile, nil while still collecting.
func (c *Controller) Profile() *TravelProfile { return c.profile }

// Start ingests the traveler's opening message and asks the first interview
// question. The first turn can never finalize: at least one disambiguation
// signal is required before committing to a destination. A service failure
// here is the one terminal session-start failure.
func (c *Controller) Start(ctx context.Context, initialText string) (Outcome, error) {
	if c.finalized {
		return Outcome{}, ErrFinalized
	}
	if err := c.tracker.Update(ctx, c.state, initialText); err != nil {
		return Outcome{}, fmt.Errorf("update preferences: %w", err)
	}

	raw, err := c.llm.Generate(ctx, c.buildPrompt(initialText), dialogueTemperature)
	if err != nil {
		return Outcome{}, serviceError(err)
	}

	question := fallbackQuestion
	if d, err := c.parseDecision(raw); err == nil && strings.TrimSpace(d.Question) != "" {
		// Even if the service tried to finalize, only its question is used.
		question = d.Question
	}
	c.questionsAsked++
	return Outcome{Kind: AskQuestion, Question: question}, nil
}

// Continue ingests one answer and either asks the next question or
// finalizes. Extraction and service failures are recovered here: a fallback
// clarifying question while budget remains, a forced finalize once it is
// exhausted. They are never surfaced as hard failures.
func (c *Controller) Continue(ctx context.Context, answerText string) (Outcome, error) {
	if c.finalized {
		return Outcome{}, ErrFinalized
	}
	if err := c.tracker.Update(ctx, c.state, answerText); err != nil {
		return Outcome{}, fmt.Errorf("update preferences: %w", err)
	}

	budgetExhausted := c.questionsAsked >= c.maxQuestions

	raw, err := c.llm.Generate(ctx, c.buildPrompt(answerText), dialogueTemperature)
	if err != nil {
		log.Printf("interview: service error: %v", err)
		if budgetExhausted {
			return c.finalize(decision{}), nil
		}
		return c.askFallback(), nil
	}

	d, err := c.parseDecision(raw)
	if err != nil {
		log.Printf("interview: unparseable decision (%v)", err)
		if budgetExhausted {
			return c.finalize(decision{}), nil
		}
		return c.askFallback(), nil
	}

	if d.Action == "finalize" {
		return c.finalize(d), nil
	}
	if budgetExhausted {
		// The service wants another question but the budget is spent:
		// override to finalize with whatever it still told us.
		return c.finalize(d), nil
	}

	question := strings.TrimSpace(d.Question)
	if question == "" {
		question = fallbackQuestion
	}
	c.questionsAsked++
	return Outcome{Kind: AskQuestion, Question: question}, nil
}

func (c *Controller) askFallback() Outcome {
	c.questionsAsked++
	return Outcome{Kind: AskQuestion, Question: fallbackQuestion}
}

// finalize builds the travel profile from the decision plus accumulated slot
// text and moves to the terminal state.
func (c *Controller) finalize(d decision) Outcome {
	summary := strings.TrimSpace(d.ProfileSummary)
	if summary == "" {
		summary = c.state.Summary()
	}
	destination := strings.TrimSpace(d.ChosenDestination)
	if destination == "" {
		destination = fallbackDestination
	}

	constraints := d.Constraints
	if constraints.Budget <= 0 {
		constraints.Budget = c.trip.Budget
	}
	if constraints.People <= 0 {
		constraints.People = c.trip.People
	}

	slots := make(map[preference.SlotID]string, len(c.state.Slots))
	for k, v := range c.state.Slots {
		slots[k] = v
	}

	c.profile = &TravelProfile{
		Summary:           summary,
		Destination:       destination,
		Constraints:       constraints,
		Slots:             slots,
		InterestEmbedding: c.state.AggregateEmbedding,
		QuestionsAsked:    c.questionsAsked,
	}
	c.finalized = true
	return Outcome{Kind: Finalize, Profile: c.profile}
}

// parseDecision validates raw service output into a typed decision via
// non-strict object extraction.
func (c *Controller) parseDecision(raw string) (decision, error) {
	obj, err := extract.Object(raw, extract.ObjectSpec{
		RequiredKeys: decisionFields,
		Defaults: map[string]any{
			"question":           "",
			"chosen_destination": "",
			"profile_summary":    "",
			"constraints":        map[string]any{},
		},
	})
	if err != nil {
		return decision{}, err
	}

	d := decision{
		Action:            asString(obj["action"]),
		Question:          asString(obj["question"]),
		ChosenDestination: asString(obj["chosen_destination"]),
		ProfileSummary:    asString(obj["profile_summary"]),
	}
	if d.Action != "ask_question" && d.Action != "finalize" {
		d.Action = "ask_question"
	}

	if cm, ok := obj["constraints"].(map[string]any); ok {
		d.Constraints.WithChildren = asBoolPtr(cm["with_children"])
		d.Constraints.WithDisabled = asBoolPtr(cm["with_disabled"])
		if v, ok := cm["budget"].(float64); ok {
			d.Constraints.Budget = v
		}
		if v, ok := cm["people"].(float64); ok {
			d.Constraints.People = int(v)
		}
	}
	return d, nil
}

func serviceError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBoolPtr(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}
