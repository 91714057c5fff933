package interview

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"wayfarer/internal/modules/preference"
)

// hashEmbedder is a deterministic, unit-normalized bag-of-words embedder.
// Controller tests only need stable vectors, not semantic quality.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, 16)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%16]++
	}
	return preference.Normalize(vec), nil
}

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ float32) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("fake llm: no scripted response")
}

func newTestController(t *testing.T, llm *fakeLLM) *Controller {
	t.Helper()
	classifier, err := preference.NewClassifier(context.Background(), hashEmbedder{})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	tracker := preference.NewTracker(classifier, preference.DefaultMergeThreshold)
	return NewController(tracker, llm, TripParams{Budget: 600, People: 2, Days: 3}, 3)
}

const askJSON = `{"action":"ask_question","question":"Do you prefer museums or nature?","chosen_destination":null,"profile_summary":"","constraints":{}}`
const finalizeJSON = `{"action":"finalize","question":"","chosen_destination":"Lisbon","profile_summary":"Loves coastal walks and seafood","constraints":{"with_children":false,"with_disabled":null,"budget":600,"people":2}}`

func TestStart_AlwaysAsksQuestion(t *testing.T) {
	// Even a service that immediately tries to finalize gets overridden.
	llm := &fakeLLM{responses: []string{finalizeJSON}}
	c := newTestController(t, llm)

	out, err := c.Start(context.Background(), "I want a short beach trip")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.Kind != AskQuestion {
		t.Fatalf("first turn finalized; want AskQuestion")
	}
	if out.Question == "" {
		t.Error("empty first question")
	}
}

func TestStart_ServiceErrorIsTerminal(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	c := newTestController(t, llm)

	_, err := c.Start(context.Background(), "hello")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("want ErrServiceUnavailable, got %v", err)
	}
}

func TestStart_TimeoutClassified(t *testing.T) {
	llm := &fakeLLM{errs: []error{context.DeadlineExceeded}}
	c := newTestController(t, llm)

	_, err := c.Start(context.Background(), "hello")
	if !errors.Is(err, ErrServiceTimeout) {
		t.Fatalf("want ErrServiceTimeout, got %v", err)
	}
}

func TestContinue_HonorsFinalize(t *testing.T) {
	llm := &fakeLLM{responses: []string{askJSON, finalizeJSON}}
	c := newTestController(t, llm)
	ctx := context.Background()

	if _, err := c.Start(ctx, "I like walking and seafood"); err != nil {
		t.Fatal(err)
	}
	out, err := c.Continue(ctx, "Nature please. Nothing crowded")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != Finalize {
		t.Fatalf("want Finalize, got ask %q", out.Question)
	}
	if out.Profile.Destination != "Lisbon" {
		t.Errorf("destination = %q", out.Profile.Destination)
	}
	if out.Profile.Constraints.People != 2 || out.Profile.Constraints.Budget != 600 {
		t.Errorf("constraints = %+v", out.Profile.Constraints)
	}
	if out.Profile.Constraints.WithChildren == nil || *out.Profile.Constraints.WithChildren {
		t.Errorf("with_children = %v", out.Profile.Constraints.WithChildren)
	}
}

func TestContinue_ForcedFinalizeAfterMaxQuestions(t *testing.T) {
	// Service insists on asking forever; budget is 3 questions.
	llm := &fakeLLM{responses: []string{askJSON, askJSON, askJSON, askJSON}}
	c := newTestController(t, llm)
	ctx := context.Background()

	if out, err := c.Start(ctx, "City trip with good food"); err != nil || out.Kind != AskQuestion {
		t.Fatalf("start: %v %v", out, err)
	}
	for i := 0; i < 2; i++ {
		out, err := c.Continue(ctx, "Some answer with detail")
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != AskQuestion {
			t.Fatalf("turn %d finalized early", i+2)
		}
	}

	// Question budget is now spent; the service's ask must be overridden.
	out, err := c.Continue(ctx, "Final answer")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != Finalize {
		t.Fatal("controller exceeded the question budget")
	}
	if out.Profile.Destination != "Rome" {
		t.Errorf("fallback destination = %q, want Rome", out.Profile.Destination)
	}
	if out.Profile.Summary == "" {
		t.Error("forced finalize produced empty summary")
	}
}

func TestContinue_ExtractionFailureFallsBackToQuestion(t *testing.T) {
	llm := &fakeLLM{responses: []string{askJSON, "I refuse to answer in JSON today."}}
	c := newTestController(t, llm)
	ctx := context.Background()

	if _, err := c.Start(ctx, "Hiking trip"); err != nil {
		t.Fatal(err)
	}
	out, err := c.Continue(ctx, "With the kids")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != AskQuestion {
		t.Fatal("extraction failure silently finalized")
	}
	if out.Question != fallbackQuestion {
		t.Errorf("question = %q, want hand-composed fallback", out.Question)
	}
}

func TestContinue_ServiceErrorAfterBudgetFinalizes(t *testing.T) {
	llm := &fakeLLM{
		responses: []string{askJSON, askJSON, askJSON, ""},
		errs:      []error{nil, nil, nil, errors.New("boom")},
	}
	c := newTestController(t, llm)
	ctx := context.Background()

	if _, err := c.Start(ctx, "Anywhere warm"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Continue(ctx, "More detail"); err != nil {
			t.Fatal(err)
		}
	}

	out, err := c.Continue(ctx, "Last answer")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != Finalize {
		t.Fatal("exhausted budget with failing service must force finalize")
	}
	if out.Profile.Destination != "Rome" {
		t.Errorf("fallback destination = %q", out.Profile.Destination)
	}
}

func TestContinue_AfterFinalizeIsTerminal(t *testing.T) {
	llm := &fakeLLM{responses: []string{askJSON, finalizeJSON}}
	c := newTestController(t, llm)
	ctx := context.Background()

	if _, err := c.Start(ctx, "Seafood and sun"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Continue(ctx, "Relaxed pace"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Continue(ctx, "One more thing"); !errors.Is(err, ErrFinalized) {
		t.Fatalf("want ErrFinalized, got %v", err)
	}
	if c.State().TurnCount != 2 {
		t.Errorf("preference state mutated after finalize: turns=%d", c.State().TurnCount)
	}
}

func TestProfile_CarriesSlotTextAndEmbedding(t *testing.T) {
	llm := &fakeLLM{responses: []string{askJSON, finalizeJSON}}
	c := newTestController(t, llm)
	ctx := context.Background()

	if _, err := c.Start(ctx, "I want galleries and street food"); err != nil {
		t.Fatal(err)
	}
	out, err := c.Continue(ctx, "Slow mornings are a must")
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Profile.Slots) == 0 {
		t.Fatal("profile lost slot text")
	}
	if len(out.Profile.InterestEmbedding) == 0 {
		t.Error("profile lost interest embedding")
	}
	if out.Profile.QuestionsAsked != 1 {
		t.Errorf("questions asked = %d", out.Profile.QuestionsAsked)
	}
}
