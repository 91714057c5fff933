package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/config"
	"wayfarer/internal/modules/preference"
	"wayfarer/internal/modules/review"
	"wayfarer/internal/modules/scout"
	"wayfarer/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Generate(_ context.Context, _ string, _ float32) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("no scripted response left")
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func newTestRouter(t *testing.T, llm *scriptedLLM) http.Handler {
	t.Helper()
	classifier, err := preference.NewClassifier(context.Background(), hashEmbedder{})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	hub := service.NewHub(llm, classifier, service.NewPlanner(scout.NewService(llm), review.NewService(llm), nil), nil, nil,
		config.TripConfig{DefaultBudget: 600, DefaultDays: 2, DefaultPeople: 1},
		config.InterviewConfig{MaxQuestions: 3, MergeThreshold: preference.DefaultMergeThreshold},
	)
	return NewRouter(hub)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func candidatesJSON() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < scout.CandidateCount; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"name": "Spot %d", "short_description": "d", "price_per_person": 10,
			"tags": ["museum"], "rationale": "r"}`, i)
	}
	b.WriteString("]")
	return b.String()
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"action": "ask_question", "question": "City or countryside?",
			"chosen_destination": "", "profile_summary": "", "constraints": {}}`,
		`{"action": "finalize", "question": "", "chosen_destination": "Seville",
			"profile_summary": "Tapas and flamenco.", "constraints": {"budget": 400, "people": 2}}`,
		candidatesJSON(),
		`{"interest_match": 5, "budget_realism": 4, "logistics": 4,
			"suitability_for_constraints": 3, "comment": "Strong food focus."}`,
	}}
	router := newTestRouter(t, llm)

	w := doJSON(t, router, http.MethodPost, "/api/sessions",
		`{"message": "A food-focused long weekend.", "days": 2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var turn struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
		Question  string `json:"question"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if turn.Status != "question" || turn.Question == "" || turn.SessionID == "" {
		t.Fatalf("unexpected create response: %+v", turn)
	}

	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+turn.SessionID+"/message",
		`{"message": "City. Lots of restaurants."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("message status = %d, body %s", w.Code, w.Body.String())
	}
	var final struct {
		Status  string `json:"status"`
		Profile struct {
			Destination string `json:"destination"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode message response: %v", err)
	}
	if final.Status != "finalized" || final.Profile.Destination != "Seville" {
		t.Fatalf("unexpected finalize response: %+v", final)
	}

	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+turn.SessionID+"/plan", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("build plan status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+turn.SessionID+"/plan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get plan status = %d, body %s", w.Code, w.Body.String())
	}
	var itinerary struct {
		Destination string        `json:"destination"`
		Review      review.Scores `json:"review"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &itinerary); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if itinerary.Destination != "Seville" {
		t.Errorf("plan destination = %q", itinerary.Destination)
	}
	if itinerary.Review.InterestMatch != 5 || itinerary.Review.Comment != "Strong food focus." {
		t.Errorf("plan review = %+v", itinerary.Review)
	}

	// Session status reports the finalized profile.
	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+turn.SessionID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get session status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if final.Status != "finalized" || final.Profile.Destination != "Seville" {
		t.Fatalf("unexpected session response: %+v", final)
	}

	// Ending the session removes it.
	w = doJSON(t, router, http.MethodDelete, "/api/sessions/"+turn.SessionID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+turn.SessionID+"/plan", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get plan after delete status = %d, want 404", w.Code)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	router := newTestRouter(t, &scriptedLLM{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing message", `{"days": 3}`},
		{"blank message", `{"message": "   "}`},
		{"negative days", `{"message": "hi", "days": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/sessions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestSessionErrorsOverHTTP(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"action": "ask_question", "question": "q", "chosen_destination": "",
			"profile_summary": "", "constraints": {}}`,
	}}
	router := newTestRouter(t, llm)

	// Unknown but well-formed ID.
	w := doJSON(t, router, http.MethodPost, "/api/sessions/deadbeefdeadbeef/message", `{"message": "hi"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/sessions/deadbeefdeadbeef", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session get status = %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/api/sessions/deadbeefdeadbeef", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session delete status = %d, want 404", w.Code)
	}

	// Malformed ID.
	w = doJSON(t, router, http.MethodGet, "/api/sessions/not-an-id!/plan", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}

	// Planning before finalization.
	w = doJSON(t, router, http.MethodPost, "/api/sessions", `{"message": "A quiet beach trip."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var turn struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode: %v", err)
	}
	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+turn.SessionID+"/plan", "")
	if w.Code != http.StatusConflict {
		t.Errorf("plan before finalize status = %d, want 409", w.Code)
	}
}

func TestServiceFailureOnFirstTurn(t *testing.T) {
	router := newTestRouter(t, &scriptedLLM{}) // generation always fails
	w := doJSON(t, router, http.MethodPost, "/api/sessions", `{"message": "Anywhere."}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
