// README: Hub owns live sessions and serializes turns per session.
package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	"wayfarer/internal/modules/interview"
	"wayfarer/internal/modules/plans"
	"wayfarer/internal/modules/preference"
	"wayfarer/internal/modules/session"
	"wayfarer/internal/types"
)

var (
	// ErrSessionNotFound is returned for an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotFinalized is returned when planning is requested before the
	// interview has produced a profile.
	ErrNotFinalized = errors.New("interview not finalized")
	// ErrNotPlanned is returned when a plan is requested before one was built.
	ErrNotPlanned = errors.New("no plan built for session")
)

// liveSession is one in-memory dialogue. Its mutex serializes turns so a
// client racing itself cannot interleave tracker updates.
type liveSession struct {
	mu         sync.Mutex
	id         types.ID
	days       int
	controller *interview.Controller
	itinerary  *Itinerary
}

// Hub is the application core behind the HTTP layer: it creates sessions,
// routes turns to their controllers and runs the planning pipeline once a
// profile is finalized. Snapshots and saved plans are persisted best-effort;
// either store may be nil (the CLI demo runs without infrastructure).
type Hub struct {
	mu       sync.Mutex
	sessions map[types.ID]*liveSession

	llm        ai.TextGenerator
	classifier *preference.Classifier
	planner    *Planner
	snapshots  *session.Store
	plans      *plans.Store
	trip       config.TripConfig
	interview  config.InterviewConfig
}

func NewHub(
	llm ai.TextGenerator,
	classifier *preference.Classifier,
	planner *Planner,
	snapshots *session.Store,
	planStore *plans.Store,
	trip config.TripConfig,
	iv config.InterviewConfig,
) *Hub {
	return &Hub{
		sessions:   make(map[types.ID]*liveSession),
		llm:        llm,
		classifier: classifier,
		planner:    planner,
		snapshots:  snapshots,
		plans:      planStore,
		trip:       trip,
		interview:  iv,
	}
}

// StartSession creates a session with the confirmed trip parameters (zero
// values fall back to configured defaults) and runs the opening turn.
// A service failure on this turn is terminal: no session is registered.
func (h *Hub) StartSession(ctx context.Context, initialText string, params interview.TripParams) (types.ID, interview.Outcome, error) {
	if params.Budget <= 0 {
		params.Budget = h.trip.DefaultBudget
	}
	if params.People <= 0 {
		params.People = h.trip.DefaultPeople
	}
	if params.Days <= 0 {
		params.Days = h.trip.DefaultDays
	}

	tracker := preference.NewTracker(h.classifier, h.interview.MergeThreshold)
	ctrl := interview.NewController(tracker, h.llm, params, h.interview.MaxQuestions)

	outcome, err := ctrl.Start(ctx, initialText)
	if err != nil {
		return "", interview.Outcome{}, err
	}

	s := &liveSession{
		id:         types.NewID(),
		days:       params.Days,
		controller: ctrl,
	}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	h.saveSnapshot(ctx, s)
	log.Printf("hub: session %s started (%d days, %.0f EUR, %d people)",
		s.id, params.Days, params.Budget, params.People)
	return s.id, outcome, nil
}

// Message runs one interview turn for the session.
func (h *Hub) Message(ctx context.Context, id types.ID, text string) (interview.Outcome, error) {
	s, err := h.lookup(id)
	if err != nil {
		return interview.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, err := s.controller.Continue(ctx, text)
	if err != nil {
		return interview.Outcome{}, err
	}
	if outcome.Kind == interview.Finalize {
		h.saveSnapshot(ctx, s)
	}
	return outcome, nil
}

// BuildPlan runs the planning pipeline for a finalized session and persists
// the result. Rebuilding is allowed; the new plan replaces the old one.
func (h *Hub) BuildPlan(ctx context.Context, id types.ID) (*Itinerary, error) {
	s, err := h.lookup(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.controller.Profile()
	if profile == nil {
		return nil, ErrNotFinalized
	}

	itinerary, err := h.planner.BuildItinerary(ctx, profile, s.days)
	if err != nil {
		return nil, err
	}
	s.itinerary = itinerary

	h.saveSnapshot(ctx, s)
	if h.plans != nil {
		rec := &plans.Record{
			SessionID:   s.id,
			Destination: itinerary.Destination,
			Plan:        itinerary.Plan,
			Summary:     itinerary.Summary,
		}
		if err := h.plans.Save(ctx, rec); err != nil {
			log.Printf("hub: save plan %s: %v", s.id, err)
		}
	}
	return itinerary, nil
}

// GetPlan returns the built itinerary. When the session is no longer in
// memory it is rehydrated from the redis snapshot, then from the plan store.
func (h *Hub) GetPlan(ctx context.Context, id types.ID) (*Itinerary, error) {
	if s, err := h.lookup(id); err == nil {
		s.mu.Lock()
		itinerary := s.itinerary
		s.mu.Unlock()
		if itinerary == nil {
			return nil, ErrNotPlanned
		}
		return itinerary, nil
	}

	if snap, err := h.loadSnapshot(ctx, id); err == nil {
		if snap.Plan == nil || snap.Summary == nil {
			return nil, ErrNotPlanned
		}
		itinerary := &Itinerary{Plan: snap.Plan, Summary: *snap.Summary}
		if snap.Profile != nil {
			itinerary.Destination = snap.Profile.Destination
		}
		if snap.Review != nil {
			itinerary.Review = *snap.Review
		}
		return itinerary, nil
	}

	if h.plans != nil {
		rec, err := h.plans.Get(ctx, id)
		if errors.Is(err, plans.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, err
		}
		return &Itinerary{
			Destination: rec.Destination,
			Plan:        rec.Plan,
			Summary:     rec.Summary,
		}, nil
	}
	return nil, ErrSessionNotFound
}

// Profile returns the finalized profile for a session, nil while still
// collecting. Sessions evicted from memory are read from their snapshot.
func (h *Hub) Profile(ctx context.Context, id types.ID) (*interview.TravelProfile, error) {
	if s, err := h.lookup(id); err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.controller.Profile(), nil
	}

	snap, err := h.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Profile, nil
}

// EndSession drops the live session and its snapshot. The saved plan, if
// any, stays in the plan store.
func (h *Hub) EndSession(ctx context.Context, id types.ID) error {
	h.mu.Lock()
	_, live := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if h.snapshots != nil {
		if err := h.snapshots.Delete(ctx, id); err != nil {
			return err
		}
		return nil
	}
	if !live {
		return ErrSessionNotFound
	}
	return nil
}

func (h *Hub) lookup(id types.ID) (*liveSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// saveSnapshot persists the durable view of the session. Callers already
// hold the session lock or own the session exclusively.
func (h *Hub) saveSnapshot(ctx context.Context, s *liveSession) {
	if h.snapshots == nil {
		return
	}
	snap := &session.Snapshot{
		ID:      s.id,
		Days:    s.days,
		Profile: s.controller.Profile(),
	}
	if s.itinerary != nil {
		snap.Plan = s.itinerary.Plan
		summary := s.itinerary.Summary
		snap.Summary = &summary
		scores := s.itinerary.Review
		snap.Review = &scores
	}
	if err := h.snapshots.Save(ctx, snap); err != nil {
		log.Printf("hub: save snapshot %s: %v", s.id, err)
	}
}

// loadSnapshot reads the durable session view, mapping store misses (and an
// absent store) to ErrSessionNotFound.
func (h *Hub) loadSnapshot(ctx context.Context, id types.ID) (*session.Snapshot, error) {
	if h.snapshots == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := h.snapshots.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}
