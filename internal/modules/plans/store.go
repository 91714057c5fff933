// README: Saved-itinerary store backed by PostgreSQL.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/schedule"
	"wayfarer/internal/types"
)

// ErrNotFound is returned when no saved plan exists for the session.
var ErrNotFound = errors.New("plan not found")

// Record is one saved itinerary.
type Record struct {
	SessionID   types.ID          `json:"session_id"`
	Destination string            `json:"destination"`
	Plan        schedule.TripPlan `json:"plan"`
	Summary     budget.Summary    `json:"summary"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Store handles trip_plans persistence.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Save upserts the itinerary for a session. A re-planned session overwrites
// its previous plan.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO trip_plans (session_id, destination, plan, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			destination = EXCLUDED.destination,
			plan = EXCLUDED.plan,
			summary = EXCLUDED.summary,
			created_at = EXCLUDED.created_at
	`, string(rec.SessionID), rec.Destination, planJSON, summaryJSON, time.Now())
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Get loads the saved itinerary for a session.
func (s *Store) Get(ctx context.Context, sessionID types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT session_id, destination, plan, summary, created_at
		FROM trip_plans
		WHERE session_id = $1`, string(sessionID),
	)

	var rec Record
	var id string
	var planJSON, summaryJSON []byte
	err := row.Scan(&id, &rec.Destination, &planJSON, &summaryJSON, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	rec.SessionID = types.ID(id)
	if err := json.Unmarshal(planJSON, &rec.Plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &rec, nil
}
