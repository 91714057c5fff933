// README: Redis-backed session snapshots (profile + plan survive restarts).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/interview"
	"wayfarer/internal/modules/review"
	"wayfarer/internal/modules/schedule"
	"wayfarer/internal/types"
)

// ErrNotFound is returned when no snapshot exists for the session.
var ErrNotFound = errors.New("session snapshot not found")

// DefaultTTL bounds how long an abandoned session lingers.
const DefaultTTL = 24 * time.Hour

// Snapshot is the durable view of a session: what a profile consumer reads,
// not the live dialogue state.
type Snapshot struct {
	ID        types.ID                 `json:"id"`
	Days      int                      `json:"days"`
	Profile   *interview.TravelProfile `json:"profile,omitempty"`
	Plan      schedule.TripPlan        `json:"plan,omitempty"`
	Summary   *budget.Summary          `json:"summary,omitempty"`
	Review    *review.Scores           `json:"review,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Store persists snapshots in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id types.ID) string {
	return "session:" + string(id)
}

// Save writes the snapshot, refreshing its TTL.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	snap.UpdatedAt = time.Now()
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, key(snap.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot back, ErrNotFound when absent or expired.
func (s *Store) Load(ctx context.Context, id types.ID) (*Snapshot, error) {
	payload, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes a snapshot; deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, id types.ID) error {
	return s.rdb.Del(ctx, key(id)).Err()
}
