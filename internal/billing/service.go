package billing

import (
	"context"
	"errors"
	"time"

	"backend-kinfolk/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var ErrUnknownPlan = errors.New("unknown subscription tier")

type Service struct {
	db    db.Querier
	cache *SnapshotCache
	redis *redis.Client
}

// NewService builds the subscription state reader. cache and redisClient
// are optional; without them every check reads the store directly.
func NewService(querier db.Querier, cache *SnapshotCache, redisClient *redis.Client) *Service {
	return &Service{db: querier, cache: cache, redis: redisClient}
}

// IsEntitled recomputes entitlement from the current snapshot on every
// call. An account with no snapshot row at all is entitled: legacy
// accounts predate billing.
func (s *Service) IsEntitled(ctx context.Context, userID string, now time.Time) (bool, error) {
	snap, found, err := s.snapshot(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return Entitled(snap, now), nil
}

// EntitledOwners is the bulk form of IsEntitled over distinct owner ids.
func (s *Service) EntitledOwners(ctx context.Context, ownerIDs []string, now time.Time) (map[string]bool, error) {
	entitled := map[string]bool{}
	var missing []string
	for _, ownerID := range ownerIDs {
		if s.cache != nil {
			if snap, found, hit := s.cache.Get(ownerID); hit {
				entitled[ownerID] = !found || Entitled(snap, now)
				continue
			}
		}
		missing = append(missing, ownerID)
	}
	if len(missing) == 0 {
		return entitled, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT user_id, tier, status, trial_end, updated_at
		FROM subscriptions WHERE user_id = ANY($1)
	`, missing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := map[string]Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.UserID, &snap.Plan, &snap.Status, &snap.TrialEnd, &snap.UpdatedAt); err != nil {
			return nil, err
		}
		snaps[snap.UserID] = snap
	}

	for _, ownerID := range missing {
		snap, found := snaps[ownerID]
		if s.cache != nil {
			s.cache.Set(ownerID, snap, found)
		}
		entitled[ownerID] = !found || Entitled(snap, now)
	}
	return entitled, nil
}

// SnapshotFor exposes the raw snapshot, e.g. for the account screen.
func (s *Service) SnapshotFor(ctx context.Context, userID string) (Snapshot, bool, error) {
	return s.snapshot(ctx, userID)
}

// ApplySnapshot persists the outcome of a payment-pipeline transition and
// evicts the snapshot from every instance's cache. The engine never calls
// this; billing transitions are driven from outside.
func (s *Service) ApplySnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	switch snap.Plan {
	case PlanFree, PlanPremium, PlanFamily:
	default:
		return Snapshot{}, ErrUnknownPlan
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, tier, status, trial_end, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (user_id) DO UPDATE
		SET tier=EXCLUDED.tier, status=EXCLUDED.status, trial_end=EXCLUDED.trial_end, updated_at=now()
		RETURNING updated_at
	`, snap.UserID, snap.Plan, snap.Status, snap.TrialEnd)
	if err := row.Scan(&snap.UpdatedAt); err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(snap.UserID)
	}
	if err := publishInvalidation(ctx, s.redis, snap.UserID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Service) snapshot(ctx context.Context, userID string) (Snapshot, bool, error) {
	if s.cache != nil {
		if snap, found, hit := s.cache.Get(userID); hit {
			return snap, found, nil
		}
	}

	row := s.db.QueryRow(ctx, `
		SELECT user_id, tier, status, trial_end, updated_at
		FROM subscriptions WHERE user_id=$1
	`, userID)
	var snap Snapshot
	err := row.Scan(&snap.UserID, &snap.Plan, &snap.Status, &snap.TrialEnd, &snap.UpdatedAt)
	found := true
	if errors.Is(err, pgx.ErrNoRows) {
		snap = Snapshot{}
		found = false
	} else if err != nil {
		return Snapshot{}, false, err
	}

	if s.cache != nil {
		s.cache.Set(userID, snap, found)
	}
	return snap, found, nil
}
