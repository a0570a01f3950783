package event

import (
	"context"
	"errors"

	"backend-kinfolk/internal/db"
	"backend-kinfolk/internal/visibility"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUnknownTier   = errors.New("unknown privacy tier")
	ErrGroupRequired = errors.New("custom_group_id required for custom_group tier")
	ErrNotOwner      = errors.New("only the owner can modify an event")
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

func validTier(tier visibility.Tier) bool {
	switch tier {
	case visibility.TierPublic, visibility.TierFollowers, visibility.TierCloseFamily,
		visibility.TierCustomGroup, visibility.TierPrivate:
		return true
	}
	return false
}

// normalizeGroup enforces the tier/group pairing: custom_group requires a
// group id, every other tier drops whatever id was sent.
func normalizeGroup(tier visibility.Tier, groupID string) (string, error) {
	if tier == visibility.TierCustomGroup {
		if groupID == "" {
			return "", ErrGroupRequired
		}
		return groupID, nil
	}
	return "", nil
}

// Create stores a new draft event owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID, title, description string, tier visibility.Tier, groupID string) (Event, error) {
	if !validTier(tier) {
		return Event{}, ErrUnknownTier
	}
	groupID, err := normalizeGroup(tier, groupID)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         title,
		Description:   description,
		PrivacyTier:   tier,
		CustomGroupID: groupID,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, owner_id, title, description, privacy_tier, custom_group_id)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
		RETURNING created_at, updated_at
	`, ev.ID, ev.OwnerID, ev.Title, ev.Description, ev.PrivacyTier, ev.CustomGroupID)
	if err := row.Scan(&ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Get loads an event by id. Soft-deleted events are gone from every read
// path, including the owner's.
func (s *Service) Get(ctx context.Context, id string) (Event, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, title, description, privacy_tier,
		       COALESCE(custom_group_id, ''), is_published, created_at, updated_at
		FROM events WHERE id=$1 AND is_deleted=false
	`, id)
	var ev Event
	err := row.Scan(&ev.ID, &ev.OwnerID, &ev.Title, &ev.Description, &ev.PrivacyTier,
		&ev.CustomGroupID, &ev.IsPublished, &ev.CreatedAt, &ev.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}
	return ev, true, nil
}

// UpdateTier changes an event's privacy tier. Takes effect for every
// subsequent check immediately; nothing is grandfathered.
func (s *Service) UpdateTier(ctx context.Context, ownerID, id string, tier visibility.Tier, groupID string) error {
	if !validTier(tier) {
		return ErrUnknownTier
	}
	groupID, err := normalizeGroup(tier, groupID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE events SET privacy_tier=$1, custom_group_id=NULLIF($2,''), updated_at=now()
		WHERE id=$3 AND owner_id=$4 AND is_deleted=false
	`, tier, groupID, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) Publish(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE events SET is_published=true, updated_at=now()
		WHERE id=$1 AND owner_id=$2 AND is_deleted=false
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) SoftDelete(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE events SET is_deleted=true, updated_at=now()
		WHERE id=$1 AND owner_id=$2 AND is_deleted=false
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

// CandidatesForFeed returns the newest published events before any
// per-viewer filtering. The visibility pass happens in the handler.
func (s *Service) CandidatesForFeed(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, title, description, privacy_tier,
		       COALESCE(custom_group_id, ''), is_published, created_at, updated_at
		FROM events
		WHERE is_published=true AND is_deleted=false
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.OwnerID, &ev.Title, &ev.Description, &ev.PrivacyTier,
			&ev.CustomGroupID, &ev.IsPublished, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
